package server

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"
)

// fakeConn 记录收到的帧；limit > 0 时模拟容量为 limit 的发送队列
type fakeConn struct {
	codec  Codec
	frames []Frame
	limit  int
	closed bool
}

func newFakeConn() *fakeConn { return &fakeConn{codec: JSON} }

func (f *fakeConn) Codec() Codec { return f.codec }

func (f *fakeConn) Send(fr Frame) error {
	if f.closed {
		return fmt.Errorf("send on closed conn")
	}
	if f.limit > 0 && len(f.frames) >= f.limit {
		return ErrSendQueueFull
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

// events 把收到的 JSON 帧解码为 map
func (f *fakeConn) events(t *testing.T) []map[string]any {
	t.Helper()
	out := make([]map[string]any, 0, len(f.frames))
	for _, fr := range f.frames {
		var m map[string]any
		if err := f.codec.Decode(fr.Data, &m); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		out = append(out, m)
	}
	return out
}

// ofType 返回指定类型的事件
func (f *fakeConn) ofType(t *testing.T, typ string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, ev := range f.events(t) {
		if ev["type"] == typ {
			out = append(out, ev)
		}
	}
	return out
}

func (f *fakeConn) reset() { f.frames = nil }

// syncConn 供 Game.Run 所在 goroutine 与测试 goroutine 并发访问
type syncConn struct {
	mu sync.Mutex
	*fakeConn
}

func (s *syncConn) Send(fr Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fakeConn.Send(fr)
}

func (s *syncConn) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fakeConn.Close()
}

func (s *syncConn) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// placeEnemy 在指定位置放置敌人，仍受上限约束
func (w *World) placeEnemy(x, y float64, health int) (*Enemy, bool) {
	if len(w.enemies) >= w.cfg.MaxEnemies {
		return nil, false
	}
	e := &Enemy{ID: w.newID(), X: x, Y: y, Type: EnemyWolf, Health: health, seq: w.nextSeq()}
	w.enemies[e.ID] = e
	return e, true
}

// placeItem 在指定位置放置物品
func (w *World) placeItem(x, y float64, t ItemType) (*Item, bool) {
	if len(w.items) >= w.cfg.MaxItems {
		return nil, false
	}
	it := &Item{ID: w.newID(), X: x, Y: y, Type: t, seq: w.nextSeq()}
	w.items[it.ID] = it
	return it, true
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Seed = 1
	cfg.LogFile = ""
	return cfg
}

func newTestGame(t *testing.T, cfg Config) *Game {
	t.Helper()
	return NewGame(cfg, zap.NewNop().Sugar(), NewMetrics())
}

func mustAccept(t *testing.T, g *Game, conn Conn) PlayerID {
	t.Helper()
	id, err := g.accept(conn)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	g.flushDropped()
	return id
}

// command 模拟 Game 循环对一条命令的完整处理
func command(g *Game, id PlayerID, msg ClientMessage) Result {
	res := g.handle(id, msg)
	g.flushDropped()
	return res
}

func asFloat(t *testing.T, v any) float64 {
	t.Helper()
	switch n := v.(type) {
	case float64:
		return n
	case json.Number:
		f, _ := n.Float64()
		return f
	default:
		t.Fatalf("expected number, got %T (%v)", v, v)
		return 0
	}
}

func asMap(t *testing.T, v any) map[string]any {
	t.Helper()
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("expected object, got %T", v)
	}
	return m
}
