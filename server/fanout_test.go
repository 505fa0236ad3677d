package server

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gorilla/websocket"
)

func TestConnectionsSendExcludesAndMixesCodecs(t *testing.T) {
	m := NewMetrics()
	c := NewConnections(m)
	text := newFakeConn()
	binary := &fakeConn{codec: Msgpack}
	sender := newFakeConn()
	c.Add("text", text)
	c.Add("binary", binary)
	c.Add("sender", sender)

	failed, err := c.Send(newChat("sender", "hi"), "sender")
	if err != nil || len(failed) != 0 {
		t.Fatalf("send: failed=%v err=%v", failed, err)
	}
	if len(sender.frames) != 0 {
		t.Fatalf("excluded connection received %d frames", len(sender.frames))
	}
	if len(text.frames) != 1 || text.frames[0].Type != websocket.TextMessage {
		t.Fatalf("expected one text frame, got %+v", text.frames)
	}
	if len(binary.frames) != 1 || binary.frames[0].Type != websocket.BinaryMessage {
		t.Fatalf("expected one binary frame, got %+v", binary.frames)
	}
	if got := binary.ofType(t, EvtChat); len(got) != 1 || got[0]["message"] != "hi" {
		t.Fatalf("unexpected msgpack chat %v", got)
	}
	if m.FramesEnqueued != 2 || m.EventsBroadcast != 1 {
		t.Fatalf("unexpected metrics: frames=%d events=%d", m.FramesEnqueued, m.EventsBroadcast)
	}
}

func TestConnectionsSendReportsFullQueues(t *testing.T) {
	c := NewConnections(NewMetrics())
	full := &fakeConn{codec: JSON, limit: 1}
	ok := newFakeConn()
	c.Add("full", full)
	c.Add("ok", ok)

	if failed, _ := c.Send(newChat("x", "1"), ""); len(failed) != 0 {
		t.Fatalf("first send should fit, failed=%v", failed)
	}
	failed, err := c.Send(newChat("x", "2"), "")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(failed) != 1 || failed[0] != "full" {
		t.Fatalf("expected only the full queue to fail, got %v", failed)
	}
	if len(ok.frames) != 2 {
		t.Fatalf("healthy connection should get both frames, got %d", len(ok.frames))
	}
}

func TestConnectionsSendToAndCloseAll(t *testing.T) {
	c := NewConnections(NewMetrics())
	a := &fakeConn{codec: JSON, limit: 1}
	c.Add("a", a)

	if err := c.SendTo("missing", newPlayerLeft("x")); err != nil {
		t.Fatalf("unknown id should be ignored, got %v", err)
	}
	if err := c.SendTo("a", newPlayerLeft("x")); err != nil {
		t.Fatalf("send to: %v", err)
	}
	if err := c.SendTo("a", newPlayerLeft("y")); !errors.Is(err, ErrSendQueueFull) {
		t.Fatalf("expected ErrSendQueueFull, got %v", err)
	}

	if err := c.CloseAll(); err != nil {
		t.Fatalf("close all: %v", err)
	}
	if !a.closed || c.Len() != 0 {
		t.Fatalf("expected every connection closed and removed")
	}
}

// brokenCodec 任何事件都编码失败
type brokenCodec struct{ jsonCodec }

func (brokenCodec) Name() string { return "broken" }

func (brokenCodec) Encode(any) ([]byte, error) { return nil, errors.New("encode refused") }

func TestConnectionsSendSkipsOnlyFailingCodec(t *testing.T) {
	c := NewConnections(NewMetrics())
	var healthy, broken []*fakeConn
	for i, codec := range []Codec{JSON, Msgpack, brokenCodec{}, JSON, brokenCodec{}, Msgpack} {
		fc := &fakeConn{codec: codec}
		c.Add(PlayerID(fmt.Sprintf("p%d", i)), fc)
		if codec.Name() == "broken" {
			broken = append(broken, fc)
		} else {
			healthy = append(healthy, fc)
		}
	}

	// 多次广播以覆盖不同的 map 遍历顺序
	const rounds = 50
	for i := 0; i < rounds; i++ {
		failed, err := c.Send(newChat("x", "hi"), "")
		if err == nil {
			t.Fatalf("round %d: expected encode error to be reported", i)
		}
		if len(failed) != 0 {
			t.Fatalf("round %d: encode errors are not queue failures, got %v", i, failed)
		}
	}
	for _, fc := range healthy {
		if len(fc.frames) != rounds {
			t.Fatalf("%s connection got %d of %d frames", fc.codec.Name(), len(fc.frames), rounds)
		}
	}
	for _, fc := range broken {
		if len(fc.frames) != 0 {
			t.Fatalf("broken codec connection should receive nothing, got %d", len(fc.frames))
		}
	}
}
