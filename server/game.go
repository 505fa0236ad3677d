package server

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Game 世界的唯一写者：连接接入/断开、客户端命令、Tick、配置热更新
// 都经由 inbox 或 ticker 进入同一个 goroutine，逐条完整执行，互不交错
type Game struct {
	world   *World
	conns   *Connections
	metrics *Metrics
	log     *zap.SugaredLogger

	inbox   chan any
	done    chan struct{}
	ticker  *time.Ticker
	dropped []PlayerID // 本步内发送失败、待按断线处理的连接
}

type joinRequest struct {
	conn  Conn
	reply chan joinResult
}

type joinResult struct {
	id  PlayerID
	err error
}

type leaveRequest struct {
	id PlayerID
}

type commandRequest struct {
	id  PlayerID
	msg ClientMessage
}

type configRequest struct {
	patch *ConfigPatch // nil 表示只读
	reply chan configResult
}

type configResult struct {
	cfg Config
	err error
}

type countsRequest struct {
	reply chan Counts
}

// NewGame 创建 Game；需调用 Run 启动循环
func NewGame(cfg Config, log *zap.SugaredLogger, m *Metrics) *Game {
	return &Game{
		world:   NewWorld(cfg),
		conns:   NewConnections(m),
		metrics: m,
		log:     log,
		inbox:   make(chan any, 256),
		done:    make(chan struct{}),
	}
}

// Run 单线程推进世界，直到 ctx 取消；退出时关闭全部连接
func (g *Game) Run(ctx context.Context) error {
	defer close(g.done)
	g.ticker = time.NewTicker(g.world.Config().TickPeriod)
	defer g.ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := g.conns.CloseAll(); err != nil {
				g.log.Warnw("close connections", "err", err)
			}
			return ctx.Err()
		case req := <-g.inbox:
			g.dispatch(req)
		case <-g.ticker.C:
			g.step()
		}
	}
}

func (g *Game) dispatch(req any) {
	switch r := req.(type) {
	case joinRequest:
		id, err := g.accept(r.conn)
		r.reply <- joinResult{id: id, err: err}
	case leaveRequest:
		g.disconnect(r.id)
	case commandRequest:
		g.handle(r.id, r.msg)
	case configRequest:
		r.reply <- g.reconfigure(r.patch)
	case countsRequest:
		r.reply <- g.world.Counts()
	}
	g.flushDropped()
}

// send 把请求投递给 Game 循环；循环已退出时返回 ErrGameStopped
func (g *Game) send(ctx context.Context, req any) error {
	select {
	case g.inbox <- req:
		return nil
	case <-g.done:
		return ErrGameStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Join 接入一条连接；人数已满返回 ErrCapacityExceeded
func (g *Game) Join(ctx context.Context, conn Conn) (PlayerID, error) {
	reply := make(chan joinResult, 1)
	if err := g.send(ctx, joinRequest{conn: conn, reply: reply}); err != nil {
		return "", err
	}
	select {
	case res := <-reply:
		return res.id, res.err
	case <-g.done:
		return "", ErrGameStopped
	}
}

// Leave 请求在 Game 循环中移除玩家；为保证移除一定生效，这里阻塞式写入
func (g *Game) Leave(id PlayerID) {
	_ = g.send(context.Background(), leaveRequest{id: id})
}

// Submit 投递一条客户端命令；inbox 满时阻塞，对该连接的读形成自然背压
func (g *Game) Submit(id PlayerID, msg ClientMessage) error {
	return g.send(context.Background(), commandRequest{id: id, msg: msg})
}

// Config 读取当前运行期配置
func (g *Game) Config(ctx context.Context) (Config, error) {
	return g.configure(ctx, nil)
}

// UpdateConfig 在 Game 循环中应用配置补丁，新的 Tick 周期从下一拍生效
func (g *Game) UpdateConfig(ctx context.Context, patch ConfigPatch) (Config, error) {
	return g.configure(ctx, &patch)
}

func (g *Game) configure(ctx context.Context, patch *ConfigPatch) (Config, error) {
	reply := make(chan configResult, 1)
	if err := g.send(ctx, configRequest{patch: patch, reply: reply}); err != nil {
		return Config{}, err
	}
	select {
	case res := <-reply:
		return res.cfg, res.err
	case <-g.done:
		return Config{}, ErrGameStopped
	}
}

// Counts 在 Game 循环中采样各类实体数量
func (g *Game) Counts(ctx context.Context) (Counts, error) {
	reply := make(chan Counts, 1)
	if err := g.send(ctx, countsRequest{reply: reply}); err != nil {
		return Counts{}, err
	}
	select {
	case c := <-reply:
		return c, nil
	case <-g.done:
		return Counts{}, ErrGameStopped
	}
}

func (g *Game) reconfigure(patch *ConfigPatch) configResult {
	cur := g.world.Config()
	if patch == nil {
		return configResult{cfg: cur}
	}
	next, err := patch.Apply(cur)
	if err != nil {
		return configResult{cfg: cur, err: err}
	}
	g.world.SetConfig(next)
	if g.ticker != nil && next.TickPeriod != cur.TickPeriod {
		g.ticker.Reset(next.TickPeriod)
	}
	g.log.Infow("config updated",
		"maxPlayers", next.MaxPlayers, "maxProjectiles", next.MaxProjectiles,
		"maxEnemies", next.MaxEnemies, "maxItems", next.MaxItems,
		"tickPeriod", next.TickPeriod, "reportRejections", next.ReportRejections)
	return configResult{cfg: next}
}

// accept 连接管理：校验人数上限、分配玩家、下发 init、通知其他人
func (g *Game) accept(conn Conn) (PlayerID, error) {
	p, err := g.world.AddPlayer()
	if err != nil {
		g.metrics.IncConnsRefused()
		g.log.Infow("connection refused", "reason", err, "players", g.world.Counts().Players)
		return "", err
	}
	g.conns.Add(p.ID, conn)
	g.metrics.IncConnsAccepted()

	if err := g.conns.SendTo(p.ID, newInitEvent(p.ID, g.world.Snapshot())); err != nil {
		g.log.Warnw("send init", "player", p.ID, "err", err)
		g.dropped = append(g.dropped, p.ID)
	}
	g.broadcast(newPlayerJoined(p.snapshot()), p.ID)
	g.log.Infow("player connected", "player", p.ID, "players", g.world.Counts().Players)
	return p.ID, nil
}

// disconnect 移除玩家与连接并广播 playerLeft；重复调用无副作用
func (g *Game) disconnect(id PlayerID) {
	if conn, ok := g.conns.Remove(id); ok {
		if err := conn.Close(); err != nil {
			g.log.Debugw("close connection", "player", id, "err", err)
		}
	}
	if !g.world.RemovePlayer(id) {
		return
	}
	g.broadcast(newPlayerLeft(id), "")
	g.log.Infow("player disconnected", "player", id, "players", g.world.Counts().Players)
}

func (g *Game) broadcast(ev Event, exclude PlayerID) {
	failed, err := g.conns.Send(ev, exclude)
	if err != nil {
		g.log.Errorw("broadcast", "event", ev.EventType(), "err", err)
	}
	g.dropped = append(g.dropped, failed...)
}

func (g *Game) sendTo(id PlayerID, ev Event) {
	if err := g.conns.SendTo(id, ev); err != nil {
		g.log.Debugw("send", "player", id, "event", ev.EventType(), "err", err)
		g.dropped = append(g.dropped, id)
	}
}

// flushDropped 断开本步中发送队列溢出的连接；断开本身的广播可能产生新的溢出，循环到清空为止
func (g *Game) flushDropped() {
	for len(g.dropped) > 0 {
		id := g.dropped[0]
		g.dropped = g.dropped[1:]
		if _, ok := g.world.Player(id); !ok {
			continue
		}
		g.metrics.IncSlowConsumerDrops()
		g.log.Warnw("slow consumer disconnected", "player", id)
		g.disconnect(id)
	}
}
