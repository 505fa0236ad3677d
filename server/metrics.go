package server

import (
	"sync/atomic"
)

// Metrics 记录运行期关键指标（用于监控与调试），可被任意 goroutine 读取
type Metrics struct {
	TickCount           int64 // Tick 次数
	TotalTickNs         int64 // Tick 累计耗时（纳秒）
	ConnsAccepted       int64 // 接入成功的连接
	ConnsRefused        int64 // 因人数上限被拒绝的连接
	CommandsAccepted    int64 // 成功执行的命令
	EventsBroadcast     int64 // 广播的事件数
	FramesEnqueued      int64 // 入队成功的帧数
	SlowConsumerDrops   int64 // 因发送队列满被断开的连接
	EnemiesSpawned      int64
	ItemsSpawned        int64
	EnemiesKilled       int64
	ProjectilesHit      int64
	ProjectilesExpired  int64
	rejections          map[Reason]*int64 // 初始化后只读，值原子更新
}

func NewMetrics() *Metrics {
	m := &Metrics{rejections: make(map[Reason]*int64, len(Reasons))}
	for _, r := range Reasons {
		m.rejections[r] = new(int64)
	}
	return m
}

func (m *Metrics) IncConnsAccepted()      { atomic.AddInt64(&m.ConnsAccepted, 1) }
func (m *Metrics) IncConnsRefused()       { atomic.AddInt64(&m.ConnsRefused, 1) }
func (m *Metrics) IncCommandsAccepted()   { atomic.AddInt64(&m.CommandsAccepted, 1) }
func (m *Metrics) IncEventsBroadcast()    { atomic.AddInt64(&m.EventsBroadcast, 1) }
func (m *Metrics) IncFramesEnqueued()     { atomic.AddInt64(&m.FramesEnqueued, 1) }
func (m *Metrics) IncSlowConsumerDrops()  { atomic.AddInt64(&m.SlowConsumerDrops, 1) }
func (m *Metrics) IncEnemiesSpawned()     { atomic.AddInt64(&m.EnemiesSpawned, 1) }
func (m *Metrics) IncItemsSpawned()       { atomic.AddInt64(&m.ItemsSpawned, 1) }
func (m *Metrics) IncEnemiesKilled()      { atomic.AddInt64(&m.EnemiesKilled, 1) }
func (m *Metrics) IncProjectilesHit()     { atomic.AddInt64(&m.ProjectilesHit, 1) }
func (m *Metrics) IncProjectilesExpired() { atomic.AddInt64(&m.ProjectilesExpired, 1) }

func (m *Metrics) IncRejected(r Reason) {
	if c, ok := m.rejections[r]; ok {
		atomic.AddInt64(c, 1)
	}
}

// Rejected 某个原因的累计拒绝次数
func (m *Metrics) Rejected(r Reason) int64 {
	if c, ok := m.rejections[r]; ok {
		return atomic.LoadInt64(c)
	}
	return 0
}

func (m *Metrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	rejected := make(map[string]int64, len(m.rejections))
	for r, c := range m.rejections {
		rejected[string(r)] = atomic.LoadInt64(c)
	}
	return map[string]any{
		"tick_count":          tick,
		"avg_tick_ms":         avgMs,
		"conns_accepted":      atomic.LoadInt64(&m.ConnsAccepted),
		"conns_refused":       atomic.LoadInt64(&m.ConnsRefused),
		"commands_accepted":   atomic.LoadInt64(&m.CommandsAccepted),
		"commands_rejected":   rejected,
		"events_broadcast":    atomic.LoadInt64(&m.EventsBroadcast),
		"frames_enqueued":     atomic.LoadInt64(&m.FramesEnqueued),
		"slow_consumer_drops": atomic.LoadInt64(&m.SlowConsumerDrops),
		"enemies_spawned":     atomic.LoadInt64(&m.EnemiesSpawned),
		"items_spawned":       atomic.LoadInt64(&m.ItemsSpawned),
		"enemies_killed":      atomic.LoadInt64(&m.EnemiesKilled),
		"projectiles_hit":     atomic.LoadInt64(&m.ProjectilesHit),
		"projectiles_expired": atomic.LoadInt64(&m.ProjectilesExpired),
	}
}
