package server

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
)

// World 权威世界状态：只由 Game 的单一 goroutine 读写，本身不加锁
type World struct {
	cfg Config
	rng *rand.Rand
	ids func() string
	seq uint64

	players     map[PlayerID]*Player
	enemies     map[string]*Enemy
	projectiles map[string]*Projectile
	items       map[string]*Item
	npc         NPC
}

// NewWorld 创建空世界；cfg.Seed 为 0 时按当前时间取种
func NewWorld(cfg Config) *World {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &World{
		cfg:         cfg,
		rng:         rand.New(rand.NewSource(seed)),
		ids:         uuid.NewString,
		players:     make(map[PlayerID]*Player),
		enemies:     make(map[string]*Enemy),
		projectiles: make(map[string]*Projectile),
		items:       make(map[string]*Item),
		npc:         DefaultNPC,
	}
}

// SetConfig 替换运行期配置；降低上限不会移除已有实体
func (w *World) SetConfig(cfg Config) { w.cfg = cfg }

// Config 当前配置
func (w *World) Config() Config { return w.cfg }

func (w *World) nextSeq() uint64 {
	w.seq++
	return w.seq
}

func (w *World) newID() string {
	for {
		id := w.ids()
		_, p := w.players[PlayerID(id)]
		_, e := w.enemies[id]
		_, pr := w.projectiles[id]
		_, it := w.items[id]
		if !p && !e && !pr && !it {
			return id
		}
	}
}

func (w *World) randomPosition() (float64, float64) {
	return w.rng.Float64() * w.cfg.WorldWidth, w.rng.Float64() * w.cfg.WorldHeight
}

// Counts 各类实体数量
type Counts struct {
	Players     int `json:"players"`
	Enemies     int `json:"enemies"`
	Projectiles int `json:"projectiles"`
	Items       int `json:"items"`
}

func (w *World) Counts() Counts {
	return Counts{
		Players:     len(w.players),
		Enemies:     len(w.enemies),
		Projectiles: len(w.projectiles),
		Items:       len(w.items),
	}
}

// AddPlayer 分配 id 并放入默认玩家；已满返回 ErrCapacityExceeded
func (w *World) AddPlayer() (*Player, error) {
	if len(w.players) >= w.cfg.MaxPlayers {
		return nil, ErrCapacityExceeded
	}
	p := newPlayer(PlayerID(w.newID()))
	p.seq = w.nextSeq()
	w.players[p.ID] = p
	return p, nil
}

// RemovePlayer 移除玩家；其子弹不受影响
func (w *World) RemovePlayer(id PlayerID) bool {
	if _, ok := w.players[id]; !ok {
		return false
	}
	delete(w.players, id)
	return true
}

func (w *World) Player(id PlayerID) (*Player, bool) {
	p, ok := w.players[id]
	return p, ok
}

func (w *World) Enemy(id string) (*Enemy, bool) {
	e, ok := w.enemies[id]
	return e, ok
}

func (w *World) Item(id string) (*Item, bool) {
	it, ok := w.items[id]
	return it, ok
}

func (w *World) Projectile(id string) (*Projectile, bool) {
	p, ok := w.projectiles[id]
	return p, ok
}

// AddProjectile 在 (x,y) 生成子弹；达到上限返回 false
func (w *World) AddProjectile(owner PlayerID, x, y, angle float64) (*Projectile, bool) {
	if len(w.projectiles) >= w.cfg.MaxProjectiles {
		return nil, false
	}
	p := &Projectile{ID: w.newID(), X: x, Y: y, Angle: angle, Owner: owner, seq: w.nextSeq()}
	w.projectiles[p.ID] = p
	return p, true
}

// SpawnEnemy 未达上限时在随机位置刷出一只狼
func (w *World) SpawnEnemy() (*Enemy, bool) {
	if len(w.enemies) >= w.cfg.MaxEnemies {
		return nil, false
	}
	x, y := w.randomPosition()
	e := &Enemy{ID: w.newID(), X: x, Y: y, Type: EnemyWolf, Health: w.cfg.EnemyHealth, seq: w.nextSeq()}
	w.enemies[e.ID] = e
	return e, true
}

// SpawnItem 未达上限时在随机位置刷出随机类型物品
func (w *World) SpawnItem() (*Item, bool) {
	if len(w.items) >= w.cfg.MaxItems {
		return nil, false
	}
	x, y := w.randomPosition()
	it := &Item{
		ID:   w.newID(),
		X:    x,
		Y:    y,
		Type: ItemTypes[w.rng.Intn(len(ItemTypes))],
		seq:  w.nextSeq(),
	}
	w.items[it.ID] = it
	return it, true
}

// Pickup 拾取物品：物品存在、距离小于拾取半径、背包有空位三者都满足才成功
func (w *World) Pickup(pid PlayerID, itemID string) (*Item, Reason) {
	p, ok := w.players[pid]
	if !ok {
		return nil, ReasonInvalidReference
	}
	it, ok := w.items[itemID]
	if !ok {
		return nil, ReasonInvalidReference
	}
	if !(p.DistanceTo(it.X, it.Y) < w.cfg.PickupRadius) {
		return nil, ReasonOutOfRange
	}
	slot := p.Inventory.FirstEmpty()
	if slot < 0 {
		return nil, ReasonNoInventorySpace
	}
	p.Inventory[slot] = it.Type
	delete(w.items, itemID)
	return it, ReasonNone
}

// KillEnemy 客户端上报击杀：移除敌人并给上报者加任务进度
func (w *World) KillEnemy(pid PlayerID, enemyID string) Reason {
	p, ok := w.players[pid]
	if !ok {
		return ReasonInvalidReference
	}
	if _, ok := w.enemies[enemyID]; !ok {
		return ReasonInvalidReference
	}
	delete(w.enemies, enemyID)
	p.QuestProgress++
	return ReasonNone
}

// Hit 一次子弹命中的结算结果
type Hit struct {
	ProjectileID string
	EnemyID      string
	Killed       bool
	Credited     PlayerID // 击杀且子弹主人仍在线时为其 id
}

// Advance 推进全部子弹并结算碰撞：每颗子弹每 Tick 至多命中一个敌人（最近者，距离相同取 id 最小）
// 返回命中列表与因超时移除的子弹 id
func (w *World) Advance() (hits []Hit, expired []string) {
	for _, proj := range w.orderedProjectiles() {
		proj.advance(w.cfg.ProjectileSpeed)

		target := w.nearestEnemy(proj.X, proj.Y, w.cfg.CollisionRadius)
		if target == nil {
			if ttl := w.cfg.ProjectileTTLTicks; ttl > 0 && proj.steps >= ttl {
				delete(w.projectiles, proj.ID)
				expired = append(expired, proj.ID)
			}
			continue
		}

		hit := Hit{ProjectileID: proj.ID, EnemyID: target.ID}
		target.Health -= w.cfg.HitDamage
		if target.Health <= 0 {
			hit.Killed = true
			delete(w.enemies, target.ID)
			if owner, ok := w.players[proj.Owner]; ok {
				owner.QuestProgress++
				hit.Credited = owner.ID
			}
		}
		delete(w.projectiles, proj.ID)
		hits = append(hits, hit)
	}
	return hits, expired
}

func (w *World) nearestEnemy(x, y, radius float64) *Enemy {
	var best *Enemy
	bestDist := math.Inf(1)
	for _, e := range w.enemies {
		d := math.Hypot(e.X-x, e.Y-y)
		if !(d < radius) {
			continue
		}
		if d < bestDist || (d == bestDist && e.ID < best.ID) {
			best, bestDist = e, d
		}
	}
	return best
}

func (w *World) orderedProjectiles() []*Projectile {
	out := make([]*Projectile, 0, len(w.projectiles))
	for _, p := range w.projectiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Snapshot init 消息所需的完整世界快照；玩家按 id 索引，敌人与物品按刷出顺序
type Snapshot struct {
	Players map[PlayerID]Player
	Enemies []Enemy
	Items   []Item
	NPC     NPC
}

func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Players: make(map[PlayerID]Player, len(w.players)),
		Enemies: make([]Enemy, 0, len(w.enemies)),
		Items:   make([]Item, 0, len(w.items)),
		NPC:     w.npc,
	}
	for id, p := range w.players {
		s.Players[id] = p.snapshot()
	}
	for _, e := range w.enemies {
		s.Enemies = append(s.Enemies, *e)
	}
	for _, it := range w.items {
		s.Items = append(s.Items, *it)
	}
	sort.Slice(s.Enemies, func(i, j int) bool { return s.Enemies[i].seq < s.Enemies[j].seq })
	sort.Slice(s.Items, func(i, j int) bool { return s.Items[i].seq < s.Items[j].seq })
	return s
}
