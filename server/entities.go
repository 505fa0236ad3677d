package server

import "math"

// ItemType 可拾取物品类型
type ItemType string

const (
	ItemGold   ItemType = "gold"
	ItemPotion ItemType = "potion"
)

// ItemTypes 刷新时均匀抽取的物品类型集合
var ItemTypes = []ItemType{ItemGold, ItemPotion}

// EnemyWolf 目前唯一的敌人类型
const EnemyWolf = "wolf"

// Enemy 敌对单位，由 Tick 刷出
type Enemy struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Type   string  `json:"type"`
	Health int     `json:"health"`

	seq uint64
}

// Projectile 子弹；Owner 是弱引用，玩家离线后可能悬空
type Projectile struct {
	ID    string   `json:"id"`
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	Angle float64  `json:"angle"`
	Owner PlayerID `json:"owner"`

	seq   uint64
	steps int // 已推进的 Tick 数
}

// advance 沿角度前进 speed
func (p *Projectile) advance(speed float64) {
	p.X += math.Cos(p.Angle) * speed
	p.Y += math.Sin(p.Angle) * speed
	p.steps++
}

// Item 地面上的可拾取物品
type Item struct {
	ID   string   `json:"id"`
	X    float64  `json:"x"`
	Y    float64  `json:"y"`
	Type ItemType `json:"type"`

	seq uint64
}

// NPC 启动后不再变化的任务 NPC
type NPC struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Dialog string  `json:"dialog"`
}

// DefaultNPC 默认任务 NPC
var DefaultNPC = NPC{ID: "npc1", X: 500, Y: 500, Dialog: "Kill 3 wolves!"}
