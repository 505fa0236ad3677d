package server

import (
	"encoding/json"
	"math"
)

// PlayerID 表示玩家唯一标识（连接时分配）
type PlayerID string

// InventorySlots 每个玩家背包固定格数
const InventorySlots = 10

// Inventory 固定 10 格背包，空格为 ""，序列化为 null
type Inventory [InventorySlots]ItemType

// MarshalJSON 空格输出 null，与客户端约定一致
func (inv Inventory) MarshalJSON() ([]byte, error) {
	out := make([]*ItemType, InventorySlots)
	for i := range inv {
		if inv[i] != "" {
			t := inv[i]
			out[i] = &t
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON 接受 null 或物品类型字符串
func (inv *Inventory) UnmarshalJSON(b []byte) error {
	var in []*ItemType
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*inv = Inventory{}
	for i := 0; i < len(in) && i < InventorySlots; i++ {
		if in[i] != nil {
			inv[i] = *in[i]
		}
	}
	return nil
}

// FirstEmpty 返回第一个空格下标，没有空格返回 -1
func (inv *Inventory) FirstEmpty() int {
	for i, slot := range inv {
		if slot == "" {
			return i
		}
	}
	return -1
}

// Player 世界中的玩家实体（服务端权威状态）
type Player struct {
	ID            PlayerID  `json:"id"`
	X             float64   `json:"x"`
	Y             float64   `json:"y"`
	ClassType     *string   `json:"classType"`
	Inventory     Inventory `json:"inventory"`
	QuestProgress int       `json:"questProgress"`

	seq uint64
}

const (
	playerSpawnX = 100
	playerSpawnY = 100
)

func newPlayer(id PlayerID) *Player {
	return &Player{ID: id, X: playerSpawnX, Y: playerSpawnY}
}

// snapshot 返回可安全跨 goroutine 发送的副本
func (p *Player) snapshot() Player {
	cp := *p
	if p.ClassType != nil {
		c := *p.ClassType
		cp.ClassType = &c
	}
	return cp
}

// DistanceTo 玩家到某点的欧氏距离
func (p *Player) DistanceTo(x, y float64) float64 {
	return math.Hypot(p.X-x, p.Y-y)
}
