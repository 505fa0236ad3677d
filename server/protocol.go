package server

// 客户端 → 服务端消息类型
const (
	MsgSelectClass = "selectClass"
	MsgMove        = "move"
	MsgShoot       = "shoot"
	MsgPickup      = "pickup"
	MsgChat        = "chat"
	MsgEnemyKilled = "enemyKilled"
)

// 服务端 → 客户端消息类型
const (
	EvtInit              = "init"
	EvtPlayerJoined      = "playerJoined"
	EvtPlayerUpdate      = "playerUpdate"
	EvtProjectile        = "projectile"
	EvtProjectileHit     = "projectileHit"
	EvtProjectileExpired = "projectileExpired"
	EvtItemPicked        = "itemPicked"
	EvtChat              = "chat"
	EvtEnemyKilled       = "enemyKilled"
	EvtEnemySpawn        = "enemySpawn"
	EvtItemSpawn         = "itemSpawn"
	EvtPlayerLeft        = "playerLeft"
	EvtRejected          = "rejected"
)

// ClientMessage 入站消息：扁平 JSON，按 type 取用对应字段
// 示例：{"type":"move","x":150,"y":120}
type ClientMessage struct {
	Type      string  `json:"type"`
	ClassType *string `json:"classType,omitempty"`
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
	Angle     float64 `json:"angle,omitempty"`
	ItemID    string  `json:"itemId,omitempty"`
	EnemyID   string  `json:"enemyId,omitempty"`
	Message   string  `json:"message,omitempty"`
}

// Event 出站事件，每个具体类型都带 type 字段
type Event interface {
	EventType() string
}

type InitEvent struct {
	Type     string              `json:"type"`
	PlayerID PlayerID            `json:"playerId"`
	Players  map[PlayerID]Player `json:"players"`
	Enemies  []Enemy             `json:"enemies"`
	Items    []Item              `json:"items"`
	NPC      NPC                 `json:"npc"`
}

type PlayerJoinedEvent struct {
	Type   string `json:"type"`
	Player Player `json:"player"`
}

type PlayerUpdateEvent struct {
	Type   string `json:"type"`
	Player Player `json:"player"`
}

type ProjectileEvent struct {
	Type       string     `json:"type"`
	Projectile Projectile `json:"projectile"`
}

type ProjectileHitEvent struct {
	Type         string `json:"type"`
	ProjectileID string `json:"projectileId"`
}

type ProjectileExpiredEvent struct {
	Type         string `json:"type"`
	ProjectileID string `json:"projectileId"`
}

type ItemPickedEvent struct {
	Type     string   `json:"type"`
	ItemID   string   `json:"itemId"`
	PlayerID PlayerID `json:"playerId"`
}

type ChatEvent struct {
	Type     string   `json:"type"`
	PlayerID PlayerID `json:"playerId"`
	Message  string   `json:"message"`
}

type EnemyKilledEvent struct {
	Type     string   `json:"type"`
	EnemyID  string   `json:"enemyId"`
	PlayerID PlayerID `json:"playerId"`
}

type EnemySpawnEvent struct {
	Type  string `json:"type"`
	Enemy Enemy  `json:"enemy"`
}

type ItemSpawnEvent struct {
	Type string `json:"type"`
	Item Item   `json:"item"`
}

type PlayerLeftEvent struct {
	Type     string   `json:"type"`
	PlayerID PlayerID `json:"playerId"`
}

// RejectedEvent 仅在 ReportRejections 打开时发给命令发送者
type RejectedEvent struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Reason  Reason `json:"reason"`
}

func (InitEvent) EventType() string              { return EvtInit }
func (PlayerJoinedEvent) EventType() string      { return EvtPlayerJoined }
func (PlayerUpdateEvent) EventType() string      { return EvtPlayerUpdate }
func (ProjectileEvent) EventType() string        { return EvtProjectile }
func (ProjectileHitEvent) EventType() string     { return EvtProjectileHit }
func (ProjectileExpiredEvent) EventType() string { return EvtProjectileExpired }
func (ItemPickedEvent) EventType() string        { return EvtItemPicked }
func (ChatEvent) EventType() string              { return EvtChat }
func (EnemyKilledEvent) EventType() string       { return EvtEnemyKilled }
func (EnemySpawnEvent) EventType() string        { return EvtEnemySpawn }
func (ItemSpawnEvent) EventType() string         { return EvtItemSpawn }
func (PlayerLeftEvent) EventType() string        { return EvtPlayerLeft }
func (RejectedEvent) EventType() string          { return EvtRejected }

func newInitEvent(id PlayerID, s Snapshot) InitEvent {
	return InitEvent{Type: EvtInit, PlayerID: id, Players: s.Players, Enemies: s.Enemies, Items: s.Items, NPC: s.NPC}
}

func newPlayerJoined(p Player) PlayerJoinedEvent {
	return PlayerJoinedEvent{Type: EvtPlayerJoined, Player: p}
}

func newPlayerUpdate(p Player) PlayerUpdateEvent {
	return PlayerUpdateEvent{Type: EvtPlayerUpdate, Player: p}
}

func newProjectileEvent(p Projectile) ProjectileEvent {
	return ProjectileEvent{Type: EvtProjectile, Projectile: p}
}

func newProjectileHit(id string) ProjectileHitEvent {
	return ProjectileHitEvent{Type: EvtProjectileHit, ProjectileID: id}
}

func newProjectileExpired(id string) ProjectileExpiredEvent {
	return ProjectileExpiredEvent{Type: EvtProjectileExpired, ProjectileID: id}
}

func newItemPicked(itemID string, pid PlayerID) ItemPickedEvent {
	return ItemPickedEvent{Type: EvtItemPicked, ItemID: itemID, PlayerID: pid}
}

func newChat(pid PlayerID, msg string) ChatEvent {
	return ChatEvent{Type: EvtChat, PlayerID: pid, Message: msg}
}

func newEnemyKilled(enemyID string, pid PlayerID) EnemyKilledEvent {
	return EnemyKilledEvent{Type: EvtEnemyKilled, EnemyID: enemyID, PlayerID: pid}
}

func newEnemySpawn(e Enemy) EnemySpawnEvent {
	return EnemySpawnEvent{Type: EvtEnemySpawn, Enemy: e}
}

func newItemSpawn(it Item) ItemSpawnEvent {
	return ItemSpawnEvent{Type: EvtItemSpawn, Item: it}
}

func newPlayerLeft(pid PlayerID) PlayerLeftEvent {
	return PlayerLeftEvent{Type: EvtPlayerLeft, PlayerID: pid}
}

func newRejected(r Result) RejectedEvent {
	return RejectedEvent{Type: EvtRejected, Command: r.Command, Reason: r.Reason}
}

// ServerEvents 全部出站事件类型的零值，供协议 schema 生成使用
func ServerEvents() []Event {
	return []Event{
		InitEvent{}, PlayerJoinedEvent{}, PlayerUpdateEvent{}, ProjectileEvent{},
		ProjectileHitEvent{}, ProjectileExpiredEvent{}, ItemPickedEvent{}, ChatEvent{},
		EnemyKilledEvent{}, EnemySpawnEvent{}, ItemSpawnEvent{}, PlayerLeftEvent{}, RejectedEvent{},
	}
}
