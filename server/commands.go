package server

import "math"

// handle 命令处理：对世界做一次原子修改并广播结果
func (g *Game) handle(id PlayerID, msg ClientMessage) Result {
	res := g.apply(id, msg)
	if res.Accepted() {
		g.metrics.IncCommandsAccepted()
		return res
	}
	g.metrics.IncRejected(res.Reason)
	g.log.Debugw("command rejected", "player", id, "command", res.Command, "reason", res.Reason)
	if g.world.Config().ReportRejections {
		g.sendTo(id, newRejected(res))
	}
	return res
}

func (g *Game) apply(id PlayerID, msg ClientMessage) Result {
	p, ok := g.world.Player(id)
	if !ok {
		return rejected(msg.Type, ReasonInvalidReference)
	}

	switch msg.Type {
	case MsgSelectClass:
		// 不做职业白名单校验，任意值均接受
		var class *string
		if msg.ClassType != nil {
			c := *msg.ClassType
			class = &c
		}
		p.ClassType = class
		g.broadcast(newPlayerUpdate(p.snapshot()), "")

	case MsgMove:
		// 信任客户端上报的位置，但坐标必须是有限值
		if !finite(msg.X, msg.Y) {
			return rejected(msg.Type, ReasonOutOfRange)
		}
		p.X, p.Y = msg.X, msg.Y
		g.broadcast(newPlayerUpdate(p.snapshot()), "")

	case MsgShoot:
		if !finite(msg.X, msg.Y, msg.Angle) {
			return rejected(msg.Type, ReasonOutOfRange)
		}
		proj, ok := g.world.AddProjectile(id, msg.X, msg.Y, msg.Angle)
		if !ok {
			return rejected(msg.Type, ReasonCapacityExceeded)
		}
		g.broadcast(newProjectileEvent(*proj), "")

	case MsgPickup:
		it, reason := g.world.Pickup(id, msg.ItemID)
		if reason != ReasonNone {
			return rejected(msg.Type, reason)
		}
		g.broadcast(newItemPicked(it.ID, id), "")

	case MsgChat:
		g.broadcast(newChat(id, msg.Message), "")

	case MsgEnemyKilled:
		// 客户端自报击杀，服务端不核验伤害来源
		if reason := g.world.KillEnemy(id, msg.EnemyID); reason != ReasonNone {
			return rejected(msg.Type, reason)
		}
		g.metrics.IncEnemiesKilled()
		g.broadcast(newEnemyKilled(msg.EnemyID, id), "")

	default:
		return rejected(msg.Type, ReasonUnknownCommand)
	}
	return accepted(msg.Type)
}

// finite 所有值都不是 NaN 或 ±Inf
func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
