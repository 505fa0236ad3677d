package server

import "time"

// step 一次 Tick：刷怪 → 刷物品 → 推进子弹并结算碰撞
func (g *Game) step() {
	start := time.Now()

	if e, ok := g.world.SpawnEnemy(); ok {
		g.metrics.IncEnemiesSpawned()
		g.broadcast(newEnemySpawn(*e), "")
	}
	if it, ok := g.world.SpawnItem(); ok {
		g.metrics.IncItemsSpawned()
		g.broadcast(newItemSpawn(*it), "")
	}

	hits, expired := g.world.Advance()
	for _, h := range hits {
		if h.Killed {
			g.metrics.IncEnemiesKilled()
			// 子弹主人已离线时不记功也不广播
			if h.Credited != "" {
				g.broadcast(newEnemyKilled(h.EnemyID, h.Credited), "")
			}
		}
		g.metrics.IncProjectilesHit()
		g.broadcast(newProjectileHit(h.ProjectileID), "")
	}
	for _, id := range expired {
		g.metrics.IncProjectilesExpired()
		g.broadcast(newProjectileExpired(id), "")
	}

	g.flushDropped()
	g.metrics.AddTick(time.Since(start).Nanoseconds())
}
