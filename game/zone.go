package game

import (
	"math"
	"time"
)

// shrinkBy and shrinkLinear never grow the zone.
func (z *Zone) shrinkBy(factor float64, now time.Time) {
	z.Radius = math.Max(z.MinRadius, math.Min(z.Radius, z.Radius*factor))
	z.LastShrinkAt = now
}

func (z *Zone) shrinkLinear(amount float64, now time.Time) {
	z.Radius = math.Max(z.MinRadius, math.Min(z.Radius, z.Radius-amount))
	z.LastShrinkAt = now
}

func (z *Zone) distance(x, y float64) float64 {
	return math.Hypot(x-z.CenterX, y-z.CenterY)
}

// applySafeZone damages players outside the zone and pulls back anyone far
// outside right after a shrink.
func (w *World) applySafeZone(dt float64, now time.Time) {
	z := &w.State.Zone
	for _, p := range w.AlivePlayers() {
		d := z.distance(p.X, p.Y)
		if d > z.Radius {
			p.Health -= ZoneDamagePerSec * dt
		}

		if d > z.Radius+ZoneSnapDistance && now.Sub(z.LastShrinkAt) < ZoneSnapWindow {
			nx := (p.X - z.CenterX) / d
			ny := (p.Y - z.CenterY) / d
			p.X = z.CenterX + nx*(z.Radius-ZoneSnapInset)
			p.Y = z.CenterY + ny*(z.Radius-ZoneSnapInset)
			w.resolveMapCollision(p)
		}

		if p.Health <= 0 {
			w.Eliminate(p, ReasonSafeZone, "", now)
		}
	}
}
