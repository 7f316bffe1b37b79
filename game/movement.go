package game

import (
	"math"
	"time"
)

// direction turns held keys into a unit vector; ok is false when nothing
// (or only opposing keys) is held.
func direction(in Input, reverse bool) (dx, dy float64, ok bool) {
	dx = b2f(in.Right) - b2f(in.Left)
	dy = b2f(in.Down) - b2f(in.Up)
	if reverse {
		dx, dy = -dx, -dy
	}
	l := math.Hypot(dx, dy)
	if l == 0 {
		return 0, 0, false
	}
	return dx / l, dy / l, true
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (w *World) speedFor(p *Player) float64 {
	speed := BaseSpeed
	if p.IsSaboteur {
		speed *= SaboteurSpeedMult
	}
	if w.chaosActive(ChaosSpeedBoost) {
		speed *= SpeedBoostMult
	}
	return speed
}

func (w *World) applyMovement(dt float64, now time.Time) {
	reverse := w.chaosActive(ChaosReverseControls)
	slippery := w.chaosActive(ChaosSlippery)

	for _, p := range w.AlivePlayers() {
		dx, dy, held := direction(p.Input, reverse)
		speed := w.speedFor(p)

		if slippery && !held {
			p.VX *= SlipperyDecay
			p.VY *= SlipperyDecay
		} else {
			p.VX = dx * speed
			p.VY = dy * speed
		}

		// stacks with the speed boost chaos multiplier
		if now.Before(p.DashBoostUntil) {
			p.VX *= DashBoostMult
			p.VY *= DashBoostMult
		}

		p.X += p.VX * dt
		p.Y += p.VY * dt
		w.resolveMapCollision(p)
	}
}

// resolveMapCollision clamps to the map, then pushes out of walls in two passes
// so a push out of one wall into another gets corrected.
func (w *World) resolveMapCollision(p *Player) {
	p.X, p.Y = w.Map.ClampToBounds(p.X, p.Y, PlayerRadius)
	for i := 0; i < 2; i++ {
		for _, wall := range w.Map.Walls {
			resolveCircleRect(p, wall, PlayerRadius)
		}
		p.X, p.Y = w.Map.ClampToBounds(p.X, p.Y, PlayerRadius)
	}
}

func resolveCircleRect(p *Player, r Rect, radius float64) {
	cx := clamp(p.X, r.X, r.X+r.W)
	cy := clamp(p.Y, r.Y, r.Y+r.H)
	dx := p.X - cx
	dy := p.Y - cy
	dist := math.Hypot(dx, dy)

	if dist > 0 && dist < radius {
		overlap := radius - dist
		p.X += dx / dist * overlap
		p.Y += dy / dist * overlap
		return
	}
	if !r.Contains(p.X, p.Y) {
		return
	}

	// center is inside: eject through the nearest edge, ties in left, right, top, bottom order
	left := math.Abs(p.X - r.X)
	right := math.Abs(r.X + r.W - p.X)
	top := math.Abs(p.Y - r.Y)
	bottom := math.Abs(r.Y + r.H - p.Y)
	minPen := math.Min(math.Min(left, right), math.Min(top, bottom))

	switch minPen {
	case left:
		p.X = r.X - radius
	case right:
		p.X = r.X + r.W + radius
	case top:
		p.Y = r.Y - radius
	default:
		p.Y = r.Y + r.H + radius
	}
}

// applyPlayerCollisions separates overlapping alive pairs symmetrically.
func (w *World) applyPlayerCollisions() {
	alive := w.AlivePlayers()
	minD := PlayerRadius * 2
	for i := 0; i < len(alive); i++ {
		for j := i + 1; j < len(alive); j++ {
			a, b := alive[i], alive[j]
			dx := b.X - a.X
			dy := b.Y - a.Y
			d := math.Hypot(dx, dy)
			if d <= 0 || d >= minD {
				continue
			}
			push := (minD - d) / 2
			nx, ny := dx/d, dy/d
			a.X, a.Y = w.Map.ClampToBounds(a.X-nx*push, a.Y-ny*push, PlayerRadius)
			b.X, b.Y = w.Map.ClampToBounds(b.X+nx*push, b.Y+ny*push, PlayerRadius)
			w.resolveMapCollision(a)
			w.resolveMapCollision(b)
		}
	}
}
