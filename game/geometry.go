package game

import (
	"math"
	"math/rand/v2"
)

type Vec struct {
	X, Y float64
}

// Rect is an axis-aligned wall; X,Y is the top-left corner.
type Rect struct {
	X, Y, W, H float64
	Label      string
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// DistanceTo is the distance from (x,y) to the closest point of r; zero inside.
func (r Rect) DistanceTo(x, y float64) float64 {
	cx := clamp(x, r.X, r.X+r.W)
	cy := clamp(y, r.Y, r.Y+r.H)
	return math.Hypot(x-cx, y-cy)
}

// Map is static level geometry. It is never mutated after construction.
type Map struct {
	Width, Height   float64
	ZoneCenter      Vec
	ZoneStartRadius float64
	Walls           []Rect
	Spawns          []Vec
}

var ShipMap = &Map{
	Width:           2200,
	Height:          1500,
	ZoneCenter:      Vec{X: 1100, Y: 750},
	ZoneStartRadius: 760,
	Walls: []Rect{
		{X: 280, Y: 210, W: 430, H: 220, Label: "Bridge"},
		{X: 835, Y: 245, W: 540, H: 190, Label: "Cafeteria"},
		{X: 1540, Y: 200, W: 360, H: 250, Label: "Navigation"},
		{X: 260, Y: 835, W: 360, H: 250, Label: "MedBay"},
		{X: 820, Y: 840, W: 560, H: 280, Label: "Storage"},
		{X: 1560, Y: 860, W: 350, H: 255, Label: "Reactor"},
		{X: 1090, Y: 530, W: 85, H: 450, Label: "Core Pillar"},
		{X: 705, Y: 545, W: 80, H: 340, Label: "Pipe A"},
		{X: 1415, Y: 560, W: 80, H: 340, Label: "Pipe B"},
	},
	Spawns: []Vec{
		{X: 200, Y: 150},
		{X: 760, Y: 140},
		{X: 1430, Y: 145},
		{X: 1990, Y: 175},
		{X: 215, Y: 575},
		{X: 670, Y: 710},
		{X: 980, Y: 680},
		{X: 1265, Y: 700},
		{X: 1490, Y: 690},
		{X: 1960, Y: 625},
		{X: 220, Y: 1250},
		{X: 760, Y: 1260},
		{X: 1140, Y: 1270},
		{X: 1500, Y: 1270},
		{X: 2020, Y: 1240},
	},
}

func (m *Map) RandomSpawn(rng *rand.Rand) Vec {
	return m.Spawns[rng.IntN(len(m.Spawns))]
}

// ClampToBounds keeps a circle of the given radius fully on the map.
func (m *Map) ClampToBounds(x, y, radius float64) (float64, float64) {
	return clamp(x, radius, m.Width-radius), clamp(y, radius, m.Height-radius)
}

func (m *Map) InBounds(x, y, radius float64) bool {
	return x >= radius && x <= m.Width-radius && y >= radius && y <= m.Height-radius
}

// ClearOfWalls reports whether a circle at (x,y) keeps at least radius from every wall.
func (m *Map) ClearOfWalls(x, y, radius float64) bool {
	for _, w := range m.Walls {
		if w.Contains(x, y) || w.DistanceTo(x, y) < radius-1e-9 {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
