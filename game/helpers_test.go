package game

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const dt = 1.0 / TickRate

func newTestWorld(t *testing.T, n int) *World {
	t.Helper()
	return newTestWorldOn(t, ShipMap, n)
}

func newTestWorldOn(t *testing.T, m *Map, n int) *World {
	t.Helper()
	w := NewWorld("TEST01", m, rand.New(rand.NewPCG(7, 11)), t0)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("p%02d", i)
		if _, err := w.AddPlayer(id, "name-"+id, t0.Add(time.Duration(i)*time.Millisecond)); err != nil {
			t.Fatalf("add player %s: %v", id, err)
		}
	}
	w.Drain()
	return w
}

func startedWorld(t *testing.T, n int) *World {
	t.Helper()
	w := newTestWorld(t, n)
	if err := w.StartGame(w.HostID, t0); err != nil {
		t.Fatalf("start game: %v", err)
	}
	w.Drain()
	return w
}

func makeSaboteur(w *World, id string) {
	w.clearSaboteur()
	w.State.Saboteur.CurrentID = id
	w.Players[id].IsSaboteur = true
}

func eventsOf(events []Event, kind string) []Event {
	var out []Event
	for _, e := range events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// openField parks every player far from walls and each other.
func openField(w *World) {
	x := 800.0
	for _, p := range w.sortedPlayers() {
		p.X, p.Y = x, 1300
		x += 60
	}
}
