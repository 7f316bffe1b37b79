package game

import (
	"fmt"
	"math"
	"testing"
	"time"

	"chaosroom/protocol"
)

func TestDashUpWithNoInputOrVelocity(t *testing.T) {
	w := newTestWorld(t, 1)
	p := w.Players["p00"]
	p.X, p.Y = 1100, 1400
	until, err := w.Dash("p00", t0)
	if err != nil {
		t.Fatalf("dash: %v", err)
	}
	if p.X != 1100 || p.Y != 1400-DashDistance {
		t.Fatalf("dashed to (%f,%f), want (1100,%f)", p.X, p.Y, 1400-DashDistance)
	}
	if !until.Equal(t0.Add(DashCooldown)) || !p.DashBoostUntil.Equal(t0.Add(DashBoostWindow)) {
		t.Fatalf("cooldown=%v boost=%v", until, p.DashBoostUntil)
	}
}

func TestDashIsClippedByWall(t *testing.T) {
	w := newTestWorld(t, 1)
	storage := ShipMap.Walls[4]
	p := w.Players["p00"]
	p.X, p.Y = 1130, 1250
	if _, err := w.Dash("p00", t0); err != nil {
		t.Fatalf("dash: %v", err)
	}
	if want := storage.Y + storage.H + PlayerRadius; math.Abs(p.Y-want) > 1e-9 {
		t.Fatalf("y = %f, want %f (stopped below Storage)", p.Y, want)
	}
}

func TestDashFollowsInputThenVelocity(t *testing.T) {
	w := newTestWorld(t, 1)
	p := w.Players["p00"]
	p.X, p.Y = 900, 1300
	p.Input = Input{Right: true}
	if _, err := w.Dash("p00", t0); err != nil {
		t.Fatalf("dash: %v", err)
	}
	if p.X != 1020 || p.Y != 1300 {
		t.Fatalf("input dash to (%f,%f), want (1020,1300)", p.X, p.Y)
	}

	p.Input = Input{}
	p.VX, p.VY = 0, 40
	p.X, p.Y = 900, 1200
	if _, err := w.Dash("p00", t0.Add(DashCooldown)); err != nil {
		t.Fatalf("second dash: %v", err)
	}
	if p.X != 900 || p.Y != 1320 {
		t.Fatalf("velocity dash to (%f,%f), want (900,1320)", p.X, p.Y)
	}
}

func TestDashRejections(t *testing.T) {
	w := newTestWorld(t, 2)
	if _, err := w.Dash("p00", t0); err != nil {
		t.Fatalf("first dash: %v", err)
	}
	if _, err := w.Dash("p00", t0.Add(time.Second)); err != ErrDashCooldown {
		t.Fatalf("err = %v, want %v", err, ErrDashCooldown)
	}
	w.Eliminate(w.Players["p01"], ReasonSafeZone, "", t0)
	if _, err := w.Dash("p01", t0); err != ErrCannotDash {
		t.Fatalf("dead dash err = %v, want %v", err, ErrCannotDash)
	}
	if _, err := w.Dash("ghost", t0); err != ErrPlayerNotFound {
		t.Fatalf("missing dash err = %v, want %v", err, ErrPlayerNotFound)
	}
}

func TestKillValidationAndSuccess(t *testing.T) {
	w := startedWorld(t, 4)
	openField(w)
	makeSaboteur(w, "p00")
	killer := w.Players["p00"]
	near := w.Players["p01"] // 60 units away
	far := w.Players["p03"]  // 180 units away

	if _, err := w.AttemptKill("p01", "p00", t0); err != ErrNotSaboteur {
		t.Fatalf("non-saboteur kill err = %v", err)
	}
	if _, err := w.AttemptKill("p00", "p00", t0); err != ErrSelfKill {
		t.Fatalf("self kill err = %v", err)
	}
	if _, err := w.AttemptKill("p00", far.ID, t0); err != ErrOutOfRange {
		t.Fatalf("far kill err = %v", err)
	}
	if _, err := w.AttemptKill("p00", "ghost", t0); err != ErrInvalidTarget {
		t.Fatalf("unknown target err = %v", err)
	}

	until, err := w.AttemptKill("p00", near.ID, t0)
	if err != nil {
		t.Fatalf("kill: %v", err)
	}
	if near.Alive || killer.Kills != 1 || !until.Equal(t0.Add(KillCooldown)) {
		t.Fatalf("after kill: target alive=%v kills=%d cooldown=%v", near.Alive, killer.Kills, until)
	}
	elims := eventsOf(w.Drain(), protocol.MsgPlayerEliminated)
	if len(elims) != 1 {
		t.Fatalf("eliminated events = %d, want 1", len(elims))
	}
	ev := elims[0].Payload.(protocol.PlayerEliminated)
	if ev.Reason != ReasonSaboteurKill || ev.KillerID != "p00" || ev.PlayerID != near.ID {
		t.Fatalf("event = %+v", ev)
	}

	w.Players["p02"].X = killer.X + 30
	w.Players["p02"].Y = killer.Y
	if _, err := w.AttemptKill("p00", "p02", t0.Add(time.Second)); err != ErrKillCooldown {
		t.Fatalf("cooldown kill err = %v", err)
	}
	if _, err := w.AttemptKill("p00", near.ID, t0.Add(KillCooldown)); err != ErrInvalidTarget {
		t.Fatalf("dead target err = %v", err)
	}
}

func TestAddPlayerValidation(t *testing.T) {
	w := newTestWorld(t, 1)
	if _, err := w.AddPlayer("x1", "   ", t0); err != ErrNameRequired {
		t.Fatalf("blank name err = %v", err)
	}
	if _, err := w.AddPlayer("x2", "NAME-P00", t0); err != ErrNameTaken {
		t.Fatalf("duplicate name err = %v", err)
	}
	for i := len(w.Players); i < MaxPlayers; i++ {
		if _, err := w.AddPlayer(fmt.Sprintf("f%d", i), fmt.Sprintf("filler %d", i), t0); err != nil {
			t.Fatalf("filler %d: %v", i, err)
		}
	}
	if _, err := w.AddPlayer("late", "late", t0); err != ErrRoomFull {
		t.Fatalf("full room err = %v", err)
	}
}

func TestSanitizeName(t *testing.T) {
	if got := SanitizeName("  Big \t  Bad\nWolf "); got != "Big Bad Wolf" {
		t.Fatalf("SanitizeName = %q", got)
	}
	if got := SanitizeName("abcdefghijklmnopqrstuvwxyz"); got != "abcdefghijklmnopqrst" {
		t.Fatalf("SanitizeName long = %q", got)
	}
}

func TestLateJoinerSpectates(t *testing.T) {
	w := startedWorld(t, 2)
	p, err := w.AddPlayer("late", "late", t0.Add(time.Second))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if p.Alive || !p.Spectator || p.Health != 0 {
		t.Fatalf("late joiner alive=%v spectator=%v health=%f", p.Alive, p.Spectator, p.Health)
	}
}

func TestRemovePlayerPromotesHostAndForcesRotation(t *testing.T) {
	w := startedWorld(t, 3)
	makeSaboteur(w, "p00")
	now := t0.Add(5 * time.Second)
	removed, empty := w.RemovePlayer("p00", now)
	if removed == nil || empty {
		t.Fatalf("removed=%v empty=%v", removed, empty)
	}
	if w.HostID != "p01" {
		t.Fatalf("host = %q, want p01", w.HostID)
	}
	if w.State.Saboteur.CurrentID != "" || !w.State.Saboteur.NextRotateAt.Equal(now) {
		t.Fatalf("saboteur state = %+v", w.State.Saboteur)
	}

	Step(w, now, dt)
	if w.State.Saboteur.CurrentID == "" || w.State.Saboteur.CurrentID == "p00" {
		t.Fatalf("expected a new saboteur, got %q", w.State.Saboteur.CurrentID)
	}

	w.RemovePlayer("p01", now)
	if _, empty := w.RemovePlayer("p02", now); !empty {
		t.Fatalf("expected world to be empty")
	}
}

func TestUpdateInputIgnoresDeadAndMissing(t *testing.T) {
	w := newTestWorld(t, 1)
	w.UpdateInput("ghost", Input{Up: true})
	p := w.Players["p00"]
	w.Eliminate(p, ReasonSafeZone, "", t0)
	w.UpdateInput("p00", Input{Up: true})
	if p.Input != (Input{}) {
		t.Fatalf("dead player input = %+v", p.Input)
	}
}
