package game

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// SanitizeName collapses whitespace, trims and caps the length of a display name.
func SanitizeName(raw string) string {
	name := strings.Join(strings.Fields(raw), " ")
	if utf8.RuneCountInString(name) > MaxNameLength {
		name = strings.TrimSpace(string([]rune(name)[:MaxNameLength]))
	}
	return name
}

// AddPlayer seats a new connection. The first player becomes host. Players
// joining after the lobby watch as spectators until the next reset.
func (w *World) AddPlayer(id, rawName string, now time.Time) (*Player, error) {
	name := SanitizeName(rawName)
	if name == "" {
		return nil, ErrNameRequired
	}
	if len(w.Players) >= MaxPlayers {
		return nil, ErrRoomFull
	}
	for _, p := range w.Players {
		if strings.EqualFold(p.Name, name) {
			return nil, ErrNameTaken
		}
	}

	p := &Player{ID: id, Name: name, JoinedAt: now}
	w.respawn(p)
	if w.State.Round != RoundLobby {
		p.Alive = false
		p.Spectator = true
		p.Health = 0
	}
	w.Players[id] = p
	if w.HostID == "" {
		w.HostID = id
	}
	w.emitRoomUpdate()
	return p, nil
}

// RemovePlayer handles a disconnect: host promotion, saboteur re-rotation and
// ballot cleanup. It reports whether the world is now empty.
func (w *World) RemovePlayer(id string, now time.Time) (removed *Player, empty bool) {
	p, ok := w.Players[id]
	if !ok {
		return nil, len(w.Players) == 0
	}
	delete(w.Players, id)

	if w.HostID == id {
		w.HostID = ""
		if rest := w.sortedPlayers(); len(rest) > 0 {
			w.HostID = rest[0].ID
		}
	}
	if w.State.Saboteur.CurrentID == id {
		w.State.Saboteur.CurrentID = ""
		w.State.Saboteur.NextRotateAt = now
	}
	w.withdrawVotes(id)

	if len(w.Players) == 0 {
		return p, true
	}
	w.emitRoomUpdate()
	return p, false
}

// UpdateInput replaces the held directions of an alive player.
func (w *World) UpdateInput(id string, in Input) {
	p, ok := w.Players[id]
	if !ok || !p.Alive {
		return
	}
	p.Input = in
}

// Dash displaces the player DashDistance units along the held direction,
// falling back to the current velocity, then to straight up.
func (w *World) Dash(id string, now time.Time) (time.Time, error) {
	p, ok := w.Players[id]
	if !ok {
		return time.Time{}, ErrPlayerNotFound
	}
	if !p.Alive || w.State.Paused {
		return time.Time{}, ErrCannotDash
	}
	if now.Before(p.DashCooldownUntil) {
		return time.Time{}, ErrDashCooldown
	}

	dx, dy, held := direction(p.Input, false)
	if !held {
		if speed := math.Hypot(p.VX, p.VY); speed > 0 {
			dx, dy = p.VX/speed, p.VY/speed
		} else {
			dx, dy = 0, -1
		}
	}

	p.X += dx * DashDistance
	p.Y += dy * DashDistance
	w.resolveMapCollision(p)
	p.DashCooldownUntil = now.Add(DashCooldown)
	p.DashBoostUntil = now.Add(DashBoostWindow)
	return p.DashCooldownUntil, nil
}

// AttemptKill lets the current saboteur eliminate a nearby alive player.
func (w *World) AttemptKill(killerID, targetID string, now time.Time) (time.Time, error) {
	killer, ok := w.Players[killerID]
	if !ok {
		return time.Time{}, ErrPlayerNotFound
	}
	if !killer.Alive {
		return time.Time{}, ErrNotAlive
	}
	if !killer.IsSaboteur || w.State.Saboteur.CurrentID != killerID {
		return time.Time{}, ErrNotSaboteur
	}
	if now.Before(killer.KillCooldownUntil) {
		return time.Time{}, ErrKillCooldown
	}
	target, ok := w.Players[targetID]
	if !ok || !target.Alive {
		return time.Time{}, ErrInvalidTarget
	}
	if target.ID == killer.ID {
		return time.Time{}, ErrSelfKill
	}
	if math.Hypot(killer.X-target.X, killer.Y-target.Y) > KillRange {
		return time.Time{}, ErrOutOfRange
	}

	if !w.Eliminate(target, ReasonSaboteurKill, killer.ID, now) {
		return time.Time{}, ErrInvalidTarget
	}
	killer.Kills++
	killer.KillCooldownUntil = now.Add(KillCooldown)
	return killer.KillCooldownUntil, nil
}
