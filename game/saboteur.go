package game

import (
	"time"

	"chaosroom/protocol"
)

// clearSaboteur drops the role from the current holder, if any.
func (w *World) clearSaboteur() {
	s := &w.State.Saboteur
	if s.CurrentID == "" {
		return
	}
	if p, ok := w.Players[s.CurrentID]; ok {
		p.IsSaboteur = false
		p.KillCooldownUntil = time.Time{}
		w.emit(protocol.MsgRoleUpdate, p.ID, protocol.RoleUpdate{IsSaboteur: false})
	}
	s.CurrentID = ""
}

// rotateSaboteur hands the role to a new alive player. Candidates exclude the
// holder and the last two holders, then only the holder, then nobody.
func (w *World) rotateSaboteur(now time.Time) *Player {
	s := &w.State.Saboteur
	alive := w.AlivePlayers()
	if len(alive) <= 1 {
		w.clearSaboteur()
		return nil
	}

	recent := make(map[string]bool, len(s.LastTwo))
	for _, id := range s.LastTwo {
		recent[id] = true
	}
	current := s.CurrentID

	candidates := filterPlayers(alive, func(p *Player) bool { return p.ID != current && !recent[p.ID] })
	if len(candidates) == 0 {
		candidates = filterPlayers(alive, func(p *Player) bool { return p.ID != current })
	}
	if len(candidates) == 0 {
		candidates = alive
	}

	w.clearSaboteur()

	next := candidates[w.rng.IntN(len(candidates))]
	next.IsSaboteur = true
	next.KillCooldownUntil = time.Time{}
	s.CurrentID = next.ID

	s.LastTwo = append(s.LastTwo, next.ID)
	if len(s.LastTwo) > 2 {
		s.LastTwo = append([]string(nil), s.LastTwo[len(s.LastTwo)-2:]...)
	}
	s.NextRotateAt = now.Add(SaboteurRotateEvery)

	w.emit(protocol.MsgRoleUpdate, next.ID, protocol.RoleUpdate{IsSaboteur: true, Message: "You are the Saboteur"})
	return next
}

func filterPlayers(in []*Player, keep func(*Player) bool) []*Player {
	var out []*Player
	for _, p := range in {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
