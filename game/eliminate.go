package game

import (
	"time"

	"chaosroom/protocol"
)

// Eliminate is the only way a player goes from alive to dead. It returns
// false if the player is missing or already out.
func (w *World) Eliminate(p *Player, reason, killerID string, now time.Time) bool {
	if p == nil || !p.Alive {
		return false
	}
	p.Alive = false
	p.Spectator = true
	p.Health = 0
	p.VX, p.VY = 0, 0
	p.Input = Input{}
	p.EliminatedAt = now

	if p.IsSaboteur || w.State.Saboteur.CurrentID == p.ID {
		w.clearSaboteur()
		w.State.Saboteur.NextRotateAt = now
	}

	w.emit(protocol.MsgPlayerEliminated, "", protocol.PlayerEliminated{
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Reason:     reason,
		KillerID:   killerID,
	})
	return true
}
