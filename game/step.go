package game

import "time"

// Step advances one room by one tick. Subsystems run in a fixed order so the
// snapshot taken afterwards reflects a fully settled tick.
func Step(w *World, now time.Time, dt float64) {
	s := &w.State
	if s.Round == RoundLobby {
		return
	}

	w.maybeRunVoting(now)

	if !s.Voting.Active && !now.Before(s.Saboteur.NextRotateAt) && s.Round.InPlay() {
		w.rotateSaboteur(now)
	}
	if !s.Voting.Active && !now.Before(s.Chaos.NextAt) && s.Round.InPlay() {
		w.triggerChaos(now)
	}
	w.expireChaos(now)

	if !s.Paused {
		w.applyMovement(dt, now)
		w.applyPlayerCollisions()
		w.applySafeZone(dt, now)
		w.progressRounds(dt, now)
	}
	w.maybeEndGame(now)
}
