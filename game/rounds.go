package game

import (
	"math"
	"time"

	"chaosroom/protocol"
)

// StartGame moves a lobby to ROUND1. Only the host may call it.
func (w *World) StartGame(callerID string, now time.Time) error {
	if _, ok := w.Players[callerID]; !ok {
		return ErrPlayerNotFound
	}
	if callerID != w.HostID {
		return ErrNotHost
	}
	if w.State.Round != RoundLobby {
		return ErrAlreadyStarted
	}
	alive := w.AliveCount()
	if alive < MinPlayersToStart {
		return ErrNotEnoughPlayers
	}

	s := &w.State
	s.Round = Round1
	s.StartedAt = now
	s.TotalStartPlayers = alive
	s.Paused = false
	s.Saboteur.NextRotateAt = now
	s.Chaos.NextAt = now.Add(chaosInterval(Round1))
	s.Voting.Enabled = true
	s.Voting.Active = false
	s.Voting.NextAt = now.Add(VoteEvery)
	s.Voting.Votes = make(map[string]string)
	s.Zone.Radius = w.Map.ZoneStartRadius
	s.Zone.LastShrinkAt = now
	s.End = EndState{}

	w.emitRoomUpdate()
	w.emit(protocol.MsgGameStarted, "", protocol.GameStarted{At: millis(now)})
	return nil
}

func (w *World) transitionTo(next Round, now time.Time) {
	s := &w.State
	if s.Round == next {
		return
	}
	s.Round = next

	switch next {
	case Round2:
		s.Zone.shrinkBy(Round2ShrinkFactor, now)
		s.Voting.Enabled = false
		s.Voting.Active = false
		s.Paused = false
	case RoundFinal:
		s.Voting.Enabled = false
		s.Voting.Active = false
		s.Paused = false
	}

	s.Chaos.NextAt = now.Add(chaosInterval(next))
	w.emit(protocol.MsgRoundUpdate, "", protocol.RoundUpdate{State: string(next)})
}

// round2Threshold is the alive count at or below which ROUND1 ends.
func round2Threshold(totalStart int) int {
	return int(math.Ceil(float64(totalStart) * Round2AliveFraction))
}

func (w *World) progressRounds(dt float64, now time.Time) {
	alive := w.AliveCount()
	if w.State.Round == Round1 && alive <= round2Threshold(w.State.TotalStartPlayers) {
		w.transitionTo(Round2, now)
	}
	if w.State.Round == Round2 && alive <= FinalAliveThreshold {
		w.transitionTo(RoundFinal, now)
	}
	if w.State.Round == RoundFinal {
		w.State.Zone.shrinkLinear(FinalShrinkPerSec*w.finalShrinkMultiplier()*dt, now)
	}
}

// maybeEndGame ends an active round at one survivor or fewer, and resets an
// ended game once its display delay is over.
func (w *World) maybeEndGame(now time.Time) {
	s := &w.State
	if !s.Round.InPlay() {
		if s.Round == RoundEnded && !now.Before(s.End.ResetAt) {
			w.resetToLobby(now)
		}
		return
	}

	alive := w.AlivePlayers()
	if len(alive) > 1 {
		return
	}

	s.Round = RoundEnded
	s.Paused = true
	s.Voting.Active = false
	s.Voting.Enabled = false
	s.End.WinnerName = "No winner"
	if len(alive) == 1 {
		s.End.WinnerID = alive[0].ID
		s.End.WinnerName = alive[0].Name
	}
	s.End.ResetAt = now.Add(ResetDelay)

	all := w.sortedPlayers()
	stats := make([]protocol.PlayerStats, 0, len(all))
	for _, p := range all {
		until := now
		if !p.EliminatedAt.IsZero() {
			until = p.EliminatedAt
		}
		stats = append(stats, protocol.PlayerStats{
			ID:              p.ID,
			Name:            p.Name,
			Kills:           p.Kills,
			SurvivalTimeSec: int(math.Round(until.Sub(s.StartedAt).Seconds())),
		})
	}
	w.emit(protocol.MsgGameEnded, "", protocol.GameEnded{
		WinnerID:   s.End.WinnerID,
		WinnerName: s.End.WinnerName,
		Stats:      stats,
	})
}

// resetToLobby rebuilds the game state wholesale and respawns everyone.
func (w *World) resetToLobby(now time.Time) {
	w.State = NewGameState(w.Map, now)
	for _, p := range w.sortedPlayers() {
		w.respawn(p)
	}
	w.emit(protocol.MsgGameReset, "", protocol.GameReset{State: string(RoundLobby)})
	w.emitRoomUpdate()
}

func (w *World) respawn(p *Player) {
	spawn := w.Map.RandomSpawn(w.rng)
	p.X, p.Y = spawn.X, spawn.Y
	p.VX, p.VY = 0, 0
	p.Health = MaxHealth
	p.Alive = true
	p.Spectator = false
	p.Input = Input{}
	p.Kills = 0
	p.EliminatedAt = time.Time{}
	p.DashCooldownUntil = time.Time{}
	p.DashBoostUntil = time.Time{}
	p.KillCooldownUntil = time.Time{}
	p.IsSaboteur = false
	p.LastVoteCycle = noCycleVote
}
