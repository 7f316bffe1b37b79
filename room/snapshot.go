package room

import (
	"math"
	"sort"
	"time"

	"chaosroom/protocol"
)

// round matches the client's rounding: halves go up, including negatives.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}

func (r *Room) buildSnapshot(now time.Time) protocol.State {
	w := r.world
	s := w.State

	snapshot := protocol.State{
		Tick:      r.tick,
		RoomID:    r.Code,
		HostID:    w.HostID,
		GameState: string(s.Round),
		Paused:    s.Paused,
		Zone: protocol.ZoneSnapshot{
			X: s.Zone.CenterX,
			Y: s.Zone.CenterY,
			R: round(s.Zone.Radius),
		},
		Voting: protocol.VotingSnapshot{
			Active:  s.Voting.Active,
			Enabled: s.Voting.Enabled,
		},
		Players:    make([]protocol.PlayerSnapshot, 0, len(w.Players)),
		AliveCount: w.AliveCount(),
		Ts:         now.UnixMilli(),
	}
	if s.Voting.Active {
		snapshot.Voting.EndsAt = s.Voting.EndsAt.UnixMilli()
	}
	if c := s.Chaos.Active; c != nil {
		snapshot.Chaos = &protocol.ChaosSnapshot{Type: string(c.Type), EndsAt: c.EndsAt.UnixMilli()}
	}

	for id, p := range w.Players {
		snapshot.Players = append(snapshot.Players, protocol.PlayerSnapshot{
			ID:    id,
			Name:  p.Name,
			X:     round(p.X),
			Y:     round(p.Y),
			VX:    round(p.VX),
			VY:    round(p.VY),
			H:     round(p.Health),
			Alive: p.Alive,
			Kills: p.Kills,
		})
	}
	sort.Slice(snapshot.Players, func(i, j int) bool {
		return snapshot.Players[i].ID < snapshot.Players[j].ID
	})
	return snapshot
}
