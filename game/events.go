package game

import (
	"time"

	"chaosroom/protocol"
)

// Event is a state-change notification. An empty To means the whole room.
type Event struct {
	Kind    string
	To      string
	Payload any
}

const (
	ReasonSafeZone     = "safe_zone"
	ReasonVoteRandom   = "vote_random"
	ReasonSaboteurKill = "saboteur_kill"
)

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// RoomUpdate is the member list sent on join, leave, start and reset.
func (w *World) RoomUpdate() protocol.RoomUpdate {
	players := w.sortedPlayers()
	members := make([]protocol.RoomMember, 0, len(players))
	for _, p := range players {
		members = append(members, protocol.RoomMember{ID: p.ID, Name: p.Name, Alive: p.Alive})
	}
	return protocol.RoomUpdate{
		RoomID:    w.Code,
		HostID:    w.HostID,
		GameState: string(w.State.Round),
		Players:   members,
	}
}

func (w *World) emitRoomUpdate() {
	w.emit(protocol.MsgRoomUpdate, "", w.RoomUpdate())
}
