package room

import (
	"time"

	"chaosroom/game"
	"chaosroom/protocol"
)

// Conn is the outbound half of a player session. Send must not block.
type Conn interface {
	Send([]byte) error
	Close() error
}

// Join seats a connection in the room under PlayerID.
type Join struct {
	PlayerID string
	Conn     Conn
	Name     string
	Reply    chan<- JoinResult
}

type JoinResult struct {
	PlayerID string
	Err      error
}

// Input: latest held directions for a player
type Input struct {
	PlayerID string
	Input    game.Input
}

type Dash struct {
	PlayerID string
}

type Kill struct {
	PlayerID string
	TargetID string
}

type Vote struct {
	PlayerID string
	TargetID string
}

// Start is the host's request to leave the lobby.
type Start struct {
	PlayerID string
}

// Leave: issued on disconnect
type Leave struct {
	PlayerID string
}

// Tick advances the simulation once. The room closes Done when the tick's
// snapshot has been handed to every connection.
type Tick struct {
	Now  time.Time
	Dt   float64
	Done chan<- struct{}
}

// Info asks for the public room summary.
type Info struct {
	Reply chan<- protocol.RoomInfo
}
