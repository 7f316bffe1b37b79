package game

import "errors"

// Rejection is a validation failure reported back to the issuing player only.
// Tag is stable and safe to put on the wire.
type Rejection struct {
	Tag     string
	Message string
}

func (r *Rejection) Error() string { return r.Message }

func reject(tag, msg string) *Rejection {
	return &Rejection{Tag: tag, Message: msg}
}

// ErrPlayerNotFound marks a command for a player that has already left.
// Callers drop it silently.
var ErrPlayerNotFound = errors.New("player not found")

var (
	ErrNameRequired     = reject("name_required", "Nickname is required")
	ErrNameTaken        = reject("name_taken", "Nickname already exists in this room")
	ErrRoomFull         = reject("room_full", "Room is full")
	ErrNotHost          = reject("not_host", "Only host can start")
	ErrAlreadyStarted   = reject("already_started", "Game already started")
	ErrNotEnoughPlayers = reject("not_enough_players", "Need at least 2 players to start")
	ErrNotAlive         = reject("not_alive", "Only alive players can do that")
	ErrCannotDash       = reject("cannot_dash", "Cannot dash now")
	ErrDashCooldown     = reject("dash_cooldown", "Dash on cooldown")
	ErrNotSaboteur      = reject("not_saboteur", "Only active saboteur can kill")
	ErrKillCooldown     = reject("kill_cooldown", "Kill on cooldown")
	ErrInvalidTarget    = reject("invalid_target", "Target invalid")
	ErrSelfKill         = reject("self_kill", "Cannot self-kill")
	ErrOutOfRange       = reject("out_of_range", "Out of range")
	ErrVotingClosed     = reject("vote_closed", "Voting is not active")
	ErrAlreadyVoted     = reject("already_voted", "Already voted")
	ErrInvalidVote      = reject("invalid_vote_target", "Invalid vote target")
)
