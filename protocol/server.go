package protocol

// State is broadcast to every player in a room once per tick. Coordinates,
// velocities and health are rounded to integers.
type State struct {
	Tick       int              `json:"tick"`
	RoomID     string           `json:"roomId"`
	HostID     string           `json:"hostId"`
	GameState  string           `json:"gameState"`
	Paused     bool             `json:"paused"`
	Zone       ZoneSnapshot     `json:"zone"`
	Chaos      *ChaosSnapshot   `json:"chaos"`
	Voting     VotingSnapshot   `json:"voting"`
	Players    []PlayerSnapshot `json:"players"`
	AliveCount int              `json:"aliveCount"`
	Ts         int64            `json:"ts"`
}

type ZoneSnapshot struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R int     `json:"r"`
}

type ChaosSnapshot struct {
	Type   string `json:"type"`
	EndsAt int64  `json:"endsAt"`
}

type VotingSnapshot struct {
	Active  bool  `json:"active"`
	EndsAt  int64 `json:"endsAt"`
	Enabled bool  `json:"enabled"`
}

type PlayerSnapshot struct {
	ID    string `json:"id"`
	Name  string `json:"n"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	VX    int    `json:"vx"`
	VY    int    `json:"vy"`
	H     int    `json:"h"`
	Alive bool   `json:"a"`
	Kills int    `json:"k"`
}

type Joined struct {
	RoomID    string `json:"roomId"`
	PlayerID  string `json:"playerId"`
	HostID    string `json:"hostId"`
	GameState string `json:"gameState"`
	Snapshot  State  `json:"snapshot"`
}

type RoomMember struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Alive bool   `json:"alive"`
}

type RoomUpdate struct {
	RoomID    string       `json:"roomId"`
	HostID    string       `json:"hostId"`
	GameState string       `json:"gameState"`
	Players   []RoomMember `json:"players"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ActionOK struct {
	Action        string `json:"action"`
	CooldownUntil int64  `json:"cooldownUntil"`
	TargetID      string `json:"targetId,omitempty"`
}

type RoleUpdate struct {
	IsSaboteur bool   `json:"isSaboteur"`
	Message    string `json:"message,omitempty"`
}

type VoteTarget struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type VoteStarted struct {
	CycleID int          `json:"cycleId"`
	EndsAt  int64        `json:"endsAt"`
	Players []VoteTarget `json:"players"`
}

type VoteResult struct {
	TopID             string `json:"topId,omitempty"`
	TopCount          int    `json:"topCount"`
	TotalVotes        int    `json:"totalVotes"`
	CurrentSaboteurID string `json:"currentSaboteurId,omitempty"`
	EliminatedID      string `json:"eliminatedId,omitempty"`
}

type RoundUpdate struct {
	State string `json:"state"`
}

type ChaosStarted struct {
	Type      string `json:"type"`
	StartedAt int64  `json:"startedAt"`
	EndsAt    int64  `json:"endsAt"`
}

type PlayerEliminated struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Reason     string `json:"reason"`
	KillerID   string `json:"killerId,omitempty"`
}

type GameStarted struct {
	At int64 `json:"at"`
}

type PlayerStats struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Kills           int    `json:"kills"`
	SurvivalTimeSec int    `json:"survivalTimeSec"`
}

type GameEnded struct {
	WinnerID   string        `json:"winnerId,omitempty"`
	WinnerName string        `json:"winnerName"`
	Stats      []PlayerStats `json:"stats"`
}

type GameReset struct {
	State string `json:"state"`
}

type RoomInfo struct {
	ID      string `json:"id"`
	HostID  string `json:"hostId"`
	State   string `json:"state"`
	Players int    `json:"players"`
}
