package game

import (
	"math/rand/v2"
	"sort"
	"time"
)

// Internal truth authoritative game state

type Round string

const (
	RoundLobby  Round = "LOBBY"
	Round1      Round = "ROUND1"
	Round2      Round = "ROUND2"
	RoundFinal  Round = "FINAL"
	RoundEnded  Round = "ENDED"
	noCycleVote       = -1
)

// InPlay reports whether the round is one of the three active rounds.
func (r Round) InPlay() bool {
	return r == Round1 || r == Round2 || r == RoundFinal
}

type Input struct {
	Up, Down, Left, Right bool
}

type Player struct {
	ID        string
	Name      string
	X, Y      float64
	VX, VY    float64
	Health    float64
	Alive     bool
	Spectator bool
	Input     Input
	Kills     int

	JoinedAt     time.Time
	EliminatedAt time.Time // zero while alive

	DashCooldownUntil time.Time
	DashBoostUntil    time.Time
	KillCooldownUntil time.Time

	IsSaboteur    bool
	LastVoteCycle int
}

type Zone struct {
	CenterX, CenterY float64
	Radius           float64
	MinRadius        float64
	LastShrinkAt     time.Time
}

type ChaosEvent struct {
	Type      ChaosType
	StartedAt time.Time
	EndsAt    time.Time
}

type ChaosState struct {
	Active   *ChaosEvent
	LastType ChaosType
	NextAt   time.Time
}

type SaboteurState struct {
	CurrentID    string
	LastTwo      []string
	NextRotateAt time.Time
}

type VotingState struct {
	Enabled bool
	Active  bool
	CycleID int
	Votes   map[string]string // voter -> target
	NextAt  time.Time
	EndsAt  time.Time
}

type EndState struct {
	WinnerID   string
	WinnerName string
	ResetAt    time.Time
}

type GameState struct {
	Round             Round
	Paused            bool
	StartedAt         time.Time
	TotalStartPlayers int
	Zone              Zone
	Chaos             ChaosState
	Saboteur          SaboteurState
	Voting            VotingState
	End               EndState
}

// NewGameState builds a lobby state with every timer scheduled from now.
func NewGameState(m *Map, now time.Time) GameState {
	return GameState{
		Round: RoundLobby,
		Zone: Zone{
			CenterX:      m.ZoneCenter.X,
			CenterY:      m.ZoneCenter.Y,
			Radius:       m.ZoneStartRadius,
			MinRadius:    ZoneMinRadius,
			LastShrinkAt: now,
		},
		Chaos:    ChaosState{NextAt: now.Add(chaosInterval(Round1))},
		Saboteur: SaboteurState{NextRotateAt: now.Add(SaboteurRotateEvery)},
		Voting: VotingState{
			Votes:  make(map[string]string),
			NextAt: now.Add(VoteEvery),
		},
	}
}

// World is everything simulated for one room. It is not safe for concurrent
// use; the owning room serializes every call.
type World struct {
	Code    string
	HostID  string
	Players map[string]*Player
	State   GameState
	Map     *Map

	outbox []Event
	rng    *rand.Rand
}

func NewWorld(code string, m *Map, rng *rand.Rand, now time.Time) *World {
	if m == nil {
		m = ShipMap
	}
	return &World{
		Code:    code,
		Players: make(map[string]*Player),
		State:   NewGameState(m, now),
		Map:     m,
		rng:     rng,
	}
}

// Drain returns and clears the pending events.
func (w *World) Drain() []Event {
	out := w.outbox
	w.outbox = nil
	return out
}

func (w *World) emit(kind, to string, payload any) {
	w.outbox = append(w.outbox, Event{Kind: kind, To: to, Payload: payload})
}

// sortedPlayers returns players ordered by join time then id, so that
// random picks are reproducible for a given seed.
func (w *World) sortedPlayers() []*Player {
	out := make([]*Player, 0, len(w.Players))
	for _, p := range w.Players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (w *World) AlivePlayers() []*Player {
	all := w.sortedPlayers()
	alive := all[:0]
	for _, p := range all {
		if p.Alive {
			alive = append(alive, p)
		}
	}
	return alive
}

func (w *World) AliveCount() int {
	n := 0
	for _, p := range w.Players {
		if p.Alive {
			n++
		}
	}
	return n
}

func (w *World) chaosActive(t ChaosType) bool {
	return w.State.Chaos.Active != nil && w.State.Chaos.Active.Type == t
}
