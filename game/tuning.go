package game

import "time"

const (
	TickRate = 12

	PlayerRadius      = 18.0
	MaxHealth         = 100.0
	BaseSpeed         = 185.0 // units per second
	SaboteurSpeedMult = 1.1
	SpeedBoostMult    = 1.25
	SlipperyDecay     = 0.97 // per tick, only while no keys are held
	DashBoostMult     = 2.0
	DashDistance      = 120.0
	DashCooldown      = 5 * time.Second
	DashBoostWindow   = 200 * time.Millisecond

	KillRange    = 85.0
	KillCooldown = 10 * time.Second

	ZoneMinRadius         = 85.0
	ZoneDamagePerSec      = 10.0
	ZoneSnapDistance      = 80.0 // beyond the edge
	ZoneSnapWindow        = 3 * time.Second
	ZoneSnapInset         = 4.0
	Round2ShrinkFactor    = 0.7
	FinalShrinkPerSec     = 14.0
	FastShrinkFinalMult   = 1.75
	FastShrinkPulseFactor = 0.95

	SaboteurRotateEvery = 60 * time.Second
	VoteEvery           = 60 * time.Second
	VoteWindow          = 10 * time.Second
	ResetDelay          = 8 * time.Second

	MaxPlayers          = 50
	MinPlayersToStart   = 2
	Round2AliveFraction = 0.5
	FinalAliveThreshold = 6
	MaxNameLength       = 20
)
