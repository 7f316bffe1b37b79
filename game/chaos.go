package game

import (
	"time"

	"chaosroom/protocol"
)

type ChaosType string

const (
	ChaosReverseControls ChaosType = "reverse_controls"
	ChaosSpeedBoost      ChaosType = "speed_boost"
	ChaosDarkness        ChaosType = "darkness_pulse"
	ChaosSlippery        ChaosType = "slippery_movement"
	ChaosFastShrink      ChaosType = "fast_shrink_pulse"
)

type chaosSpec struct {
	Type     ChaosType
	Duration time.Duration
}

var chaosCatalogue = []chaosSpec{
	{ChaosReverseControls, 10 * time.Second},
	{ChaosSpeedBoost, 10 * time.Second},
	{ChaosDarkness, 8 * time.Second},
	{ChaosSlippery, 10 * time.Second},
	{ChaosFastShrink, 5 * time.Second},
}

func chaosInterval(r Round) time.Duration {
	switch r {
	case Round2:
		return 15 * time.Second
	case RoundFinal:
		return 10 * time.Second
	}
	return 20 * time.Second
}

// pickChaos draws uniformly from the catalogue minus the previous type.
func (w *World) pickChaos(last ChaosType) chaosSpec {
	options := make([]chaosSpec, 0, len(chaosCatalogue))
	for _, c := range chaosCatalogue {
		if c.Type != last {
			options = append(options, c)
		}
	}
	return options[w.rng.IntN(len(options))]
}

func (w *World) triggerChaos(now time.Time) *ChaosEvent {
	c := &w.State.Chaos
	spec := w.pickChaos(c.LastType)
	c.Active = &ChaosEvent{Type: spec.Type, StartedAt: now, EndsAt: now.Add(spec.Duration)}
	c.LastType = spec.Type
	c.NextAt = now.Add(chaosInterval(w.State.Round))

	if spec.Type == ChaosFastShrink {
		w.State.Zone.shrinkBy(FastShrinkPulseFactor, now)
	}

	w.emit(protocol.MsgChaosStarted, "", protocol.ChaosStarted{
		Type:      string(spec.Type),
		StartedAt: millis(now),
		EndsAt:    millis(c.Active.EndsAt),
	})
	return c.Active
}

func (w *World) expireChaos(now time.Time) {
	c := &w.State.Chaos
	if c.Active != nil && !now.Before(c.Active.EndsAt) {
		c.Active = nil
	}
}

func (w *World) finalShrinkMultiplier() float64 {
	if w.chaosActive(ChaosFastShrink) {
		return FastShrinkFinalMult
	}
	return 1
}
