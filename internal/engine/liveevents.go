package engine

import (
	"time"

	"courtside/internal/domain"
)

// LiveEventBook accumulates a multiplicative price multiplier per player
// from discrete game events. Owned by the engine loop; not safe for
// concurrent use.
type LiveEventBook struct {
	cfg         Config
	rng         RandSource
	multipliers map[string]float64
	lastReset   time.Time
}

// NewLiveEventBook creates an empty accumulator.
func NewLiveEventBook(cfg Config, rng RandSource) *LiveEventBook {
	return &LiveEventBook{
		cfg:         cfg,
		rng:         rng,
		multipliers: make(map[string]float64),
	}
}

// Apply folds one event into the player's multiplier: m *= 1 + priceImpact.
// An event carrying no explicit PriceImpact falls back to the configured
// magnitude for its type; unknown types are ignored. Returns the resulting
// multiplier.
func (b *LiveEventBook) Apply(ev domain.GameEvent) float64 {
	impact := ev.PriceImpact
	if impact == 0 {
		var ok bool
		impact, ok = b.cfg.EventImpacts[ev.Type]
		if !ok {
			return b.Multiplier(ev.PlayerID)
		}
	}

	m := b.Multiplier(ev.PlayerID) * (1 + impact)
	b.multipliers[ev.PlayerID] = m
	return m
}

// Multiplier returns the current multiplier, 1.0 when no events applied.
func (b *LiveEventBook) Multiplier(playerID string) float64 {
	if m, ok := b.multipliers[playerID]; ok {
		return m
	}
	return 1.0
}

// Snapshot returns a copy of all non-neutral multipliers.
func (b *LiveEventBook) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(b.multipliers))
	for id, m := range b.multipliers {
		out[id] = m
	}
	return out
}

// MaybeDailyReset resets every multiplier to 1.0 on the first call of a new
// calendar day. Returns true when the reset fired.
func (b *LiveEventBook) MaybeDailyReset(now time.Time) bool {
	if !b.lastReset.IsZero() && sameDay(b.lastReset, now) {
		return false
	}
	first := b.lastReset.IsZero()
	b.lastReset = now
	if first {
		return false
	}
	b.multipliers = make(map[string]float64)
	return true
}

// Valuate computes the live-event candidate price. With no accumulated
// events the candidate carries small speculative noise scaled by volatility;
// otherwise it is prev * multiplier.
func (b *LiveEventBook) Valuate(p *domain.PlayerStock) float64 {
	prev := p.CurrentPrice
	m := b.Multiplier(p.ID)
	if m == 1.0 {
		noise := (b.rng.Float64() - 0.5) * p.Volatility * b.cfg.SpeculativeNoiseScale
		return prev * (1 + noise)
	}
	return prev * m
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
