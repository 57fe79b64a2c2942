package engine

import (
	"math"
	"testing"

	"courtside/internal/domain"
)

// fixedRand returns the same value on every draw. 0.5 zeroes out every
// noise term in the pipeline.
type fixedRand struct{ v float64 }

func (f fixedRand) Float64() float64 { return f.v }

func TestPerformanceScore(t *testing.T) {
	v := NewFundamentalValuator(DefaultConfig(), fixedRand{0.5})

	stats := domain.PlayerStats{
		PointsPerGame:   25,
		ReboundsPerGame: 10,
		AssistsPerGame:  5,
		FieldGoalPct:    0.5,
	}

	// 25*0.4 + 10*0.2 + 5*0.2 + 50*0.2 = 23
	got := v.PerformanceScore(stats)
	if math.Abs(got-23) > 1e-9 {
		t.Errorf("expected score 23, got %v", got)
	}
}

func TestFundamentalValuate(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("no history no noise holds price", func(t *testing.T) {
		v := NewFundamentalValuator(cfg, fixedRand{0.5})
		p := &domain.PlayerStock{ID: "p1", CurrentPrice: 100, Volatility: 0.1}

		val := v.Valuate(p)
		if math.Abs(val.Candidate-100) > 1e-9 {
			t.Errorf("expected candidate 100, got %v", val.Candidate)
		}
		if val.ReversionPull != 0 {
			t.Errorf("expected zero pull without history, got %v", val.ReversionPull)
		}
		if val.RandomWalk != 0 {
			t.Errorf("expected zero walk with rng=0.5, got %v", val.RandomWalk)
		}
	})

	t.Run("reversion pulls toward historical average", func(t *testing.T) {
		v := NewFundamentalValuator(cfg, fixedRand{0.5})
		p := &domain.PlayerStock{
			ID:           "p1",
			CurrentPrice: 100,
			Volatility:   0.1,
			PriceHistory: historyOf(120, 120, 120),
		}

		val := v.Valuate(p)
		// pull = (120-100)/100 * 0.01 = 0.002
		if math.Abs(val.ReversionPull-0.002) > 1e-9 {
			t.Errorf("expected pull 0.002, got %v", val.ReversionPull)
		}
		if val.Candidate <= 100 {
			t.Errorf("expected candidate above 100, got %v", val.Candidate)
		}
	})

	t.Run("random walk scales with volatility", func(t *testing.T) {
		v := NewFundamentalValuator(cfg, fixedRand{1.0})
		p := &domain.PlayerStock{ID: "p1", CurrentPrice: 100, Volatility: 0.2}

		val := v.Valuate(p)
		// walk = (1.0-0.5) * 0.2 * 0.05 = 0.005
		if math.Abs(val.RandomWalk-0.005) > 1e-9 {
			t.Errorf("expected walk 0.005, got %v", val.RandomWalk)
		}
	})

	t.Run("non-positive price passthrough", func(t *testing.T) {
		v := NewFundamentalValuator(cfg, fixedRand{0.5})
		p := &domain.PlayerStock{ID: "p1", CurrentPrice: 0}

		val := v.Valuate(p)
		if val.Candidate != 0 {
			t.Errorf("expected candidate 0 for dead price, got %v", val.Candidate)
		}
	})

	t.Run("score reported but not blended", func(t *testing.T) {
		v := NewFundamentalValuator(cfg, fixedRand{0.5})
		low := &domain.PlayerStock{ID: "low", CurrentPrice: 100, Stats: domain.PlayerStats{PointsPerGame: 5}}
		high := &domain.PlayerStock{ID: "high", CurrentPrice: 100, Stats: domain.PlayerStats{PointsPerGame: 35}}

		lv := v.Valuate(low)
		hv := v.Valuate(high)
		if lv.Candidate != hv.Candidate {
			t.Errorf("stats must not move the candidate directly: %v vs %v", lv.Candidate, hv.Candidate)
		}
		if hv.PerformanceScore <= lv.PerformanceScore {
			t.Errorf("expected higher score for better stats: %v vs %v", hv.PerformanceScore, lv.PerformanceScore)
		}
	})
}
