package engine

import (
	"fmt"
	"math"
	"time"

	"courtside/internal/domain"
)

const weightTolerance = 1e-9

// RandSource is the abstract generator behind every random term in the
// pricing pipeline. Inject a seeded *rand.Rand in production and a fixed
// source in tests.
type RandSource interface {
	Float64() float64
}

// Weights is the blend applied to the three candidate prices.
type Weights struct {
	Fundamental float64 `yaml:"fundamental"`
	Market      float64 `yaml:"market"`
	LiveEvents  float64 `yaml:"live_events"`
}

// Sum returns the total of the triple. Valid presets sum to 1.0.
func (w Weights) Sum() float64 {
	return w.Fundamental + w.Market + w.LiveEvents
}

// StatWeights is the fixed blend for the performance score.
type StatWeights struct {
	Points     float64 `yaml:"points"`
	Rebounds   float64 `yaml:"rebounds"`
	Assists    float64 `yaml:"assists"`
	Efficiency float64 `yaml:"efficiency"`
}

// Sum returns the total of the stat weights. Must be 1.0.
func (w StatWeights) Sum() float64 {
	return w.Points + w.Rebounds + w.Assists + w.Efficiency
}

// Config carries every engine tunable. All constants the safety envelope
// depends on live here so tests can shrink windows and thresholds.
type Config struct {
	TickInterval time.Duration

	// History / volatility
	HistoryCapacity   int
	DefaultVolatility float64

	// Circuit breaker
	VolatilityThreshold float64
	HaltDuration        time.Duration

	// Safety limiter
	MaxMovePct   float64
	PriceFloor   float64
	MinSpreadPct float64
	MaxSpreadPct float64

	// Fundamental valuator
	ReversionFactor float64
	RandomWalkScale float64
	StatWeights     StatWeights

	// Market activity valuator
	VolumePressureScale float64
	MarketNoiseScale    float64

	// Live events
	SpeculativeNoiseScale float64
	EventImpacts          map[string]float64

	// Context resolver
	Presets         map[domain.ContextClass]Weights
	OffSeasonMonths []time.Month
	MarketOpenHour  int
	MarketCloseHour int
}

// DefaultConfig returns the reference tuning.
func DefaultConfig() Config {
	return Config{
		TickInterval: 30 * time.Second,

		HistoryCapacity:   30,
		DefaultVolatility: 0.1,

		VolatilityThreshold: 0.15,
		HaltDuration:        5 * time.Minute,

		MaxMovePct:   0.15,
		PriceFloor:   10,
		MinSpreadPct: 0.001,
		MaxSpreadPct: 0.02,

		ReversionFactor: 0.01,
		RandomWalkScale: 0.05,
		StatWeights: StatWeights{
			Points:     0.40,
			Rebounds:   0.20,
			Assists:    0.20,
			Efficiency: 0.20,
		},

		VolumePressureScale: 0.005,
		MarketNoiseScale:    0.02,

		SpeculativeNoiseScale: 0.01,
		EventImpacts: map[string]float64{
			domain.EventThreePointer:   0.002,
			domain.EventDunk:           0.001,
			domain.EventAssist:         0.0005,
			domain.EventSteal:          0.001,
			domain.EventBlock:          0.001,
			domain.EventTripleDouble:   0.05,
			domain.EventFortyPointGame: 0.03,
			domain.EventInjury:         -0.15,
			domain.EventEjection:       -0.02,
			domain.EventGameWinner:     0.04,
		},

		Presets: map[domain.ContextClass]Weights{
			domain.ContextNormal:     {Fundamental: 0.40, Market: 0.30, LiveEvents: 0.30},
			domain.ContextGameTime:   {Fundamental: 0.20, Market: 0.30, LiveEvents: 0.50},
			domain.ContextOffSeason:  {Fundamental: 0.70, Market: 0.30, LiveEvents: 0.00},
			domain.ContextAfterHours: {Fundamental: 0.50, Market: 0.40, LiveEvents: 0.10},
		},
		OffSeasonMonths: []time.Month{time.July, time.August, time.September},
		MarketOpenHour:  9,
		MarketCloseHour: 16,
	}
}

// Validate fails fast on invariant violations. A config that passes here
// cannot produce a fatal condition per-tick.
func (c Config) Validate() error {
	if c.TickInterval <= 0 {
		return &domain.ConfigError{Field: "tick_interval", Err: fmt.Errorf("must be positive, got %v", c.TickInterval)}
	}
	if c.HistoryCapacity < 2 {
		return &domain.ConfigError{Field: "history_capacity", Err: fmt.Errorf("need at least 2 points, got %d", c.HistoryCapacity)}
	}
	if c.HaltDuration <= 0 {
		return &domain.ConfigError{Field: "halt_duration", Err: fmt.Errorf("must be positive, got %v", c.HaltDuration)}
	}
	if c.VolatilityThreshold <= 0 {
		return &domain.ConfigError{Field: "volatility_threshold", Err: fmt.Errorf("must be positive, got %v", c.VolatilityThreshold)}
	}
	if c.MaxMovePct <= 0 {
		return &domain.ConfigError{Field: "max_move_pct", Err: fmt.Errorf("must be positive, got %v", c.MaxMovePct)}
	}
	if c.PriceFloor <= 0 {
		return &domain.ConfigError{Field: "price_floor", Err: fmt.Errorf("must be positive, got %v", c.PriceFloor)}
	}
	if c.MinSpreadPct <= 0 || c.MaxSpreadPct <= c.MinSpreadPct || c.MaxSpreadPct > 0.02 {
		return &domain.ConfigError{Field: "spread", Err: fmt.Errorf("need 0 < min < max <= 0.02, got [%v, %v]", c.MinSpreadPct, c.MaxSpreadPct)}
	}
	if math.Abs(c.StatWeights.Sum()-1.0) > weightTolerance {
		return &domain.ConfigError{Field: "stat_weights", Err: fmt.Errorf("must sum to 1.0, got %v", c.StatWeights.Sum())}
	}
	if len(c.Presets) == 0 {
		return &domain.ConfigError{Field: "presets", Err: fmt.Errorf("no weight presets defined")}
	}
	for class, w := range c.Presets {
		if math.Abs(w.Sum()-1.0) > weightTolerance {
			return &domain.ConfigError{Field: "presets." + class.String(), Err: fmt.Errorf("must sum to 1.0, got %v", w.Sum())}
		}
	}
	if _, ok := c.Presets[domain.ContextNormal]; !ok {
		return &domain.ConfigError{Field: "presets", Err: fmt.Errorf("NORMAL preset is required")}
	}
	return nil
}

// weightsFor returns the preset for a class, falling back to NORMAL.
func (c Config) weightsFor(class domain.ContextClass) Weights {
	if w, ok := c.Presets[class]; ok {
		return w
	}
	return c.Presets[domain.ContextNormal]
}
