package engine

import "courtside/internal/domain"

// FundamentalValuation is the breakdown of one fundamental pass. The
// performance score is reported for explainability but is deliberately not
// blended into the candidate: stats anchor the long-run valuation through
// the historical average, not through a multiplicative factor.
type FundamentalValuation struct {
	Candidate        float64
	PerformanceScore float64
	ReversionPull    float64
	RandomWalk       float64
}

// FundamentalValuator derives a candidate price from performance stats,
// weak mean reversion against the history, and volatility-scaled noise.
type FundamentalValuator struct {
	cfg Config
	rng RandSource
}

// NewFundamentalValuator creates a valuator with the given tuning and RNG.
func NewFundamentalValuator(cfg Config, rng RandSource) *FundamentalValuator {
	return &FundamentalValuator{cfg: cfg, rng: rng}
}

// PerformanceScore is the fixed weighted blend of per-game metrics.
// Efficiency enters as field-goal percentage scaled to the same magnitude
// as the counting stats.
func (v *FundamentalValuator) PerformanceScore(stats domain.PlayerStats) float64 {
	w := v.cfg.StatWeights
	return stats.PointsPerGame*w.Points +
		stats.ReboundsPerGame*w.Rebounds +
		stats.AssistsPerGame*w.Assists +
		stats.FieldGoalPct*100*w.Efficiency
}

// Valuate computes the fundamental candidate price for one player.
// candidate = prev * (1 + reversionPull + randomWalk).
func (v *FundamentalValuator) Valuate(p *domain.PlayerStock) FundamentalValuation {
	prev := p.CurrentPrice

	val := FundamentalValuation{
		PerformanceScore: v.PerformanceScore(p.Stats),
	}
	if prev <= 0 {
		val.Candidate = prev
		return val
	}

	avg := p.HistoricalAverage(prev)
	val.ReversionPull = (avg - prev) / prev * v.cfg.ReversionFactor
	val.RandomWalk = (v.rng.Float64() - 0.5) * p.Volatility * v.cfg.RandomWalkScale

	val.Candidate = prev * (1 + val.ReversionPull + val.RandomWalk)
	return val
}
