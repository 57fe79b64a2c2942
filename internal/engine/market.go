package engine

import (
	"math"

	"courtside/internal/domain"
)

// Per-component bounds. Each pressure is capped independently so one noisy
// input cannot dominate the tick.
const (
	imbalanceCap        = 0.01  // +-1%
	volumePressureCap   = 0.005 // +-0.5%
	depthNormalization  = 1000  // volume at which the book counts fully
	squeezeMajorRatio   = 0.50
	squeezeMinorRatio   = 0.30
	squeezeMajorBonus   = 0.008
	squeezeMinorBonus   = 0.003
	neutralSpreadPct    = 0.01 // tighter than 1% is bullish, wider bearish
	spreadPressureScale = 0.25
)

// MarketPressures is the per-component breakdown of one market pass.
type MarketPressures struct {
	Imbalance float64
	Volume    float64
	Short     float64
	Spread    float64
	Noise     float64
}

// Total sums all pressures.
func (m MarketPressures) Total() float64 {
	return m.Imbalance + m.Volume + m.Short + m.Spread + m.Noise
}

// MarketActivityValuator derives a candidate price from synthetic market
// activity: book imbalance, volume, short interest, and spread. A missing
// book degrades to neutral contributions rather than failing the tick.
type MarketActivityValuator struct {
	cfg Config
	rng RandSource
}

// NewMarketActivityValuator creates a valuator with the given tuning and RNG.
func NewMarketActivityValuator(cfg Config, rng RandSource) *MarketActivityValuator {
	return &MarketActivityValuator{cfg: cfg, rng: rng}
}

// Valuate computes the market candidate price for one player.
// candidate = prev * (1 + sum of pressures).
func (v *MarketActivityValuator) Valuate(p *domain.PlayerStock, book *domain.OrderBookSnapshot, recentTrades int64) (float64, MarketPressures) {
	prev := p.CurrentPrice
	pressures := MarketPressures{
		Imbalance: v.imbalancePressure(book),
		Volume:    v.volumePressure(p, recentTrades),
		Short:     shortPressure(p),
		Spread:    spreadPressure(book),
		// Always-present noise so a dead market never looks perfectly stable.
		Noise: (v.rng.Float64() - 0.5) * p.Volatility * v.cfg.MarketNoiseScale,
	}
	if prev <= 0 {
		return prev, pressures
	}
	return prev * (1 + pressures.Total()), pressures
}

// imbalancePressure scales book imbalance by a depth factor and caps at +-1%.
func (v *MarketActivityValuator) imbalancePressure(book *domain.OrderBookSnapshot) float64 {
	if book == nil {
		return 0
	}
	total := book.BidVolume() + book.AskVolume()
	if total <= 0 {
		return 0
	}
	depthFactor := math.Min(1, total/depthNormalization)
	return clamp(book.Imbalance()*depthFactor*imbalanceCap, -imbalanceCap, imbalanceCap)
}

// volumePressure compares recent trade activity against the average volume.
func (v *MarketActivityValuator) volumePressure(p *domain.PlayerStock, recentTrades int64) float64 {
	if p.Volume <= 0 || recentTrades < 0 {
		return 0
	}
	ratio := float64(recentTrades) / float64(p.Volume)
	pressure := (math.Log1p(ratio) - 1) * v.cfg.VolumePressureScale
	return clamp(pressure, -volumePressureCap, volumePressureCap)
}

// shortPressure applies a squeeze bonus once the short ratio crosses the
// configured tiers.
func shortPressure(p *domain.PlayerStock) float64 {
	ratio := p.ShortRatio()
	switch {
	case ratio > squeezeMajorRatio:
		return squeezeMajorBonus
	case ratio > squeezeMinorRatio:
		return squeezeMinorBonus
	default:
		return 0
	}
}

// spreadPressure is linear in the gap between the observed spread and the
// 1% neutral point.
func spreadPressure(book *domain.OrderBookSnapshot) float64 {
	if book == nil {
		return 0
	}
	spread := book.SpreadPct()
	if spread <= 0 {
		return 0
	}
	return (neutralSpreadPct - spread) * spreadPressureScale
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
