package domain

import "time"

// PricePoint is a single observation in an instrument's price history.
// Immutable once appended.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// PlayerStats holds the per-game performance averages the fundamental
// valuator reads. Refreshed out-of-band by the stats feed.
type PlayerStats struct {
	PointsPerGame   float64 `json:"ppg" yaml:"ppg"`
	ReboundsPerGame float64 `json:"rpg" yaml:"rpg"`
	AssistsPerGame  float64 `json:"apg" yaml:"apg"`
	FieldGoalPct    float64 `json:"fg_pct" yaml:"fg_pct"` // 0.0 - 1.0
	MinutesPerGame  float64 `json:"mpg" yaml:"mpg"`
	GamesPlayed     int     `json:"games_played" yaml:"games_played"`
}

// PlayerStock is a tradable player instrument. It is owned exclusively by
// the engine loop; everyone else works with copies taken at tick boundaries.
type PlayerStock struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Team     string      `json:"team"`
	Position string      `json:"position"`
	Stats    PlayerStats `json:"stats"`

	CurrentPrice float64 `json:"current_price"`
	BidPrice     float64 `json:"bid_price"`
	AskPrice     float64 `json:"ask_price"`
	PriceChange  float64 `json:"price_change"` // % vs previous tick

	PriceHistory []PricePoint `json:"price_history"` // oldest first, bounded
	Volume       int64        `json:"volume"`
	Volatility   float64      `json:"volatility"` // annualized

	AvailableShares float64 `json:"available_shares"`
	TotalShares     float64 `json:"total_shares"`
}

// ShortedShares infers the short interest from the float still available.
func (p *PlayerStock) ShortedShares() float64 {
	shorted := p.TotalShares - p.AvailableShares
	if shorted < 0 {
		return 0
	}
	return shorted
}

// ShortRatio returns shorted shares as a fraction of the total issuable.
// Returns 0 when the total is unknown to avoid division by zero.
func (p *PlayerStock) ShortRatio() float64 {
	if p.TotalShares <= 0 {
		return 0
	}
	return p.ShortedShares() / p.TotalShares
}

// HistoricalAverage is the mean of the recorded history, falling back to
// the given price when no history exists yet.
func (p *PlayerStock) HistoricalAverage(fallback float64) float64 {
	if len(p.PriceHistory) == 0 {
		return fallback
	}
	sum := 0.0
	for _, pt := range p.PriceHistory {
		sum += pt.Price
	}
	return sum / float64(len(p.PriceHistory))
}

// Clone returns a deep copy safe to hand outside the engine loop.
func (p *PlayerStock) Clone() PlayerStock {
	cp := *p
	cp.PriceHistory = make([]PricePoint, len(p.PriceHistory))
	copy(cp.PriceHistory, p.PriceHistory)
	return cp
}
