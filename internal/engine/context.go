package engine

import (
	"time"

	"courtside/internal/domain"
)

// Volatility bands for the context's market-wide classification.
const (
	volLowCeiling = 0.15
	volHighFloor  = 0.35
)

// ContextResolver classifies the current conditions into a pricing context.
// First matching condition wins: off-season beats a live game beats
// after-hours beats normal.
type ContextResolver struct {
	cfg Config
}

// NewContextResolver creates a resolver with the given calendar tuning.
func NewContextResolver(cfg Config) *ContextResolver {
	return &ContextResolver{cfg: cfg}
}

// Resolve derives the context for a tick from wall-clock time, live-game
// presence, and the mean annualized volatility across the market.
func (r *ContextResolver) Resolve(now time.Time, liveGame bool, meanVolatility float64) domain.PricingContext {
	ctx := domain.PricingContext{
		IsGameTime:      liveGame,
		IsOffSeason:     r.isOffSeason(now.Month()),
		MarketOpen:      r.isMarketOpen(now),
		VolatilityLevel: volatilityLevel(meanVolatility),
	}

	switch {
	case ctx.IsOffSeason:
		ctx.Class = domain.ContextOffSeason
	case ctx.IsGameTime:
		ctx.Class = domain.ContextGameTime
	case !ctx.MarketOpen:
		ctx.Class = domain.ContextAfterHours
	default:
		ctx.Class = domain.ContextNormal
	}
	return ctx
}

func (r *ContextResolver) isOffSeason(m time.Month) bool {
	for _, month := range r.cfg.OffSeasonMonths {
		if m == month {
			return true
		}
	}
	return false
}

func (r *ContextResolver) isMarketOpen(now time.Time) bool {
	h := now.Hour()
	return h >= r.cfg.MarketOpenHour && h < r.cfg.MarketCloseHour
}

func volatilityLevel(v float64) domain.VolatilityLevel {
	switch {
	case v < volLowCeiling:
		return domain.VolLow
	case v >= volHighFloor:
		return domain.VolHigh
	default:
		return domain.VolNormal
	}
}
