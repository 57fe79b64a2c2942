package engine

import (
	"math"

	"courtside/internal/domain"
)

// tradingDaysPerYear annualizes the per-observation standard deviation
// assuming one observation per trading day.
const tradingDaysPerYear = 252

// AppendPoint appends a point to a bounded history, evicting the oldest
// entries beyond capacity. Insertion order is chronological, oldest first.
func AppendPoint(history []domain.PricePoint, point domain.PricePoint, capacity int) []domain.PricePoint {
	history = append(history, point)
	if len(history) > capacity {
		history = history[len(history)-capacity:]
	}
	return history
}

// AnnualizedVolatility computes sqrt(populationVariance(simpleReturns)) *
// sqrt(252) over the history. With fewer than 2 points there are no returns,
// so the fallback is returned. Pure and deterministic for a given history.
func AnnualizedVolatility(history []domain.PricePoint, fallback float64) float64 {
	if len(history) < 2 {
		return fallback
	}

	returns := make([]float64, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		prev := history[i-1].Price
		if prev <= 0 {
			continue
		}
		returns = append(returns, (history[i].Price-prev)/prev)
	}
	if len(returns) == 0 {
		return fallback
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))

	return math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear)
}
