package engine

import "math"

// Compose blends the three candidate prices with the resolved weight triple.
// Pure function: no hidden state, no clamping.
func Compose(fundamental, market, liveEvents float64, w Weights) float64 {
	return fundamental*w.Fundamental + market*w.Market + liveEvents*w.LiveEvents
}

// ClampMove caps the per-tick percentage move. When the attempted move
// exceeds maxMovePct the price is replaced with oldPrice*(1 +- maxMovePct)
// using the sign of the attempted move.
func ClampMove(newPrice, oldPrice, maxMovePct float64) float64 {
	if oldPrice <= 0 {
		return newPrice
	}
	change := (newPrice - oldPrice) / oldPrice
	if math.Abs(change) <= maxMovePct {
		return newPrice
	}
	if change > 0 {
		return oldPrice * (1 + maxMovePct)
	}
	return oldPrice * (1 - maxMovePct)
}

// SpreadFor derives bid and ask around a price. The full spread widens with
// volatility and thins with liquidity, bounded to [MinSpreadPct,
// MaxSpreadPct] so that (ask-bid)/price never exceeds 2%.
func SpreadFor(price, volatility float64, volume int64, cfg Config) (bid, ask float64) {
	spreadPct := cfg.MinSpreadPct + volatility*0.01
	if volume > 0 {
		// Thin books trade wider. 10k shares/day is treated as fully liquid.
		liquidity := math.Min(1, float64(volume)/10000)
		spreadPct += (1 - liquidity) * cfg.MinSpreadPct
	}
	spreadPct = clamp(spreadPct, cfg.MinSpreadPct, cfg.MaxSpreadPct)

	half := spreadPct / 2
	return price * (1 - half), price * (1 + half)
}
