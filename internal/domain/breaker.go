package domain

import "time"

// HaltReason explains why a circuit breaker fired.
type HaltReason int

const (
	HaltVolatility HaltReason = iota // automatic, excess per-tick move
	HaltVolume                       // manual, abnormal volume
	HaltNews                         // manual, exogenous news
)

func (r HaltReason) String() string {
	switch r {
	case HaltVolatility:
		return "VOLATILITY"
	case HaltVolume:
		return "VOLUME"
	case HaltNews:
		return "NEWS"
	default:
		return "UNKNOWN"
	}
}

// CircuitBreakerRecord is the audit trail of a single halt. Created on
// trigger, flipped to Triggered=false on resume, never deleted. At most one
// record per player is active at a time.
type CircuitBreakerRecord struct {
	PlayerID    string     `json:"player_id"`
	Triggered   bool       `json:"triggered"`
	Reason      HaltReason `json:"reason"`
	HaltedAt    time.Time  `json:"halted_at"`
	ResumesAt   time.Time  `json:"resumes_at"`
	PriceAtHalt float64    `json:"price_at_halt"`
}

// ActiveAt reports whether the halt still governs at the given instant.
func (r *CircuitBreakerRecord) ActiveAt(now time.Time) bool {
	return r.Triggered && now.Before(r.ResumesAt)
}
