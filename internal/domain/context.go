package domain

// ContextClass is the resolved pricing regime for a tick. Classification
// priority: OffSeason > GameTime > AfterHours > Normal.
type ContextClass int

const (
	ContextNormal ContextClass = iota
	ContextGameTime
	ContextOffSeason
	ContextAfterHours
)

func (c ContextClass) String() string {
	switch c {
	case ContextNormal:
		return "NORMAL"
	case ContextGameTime:
		return "GAME_TIME"
	case ContextOffSeason:
		return "OFF_SEASON"
	case ContextAfterHours:
		return "AFTER_HOURS"
	default:
		return "UNKNOWN"
	}
}

// VolatilityLevel bands the market-wide annualized volatility.
type VolatilityLevel int

const (
	VolLow VolatilityLevel = iota
	VolNormal
	VolHigh
)

func (v VolatilityLevel) String() string {
	switch v {
	case VolLow:
		return "LOW"
	case VolNormal:
		return "NORMAL"
	case VolHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// PricingContext classifies the current conditions. Derived fresh every
// tick from wall-clock time and live-game presence; never stored.
type PricingContext struct {
	Class           ContextClass    `json:"class"`
	IsGameTime      bool            `json:"is_game_time"`
	IsOffSeason     bool            `json:"is_off_season"`
	MarketOpen      bool            `json:"market_open"`
	VolatilityLevel VolatilityLevel `json:"volatility_level"`
}
