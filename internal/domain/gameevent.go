package domain

import "time"

// Well-known live game event types. Their price impacts are configuration
// data, not derived values.
const (
	EventThreePointer   = "three_pointer"
	EventDunk           = "dunk"
	EventAssist         = "assist"
	EventSteal          = "steal"
	EventBlock          = "block"
	EventTripleDouble   = "triple_double"
	EventFortyPointGame = "forty_point_game"
	EventInjury         = "injury"
	EventEjection       = "ejection"
	EventGameWinner     = "game_winner"
)

// GameEvent is a discrete in-game occurrence pushed in from the live feed.
// PriceImpact is the fractional multiplier delta (+0.002 = +0.2%); Impact is
// the raw stat magnitude (points scored, etc.) kept for display.
type GameEvent struct {
	Type        string    `json:"type"`
	PlayerID    string    `json:"player_id"`
	Impact      float64   `json:"impact"`
	PriceImpact float64   `json:"price_impact"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
}
