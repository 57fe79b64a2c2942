package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlayerInfo is the persisted roster entry for a player.
type PlayerInfo struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Name         string    `json:"name"`
	Team         string    `json:"team" gorm:"index"`
	Position     string    `json:"position"`
	HeadshotPath string    `json:"headshot_path"`
	LastSyncedAt time.Time `json:"last_synced_at"` // Last headshot sync time
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BreakerAudit is a persisted circuit-breaker record. Rows are inserted on
// trigger and marked resolved on resume; they are never deleted.
type BreakerAudit struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PlayerID    string    `gorm:"index" json:"player_id"`
	Reason      string    `json:"reason"`
	HaltedAt    time.Time `json:"halted_at"`
	ResumesAt   time.Time `json:"resumes_at"`
	PriceAtHalt float64   `json:"price_at_halt"`
	Resolved    bool      `gorm:"index" json:"resolved"`
	CreatedAt   time.Time `json:"created_at"`
}

// TickPoint is one persisted price observation, mirroring the in-memory
// history window without its capacity bound.
type TickPoint struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PlayerID string    `gorm:"index" json:"player_id"`
	Date     time.Time `json:"date"`
	Price    float64   `json:"price"`
}

// Trade is a persisted portfolio fill.
type Trade struct {
	ID        string          `gorm:"primaryKey" json:"id"` // uuid
	PlayerID  string          `gorm:"index" json:"player_id"`
	Side      string          `json:"side"` // "BUY" or "SELL"
	Shares    float64         `json:"shares"`
	Price     decimal.Decimal `gorm:"type:text" json:"price"`
	Cost      decimal.Decimal `gorm:"type:text" json:"cost"`
	CreatedAt time.Time       `json:"created_at"`
}

// Position is the current holding per player.
type Position struct {
	PlayerID  string          `gorm:"primaryKey" json:"player_id"`
	Shares    float64         `json:"shares"`
	AvgCost   decimal.Decimal `gorm:"type:text" json:"avg_cost"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Account holds the portfolio cash balance. A single row with ID 1.
type Account struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Cash      decimal.Decimal `gorm:"type:text" json:"cash"`
	UpdatedAt time.Time       `json:"updated_at"`
}
