package engine

import (
	"math"
	"time"

	"courtside/internal/domain"
)

// BreakerBoard is the halt/resume state machine for all instruments. At
// most one active record per player; re-entrant triggers while halted are
// no-ops. Owned by the engine loop, which serializes every mutation.
type BreakerBoard struct {
	cfg     Config
	records map[string]*domain.CircuitBreakerRecord
	audit   []domain.CircuitBreakerRecord // every halt ever triggered
}

// NewBreakerBoard creates an empty board.
func NewBreakerBoard(cfg Config) *BreakerBoard {
	return &BreakerBoard{
		cfg:     cfg,
		records: make(map[string]*domain.CircuitBreakerRecord),
	}
}

// Halted reports whether the player's halt window still governs at now.
// Read-only: the Active->Halted->Active transitions happen in Trigger and
// MaybeResume, inside the tick.
func (b *BreakerBoard) Halted(playerID string, now time.Time) bool {
	rec, ok := b.records[playerID]
	return ok && rec.ActiveAt(now)
}

// CheckMove applies the automatic volatility trigger: a per-tick change at
// or beyond the threshold halts the instrument. change is fractional
// (0.16 = 16%). Returns the new record when a halt fired.
func (b *BreakerBoard) CheckMove(p *domain.PlayerStock, change float64, now time.Time) (*domain.CircuitBreakerRecord, bool) {
	if math.Abs(change) < b.cfg.VolatilityThreshold {
		return nil, false
	}
	return b.Trigger(p, domain.HaltVolatility, now)
}

// Trigger halts the instrument at its current price. Used directly for
// manual halts (NEWS, VOLUME), which bypass the volatility check. A trigger
// while already halted is a no-op: the existing window governs.
func (b *BreakerBoard) Trigger(p *domain.PlayerStock, reason domain.HaltReason, now time.Time) (*domain.CircuitBreakerRecord, bool) {
	if b.Halted(p.ID, now) {
		return nil, false
	}

	rec := &domain.CircuitBreakerRecord{
		PlayerID:    p.ID,
		Triggered:   true,
		Reason:      reason,
		HaltedAt:    now,
		ResumesAt:   now.Add(b.cfg.HaltDuration),
		PriceAtHalt: p.CurrentPrice,
	}
	b.records[p.ID] = rec
	b.audit = append(b.audit, *rec)
	return rec, true
}

// MaybeResume transitions Halted->Active once the window has passed.
// Returns the cleared record when a resume happened this call.
func (b *BreakerBoard) MaybeResume(playerID string, now time.Time) (*domain.CircuitBreakerRecord, bool) {
	rec, ok := b.records[playerID]
	if !ok || !rec.Triggered {
		return nil, false
	}
	if now.Before(rec.ResumesAt) {
		return nil, false
	}
	rec.Triggered = false
	cp := *rec
	return &cp, true
}

// Record returns a copy of the player's most recent breaker record.
func (b *BreakerBoard) Record(playerID string) (domain.CircuitBreakerRecord, bool) {
	rec, ok := b.records[playerID]
	if !ok {
		return domain.CircuitBreakerRecord{}, false
	}
	return *rec, true
}

// Active returns copies of all records whose halt window still governs.
func (b *BreakerBoard) Active(now time.Time) []domain.CircuitBreakerRecord {
	var out []domain.CircuitBreakerRecord
	for _, rec := range b.records {
		if rec.ActiveAt(now) {
			out = append(out, *rec)
		}
	}
	return out
}

// History returns a copy of the full audit trail, oldest first.
func (b *BreakerBoard) History() []domain.CircuitBreakerRecord {
	out := make([]domain.CircuitBreakerRecord, len(b.audit))
	copy(out, b.audit)
	return out
}
