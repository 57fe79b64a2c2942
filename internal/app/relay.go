package app

import (
	"log/slog"
	"time"

	"courtside/internal/domain"
	"courtside/internal/infra/storage"
	"courtside/internal/infra/ws"
	"courtside/internal/service"
)

// MarketRelay fans engine output out to its consumers: the read-side
// board, the websocket hub, and the audit tables. It implements the
// engine's notifier and batch callback, which both run outside the
// engine lock.
type MarketRelay struct {
	store *storage.Storage
	hub   *ws.Hub
	board *service.MarketBoard
}

// NewMarketRelay wires a relay. hub may be nil in headless runs.
func NewMarketRelay(store *storage.Storage, hub *ws.Hub, board *service.MarketBoard) *MarketRelay {
	return &MarketRelay{store: store, hub: hub, board: board}
}

// OnBatch receives one completed tick: updates the board, persists the
// prices, and broadcasts the snapshot.
func (r *MarketRelay) OnBatch(batch []domain.PlayerStock, pctx domain.PricingContext) {
	r.board.Update(batch, pctx)

	points := make([]domain.TickPoint, 0, len(batch))
	for _, p := range batch {
		points = append(points, domain.TickPoint{
			PlayerID: p.ID,
			Date:     lastPointDate(p),
			Price:    p.CurrentPrice,
		})
	}
	if err := r.store.SaveTickPoints(points); err != nil {
		slog.Error("Failed to persist tick points", slog.Any("error", err))
	}

	if r.hub != nil {
		r.hub.Broadcast("tick", struct {
			Players []domain.PlayerStock  `json:"players"`
			Context domain.PricingContext `json:"context"`
		}{batch, pctx})
	}
}

// Halted persists the audit row and broadcasts the halt.
func (r *MarketRelay) Halted(rec domain.CircuitBreakerRecord) {
	audit := &domain.BreakerAudit{
		PlayerID:    rec.PlayerID,
		Reason:      rec.Reason.String(),
		HaltedAt:    rec.HaltedAt,
		ResumesAt:   rec.ResumesAt,
		PriceAtHalt: rec.PriceAtHalt,
	}
	if err := r.store.SaveBreakerAudit(audit); err != nil {
		slog.Error("Failed to persist breaker audit", slog.String("player", rec.PlayerID), slog.Any("error", err))
	}

	if r.hub != nil {
		r.hub.Broadcast("halt", rec)
	}
}

// Resumed closes the audit row and broadcasts the resume.
func (r *MarketRelay) Resumed(rec domain.CircuitBreakerRecord) {
	if err := r.store.MarkBreakerResolved(rec.PlayerID); err != nil {
		slog.Error("Failed to resolve breaker audit", slog.String("player", rec.PlayerID), slog.Any("error", err))
	}

	if r.hub != nil {
		r.hub.Broadcast("resume", rec)
	}
}

// GameEvent broadcasts a live game event.
func (r *MarketRelay) GameEvent(ev domain.GameEvent) {
	if r.hub != nil {
		r.hub.Broadcast("game_event", ev)
	}
}

// lastPointDate uses the freshly appended history point's timestamp so the
// persisted row matches the in-memory window.
func lastPointDate(p domain.PlayerStock) time.Time {
	if n := len(p.PriceHistory); n > 0 {
		return p.PriceHistory[n-1].Date
	}
	return time.Now()
}
