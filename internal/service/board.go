package service

import (
	"sort"
	"sync"
	"time"

	"courtside/internal/domain"
)

// MarketBoard holds the latest tick snapshot for read-side consumers
// (HTTP handlers, the websocket hub, the portfolio). It is fed by the
// engine's batch callback and never mutates instrument state itself.
type MarketBoard struct {
	mu        sync.RWMutex
	players   map[string]domain.PlayerStock
	context   domain.PricingContext
	updatedAt time.Time
}

// NewMarketBoard creates an empty board.
func NewMarketBoard() *MarketBoard {
	return &MarketBoard{
		players: make(map[string]domain.PlayerStock),
	}
}

// Update replaces the board with a fresh tick batch.
func (b *MarketBoard) Update(batch []domain.PlayerStock, pctx domain.PricingContext) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range batch {
		b.players[p.ID] = p
	}
	b.context = pctx
	b.updatedAt = time.Now()
}

// List returns all players sorted by ID for consistent ordering.
func (b *MarketBoard) List() []domain.PlayerStock {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]domain.PlayerStock, 0, len(b.players))
	for _, p := range b.players {
		result = append(result, p)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Get returns the latest snapshot for a player.
func (b *MarketBoard) Get(id string) (domain.PlayerStock, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	p, ok := b.players[id]
	return p, ok
}

// Context returns the pricing context of the latest tick.
func (b *MarketBoard) Context() domain.PricingContext {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.context
}

// UpdatedAt returns when the board last received a batch.
func (b *MarketBoard) UpdatedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.updatedAt
}
