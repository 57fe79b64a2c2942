package feed

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"courtside/internal/domain"
)

const bookDepth = 5

// PriceSource supplies the current prices the synthetic books form around.
type PriceSource func() []domain.PlayerStock

// BookSimulator generates synthetic order book depth around the current
// price of each instrument. It implements the engine's book provider.
// The books are pricing inputs only; no orders rest behind them.
type BookSimulator struct {
	mu       sync.RWMutex
	rng      *rand.Rand
	source   PriceSource
	interval time.Duration

	books  map[string]*domain.OrderBookSnapshot
	trades map[string]int64
}

// NewBookSimulator creates a simulator seeded for reproducible runs.
func NewBookSimulator(seed int64, source PriceSource, interval time.Duration) *BookSimulator {
	return &BookSimulator{
		rng:      rand.New(rand.NewSource(seed)),
		source:   source,
		interval: interval,
		books:    make(map[string]*domain.OrderBookSnapshot),
		trades:   make(map[string]int64),
	}
}

// Run regenerates all books on the refresh interval until ctx is done.
func (s *BookSimulator) Run(ctx context.Context) {
	slog.Info("Book simulator started", slog.Duration("interval", s.interval))

	s.Refresh()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Book simulator stopped")
			return
		case <-ticker.C:
			s.Refresh()
		}
	}
}

// Refresh rebuilds every book around the latest prices.
func (s *BookSimulator) Refresh() {
	players := s.source()

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range players {
		p := &players[i]
		s.books[p.ID] = s.generate(p.CurrentPrice)
		// Trade count follows the player's float: big names churn more
		base := int64(p.TotalShares / 1000)
		if base < 10 {
			base = 10
		}
		s.trades[p.ID] += s.rng.Int63n(base)
	}
}

// generate builds depth around a mid price with a random side bias.
func (s *BookSimulator) generate(mid float64) *domain.OrderBookSnapshot {
	if mid <= 0 {
		return &domain.OrderBookSnapshot{}
	}

	// Bias in [-0.3, 0.3] skews volume toward one side of the book
	bias := (s.rng.Float64() - 0.5) * 0.6
	step := mid * 0.001

	book := &domain.OrderBookSnapshot{
		Bids: make([]domain.BookLevel, 0, bookDepth),
		Asks: make([]domain.BookLevel, 0, bookDepth),
	}

	for i := 1; i <= bookDepth; i++ {
		baseVol := 100 + s.rng.Float64()*400
		book.Bids = append(book.Bids, domain.BookLevel{
			Price:  mid - step*float64(i),
			Volume: baseVol * (1 + bias),
		})
		book.Asks = append(book.Asks, domain.BookLevel{
			Price:  mid + step*float64(i),
			Volume: baseVol * (1 - bias),
		})
	}

	return book
}

// Snapshot returns the current book for a player, or nil when none exists
// yet. The returned snapshot is a copy.
func (s *BookSimulator) Snapshot(playerID string) *domain.OrderBookSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[playerID]
	if !ok {
		return nil
	}

	cp := &domain.OrderBookSnapshot{
		Bids: make([]domain.BookLevel, len(book.Bids)),
		Asks: make([]domain.BookLevel, len(book.Asks)),
	}
	copy(cp.Bids, book.Bids)
	copy(cp.Asks, book.Asks)
	return cp
}

// RecentTrades returns and resets the trade count accumulated since the
// last call. The engine drains it once per tick.
func (s *BookSimulator) RecentTrades(playerID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.trades[playerID]
	s.trades[playerID] = 0
	return n
}
