package service

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"courtside/internal/domain"
	"courtside/internal/infra"
	"courtside/internal/infra/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HaltChecker reports whether trading in an instrument is suspended.
type HaltChecker interface {
	IsHalted(playerID string) bool
}

// Portfolio executes simulated fills against the latest board prices.
// Buys fill at the ask, sells at the bid. Money is decimal end to end;
// float prices are converted once at the fill boundary.
type Portfolio struct {
	mu    sync.Mutex
	store *storage.Storage
	board *MarketBoard
	halts HaltChecker
}

// NewPortfolio loads or creates the cash account and returns the portfolio.
func NewPortfolio(store *storage.Storage, board *MarketBoard, halts HaltChecker, startingCash decimal.Decimal) (*Portfolio, error) {
	acct, err := store.GetAccount()
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if acct == nil {
		acct = &domain.Account{Cash: startingCash}
		if err := store.SaveAccount(acct); err != nil {
			return nil, fmt.Errorf("failed to create account: %w", err)
		}
		slog.Info("Portfolio account created", slog.String("cash", startingCash.String()))
	}

	return &Portfolio{store: store, board: board, halts: halts}, nil
}

// Buy fills a buy order at the current ask price.
func (p *Portfolio) Buy(playerID string, shares float64) (*domain.Trade, error) {
	if shares <= 0 {
		return nil, fmt.Errorf("shares must be positive, got %v", shares)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	stock, ok := p.board.Get(playerID)
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	if p.halts != nil && p.halts.IsHalted(playerID) {
		return nil, domain.ErrMarketHalted
	}

	price := decimal.NewFromFloat(stock.AskPrice)
	cost := price.Mul(decimal.NewFromFloat(shares))

	acct, err := p.store.GetAccount()
	if err != nil {
		return nil, err
	}
	if acct == nil || acct.Cash.LessThan(cost) {
		return nil, domain.ErrInsufficientFunds
	}

	pos, err := p.store.GetPosition(playerID)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		pos = &domain.Position{PlayerID: playerID, AvgCost: decimal.Zero}
	}

	// Weighted average cost across the old and new lots
	oldCost := pos.AvgCost.Mul(decimal.NewFromFloat(pos.Shares))
	newShares := pos.Shares + shares
	pos.AvgCost = oldCost.Add(cost).Div(decimal.NewFromFloat(newShares))
	pos.Shares = newShares

	trade := &domain.Trade{
		ID:        uuid.NewString(),
		PlayerID:  playerID,
		Side:      "BUY",
		Shares:    shares,
		Price:     price,
		Cost:      cost,
		CreatedAt: time.Now(),
	}

	acct.Cash = acct.Cash.Sub(cost)
	if err := p.persistFill(trade, pos, acct); err != nil {
		return nil, err
	}

	slog.Info("Buy filled",
		slog.String("player", playerID),
		slog.Float64("shares", shares),
		slog.String("price", price.String()))
	return trade, nil
}

// Sell fills a sell order at the current bid price.
func (p *Portfolio) Sell(playerID string, shares float64) (*domain.Trade, error) {
	if shares <= 0 {
		return nil, fmt.Errorf("shares must be positive, got %v", shares)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	stock, ok := p.board.Get(playerID)
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	if p.halts != nil && p.halts.IsHalted(playerID) {
		return nil, domain.ErrMarketHalted
	}

	pos, err := p.store.GetPosition(playerID)
	if err != nil {
		return nil, err
	}
	if pos == nil || pos.Shares < shares {
		return nil, domain.ErrInsufficientShares
	}

	price := decimal.NewFromFloat(stock.BidPrice)
	proceeds := price.Mul(decimal.NewFromFloat(shares))

	acct, err := p.store.GetAccount()
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, fmt.Errorf("account missing")
	}

	pos.Shares -= shares

	trade := &domain.Trade{
		ID:        uuid.NewString(),
		PlayerID:  playerID,
		Side:      "SELL",
		Shares:    shares,
		Price:     price,
		Cost:      proceeds,
		CreatedAt: time.Now(),
	}

	acct.Cash = acct.Cash.Add(proceeds)
	if err := p.persistFill(trade, pos, acct); err != nil {
		return nil, err
	}

	slog.Info("Sell filled",
		slog.String("player", playerID),
		slog.Float64("shares", shares),
		slog.String("price", price.String()))
	return trade, nil
}

func (p *Portfolio) persistFill(trade *domain.Trade, pos *domain.Position, acct *domain.Account) error {
	if err := p.store.SaveTrade(trade); err != nil {
		return err
	}
	pos.UpdatedAt = trade.CreatedAt
	if err := p.store.UpsertPosition(pos); err != nil {
		return err
	}
	if err := p.store.SaveAccount(acct); err != nil {
		return err
	}
	infra.GlobalMetrics.RecordTradeFilled()
	return nil
}

// Summary is the portfolio's current cash, holdings, and mark-to-market
// value at bid prices.
type Summary struct {
	Cash        decimal.Decimal   `json:"cash"`
	Positions   []domain.Position `json:"positions"`
	MarketValue decimal.Decimal   `json:"market_value"`
	TotalValue  decimal.Decimal   `json:"total_value"`
}

// Summarize values every holding against the latest bid.
func (p *Portfolio) Summarize() (*Summary, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, err := p.store.GetAccount()
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, fmt.Errorf("account missing")
	}

	positions, err := p.store.ListPositions()
	if err != nil {
		return nil, err
	}

	market := decimal.Zero
	for _, pos := range positions {
		if stock, ok := p.board.Get(pos.PlayerID); ok {
			bid := decimal.NewFromFloat(stock.BidPrice)
			market = market.Add(bid.Mul(decimal.NewFromFloat(pos.Shares)))
		}
	}

	return &Summary{
		Cash:        acct.Cash,
		Positions:   positions,
		MarketValue: market,
		TotalValue:  acct.Cash.Add(market),
	}, nil
}

// Trades returns recent fills, newest first.
func (p *Portfolio) Trades(limit int) ([]domain.Trade, error) {
	return p.store.ListTrades(limit)
}
