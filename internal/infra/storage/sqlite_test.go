package storage

import (
	"os"
	"testing"
	"time"

	"courtside/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *Storage {
	dbName := "test.db"
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&domain.PlayerInfo{},
		&domain.BreakerAudit{},
		&domain.TickPoint{},
		&domain.Trade{},
		&domain.Position{},
		&domain.Account{},
	); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	t.Cleanup(func() {
		os.Remove(dbName)
	})

	return &Storage{db: db}
}

func TestUpsertAndGetPlayer(t *testing.T) {
	s := setupTestDB(t)

	info := &domain.PlayerInfo{
		ID:       "test-p",
		Name:     "Test Player",
		Team:     "TST",
		Position: "PG",
	}

	if err := s.UpsertPlayer(info); err != nil {
		t.Fatalf("UpsertPlayer failed: %v", err)
	}

	fetched, err := s.GetPlayer("test-p")
	if err != nil {
		t.Fatalf("GetPlayer failed: %v", err)
	}
	if fetched == nil {
		t.Fatal("fetched player is nil")
	}
	if fetched.Name != "Test Player" {
		t.Errorf("expected name Test Player, got %s", fetched.Name)
	}
}

func TestGetPlayerNotFound(t *testing.T) {
	s := setupTestDB(t)

	fetched, err := s.GetPlayer("missing")
	if err != nil {
		t.Fatalf("GetPlayer failed: %v", err)
	}
	if fetched != nil {
		t.Errorf("expected nil for missing player, got %+v", fetched)
	}
}

func TestBreakerAuditLifecycle(t *testing.T) {
	s := setupTestDB(t)

	now := time.Now()
	rec := &domain.BreakerAudit{
		PlayerID:    "test-p",
		Reason:      "VOLATILITY",
		HaltedAt:    now,
		ResumesAt:   now.Add(5 * time.Minute),
		PriceAtHalt: 120.5,
	}

	if err := s.SaveBreakerAudit(rec); err != nil {
		t.Fatalf("SaveBreakerAudit failed: %v", err)
	}

	rows, err := s.BreakerHistory("test-p", 10)
	if err != nil {
		t.Fatalf("BreakerHistory failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 audit row, got %d", len(rows))
	}
	if rows[0].Resolved {
		t.Error("new audit row should not be resolved")
	}

	if err := s.MarkBreakerResolved("test-p"); err != nil {
		t.Fatalf("MarkBreakerResolved failed: %v", err)
	}

	rows, err = s.BreakerHistory("test-p", 10)
	if err != nil {
		t.Fatalf("BreakerHistory failed: %v", err)
	}
	if !rows[0].Resolved {
		t.Error("audit row should be resolved after MarkBreakerResolved")
	}
}

func TestTickPointsOrdering(t *testing.T) {
	s := setupTestDB(t)

	base := time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC)
	var points []domain.TickPoint
	for i := 0; i < 5; i++ {
		points = append(points, domain.TickPoint{
			PlayerID: "test-p",
			Date:     base.Add(time.Duration(i) * 30 * time.Second),
			Price:    100 + float64(i),
		})
	}

	if err := s.SaveTickPoints(points); err != nil {
		t.Fatalf("SaveTickPoints failed: %v", err)
	}

	recent, err := s.RecentTickPoints("test-p", 3)
	if err != nil {
		t.Fatalf("RecentTickPoints failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 points, got %d", len(recent))
	}
	// chronological: last three observations
	if recent[0].Price != 102 || recent[2].Price != 104 {
		t.Errorf("unexpected ordering: first=%v last=%v", recent[0].Price, recent[2].Price)
	}
}

func TestPositionUpsertAndRemoval(t *testing.T) {
	s := setupTestDB(t)

	pos := &domain.Position{
		PlayerID: "test-p",
		Shares:   10,
		AvgCost:  decimal.NewFromFloat(95.5),
	}

	if err := s.UpsertPosition(pos); err != nil {
		t.Fatalf("UpsertPosition failed: %v", err)
	}

	fetched, err := s.GetPosition("test-p")
	if err != nil {
		t.Fatalf("GetPosition failed: %v", err)
	}
	if fetched == nil || fetched.Shares != 10 {
		t.Fatalf("unexpected position: %+v", fetched)
	}

	// Selling down to zero removes the row
	pos.Shares = 0
	if err := s.UpsertPosition(pos); err != nil {
		t.Fatalf("UpsertPosition(0) failed: %v", err)
	}
	fetched, err = s.GetPosition("test-p")
	if err != nil {
		t.Fatalf("GetPosition failed: %v", err)
	}
	if fetched != nil {
		t.Errorf("expected zero-share position to be removed, got %+v", fetched)
	}
}

func TestAccountRoundTrip(t *testing.T) {
	s := setupTestDB(t)

	acct, err := s.GetAccount()
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if acct != nil {
		t.Fatalf("expected no account initially, got %+v", acct)
	}

	cash := decimal.RequireFromString("10000.00")
	if err := s.SaveAccount(&domain.Account{Cash: cash}); err != nil {
		t.Fatalf("SaveAccount failed: %v", err)
	}

	acct, err = s.GetAccount()
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if acct == nil {
		t.Fatal("account is nil after save")
	}
	if !acct.Cash.Equal(cash) {
		t.Errorf("expected cash %s, got %s", cash, acct.Cash)
	}
}

func TestSaveTrade(t *testing.T) {
	s := setupTestDB(t)

	trade := &domain.Trade{
		ID:       "trade-1",
		PlayerID: "test-p",
		Side:     "BUY",
		Shares:   5,
		Price:    decimal.NewFromFloat(101.25),
		Cost:     decimal.NewFromFloat(506.25),
	}

	if err := s.SaveTrade(trade); err != nil {
		t.Fatalf("SaveTrade failed: %v", err)
	}

	trades, err := s.ListTrades(10)
	if err != nil {
		t.Fatalf("ListTrades failed: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].Side != "BUY" || trades[0].Shares != 5 {
		t.Errorf("unexpected trade: %+v", trades[0])
	}
}
