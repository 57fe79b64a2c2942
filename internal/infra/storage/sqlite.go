package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"courtside/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage wraps the SQLite database behind typed operations.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the database at path and runs migrations.
func NewStorage(path string) (*Storage, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Pure-Go SQLite, no cgo
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&domain.PlayerInfo{},
		&domain.BreakerAudit{},
		&domain.TickPoint{},
		&domain.Trade{},
		&domain.Position{},
		&domain.Account{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// ======================================================================================
// Player Operations
// ======================================================================================

// UpsertPlayer creates or updates a roster entry.
func (s *Storage) UpsertPlayer(info *domain.PlayerInfo) error {
	return s.db.Save(info).Error
}

// GetPlayer retrieves a roster entry by ID. Missing rows are not an error.
func (s *Storage) GetPlayer(id string) (*domain.PlayerInfo, error) {
	var info domain.PlayerInfo
	err := s.db.First(&info, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &info, err
}

// ListPlayers retrieves the full persisted roster.
func (s *Storage) ListPlayers() ([]domain.PlayerInfo, error) {
	var infos []domain.PlayerInfo
	err := s.db.Order("id").Find(&infos).Error
	return infos, err
}

// ======================================================================================
// Circuit Breaker Audit
// ======================================================================================

// SaveBreakerAudit appends a halt record to the audit trail.
func (s *Storage) SaveBreakerAudit(rec *domain.BreakerAudit) error {
	return s.db.Create(rec).Error
}

// MarkBreakerResolved flags the most recent open audit row for a player.
func (s *Storage) MarkBreakerResolved(playerID string) error {
	return s.db.Model(&domain.BreakerAudit{}).
		Where("player_id = ? AND resolved = ?", playerID, false).
		Update("resolved", true).Error
}

// BreakerHistory returns the most recent audit rows for a player, newest first.
func (s *Storage) BreakerHistory(playerID string, limit int) ([]domain.BreakerAudit, error) {
	var rows []domain.BreakerAudit
	err := s.db.Where("player_id = ?", playerID).
		Order("halted_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ======================================================================================
// Tick History
// ======================================================================================

// SaveTickPoints persists one tick's prices for all players in a single batch.
func (s *Storage) SaveTickPoints(points []domain.TickPoint) error {
	if len(points) == 0 {
		return nil
	}
	return s.db.Create(&points).Error
}

// RecentTickPoints returns the last n observations for a player, oldest first.
func (s *Storage) RecentTickPoints(playerID string, n int) ([]domain.TickPoint, error) {
	var rows []domain.TickPoint
	err := s.db.Where("player_id = ?", playerID).
		Order("date DESC").
		Limit(n).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	// reverse into chronological order
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

// PruneTickPoints deletes observations older than the cutoff.
func (s *Storage) PruneTickPoints(before time.Time) error {
	return s.db.Where("date < ?", before).Delete(&domain.TickPoint{}).Error
}

// ======================================================================================
// Portfolio Operations
// ======================================================================================

// SaveTrade records a fill.
func (s *Storage) SaveTrade(trade *domain.Trade) error {
	return s.db.Create(trade).Error
}

// ListTrades returns the most recent fills, newest first.
func (s *Storage) ListTrades(limit int) ([]domain.Trade, error) {
	var trades []domain.Trade
	err := s.db.Order("created_at DESC").Limit(limit).Find(&trades).Error
	return trades, err
}

// GetPosition retrieves the holding for a player. Missing rows are not an error.
func (s *Storage) GetPosition(playerID string) (*domain.Position, error) {
	var pos domain.Position
	err := s.db.First(&pos, "player_id = ?", playerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &pos, err
}

// UpsertPosition creates or updates a holding. Zero-share positions are removed.
func (s *Storage) UpsertPosition(pos *domain.Position) error {
	if pos.Shares <= 0 {
		return s.db.Where("player_id = ?", pos.PlayerID).Delete(&domain.Position{}).Error
	}
	return s.db.Save(pos).Error
}

// ListPositions returns all current holdings.
func (s *Storage) ListPositions() ([]domain.Position, error) {
	var positions []domain.Position
	err := s.db.Order("player_id").Find(&positions).Error
	return positions, err
}

// GetAccount retrieves the cash account. Missing rows are not an error.
func (s *Storage) GetAccount() (*domain.Account, error) {
	var acct domain.Account
	err := s.db.First(&acct, "id = ?", 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &acct, err
}

// SaveAccount creates or updates the cash account.
func (s *Storage) SaveAccount(acct *domain.Account) error {
	acct.ID = 1
	return s.db.Save(acct).Error
}
