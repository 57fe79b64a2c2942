package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"courtside/internal/domain"
	"courtside/internal/engine"
	"courtside/internal/infra"
	"courtside/internal/infra/storage"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config    *infra.Config
	Storage   *storage.Storage
	Headshots *infra.HeadshotCache
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logger, DB, assets)
func (b *Bootstrap) Initialize(configPath string) error {
	slog.Info("🚀 Bootstrapping Courtside...")

	// 1. Load Config
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized", slog.String("path", cfg.Storage.Path))

	// 4. Initialize Headshot Cache
	cache, err := infra.NewHeadshotCache(cfg.Headshots.Dir, cfg.Headshots.URLTemplate)
	if err != nil {
		return err
	}
	b.Headshots = cache
	slog.Info("✅ Headshot cache ready")

	return nil
}

// EngineConfig builds the engine tuning from the loaded YAML, falling back
// to the reference defaults for anything left unset.
func (b *Bootstrap) EngineConfig() engine.Config {
	m := b.Config.Market
	cfg := engine.DefaultConfig()

	cfg.TickInterval = time.Duration(m.TickIntervalSec) * time.Second
	if m.HistoryCapacity > 0 {
		cfg.HistoryCapacity = m.HistoryCapacity
	}
	if m.DefaultVolatility > 0 {
		cfg.DefaultVolatility = m.DefaultVolatility
	}
	if m.VolatilityThreshold > 0 {
		cfg.VolatilityThreshold = m.VolatilityThreshold
	}
	if m.HaltDurationSec > 0 {
		cfg.HaltDuration = time.Duration(m.HaltDurationSec) * time.Second
	}
	if m.MaxMovePct > 0 {
		cfg.MaxMovePct = m.MaxMovePct
	}
	if m.PriceFloor > 0 {
		cfg.PriceFloor = m.PriceFloor
	}
	if m.MinSpreadPct > 0 {
		cfg.MinSpreadPct = m.MinSpreadPct
	}
	if m.MaxSpreadPct > 0 {
		cfg.MaxSpreadPct = m.MaxSpreadPct
	}
	if m.ReversionFactor > 0 {
		cfg.ReversionFactor = m.ReversionFactor
	}
	if m.RandomWalkScale > 0 {
		cfg.RandomWalkScale = m.RandomWalkScale
	}
	if m.MarketNoiseScale > 0 {
		cfg.MarketNoiseScale = m.MarketNoiseScale
	}
	if m.SpeculativeNoise > 0 {
		cfg.SpeculativeNoiseScale = m.SpeculativeNoise
	}
	if m.VolumePressure > 0 {
		cfg.VolumePressureScale = m.VolumePressure
	}
	if m.StatWeights.Points > 0 {
		cfg.StatWeights = engine.StatWeights{
			Points:     m.StatWeights.Points,
			Rebounds:   m.StatWeights.Rebounds,
			Assists:    m.StatWeights.Assists,
			Efficiency: m.StatWeights.Efficiency,
		}
	}
	if len(m.Presets) > 0 {
		presets := make(map[domain.ContextClass]engine.Weights, len(m.Presets))
		for name, w := range m.Presets {
			class, ok := parseContextClass(name)
			if !ok {
				slog.Warn("Unknown context class in config, skipping", slog.String("class", name))
				continue
			}
			presets[class] = engine.Weights{
				Fundamental: w.Fundamental,
				Market:      w.Market,
				LiveEvents:  w.LiveEvents,
			}
		}
		cfg.Presets = presets
	}
	if len(m.EventImpacts) > 0 {
		cfg.EventImpacts = m.EventImpacts
	}
	if len(m.OffSeason) > 0 {
		months := make([]time.Month, 0, len(m.OffSeason))
		for _, n := range m.OffSeason {
			months = append(months, time.Month(n))
		}
		cfg.OffSeasonMonths = months
	}
	if m.OpenHour > 0 {
		cfg.MarketOpenHour = m.OpenHour
	}
	if m.CloseHour > 0 {
		cfg.MarketCloseHour = m.CloseHour
	}

	return cfg
}

func parseContextClass(name string) (domain.ContextClass, bool) {
	switch name {
	case "NORMAL":
		return domain.ContextNormal, true
	case "GAME_TIME":
		return domain.ContextGameTime, true
	case "OFF_SEASON":
		return domain.ContextOffSeason, true
	case "AFTER_HOURS":
		return domain.ContextAfterHours, true
	default:
		return 0, false
	}
}

// Roster builds the in-memory instruments from the configured seeds.
func (b *Bootstrap) Roster() []domain.PlayerStock {
	roster := make([]domain.PlayerStock, 0, len(b.Config.Roster))
	for _, seed := range b.Config.Roster {
		roster = append(roster, domain.PlayerStock{
			ID:              seed.ID,
			Name:            seed.Name,
			Team:            seed.Team,
			Position:        seed.Position,
			Stats:           seed.Stats,
			CurrentPrice:    seed.Price,
			AvailableShares: seed.TotalShares,
			TotalShares:     seed.TotalShares,
		})
	}
	return roster
}

// SyncRoster persists the roster and fetches headshots in the background
func (b *Bootstrap) SyncRoster(ctx context.Context) {
	slog.Info("🔄 Starting roster synchronization...")

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 5) // Limit concurrent downloads

	for _, seed := range b.Config.Roster {
		wg.Add(1)
		go func(seed infra.PlayerSeed) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}: // Acquire
			}
			defer func() { <-semaphore }() // Release

			info := &domain.PlayerInfo{
				ID:       seed.ID,
				Name:     seed.Name,
				Team:     seed.Team,
				Position: seed.Position,
			}

			// Preserve sync state across restarts
			if existing, _ := b.Storage.GetPlayer(seed.ID); existing != nil {
				info.HeadshotPath = existing.HeadshotPath
				info.LastSyncedAt = existing.LastSyncedAt
			}

			if err := b.Storage.UpsertPlayer(info); err != nil {
				slog.Error("Failed to upsert player", slog.String("id", seed.ID), slog.Any("error", err))
			}

			path, err := b.Headshots.Download(seed.ID)
			if err != nil {
				slog.Warn("Failed to download headshot", slog.String("id", seed.ID), slog.Any("error", err))
			} else if path != "" {
				info.HeadshotPath = path
				info.LastSyncedAt = time.Now()
				b.Storage.UpsertPlayer(info)
			}
		}(seed)
	}

	wg.Wait()
	slog.Info("✨ Roster synchronization completed")
}
