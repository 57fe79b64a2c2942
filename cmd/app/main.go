package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"courtside/internal/app"
	"courtside/internal/domain"
	"courtside/internal/engine"
	"courtside/internal/feed"
	"courtside/internal/infra/ws"
	"courtside/internal/service"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	// .env is optional; real env vars win either way
	_ = godotenv.Load()

	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Background Roster Sync (headshots + persisted roster)
	go bootstrap.SyncRoster(ctx)

	// 5. Read side: board, websocket hub, relay
	board := service.NewMarketBoard()
	hub := ws.NewHub()
	relay := app.NewMarketRelay(bootstrap.Storage, hub, board)

	// 6. Synthetic feeds
	seed := cfg.Market.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	slog.Info("Feeds seeded", slog.Int64("seed", seed))

	roster := bootstrap.Roster()
	playerIDs := make([]string, 0, len(roster))
	for _, p := range roster {
		playerIDs = append(playerIDs, p.ID)
	}

	var eng *engine.Engine
	books := feed.NewBookSimulator(seed, func() []domain.PlayerStock {
		return eng.Players()
	}, time.Duration(cfg.Market.BookRefreshSec)*time.Second)

	games := feed.NewGameSimulator(seed+1, playerIDs, nil, time.Duration(cfg.Market.GameEventSec)*time.Second)

	// 7. Pricing engine (single-thread tick loop)
	eng, err := engine.NewEngine(
		bootstrap.EngineConfig(),
		rand.New(rand.NewSource(seed+2)),
		roster,
		books,
		games,
		relay,
		relay.OnBatch,
	)
	if err != nil {
		slog.Error("❌ Engine init failed", slog.Any("error", err))
		os.Exit(1)
	}

	games.SetInbox(eng.Inbox())

	stats := feed.NewStatRefresher(seed+3, playerIDs, func(id string) (domain.PlayerStats, bool) {
		p, ok := eng.Player(id)
		return p.Stats, ok
	}, eng.Inbox(), time.Duration(cfg.Market.StatRefreshSec)*time.Second)

	go eng.Run(ctx)
	go books.Run(ctx)
	go games.Run(ctx)
	go stats.Run(ctx)
	slog.InfoContext(ctx, "✅ Engine and feeds started", slog.Int("players", len(roster)))

	// 8. Portfolio
	startingCash, err := decimal.NewFromString(cfg.Portfolio.StartingCash)
	if err != nil {
		slog.Error("❌ Invalid starting cash", slog.Any("error", err))
		os.Exit(1)
	}
	portfolio, err := service.NewPortfolio(bootstrap.Storage, board, eng, startingCash)
	if err != nil {
		slog.Error("❌ Portfolio init failed", slog.Any("error", err))
		os.Exit(1)
	}

	// 9. HTTP + WebSocket surface
	server := app.NewServer(cfg.Server.Addr, eng, board, portfolio, hub)

	slog.InfoContext(ctx, "✨ Courtside fully operational. Press Ctrl+C to exit.")

	if err := server.Start(ctx); err != nil {
		slog.Error("HTTP server failed", slog.Any("error", err))
	}

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
}
