package feed

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"courtside/internal/domain"
	"courtside/internal/engine"
)

// StatsSource returns the current stat line for a player.
type StatsSource func(playerID string) (domain.PlayerStats, bool)

// StatRefresher drifts player season averages on a slow cadence, standing
// in for an external stats provider. Updates are sent through the engine
// inbox so the fundamental valuator picks them up on the next tick.
type StatRefresher struct {
	rng      *rand.Rand
	players  []string
	source   StatsSource
	inbox    chan<- engine.Message
	interval time.Duration
}

// NewStatRefresher creates a refresher for the given roster IDs.
func NewStatRefresher(seed int64, players []string, source StatsSource, inbox chan<- engine.Message, interval time.Duration) *StatRefresher {
	return &StatRefresher{
		rng:      rand.New(rand.NewSource(seed)),
		players:  players,
		source:   source,
		inbox:    inbox,
		interval: interval,
	}
}

// Run emits one stat update per interval until ctx is done.
func (r *StatRefresher) Run(ctx context.Context) {
	slog.Info("Stat refresher started", slog.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stat refresher stopped")
			return
		case <-ticker.C:
			r.refreshOne()
		}
	}
}

// refreshOne nudges one random player's averages by at most 2%, the way a
// single game moves a season-long mean.
func (r *StatRefresher) refreshOne() {
	if len(r.players) == 0 {
		return
	}

	playerID := r.players[r.rng.Intn(len(r.players))]
	stats, ok := r.source(playerID)
	if !ok {
		return
	}

	drift := func(v float64) *float64 {
		next := v * (1 + (r.rng.Float64()-0.5)*0.04)
		return &next
	}

	games := stats.GamesPlayed + 1
	delta := engine.StatDelta{
		PointsPerGame:   drift(stats.PointsPerGame),
		ReboundsPerGame: drift(stats.ReboundsPerGame),
		AssistsPerGame:  drift(stats.AssistsPerGame),
		FieldGoalPct:    drift(stats.FieldGoalPct),
		GamesPlayed:     &games,
	}

	select {
	case r.inbox <- engine.StatUpdateMsg{PlayerID: playerID, Delta: delta}:
		slog.Debug("Stat update sent", slog.String("player", playerID))
	default:
		slog.Warn("Engine inbox full, dropping stat update", slog.String("player", playerID))
	}
}
