package feed

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"courtside/internal/domain"
	"courtside/internal/engine"
)

// eventWeight pairs an event type with its relative draw frequency.
type eventWeight struct {
	eventType string
	weight    int
}

// Routine plays dominate; milestone and negative events are rare.
var eventWeights = []eventWeight{
	{domain.EventThreePointer, 30},
	{domain.EventDunk, 20},
	{domain.EventAssist, 25},
	{domain.EventSteal, 10},
	{domain.EventBlock, 10},
	{domain.EventTripleDouble, 2},
	{domain.EventFortyPointGame, 1},
	{domain.EventInjury, 1},
	{domain.EventEjection, 2},
	{domain.EventGameWinner, 1},
}

// GameSimulator emits synthetic live game events into the engine inbox and
// reports game presence for context resolution.
type GameSimulator struct {
	mu       sync.RWMutex
	rng      *rand.Rand
	players  []string
	inbox    chan<- engine.Message
	interval time.Duration
	live     bool

	totalWeight int
}

// NewGameSimulator creates a simulator for the given roster IDs.
func NewGameSimulator(seed int64, players []string, inbox chan<- engine.Message, interval time.Duration) *GameSimulator {
	total := 0
	for _, w := range eventWeights {
		total += w.weight
	}
	return &GameSimulator{
		rng:         rand.New(rand.NewSource(seed)),
		players:     players,
		inbox:       inbox,
		interval:    interval,
		totalWeight: total,
	}
}

// SetInbox wires the engine inbox. The simulator is constructed before the
// engine because the engine needs it for game presence.
func (g *GameSimulator) SetInbox(inbox chan<- engine.Message) {
	g.mu.Lock()
	g.inbox = inbox
	g.mu.Unlock()
}

// AnyLive reports whether a game is currently in progress.
func (g *GameSimulator) AnyLive() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.live
}

// SetLive switches game presence. Exposed for manual control and tests.
func (g *GameSimulator) SetLive(live bool) {
	g.mu.Lock()
	g.live = live
	g.mu.Unlock()

	if live {
		slog.Info("Game started")
	} else {
		slog.Info("Game ended")
	}
}

// Run alternates between live games and idle windows, emitting events
// while a game is in progress.
func (g *GameSimulator) Run(ctx context.Context) {
	slog.Info("Game simulator started", slog.Duration("event_interval", g.interval))

	const (
		gameDuration = 30 * time.Minute
		idleDuration = 15 * time.Minute
	)

	g.SetLive(true)
	phaseEnd := time.Now().Add(gameDuration)

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Game simulator stopped")
			return
		case now := <-ticker.C:
			if now.After(phaseEnd) {
				if g.AnyLive() {
					g.SetLive(false)
					phaseEnd = now.Add(idleDuration)
				} else {
					g.SetLive(true)
					phaseEnd = now.Add(gameDuration)
				}
				continue
			}
			if g.AnyLive() {
				g.emit(now)
			}
		}
	}
}

// emit draws a weighted event for a random player and sends it.
func (g *GameSimulator) emit(now time.Time) {
	if len(g.players) == 0 {
		return
	}

	g.mu.Lock()
	inbox := g.inbox
	playerID := g.players[g.rng.Intn(len(g.players))]
	eventType := g.draw()
	g.mu.Unlock()

	if inbox == nil {
		return
	}

	ev := domain.GameEvent{
		Type:      eventType,
		PlayerID:  playerID,
		Timestamp: now,
	}

	select {
	case inbox <- engine.GameEventMsg{Event: ev}:
	default:
		slog.Warn("Engine inbox full, dropping game event",
			slog.String("player", playerID),
			slog.String("type", eventType))
	}
}

// draw picks an event type by weight. Caller holds the lock for rng access.
func (g *GameSimulator) draw() string {
	n := g.rng.Intn(g.totalWeight)
	for _, w := range eventWeights {
		n -= w.weight
		if n < 0 {
			return w.eventType
		}
	}
	return eventWeights[0].eventType
}
