package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"courtside/internal/domain"
	"courtside/internal/infra"
)

// BookProvider hands the engine pre-fetched market inputs. Implementations
// must never block: a missing snapshot degrades to neutral pressure.
type BookProvider interface {
	Snapshot(playerID string) *domain.OrderBookSnapshot
	RecentTrades(playerID string) int64
}

// GamePresence reports whether any live game is in progress this tick.
type GamePresence interface {
	AnyLive() bool
}

// Notifier receives the engine's outward notifications. Called outside the
// engine lock, after the owning tick has completed.
type Notifier interface {
	Halted(rec domain.CircuitBreakerRecord)
	Resumed(rec domain.CircuitBreakerRecord)
	GameEvent(ev domain.GameEvent)
}

// Message is anything that may be sent into the engine inbox. All outside
// mutation (game events, manual halts, stat refreshes) is serialized
// through the same single-threaded loop that owns the instrument table.
type Message interface{ isMessage() }

// GameEventMsg delivers a live game event.
type GameEventMsg struct {
	Event domain.GameEvent
}

func (GameEventMsg) isMessage() {}

// ManualHaltMsg halts an instrument immediately, bypassing the volatility
// check. Used for exogenous events (news, abnormal volume).
type ManualHaltMsg struct {
	PlayerID string
	Reason   domain.HaltReason
}

func (ManualHaltMsg) isMessage() {}

// StatDelta is a partial stat refresh; nil fields are left untouched.
type StatDelta struct {
	PointsPerGame   *float64
	ReboundsPerGame *float64
	AssistsPerGame  *float64
	FieldGoalPct    *float64
	MinutesPerGame  *float64
	GamesPlayed     *int
}

// StatUpdateMsg applies a stat refresh to one player.
type StatUpdateMsg struct {
	PlayerID string
	Delta    StatDelta
}

func (StatUpdateMsg) isMessage() {}

// Engine drives the pricing pipeline over all instruments once per tick.
// The instrument and breaker tables are owned by the Run goroutine; external
// readers get copies under an RWMutex, and the full batch is assembled
// before any broadcast so no consumer ever observes a partial tick.
type Engine struct {
	cfg Config
	rng RandSource

	players map[string]*domain.PlayerStock
	order   []string // fixed per-tick iteration order

	fundamental *FundamentalValuator
	market      *MarketActivityValuator
	events      *LiveEventBook
	resolver    *ContextResolver
	breakers    *BreakerBoard

	books    BookProvider
	games    GamePresence
	notifier Notifier

	inbox   chan Message
	onBatch func([]domain.PlayerStock, domain.PricingContext)
	clock   func() time.Time

	mu sync.RWMutex // guards tables for external reads
}

// NewEngine validates the config and builds an engine over the given roster.
// books, games, notifier, and onBatch may be nil; missing inputs degrade to
// neutral contributions.
func NewEngine(cfg Config, rng RandSource, roster []domain.PlayerStock, books BookProvider, games GamePresence, notifier Notifier, onBatch func([]domain.PlayerStock, domain.PricingContext)) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	players := make(map[string]*domain.PlayerStock, len(roster))
	order := make([]string, 0, len(roster))
	for i := range roster {
		p := roster[i].Clone()
		if p.Volatility == 0 {
			p.Volatility = cfg.DefaultVolatility
		}
		players[p.ID] = &p
		order = append(order, p.ID)
	}
	sort.Strings(order)

	return &Engine{
		cfg:         cfg,
		rng:         rng,
		players:     players,
		order:       order,
		fundamental: NewFundamentalValuator(cfg, rng),
		market:      NewMarketActivityValuator(cfg, rng),
		events:      NewLiveEventBook(cfg, rng),
		resolver:    NewContextResolver(cfg),
		breakers:    NewBreakerBoard(cfg),
		books:       books,
		games:       games,
		notifier:    notifier,
		inbox:       make(chan Message, 1024),
		onBatch:     onBatch,
		clock:       time.Now,
	}, nil
}

// Inbox returns the message channel. External feeds send here.
func (e *Engine) Inbox() chan<- Message {
	return e.inbox
}

// Run starts the tick loop. This MUST be run in a single goroutine.
func (e *Engine) Run(ctx context.Context) {
	slog.Info("Engine started (single-thread tick loop)",
		slog.Int("players", len(e.order)),
		slog.Duration("interval", e.cfg.TickInterval))

	defer func() {
		if r := recover(); r != nil {
			slog.Error("CRITICAL_PANIC_DETECTED", slog.Any("panic", r))
			e.DumpState("panic_dump.json")
			panic(fmt.Sprintf("HALTED: %v", r))
		}
	}()

	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Engine stopping...")
			return
		case <-ticker.C:
			e.Tick(e.clock())
		case msg := <-e.inbox:
			e.handleMessage(msg)
		}
	}
}

// Tick runs one full pass over all instruments and returns the updated
// batch. The batch is complete before any notification or broadcast fires.
func (e *Engine) Tick(now time.Time) []domain.PlayerStock {
	start := time.Now()

	batch, pctx, halted, resumed := e.tickLocked(now)

	if e.notifier != nil {
		for _, rec := range resumed {
			e.notifier.Resumed(rec)
			infra.GlobalMetrics.RecordResume()
		}
		for _, rec := range halted {
			e.notifier.Halted(rec)
			infra.GlobalMetrics.RecordHalt()
		}
	}
	if e.onBatch != nil {
		e.onBatch(batch, pctx)
	}

	infra.GlobalMetrics.RecordTick(time.Since(start).Nanoseconds())
	slog.Debug("Tick completed",
		slog.String("context", pctx.Class.String()),
		slog.Int("players", len(batch)),
		slog.Int("halted", len(halted)),
		slog.Duration("took", time.Since(start)))

	return batch
}

// tickLocked is the mutation phase of a tick. The unlock is deferred so a
// panic unwinding toward Run's recover never leaves the mutex held and the
// post-mortem dump can still read state.
func (e *Engine) tickLocked(now time.Time) (batch []domain.PlayerStock, pctx domain.PricingContext, halted, resumed []domain.CircuitBreakerRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.events.MaybeDailyReset(now) {
		slog.Info("Live event multipliers reset", slog.Time("boundary", now))
	}

	live := e.games != nil && e.games.AnyLive()
	pctx = e.resolver.Resolve(now, live, e.meanVolatility())
	weights := e.cfg.weightsFor(pctx.Class)

	batch = make([]domain.PlayerStock, 0, len(e.order))

	for _, id := range e.order {
		p := e.players[id]

		if rec, ok := e.breakers.MaybeResume(id, now); ok {
			resumed = append(resumed, *rec)
		}
		if e.breakers.Halted(id, now) {
			// Frozen: emit unchanged.
			batch = append(batch, p.Clone())
			continue
		}

		if rec := e.priceOne(p, weights, now); rec != nil {
			halted = append(halted, *rec)
		}
		batch = append(batch, p.Clone())
	}
	return batch, pctx, halted, resumed
}

// priceOne applies the full pipeline to a single instrument. A numeric
// fault freezes the instrument at its previous price and never aborts the
// batch. Returns the breaker record when this move tripped the halt.
func (e *Engine) priceOne(p *domain.PlayerStock, w Weights, now time.Time) (tripped *domain.CircuitBreakerRecord) {
	var prevState domain.PlayerStock

	// Armed before the snapshot so a fault there cannot escape the batch.
	defer func() {
		if r := recover(); r != nil {
			if prevState.ID != "" {
				*p = prevState
			}
			infra.GlobalMetrics.RecordPricingFault()
			slog.Error("Pricing fault isolated; instrument frozen",
				slog.String("player", p.ID), slog.Any("panic", r))
		}
	}()

	prev := p.CurrentPrice
	prevState = p.Clone()

	fund := e.fundamental.Valuate(p)

	var book *domain.OrderBookSnapshot
	var trades int64
	if e.books != nil {
		book = e.books.Snapshot(p.ID)
		trades = e.books.RecentTrades(p.ID)
	}
	market, pressures := e.market.Valuate(p, book, trades)
	liveCand := e.events.Valuate(p)

	composed := Compose(fund.Candidate, market, liveCand, w)
	price := ClampMove(composed, prev, e.cfg.MaxMovePct)
	if price < e.cfg.PriceFloor {
		price = e.cfg.PriceFloor
	}

	change := 0.0
	if prev > 0 {
		change = (price - prev) / prev
	}

	p.CurrentPrice = price
	p.PriceChange = change * 100
	p.BidPrice, p.AskPrice = SpreadFor(price, p.Volatility, p.Volume, e.cfg)
	p.Volume += trades
	p.PriceHistory = AppendPoint(p.PriceHistory, domain.PricePoint{Date: now, Price: price}, e.cfg.HistoryCapacity)
	p.Volatility = AnnualizedVolatility(p.PriceHistory, e.cfg.DefaultVolatility)

	if rec, ok := e.breakers.CheckMove(p, change, now); ok {
		tripped = rec
	}

	slog.Debug("Priced",
		slog.String("player", p.ID),
		slog.Float64("price", price),
		slog.Float64("change_pct", p.PriceChange),
		slog.Float64("perf_score", fund.PerformanceScore),
		slog.Float64("market_pressure", pressures.Total()))
	return tripped
}

func (e *Engine) handleMessage(msg Message) {
	haltedRec, gameEv := e.applyMessage(msg, e.clock())

	if e.notifier != nil {
		if haltedRec != nil {
			e.notifier.Halted(*haltedRec)
			infra.GlobalMetrics.RecordHalt()
		}
		if gameEv != nil {
			e.notifier.GameEvent(*gameEv)
		}
	}
}

// applyMessage mutates engine state for one inbox message. Holds the lock
// for the whole switch; unlock is deferred for the same reason as tickLocked.
func (e *Engine) applyMessage(msg Message, now time.Time) (haltedRec *domain.CircuitBreakerRecord, gameEv *domain.GameEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch m := msg.(type) {
	case GameEventMsg:
		if _, ok := e.players[m.Event.PlayerID]; !ok {
			slog.Warn("Game event for unknown player", slog.String("player", m.Event.PlayerID))
			break
		}
		mult := e.events.Apply(m.Event)
		ev := m.Event
		gameEv = &ev
		infra.GlobalMetrics.RecordGameEvent()
		slog.Debug("Game event applied",
			slog.String("player", m.Event.PlayerID),
			slog.String("type", m.Event.Type),
			slog.Float64("multiplier", mult))

	case ManualHaltMsg:
		p, ok := e.players[m.PlayerID]
		if !ok {
			slog.Warn("Manual halt for unknown player", slog.String("player", m.PlayerID))
			break
		}
		if rec, ok := e.breakers.Trigger(p, m.Reason, now); ok {
			haltedRec = rec
			slog.Warn("Manual halt triggered",
				slog.String("player", m.PlayerID),
				slog.String("reason", m.Reason.String()))
		}

	case StatUpdateMsg:
		p, ok := e.players[m.PlayerID]
		if !ok {
			slog.Warn("Stat update for unknown player", slog.String("player", m.PlayerID))
			break
		}
		applyStatDelta(&p.Stats, m.Delta)

	default:
		slog.Warn("Unknown message type", slog.Any("msg", msg))
	}
	return haltedRec, gameEv
}

func applyStatDelta(stats *domain.PlayerStats, d StatDelta) {
	if d.PointsPerGame != nil {
		stats.PointsPerGame = *d.PointsPerGame
	}
	if d.ReboundsPerGame != nil {
		stats.ReboundsPerGame = *d.ReboundsPerGame
	}
	if d.AssistsPerGame != nil {
		stats.AssistsPerGame = *d.AssistsPerGame
	}
	if d.FieldGoalPct != nil {
		stats.FieldGoalPct = *d.FieldGoalPct
	}
	if d.MinutesPerGame != nil {
		stats.MinutesPerGame = *d.MinutesPerGame
	}
	if d.GamesPlayed != nil {
		stats.GamesPlayed = *d.GamesPlayed
	}
}

func (e *Engine) meanVolatility() float64 {
	if len(e.order) == 0 {
		return 0
	}
	sum := 0.0
	for _, id := range e.order {
		sum += e.players[id].Volatility
	}
	return sum / float64(len(e.order))
}

// ======================================================================
// External reads (copies under RLock)
// ======================================================================

// Players returns a snapshot of all instruments in broadcast order.
func (e *Engine) Players() []domain.PlayerStock {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]domain.PlayerStock, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.players[id].Clone())
	}
	return out
}

// Player returns a snapshot of one instrument.
func (e *Engine) Player(id string) (domain.PlayerStock, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	p, ok := e.players[id]
	if !ok {
		return domain.PlayerStock{}, false
	}
	return p.Clone(), true
}

// IsHalted reports whether the player's halt window governs right now.
func (e *Engine) IsHalted(id string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.breakers.Halted(id, e.clock())
}

// Breaker returns the player's most recent circuit-breaker record.
func (e *Engine) Breaker(id string) (domain.CircuitBreakerRecord, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.breakers.Record(id)
}

// ActiveBreakers returns all currently governing halt records.
func (e *Engine) ActiveBreakers() []domain.CircuitBreakerRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.breakers.Active(e.clock())
}

// BreakerHistory returns the full halt audit trail.
func (e *Engine) BreakerHistory() []domain.CircuitBreakerRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.breakers.History()
}

// Multiplier returns the player's current live-event multiplier.
func (e *Engine) Multiplier(id string) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.events.Multiplier(id)
}

// DumpState writes the entire internal state to a file (for post-mortem).
func (e *Engine) DumpState(filename string) {
	slog.Info("Dumping internal state...", slog.String("file", filename))

	e.mu.RLock()
	data := struct {
		Players  map[string]*domain.PlayerStock `json:"players"`
		Breakers []domain.CircuitBreakerRecord  `json:"breakers"`
		Events   map[string]float64             `json:"event_multipliers"`
	}{
		Players:  e.players,
		Breakers: e.breakers.History(),
		Events:   e.events.Snapshot(),
	}
	b, err := json.MarshalIndent(data, "", "  ")
	e.mu.RUnlock()

	if err != nil {
		slog.Error("Failed to marshal state", slog.Any("error", err))
		return
	}
	if err := os.WriteFile(filename, b, 0644); err != nil {
		slog.Error("Failed to write state dump", slog.Any("error", err))
	}
}
