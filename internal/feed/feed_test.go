package feed

import (
	"testing"
	"time"

	"courtside/internal/domain"
	"courtside/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticSource(players ...domain.PlayerStock) PriceSource {
	return func() []domain.PlayerStock { return players }
}

func TestBookSimulatorSnapshot(t *testing.T) {
	sim := NewBookSimulator(42, staticSource(domain.PlayerStock{
		ID:           "p1",
		CurrentPrice: 100,
		TotalShares:  100000,
	}), time.Second)

	assert.Nil(t, sim.Snapshot("p1"), "no book before first refresh")

	sim.Refresh()

	book := sim.Snapshot("p1")
	require.NotNil(t, book)
	require.Len(t, book.Bids, bookDepth)
	require.Len(t, book.Asks, bookDepth)

	assert.Less(t, book.BestBid(), 100.0)
	assert.Greater(t, book.BestAsk(), 100.0)
	assert.InDelta(t, 0, book.Imbalance(), 1.0)

	// Returned snapshot is a copy
	book.Bids[0].Volume = -1
	again := sim.Snapshot("p1")
	assert.NotEqual(t, -1.0, again.Bids[0].Volume)
}

func TestBookSimulatorDeterministic(t *testing.T) {
	src := staticSource(domain.PlayerStock{ID: "p1", CurrentPrice: 100, TotalShares: 100000})

	a := NewBookSimulator(7, src, time.Second)
	b := NewBookSimulator(7, src, time.Second)
	a.Refresh()
	b.Refresh()

	assert.Equal(t, a.Snapshot("p1"), b.Snapshot("p1"))
}

func TestBookSimulatorTradesDrain(t *testing.T) {
	sim := NewBookSimulator(42, staticSource(domain.PlayerStock{
		ID:           "p1",
		CurrentPrice: 100,
		TotalShares:  100000,
	}), time.Second)

	sim.Refresh()
	sim.Refresh()

	first := sim.RecentTrades("p1")
	assert.GreaterOrEqual(t, first, int64(0))

	// Drained: nothing accumulated since the last call
	assert.Equal(t, int64(0), sim.RecentTrades("p1"))

	sim.Refresh()
	assert.GreaterOrEqual(t, sim.RecentTrades("p1"), int64(0))
}

func TestGameSimulatorEmit(t *testing.T) {
	inbox := make(chan engine.Message, 8)
	sim := NewGameSimulator(42, []string{"p1", "p2"}, inbox, time.Second)

	sim.SetLive(true)
	require.True(t, sim.AnyLive())

	sim.emit(time.Now())

	select {
	case msg := <-inbox:
		ev, ok := msg.(engine.GameEventMsg)
		require.True(t, ok)
		assert.Contains(t, []string{"p1", "p2"}, ev.Event.PlayerID)
		assert.NotEmpty(t, ev.Event.Type)
	default:
		t.Fatal("expected a game event in the inbox")
	}
}

func TestGameSimulatorDrawCoversAllTypes(t *testing.T) {
	inbox := make(chan engine.Message, 1)
	sim := NewGameSimulator(42, []string{"p1"}, inbox, time.Second)

	seen := make(map[string]int)
	for i := 0; i < 5000; i++ {
		seen[sim.draw()]++
	}

	for _, w := range eventWeights {
		assert.Greater(t, seen[w.eventType], 0, "type %s never drawn", w.eventType)
	}
	// Common plays dominate rare milestones
	assert.Greater(t, seen[domain.EventThreePointer], seen[domain.EventInjury])
}

func TestStatRefresherSendsDelta(t *testing.T) {
	inbox := make(chan engine.Message, 1)
	source := func(id string) (domain.PlayerStats, bool) {
		return domain.PlayerStats{
			PointsPerGame: 25.0,
			GamesPlayed:   50,
		}, true
	}

	r := NewStatRefresher(42, []string{"p1"}, source, inbox, time.Minute)
	r.refreshOne()

	select {
	case msg := <-inbox:
		upd, ok := msg.(engine.StatUpdateMsg)
		require.True(t, ok)
		assert.Equal(t, "p1", upd.PlayerID)
		require.NotNil(t, upd.Delta.PointsPerGame)
		assert.InDelta(t, 25.0, *upd.Delta.PointsPerGame, 25.0*0.02)
		require.NotNil(t, upd.Delta.GamesPlayed)
		assert.Equal(t, 51, *upd.Delta.GamesPlayed)
	default:
		t.Fatal("expected a stat update in the inbox")
	}
}
