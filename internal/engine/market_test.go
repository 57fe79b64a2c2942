package engine

import (
	"math"
	"testing"

	"courtside/internal/domain"
)

func TestMarketValuateNilBook(t *testing.T) {
	v := NewMarketActivityValuator(DefaultConfig(), fixedRand{0.5})
	p := &domain.PlayerStock{
		ID:              "p1",
		CurrentPrice:    100,
		Volatility:      0.1,
		AvailableShares: 100000,
		TotalShares:     100000,
	}

	price, pressures := v.Valuate(p, nil, 0)
	if math.Abs(price-100) > 1e-9 {
		t.Errorf("expected neutral price 100 with no book, got %v", price)
	}
	if pressures.Imbalance != 0 || pressures.Spread != 0 {
		t.Errorf("expected zero book pressures, got %+v", pressures)
	}
}

func TestImbalancePressureCapped(t *testing.T) {
	v := NewMarketActivityValuator(DefaultConfig(), fixedRand{0.5})

	// All volume on the bids: imbalance = 1, deep book
	book := &domain.OrderBookSnapshot{
		Bids: []domain.BookLevel{{Price: 99, Volume: 5000}},
		Asks: []domain.BookLevel{{Price: 101, Volume: 0}},
	}

	got := v.imbalancePressure(book)
	if math.Abs(got-imbalanceCap) > 1e-9 {
		t.Errorf("expected pressure at cap %v, got %v", imbalanceCap, got)
	}
}

func TestImbalancePressureShallowBookDiscounted(t *testing.T) {
	v := NewMarketActivityValuator(DefaultConfig(), fixedRand{0.5})

	// Same full imbalance, but only 100 shares of depth
	book := &domain.OrderBookSnapshot{
		Bids: []domain.BookLevel{{Price: 99, Volume: 100}},
	}

	got := v.imbalancePressure(book)
	want := 1.0 * (100.0 / depthNormalization) * imbalanceCap
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected discounted pressure %v, got %v", want, got)
	}
}

func TestVolumePressure(t *testing.T) {
	v := NewMarketActivityValuator(DefaultConfig(), fixedRand{0.5})

	t.Run("zero average volume is neutral", func(t *testing.T) {
		p := &domain.PlayerStock{ID: "p1", Volume: 0}
		if got := v.volumePressure(p, 500); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})

	t.Run("quiet tape is negative but capped", func(t *testing.T) {
		p := &domain.PlayerStock{ID: "p1", Volume: 10000}
		got := v.volumePressure(p, 0)
		// log1p(0) - 1 = -1, scaled by 0.005 then capped at -0.005
		if math.Abs(got-(-volumePressureCap)) > 1e-9 {
			t.Errorf("expected -%v, got %v", volumePressureCap, got)
		}
	})

	t.Run("hot tape is positive and capped", func(t *testing.T) {
		p := &domain.PlayerStock{ID: "p1", Volume: 100}
		got := v.volumePressure(p, 100000)
		if got <= 0 {
			t.Errorf("expected positive pressure, got %v", got)
		}
		if got > volumePressureCap {
			t.Errorf("pressure %v exceeds cap %v", got, volumePressureCap)
		}
	})
}

func TestShortPressureTiers(t *testing.T) {
	tests := []struct {
		name      string
		available float64
		want      float64
	}{
		{"no shorts", 100000, 0},
		{"below minor tier", 80000, 0},
		{"minor squeeze", 65000, squeezeMinorBonus}, // 35% short
		{"major squeeze", 45000, squeezeMajorBonus}, // 55% short
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &domain.PlayerStock{ID: "p1", AvailableShares: tt.available, TotalShares: 100000}
			if got := shortPressure(p); got != tt.want {
				t.Errorf("shortPressure = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpreadPressure(t *testing.T) {
	t.Run("tight spread is bullish", func(t *testing.T) {
		book := &domain.OrderBookSnapshot{
			Bids: []domain.BookLevel{{Price: 99.9, Volume: 100}},
			Asks: []domain.BookLevel{{Price: 100.1, Volume: 100}},
		}
		if got := spreadPressure(book); got <= 0 {
			t.Errorf("expected positive pressure for tight spread, got %v", got)
		}
	})

	t.Run("wide spread is bearish", func(t *testing.T) {
		book := &domain.OrderBookSnapshot{
			Bids: []domain.BookLevel{{Price: 97, Volume: 100}},
			Asks: []domain.BookLevel{{Price: 103, Volume: 100}},
		}
		if got := spreadPressure(book); got >= 0 {
			t.Errorf("expected negative pressure for wide spread, got %v", got)
		}
	})

	t.Run("empty book is neutral", func(t *testing.T) {
		if got := spreadPressure(nil); got != 0 {
			t.Errorf("expected 0 for nil book, got %v", got)
		}
	})
}
