package engine

import (
	"math"
	"testing"
)

func TestCompose(t *testing.T) {
	w := Weights{Fundamental: 0.40, Market: 0.30, LiveEvents: 0.30}
	got := Compose(101, 99, 100, w)
	if math.Abs(got-100.1) > 1e-9 {
		t.Errorf("expected 100.1, got %v", got)
	}
}

func TestClampMove(t *testing.T) {
	tests := []struct {
		name     string
		newPrice float64
		oldPrice float64
		maxMove  float64
		want     float64
	}{
		{"within bounds unchanged", 110, 100, 0.15, 110},
		{"up move capped", 130, 100, 0.15, 115},
		{"down move capped", 70, 100, 0.15, 85},
		{"exactly at cap unchanged", 115, 100, 0.15, 115},
		{"non-positive old price passthrough", 50, 0, 0.15, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampMove(tt.newPrice, tt.oldPrice, tt.maxMove)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ClampMove(%v, %v, %v) = %v, want %v", tt.newPrice, tt.oldPrice, tt.maxMove, got, tt.want)
			}
		})
	}
}

func TestSpreadFor(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("bid below ask around price", func(t *testing.T) {
		bid, ask := SpreadFor(100, 0.1, 0, cfg)
		if bid >= 100 || ask <= 100 {
			t.Errorf("expected bid < 100 < ask, got bid=%v ask=%v", bid, ask)
		}
		// spread = 0.001 + 0.1*0.01 = 0.002
		if math.Abs(bid-99.9) > 1e-9 || math.Abs(ask-100.1) > 1e-9 {
			t.Errorf("expected [99.9, 100.1], got [%v, %v]", bid, ask)
		}
	})

	t.Run("spread never exceeds max", func(t *testing.T) {
		for _, vol := range []float64{0, 0.1, 0.5, 2.0, 10.0} {
			bid, ask := SpreadFor(100, vol, 100, cfg)
			spreadPct := (ask - bid) / 100
			if spreadPct > cfg.MaxSpreadPct+1e-9 {
				t.Errorf("vol=%v: spread %v exceeds max %v", vol, spreadPct, cfg.MaxSpreadPct)
			}
			if spreadPct < cfg.MinSpreadPct-1e-9 {
				t.Errorf("vol=%v: spread %v below min %v", vol, spreadPct, cfg.MinSpreadPct)
			}
		}
	})

	t.Run("thin volume trades wider", func(t *testing.T) {
		_, thinAsk := SpreadFor(100, 0.1, 100, cfg)
		_, liquidAsk := SpreadFor(100, 0.1, 50000, cfg)
		if thinAsk <= liquidAsk {
			t.Errorf("expected thin book to trade wider: thin ask=%v liquid ask=%v", thinAsk, liquidAsk)
		}
	})
}
