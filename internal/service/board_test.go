package service

import (
	"testing"

	"courtside/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarketBoardUpdateAndList(t *testing.T) {
	board := NewMarketBoard()

	assert.Empty(t, board.List())
	assert.True(t, board.UpdatedAt().IsZero())

	board.Update([]domain.PlayerStock{
		{ID: "b-player", CurrentPrice: 120},
		{ID: "a-player", CurrentPrice: 100},
	}, domain.PricingContext{Class: domain.ContextGameTime, IsGameTime: true})

	list := board.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a-player", list[0].ID, "list must be sorted by ID")
	assert.Equal(t, "b-player", list[1].ID)

	assert.Equal(t, domain.ContextGameTime, board.Context().Class)
	assert.False(t, board.UpdatedAt().IsZero())
}

func TestMarketBoardGet(t *testing.T) {
	board := NewMarketBoard()
	board.Update([]domain.PlayerStock{{ID: "p1", CurrentPrice: 100}}, domain.PricingContext{})

	p, ok := board.Get("p1")
	require.True(t, ok)
	assert.Equal(t, 100.0, p.CurrentPrice)

	_, ok = board.Get("missing")
	assert.False(t, ok)
}

func TestMarketBoardPartialUpdateKeepsOthers(t *testing.T) {
	board := NewMarketBoard()
	board.Update([]domain.PlayerStock{
		{ID: "p1", CurrentPrice: 100},
		{ID: "p2", CurrentPrice: 200},
	}, domain.PricingContext{})

	// A later batch with only one player leaves the other's last snapshot
	board.Update([]domain.PlayerStock{{ID: "p1", CurrentPrice: 105}}, domain.PricingContext{})

	p1, _ := board.Get("p1")
	p2, _ := board.Get("p2")
	assert.Equal(t, 105.0, p1.CurrentPrice)
	assert.Equal(t, 200.0, p2.CurrentPrice)
}
