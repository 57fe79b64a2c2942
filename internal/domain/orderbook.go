package domain

// BookLevel is one price level of a synthetic depth snapshot.
type BookLevel struct {
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
}

// OrderBookSnapshot is the synthetic depth handed to the engine each tick.
// It is a pricing input only, never a transactional ledger: there are no
// counterparties behind these levels.
type OrderBookSnapshot struct {
	Bids []BookLevel `json:"bids"` // highest price first
	Asks []BookLevel `json:"asks"` // lowest price first
}

// BidVolume sums the volume on the bid side.
func (ob *OrderBookSnapshot) BidVolume() float64 {
	var total float64
	for _, lvl := range ob.Bids {
		total += lvl.Volume
	}
	return total
}

// AskVolume sums the volume on the ask side.
func (ob *OrderBookSnapshot) AskVolume() float64 {
	var total float64
	for _, lvl := range ob.Asks {
		total += lvl.Volume
	}
	return total
}

// Imbalance returns (bidVol - askVol) / (bidVol + askVol) in [-1, 1].
// Returns 0 for an empty book.
func (ob *OrderBookSnapshot) Imbalance() float64 {
	bid := ob.BidVolume()
	ask := ob.AskVolume()
	total := bid + ask
	if total <= 0 {
		return 0
	}
	return (bid - ask) / total
}

// BestBid returns the top bid price, or 0 when the side is empty.
func (ob *OrderBookSnapshot) BestBid() float64 {
	if len(ob.Bids) == 0 {
		return 0
	}
	return ob.Bids[0].Price
}

// BestAsk returns the top ask price, or 0 when the side is empty.
func (ob *OrderBookSnapshot) BestAsk() float64 {
	if len(ob.Asks) == 0 {
		return 0
	}
	return ob.Asks[0].Price
}

// SpreadPct returns (bestAsk - bestBid) / mid, or 0 when either side is
// empty or crossed.
func (ob *OrderBookSnapshot) SpreadPct() float64 {
	bid := ob.BestBid()
	ask := ob.BestAsk()
	if bid <= 0 || ask <= 0 || ask <= bid {
		return 0
	}
	mid := (bid + ask) / 2
	return (ask - bid) / mid
}
