package domain

import "time"

// RawLevel is one price level exactly as the venue sends it. Price and size
// stay text until normalization so no precision is lost in transit.
type RawLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// RawOrderBook is an unnormalized orderbook snapshot for one instrument.
type RawOrderBook struct {
	TokenID string
	Bids    []RawLevel
	Asks    []RawLevel
}

// MarketData is the normalized view of one orderbook snapshot: sorted,
// validated, and reduced to the figures the signal engine consumes.
type MarketData struct {
	TokenID   string
	BestBid   float64
	BestAsk   float64
	MidPrice  float64
	SpreadBps float64
	Depth     float64 // summed size across the top-N levels of both sides
	LocalTime time.Time
}
