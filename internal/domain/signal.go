package domain

import "time"

// ArbSignal is a detected cross-market latency-arbitrage opportunity: a fast
// move on the spot venue that the prediction market has not yet priced in.
// Signals are immutable once emitted; there is no further lifecycle.
type ArbSignal struct {
	ID        string    `json:"id"`
	At        time.Time `json:"at"`
	Reason    string    `json:"reason"`

	// Triggering (spot) market.
	SpotSymbol    string    `json:"spot_symbol"`
	SpotPrice     float64   `json:"spot_price"`
	SpotMoveBps   float64   `json:"spot_move_bps"`
	SpotDirection Direction `json:"spot_direction"`

	// Lagging (prediction) market.
	PolyTokenID   string  `json:"poly_token_id"`
	PolyMidPrice  float64 `json:"poly_mid_price"`
	PolySpreadBps float64 `json:"poly_spread_bps"`
	PolyDepth     float64 `json:"poly_depth"`
	PolyMoveBps   float64 `json:"poly_move_bps"`

	EdgeBps float64 `json:"edge_bps"`
}

// Market is a prediction-market catalog entry, used by the discovery CLI.
type Market struct {
	ID       string
	Question string
	Slug     string
	Active   bool
	Closed   bool
	TokenIDs []string
	Outcomes []string
}
