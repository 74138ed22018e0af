package domain

import "time"

// Direction is the sign of a price move.
type Direction int

const (
	DirectionDown Direction = -1
	DirectionFlat Direction = 0
	DirectionUp   Direction = 1
)

// String returns the log representation of the direction.
func (d Direction) String() string {
	switch {
	case d > 0:
		return "up"
	case d < 0:
		return "down"
	default:
		return "flat"
	}
}

// DirectionOf returns the direction corresponding to a signed bps value.
func DirectionOf(bps float64) Direction {
	switch {
	case bps > 0:
		return DirectionUp
	case bps < 0:
		return DirectionDown
	default:
		return DirectionFlat
	}
}

// Tick is a single normalized trade from the streaming venue. ExchangeTime is
// the venue-assigned timestamp; LocalTime is our receipt time, which drives
// all windowing decisions.
type Tick struct {
	Symbol       string
	Price        float64
	ExchangeTime time.Time
	LocalTime    time.Time
}

// LatencyMs is the venue-to-receipt latency in milliseconds, for diagnostics.
func (t Tick) LatencyMs() int64 {
	return t.LocalTime.Sub(t.ExchangeTime).Milliseconds()
}

// Return is a windowed price return between the oldest and newest resident
// ticks of a symbol's sliding window. It is derived on demand, never stored.
type Return struct {
	Symbol       string
	CurrentPrice float64
	PastPrice    float64
	ReturnBps    float64
	Direction    Direction
	WindowMs     int64
}

// Move is a threshold-crossing return emitted by the streaming feed.
type Move struct {
	Symbol    string
	Price     float64
	MoveBps   float64
	Direction Direction
	WindowMs  int64
	At        time.Time
}
