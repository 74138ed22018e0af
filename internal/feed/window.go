// Package feed contains the two market-data feeds: the streaming trade feed
// with its sliding return windows, and the polling orderbook feed with its
// normalization and backoff logic.
package feed

import (
	"time"

	"github.com/Healzy1/poly-latency-arb-bot/internal/domain"
)

// tickWindow is the per-symbol sliding window of admitted ticks. Admission is
// downsampled so at most one tick per sample interval enters the window; the
// window is pruned from the head so resident ticks never span more than the
// return window. All decisions use local receipt time.
type tickWindow struct {
	symbol         string
	returnWindow   time.Duration
	sampleInterval time.Duration

	ticks        []domain.Tick
	lastAdmitted time.Time
	latest       domain.Tick // every tick, admitted or not
}

func newTickWindow(symbol string, returnWindow, sampleInterval time.Duration) *tickWindow {
	return &tickWindow{
		symbol:         symbol,
		returnWindow:   returnWindow,
		sampleInterval: sampleInterval,
	}
}

// Observe records a tick and reports whether it was admitted into the window.
// The latest price is tracked regardless of admission so reporting always
// reflects the freshest trade.
func (w *tickWindow) Observe(tick domain.Tick) bool {
	w.latest = tick

	admitted := w.lastAdmitted.IsZero() ||
		tick.LocalTime.Sub(w.lastAdmitted) >= w.sampleInterval
	if admitted {
		w.ticks = append(w.ticks, tick)
		w.lastAdmitted = tick.LocalTime
	}

	w.prune(tick.LocalTime)
	return admitted
}

// prune drops ticks older than the return window relative to now.
func (w *tickWindow) prune(now time.Time) {
	cutoff := now.Add(-w.returnWindow)
	i := 0
	for i < len(w.ticks) && w.ticks[i].LocalTime.Before(cutoff) {
		i++
	}
	if i > 0 {
		w.ticks = w.ticks[i:]
	}
}

// Return computes the windowed return between the oldest and newest resident
// ticks. It reports false until the window holds at least two ticks.
func (w *tickWindow) Return() (domain.Return, bool) {
	if len(w.ticks) < 2 {
		return domain.Return{}, false
	}

	oldest := w.ticks[0]
	newest := w.ticks[len(w.ticks)-1]

	bps := (newest.Price - oldest.Price) / oldest.Price * 10_000

	return domain.Return{
		Symbol:       w.symbol,
		CurrentPrice: newest.Price,
		PastPrice:    oldest.Price,
		ReturnBps:    bps,
		Direction:    domain.DirectionOf(bps),
		WindowMs:     newest.LocalTime.Sub(oldest.LocalTime).Milliseconds(),
	}, true
}

// Latest returns the most recently observed tick, admitted or not.
func (w *tickWindow) Latest() (domain.Tick, bool) {
	return w.latest, !w.latest.LocalTime.IsZero()
}

// Len returns the number of resident (admitted, unpruned) ticks.
func (w *tickWindow) Len() int {
	return len(w.ticks)
}
