package app

import (
	"context"
	"sync"

	"github.com/Healzy1/poly-latency-arb-bot/internal/domain"
)

// RecentBuffer keeps the last N emitted signals in memory so the status API
// can serve them even when no database is configured.
type RecentBuffer struct {
	mu      sync.RWMutex
	signals []domain.ArbSignal // oldest first
	cap     int
}

// NewRecentBuffer creates a buffer holding at most capacity signals.
func NewRecentBuffer(capacity int) *RecentBuffer {
	if capacity <= 0 {
		capacity = 256
	}
	return &RecentBuffer{cap: capacity}
}

// Add appends a signal, evicting the oldest when full.
func (b *RecentBuffer) Add(sig domain.ArbSignal) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.signals = append(b.signals, sig)
	if len(b.signals) > b.cap {
		b.signals = b.signals[len(b.signals)-b.cap:]
	}
}

// ListRecent returns up to limit signals, newest first.
func (b *RecentBuffer) ListRecent(_ context.Context, limit int) ([]domain.ArbSignal, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := len(b.signals)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]domain.ArbSignal, 0, n)
	for i := len(b.signals) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, b.signals[i])
	}
	return out, nil
}
