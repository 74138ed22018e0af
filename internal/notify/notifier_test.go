package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Healzy1/poly-latency-arb-bot/internal/domain"
)

type fakeSender struct {
	name   string
	err    error
	titles []string
}

func (f *fakeSender) Send(_ context.Context, title, _ string) error {
	f.titles = append(f.titles, title)
	return f.err
}

func (f *fakeSender) Name() string { return f.name }

func TestNotifierEventFilter(t *testing.T) {
	s := &fakeSender{name: "fake"}
	n := NewNotifier([]Sender{s}, []string{"signal"}, zerolog.Nop())

	require.NoError(t, n.Notify(context.Background(), "error", "Feed down", "..."))
	assert.Empty(t, s.titles, "unlisted events must be filtered")

	require.NoError(t, n.Notify(context.Background(), "signal", "Arbitrage signal", "..."))
	assert.Equal(t, []string{"Arbitrage signal"}, s.titles)
}

func TestNotifierEmptyFilterAllowsAll(t *testing.T) {
	s := &fakeSender{name: "fake"}
	n := NewNotifier([]Sender{s}, nil, zerolog.Nop())

	require.NoError(t, n.Notify(context.Background(), "anything", "t", "m"))
	assert.Len(t, s.titles, 1)
}

func TestNotifierPartialFailure(t *testing.T) {
	bad := &fakeSender{name: "bad", err: errors.New("webhook gone")}
	good := &fakeSender{name: "good"}
	n := NewNotifier([]Sender{bad, good}, nil, zerolog.Nop())

	err := n.Notify(context.Background(), "signal", "t", "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
	assert.Len(t, good.titles, 1, "remaining senders still deliver")
}

func TestFormatSignal(t *testing.T) {
	sig := domain.ArbSignal{
		ID:            "sig-1",
		At:            time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		SpotSymbol:    "BTCUSDT",
		SpotMoveBps:   -75.2,
		SpotDirection: domain.DirectionDown,
		PolyTokenID:   "tok-1",
		PolyMidPrice:  0.55,
		PolySpreadBps: 120,
		PolyDepth:     450,
		PolyMoveBps:   -10,
		EdgeBps:       65.2,
	}

	msg := FormatSignal(sig)
	assert.Contains(t, msg, "BTCUSDT")
	assert.Contains(t, msg, "-75.2bps")
	assert.Contains(t, msg, "down")
	assert.Contains(t, msg, "tok-1")
	assert.Contains(t, msg, "edge 65.2bps")
}
