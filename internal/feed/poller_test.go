package feed

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

type fakeFetcher struct {
	books map[string]domain.RawOrderBook
	errs  map[string]error
	calls []string
	block chan struct{} // when non-nil, GetOrderBook blocks until closed
}

func (f *fakeFetcher) GetOrderBook(_ context.Context, tokenID string) (domain.RawOrderBook, error) {
	f.calls = append(f.calls, tokenID)
	if f.block != nil {
		<-f.block
	}
	if err, ok := f.errs[tokenID]; ok {
		return domain.RawOrderBook{}, err
	}
	return f.books[tokenID], nil
}

func goodBook(tokenID string) domain.RawOrderBook {
	return domain.RawOrderBook{
		TokenID: tokenID,
		Bids:    []domain.RawLevel{{Price: "0.55", Size: "120"}},
		Asks:    []domain.RawLevel{{Price: "0.57", Size: "80"}},
	}
}

func newTestPoller(client BookFetcher, onSnapshot SnapshotHandler, tokens ...string) *PollFeed {
	return NewPollFeed(PollOptions{
		TokenIDs:    tokens,
		Interval:    5 * time.Second,
		DepthLevels: 10,
		MaxBackoff:  30 * time.Second,
	}, client, onSnapshot, zerolog.Nop())
}

func TestPollerBackoffDoublesAndCaps(t *testing.T) {
	f := newTestPoller(&fakeFetcher{}, nil, "tok-1")

	want := []time.Duration{
		5 * time.Second,
		10 * time.Second,
		20 * time.Second,
		30 * time.Second, // 40s capped
		30 * time.Second,
		30 * time.Second,
	}
	for i, d := range want {
		assert.Equal(t, d, f.endCycle(true), "after %d consecutive errors", i+1)
	}

	// One clean cycle restores the base cadence.
	assert.Equal(t, 5*time.Second, f.endCycle(false))
	assert.Equal(t, 10*time.Second, f.endCycle(true), "streak restarts after reset")
	f.endCycle(false)
}

func TestPollerCycleDeliversSnapshots(t *testing.T) {
	client := &fakeFetcher{books: map[string]domain.RawOrderBook{
		"tok-1": goodBook("tok-1"),
		"tok-2": goodBook("tok-2"),
	}}

	var snaps []domain.MarketData
	f := newTestPoller(client, func(_ context.Context, md domain.MarketData) {
		snaps = append(snaps, md)
	}, "tok-1", "tok-2")

	failed := f.pollCycle(context.Background())
	assert.False(t, failed)
	require.Len(t, snaps, 2)
	assert.Equal(t, "tok-1", snaps[0].TokenID)
	assert.Equal(t, 0.55, snaps[0].BestBid)
	assert.Equal(t, "tok-2", snaps[1].TokenID)
}

func TestPollerCycleContinuesPastFailures(t *testing.T) {
	client := &fakeFetcher{
		books: map[string]domain.RawOrderBook{"tok-2": goodBook("tok-2")},
		errs:  map[string]error{"tok-1": errors.New("connection refused")},
	}

	var snaps []domain.MarketData
	f := newTestPoller(client, func(_ context.Context, md domain.MarketData) {
		snaps = append(snaps, md)
	}, "tok-1", "tok-2")

	failed := f.pollCycle(context.Background())
	assert.True(t, failed, "any token failing marks the cycle failed")
	require.Len(t, snaps, 1, "healthy tokens still deliver")
	assert.Equal(t, "tok-2", snaps[0].TokenID)
	assert.Equal(t, []string{"tok-1", "tok-2"}, client.calls)
}

func TestPollerCycleRejectsBadBook(t *testing.T) {
	client := &fakeFetcher{books: map[string]domain.RawOrderBook{
		"tok-1": {TokenID: "tok-1", Bids: []domain.RawLevel{{Price: "0.5", Size: "1"}}},
	}}

	var snaps []domain.MarketData
	f := newTestPoller(client, func(_ context.Context, md domain.MarketData) {
		snaps = append(snaps, md)
	}, "tok-1")

	failed := f.pollCycle(context.Background())
	assert.True(t, failed)
	assert.Empty(t, snaps)
}

func TestPollerSingleCycleInFlight(t *testing.T) {
	f := newTestPoller(&fakeFetcher{}, nil, "tok-1")

	require.True(t, f.beginCycle())
	assert.False(t, f.beginCycle(), "second cycle must be skipped while one runs")

	// The slot stays held through endCycle so a buffered tick cannot slip in
	// before the next cycle's delay takes effect.
	f.endCycle(false)
	assert.False(t, f.beginCycle(), "slot still held until the release")

	f.releaseCycle()
	assert.True(t, f.beginCycle(), "slot frees once released")
	f.endCycle(false)
	f.releaseCycle()
}

func TestPollerRunRejectsConcurrentRun(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	f := newTestPoller(&fakeFetcher{block: block}, nil, "tok-1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- f.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	assert.ErrorIs(t, f.Run(ctx), domain.ErrAlreadyRunning)

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
