package feed

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/Healzy1/poly-latency-arb-bot/internal/domain"
	"github.com/Healzy1/poly-latency-arb-bot/internal/metrics"
)

// SnapshotHandler is called for each normalized orderbook snapshot.
type SnapshotHandler func(ctx context.Context, md domain.MarketData)

// BookFetcher fetches a raw orderbook for one token.
type BookFetcher interface {
	GetOrderBook(ctx context.Context, tokenID string) (domain.RawOrderBook, error)
}

// PollOptions configures a PollFeed.
type PollOptions struct {
	TokenIDs    []string
	Interval    time.Duration
	DepthLevels int
	MaxBackoff  time.Duration
}

// PollFeed fetches orderbook snapshots for the configured tokens on a fixed
// cadence. A cycle that errors on any token stretches the cadence with
// exponential backoff, capped at MaxBackoff; the first clean cycle restores
// it. At most one cycle is in flight at a time: a tick that fires while the
// previous cycle is still running is skipped, never queued.
type PollFeed struct {
	opts       PollOptions
	client     BookFetcher
	onSnapshot SnapshotHandler
	logger     zerolog.Logger

	running  atomic.Bool
	inFlight atomic.Bool

	mu                sync.Mutex
	consecutiveErrors int

	now       func() time.Time
	closeOnce sync.Once
	done      chan struct{}
}

// NewPollFeed creates a polling feed.
func NewPollFeed(opts PollOptions, client BookFetcher, onSnapshot SnapshotHandler, logger zerolog.Logger) *PollFeed {
	return &PollFeed{
		opts:       opts,
		client:     client,
		onSnapshot: onSnapshot,
		logger:     logger.With().Str("component", "poll_feed").Logger(),
		now:        time.Now,
		done:       make(chan struct{}),
	}
}

// Run polls until ctx is cancelled or Close is called. A second concurrent
// Run returns ErrAlreadyRunning.
func (f *PollFeed) Run(ctx context.Context) error {
	if !f.running.CompareAndSwap(false, true) {
		return domain.ErrAlreadyRunning
	}
	defer f.running.Store(false)

	f.mu.Lock()
	f.consecutiveErrors = 0
	f.mu.Unlock()

	f.logger.Info().
		Int("tokens", len(f.opts.TokenIDs)).
		Dur("interval", f.opts.Interval).
		Msg("poll feed started")

	ticker := time.NewTicker(f.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			return nil
		case <-ticker.C:
			if !f.beginCycle() {
				metrics.PollsTotal.WithLabelValues("skipped").Inc()
				f.logger.Debug().Msg("poll cycle still in flight, skipping tick")
				continue
			}
			go func() {
				failed := f.pollCycle(ctx)
				// Reset the ticker before releasing the slot: a tick already
				// buffered during a long cycle must not start the next cycle
				// ahead of the backoff delay computed here.
				ticker.Reset(f.endCycle(failed))
				f.releaseCycle()
			}()
		}
	}
}

// Close stops the feed.
func (f *PollFeed) Close() {
	f.closeOnce.Do(func() { close(f.done) })
}

// beginCycle claims the in-flight slot; false means a cycle is already
// running and this tick must be skipped.
func (f *PollFeed) beginCycle() bool {
	return f.inFlight.CompareAndSwap(false, true)
}

// endCycle folds the cycle outcome into the error streak and returns the
// delay until the next cycle. The in-flight slot stays held; callers release
// it with releaseCycle once the next cycle's timing is in place.
func (f *PollFeed) endCycle(failed bool) time.Duration {
	f.mu.Lock()
	if failed {
		f.consecutiveErrors++
	} else {
		f.consecutiveErrors = 0
	}
	streak := f.consecutiveErrors
	d := f.nextDelay()
	f.mu.Unlock()

	if streak > 1 {
		f.logger.Warn().
			Int("consecutive_errors", streak).
			Dur("backoff", d).
			Msg("poll backoff extended")
	}

	return d
}

// releaseCycle frees the in-flight slot for the next tick.
func (f *PollFeed) releaseCycle() {
	f.inFlight.Store(false)
}

// nextDelay returns the cadence for the current error streak: the base
// interval doubled per consecutive failed cycle, capped at MaxBackoff.
// Callers hold f.mu.
func (f *PollFeed) nextDelay() time.Duration {
	n := f.consecutiveErrors
	if n <= 0 {
		return f.opts.Interval
	}
	if n > 30 {
		return f.opts.MaxBackoff
	}
	d := f.opts.Interval << uint(n-1)
	if d <= 0 || d > f.opts.MaxBackoff {
		d = f.opts.MaxBackoff
	}
	return d
}

// pollCycle fetches and normalizes every configured token once. It reports
// whether any token failed; individual failures do not stop the cycle.
func (f *PollFeed) pollCycle(ctx context.Context) bool {
	failed := false

	for _, tokenID := range f.opts.TokenIDs {
		select {
		case <-ctx.Done():
			return failed
		case <-f.done:
			return failed
		default:
		}

		raw, err := f.client.GetOrderBook(ctx, tokenID)
		if err != nil {
			failed = true
			metrics.PollsTotal.WithLabelValues("error").Inc()
			f.logger.Warn().Err(err).Str("token_id", tokenID).Msg("orderbook fetch failed")
			continue
		}

		md, err := NormalizeBook(raw, f.opts.DepthLevels, f.now())
		if err != nil {
			failed = true
			metrics.PollsTotal.WithLabelValues("error").Inc()
			f.logger.Warn().Err(err).Str("token_id", tokenID).Msg("orderbook rejected")
			continue
		}

		metrics.PollsTotal.WithLabelValues("ok").Inc()
		f.logger.Info().
			Str("token_id", md.TokenID).
			Float64("mid", md.MidPrice).
			Float64("spread_bps", md.SpreadBps).
			Float64("depth", md.Depth).
			Msg("orderbook snapshot")

		if f.onSnapshot != nil {
			f.onSnapshot(ctx, md)
		}
	}

	return failed
}
