package feed

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Healzy1/poly-latency-arb-bot/internal/domain"
	"github.com/Healzy1/poly-latency-arb-bot/internal/metrics"
	"github.com/Healzy1/poly-latency-arb-bot/internal/platform/binance"
)

// MoveHandler is called for each threshold-crossing move (the signal engine).
type MoveHandler func(ctx context.Context, move domain.Move)

// reconnectLadder holds the delays between consecutive reconnect attempts.
// Attempts beyond the ladder reuse the final rung.
var reconnectLadder = []time.Duration{
	1 * time.Second,
	2 * time.Second,
	5 * time.Second,
	10 * time.Second,
	30 * time.Second,
}

// reconnectDelay returns the wait before reconnect attempt n (0-based).
func reconnectDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= len(reconnectLadder) {
		attempt = len(reconnectLadder) - 1
	}
	return reconnectLadder[attempt]
}

// StreamOptions configures a StreamFeed.
type StreamOptions struct {
	URL              string
	Symbols          []string
	ReturnWindow     time.Duration
	SampleInterval   time.Duration
	MoveThresholdBps float64
	ReportInterval   time.Duration // 0 disables periodic reports
}

// StreamFeed consumes the combined trade stream, maintains a downsampled
// sliding window per symbol, and invokes the move handler whenever a windowed
// return crosses the configured threshold. It reconnects with a fixed delay
// ladder on disconnect; the attempt counter resets on every successful
// connection.
type StreamFeed struct {
	opts   StreamOptions
	dialer binance.Dialer
	onMove MoveHandler
	cache  domain.PriceCache // optional latest-price mirror
	logger zerolog.Logger

	mu      sync.Mutex
	windows map[string]*tickWindow

	now       func() time.Time
	closeOnce sync.Once
	done      chan struct{}
}

// NewStreamFeed creates a streaming feed. cache may be nil.
func NewStreamFeed(opts StreamOptions, dialer binance.Dialer, onMove MoveHandler, cache domain.PriceCache, logger zerolog.Logger) *StreamFeed {
	f := &StreamFeed{
		opts:    opts,
		dialer:  dialer,
		onMove:  onMove,
		cache:   cache,
		logger:  logger.With().Str("component", "stream_feed").Logger(),
		windows: make(map[string]*tickWindow, len(opts.Symbols)),
		now:     time.Now,
		done:    make(chan struct{}),
	}
	// Windows are keyed by the canonical upper-case symbol, matching what
	// ParseTick produces, so a lower-case configured symbol still routes.
	for _, sym := range opts.Symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		f.windows[sym] = newTickWindow(sym, opts.ReturnWindow, opts.SampleInterval)
	}
	return f
}

// Run connects and consumes trades until ctx is cancelled or Close is called.
func (f *StreamFeed) Run(ctx context.Context) error {
	if f.opts.ReportInterval > 0 {
		go f.reportLoop(ctx)
	}

	attempt := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			return nil
		default:
		}

		conn, err := f.dialer.Dial(ctx, f.opts.URL)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			delay := reconnectDelay(attempt)
			attempt++
			metrics.Reconnects.Inc()
			f.logger.Warn().Err(err).Dur("retry_in", delay).Msg("stream dial failed")
			if !f.wait(ctx, delay) {
				return ctx.Err()
			}
			continue
		}

		attempt = 0
		metrics.WSConnected.Set(1)
		f.logger.Info().Str("url", f.opts.URL).Strs("symbols", f.opts.Symbols).Msg("stream connected")

		err = f.readLoop(ctx, conn)
		metrics.WSConnected.Set(0)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		select {
		case <-f.done:
			return nil
		default:
		}

		delay := reconnectDelay(attempt)
		attempt++
		metrics.Reconnects.Inc()
		f.logger.Warn().Err(err).Dur("retry_in", delay).Msg("stream disconnected, reconnecting")
		if !f.wait(ctx, delay) {
			return ctx.Err()
		}
	}
}

// Close stops the feed.
func (f *StreamFeed) Close() {
	f.closeOnce.Do(func() { close(f.done) })
}

// wait sleeps for d or until the feed stops. It reports false only on ctx
// cancellation; a Close during the wait is picked up by Run's next select.
func (f *StreamFeed) wait(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-f.done:
		return true
	case <-time.After(d):
		return true
	}
}

// readLoop consumes frames until the connection fails or the feed stops.
func (f *StreamFeed) readLoop(ctx context.Context, conn binance.Conn) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-f.done:
		case <-stop:
			return
		}
		_ = conn.Close()
	}()
	defer conn.Close()

	for {
		raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrWSDisconnect, err)
		}
		f.handleMessage(ctx, raw, f.now())
	}
}

// handleMessage decodes one frame, feeds the symbol's window, and emits a
// move when the windowed return spans enough of the return window and crosses
// the threshold. Malformed frames are dropped, never fatal.
func (f *StreamFeed) handleMessage(ctx context.Context, raw []byte, local time.Time) {
	tick, err := binance.ParseTick(raw, local)
	if err != nil {
		metrics.TicksDroppedTotal.WithLabelValues("unknown", "malformed").Inc()
		f.logger.Debug().Err(err).Msg("dropped malformed trade message")
		return
	}

	f.mu.Lock()
	w, ok := f.windows[tick.Symbol]
	if !ok {
		// Not a watched symbol; should not happen with per-symbol streams.
		f.mu.Unlock()
		metrics.TicksDroppedTotal.WithLabelValues(tick.Symbol, "unwatched").Inc()
		return
	}

	if !w.Observe(tick) {
		f.mu.Unlock()
		metrics.TicksDroppedTotal.WithLabelValues(tick.Symbol, "downsampled").Inc()
		return
	}
	metrics.TicksTotal.WithLabelValues(tick.Symbol).Inc()

	ret, ok := w.Return()
	f.mu.Unlock()
	if !ok {
		return
	}

	// Only a return spanning most of the configured window is meaningful;
	// a short span right after startup or a reconnect stays silent.
	minSpanMs := 0.8 * float64(f.opts.ReturnWindow.Milliseconds())
	if float64(ret.WindowMs) < minSpanMs {
		return
	}
	if math.Abs(ret.ReturnBps) < f.opts.MoveThresholdBps {
		return
	}

	move := domain.Move{
		Symbol:    ret.Symbol,
		Price:     ret.CurrentPrice,
		MoveBps:   ret.ReturnBps,
		Direction: ret.Direction,
		WindowMs:  ret.WindowMs,
		At:        local,
	}

	metrics.MovesTotal.WithLabelValues(move.Symbol).Inc()
	f.logger.Warn().
		Str("symbol", move.Symbol).
		Float64("price", move.Price).
		Float64("move_bps", move.MoveBps).
		Str("direction", move.Direction.String()).
		Int64("window_ms", move.WindowMs).
		Msg("move detected")

	if f.onMove != nil {
		f.onMove(ctx, move)
	}
}

// reportLoop periodically logs the freshest price per symbol and mirrors it
// into the price cache when one is configured.
func (f *StreamFeed) reportLoop(ctx context.Context) {
	ticker := time.NewTicker(f.opts.ReportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-f.done:
			return
		case <-ticker.C:
			f.report(ctx)
		}
	}
}

func (f *StreamFeed) report(ctx context.Context) {
	f.mu.Lock()
	latest := make([]domain.Tick, 0, len(f.windows))
	for _, w := range f.windows {
		if tick, ok := w.Latest(); ok {
			latest = append(latest, tick)
		}
	}
	f.mu.Unlock()

	for _, tick := range latest {
		f.logger.Info().
			Str("symbol", tick.Symbol).
			Float64("price", tick.Price).
			Int64("latency_ms", tick.LatencyMs()).
			Msg("price report")

		if f.cache != nil {
			if err := f.cache.SetPrice(ctx, tick.Symbol, tick.Price, tick.LocalTime); err != nil {
				f.logger.Warn().Err(err).Str("symbol", tick.Symbol).Msg("price cache update failed")
			}
		}
	}
}
