package app

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Healzy1/poly-latency-arb-bot/internal/domain"
	"github.com/Healzy1/poly-latency-arb-bot/internal/engine"
	"github.com/Healzy1/poly-latency-arb-bot/internal/feed"
	"github.com/Healzy1/poly-latency-arb-bot/internal/platform/binance"
	"github.com/Healzy1/poly-latency-arb-bot/internal/platform/polymarket"
	"github.com/Healzy1/poly-latency-arb-bot/internal/server"
	"github.com/Healzy1/poly-latency-arb-bot/internal/server/handler"
)

// Redis channel and stream names for emitted signals.
const (
	signalChannel = "signals"
	signalStream  = "signals:stream"
)

// DetectMode runs the full pipeline: trade stream, orderbook polling, the
// signal engine, and every configured sink.
func (a *App) DetectMode(ctx context.Context, deps *Dependencies) error {
	a.logger.Info().Msg("starting detect mode")

	g, ctx := errgroup.WithContext(ctx)

	eng := engine.New(engine.Options{
		Markets:       a.cfg.Polymarket.Markets,
		MaxSpreadBps:  a.cfg.Signal.MaxSpreadBps,
		MinDepth:      a.cfg.Signal.MinDepth,
		Cooldown:      time.Duration(a.cfg.Signal.CooldownMs) * time.Millisecond,
		MinEdgeBps:    a.cfg.Signal.MinEdgeBps,
		HistoryWindow: time.Duration(a.cfg.Signal.HistoryWindowMs) * time.Millisecond,
	}, a.logger)

	emit := a.signalFanOut(deps)

	onMove := func(ctx context.Context, move domain.Move) {
		if sig, _ := eng.ProcessMove(move); sig != nil {
			emit(ctx, *sig)
		}
	}

	streamFeed := feed.NewStreamFeed(a.streamOptions(), binance.WSDialer{}, onMove, deps.PriceCache, a.logger)
	g.Go(func() error {
		defer streamFeed.Close()
		return streamFeed.Run(ctx)
	})

	pollFeed := feed.NewPollFeed(a.pollOptions(), a.clobClient(), func(_ context.Context, md domain.MarketData) {
		eng.UpdateSnapshot(md)
	}, a.logger)
	g.Go(func() error {
		defer pollFeed.Close()
		return pollFeed.Run(ctx)
	})

	a.startServer(ctx, g, deps)
	a.startArchiver(ctx, g, deps)

	return g.Wait()
}

// StreamMode runs only the trade stream: moves are detected and logged but no
// signals are produced.
func (a *App) StreamMode(ctx context.Context, deps *Dependencies) error {
	a.logger.Info().Msg("starting stream mode")

	g, ctx := errgroup.WithContext(ctx)

	streamFeed := feed.NewStreamFeed(a.streamOptions(), binance.WSDialer{}, nil, deps.PriceCache, a.logger)
	g.Go(func() error {
		defer streamFeed.Close()
		return streamFeed.Run(ctx)
	})

	a.startServer(ctx, g, deps)

	return g.Wait()
}

// PollMode runs only the orderbook poller: snapshots are fetched, normalized,
// and logged, but no signals are produced.
func (a *App) PollMode(ctx context.Context, deps *Dependencies) error {
	a.logger.Info().Msg("starting poll mode")

	g, ctx := errgroup.WithContext(ctx)

	pollFeed := feed.NewPollFeed(a.pollOptions(), a.clobClient(), nil, a.logger)
	g.Go(func() error {
		defer pollFeed.Close()
		return pollFeed.Run(ctx)
	})

	a.startServer(ctx, g, deps)

	return g.Wait()
}

// signalFanOut returns the sink chain applied to every emitted signal. Sink
// failures are logged and never block the pipeline.
func (a *App) signalFanOut(deps *Dependencies) func(ctx context.Context, sig domain.ArbSignal) {
	return func(ctx context.Context, sig domain.ArbSignal) {
		deps.Recent.Add(sig)

		if deps.SignalStore != nil {
			if err := deps.SignalStore.Insert(ctx, sig); err != nil {
				a.logger.Error().Err(err).Str("signal_id", sig.ID).Msg("signal store insert failed")
			}
		}

		if deps.SignalBus != nil {
			payload, err := json.Marshal(sig)
			if err != nil {
				a.logger.Error().Err(err).Str("signal_id", sig.ID).Msg("signal marshal failed")
			} else {
				if err := deps.SignalBus.Publish(ctx, signalChannel, payload); err != nil {
					a.logger.Error().Err(err).Msg("signal publish failed")
				}
				if err := deps.SignalBus.StreamAppend(ctx, signalStream, payload); err != nil {
					a.logger.Error().Err(err).Msg("signal stream append failed")
				}
			}
		}

		if err := deps.Notifier.NotifySignal(ctx, sig); err != nil {
			a.logger.Error().Err(err).Str("signal_id", sig.ID).Msg("signal notification failed")
		}
	}
}

func (a *App) streamOptions() feed.StreamOptions {
	return feed.StreamOptions{
		URL:              binance.StreamURL(a.cfg.Binance.WsHost, a.cfg.Binance.Symbols),
		Symbols:          a.cfg.Binance.Symbols,
		ReturnWindow:     time.Duration(a.cfg.Stream.ReturnWindowMs) * time.Millisecond,
		SampleInterval:   time.Duration(a.cfg.Stream.SampleIntervalMs) * time.Millisecond,
		MoveThresholdBps: a.cfg.Stream.MoveThresholdBps,
		ReportInterval:   time.Duration(a.cfg.Stream.ReportIntervalMs) * time.Millisecond,
	}
}

func (a *App) pollOptions() feed.PollOptions {
	// Deduplicate token IDs: several spot symbols may map to one token.
	seen := make(map[string]bool, len(a.cfg.Polymarket.Markets))
	var tokens []string
	for _, tok := range a.cfg.Polymarket.Markets {
		if !seen[tok] {
			seen[tok] = true
			tokens = append(tokens, tok)
		}
	}

	return feed.PollOptions{
		TokenIDs:    tokens,
		Interval:    time.Duration(a.cfg.Poll.IntervalMs) * time.Millisecond,
		DepthLevels: a.cfg.Poll.DepthLevels,
		MaxBackoff:  time.Duration(a.cfg.Poll.MaxBackoffMs) * time.Millisecond,
	}
}

func (a *App) clobClient() *polymarket.ClobClient {
	return polymarket.NewClobClient(a.cfg.Polymarket.ClobHost, a.cfg.Polymarket.RateLimitPerSec)
}

// startServer starts the diagnostic HTTP server when enabled and ties its
// shutdown to the group context.
func (a *App) startServer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	if !a.cfg.Server.Enabled {
		return
	}

	var source handler.SignalSource = deps.Recent
	if deps.SignalStore != nil {
		source = deps.SignalStore
	}

	srv := server.New(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
	}, server.Handlers{
		Health:  handler.NewHealthHandler(),
		Status:  handler.NewStatusHandler(a.cfg.Mode, a.cfg.Binance.Symbols, a.cfg.Polymarket.Markets),
		Signals: handler.NewSignalsHandler(source),
	}, a.logger)

	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

// startArchiver periodically copies aged signal rows to blob storage.
func (a *App) startArchiver(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	if deps.Archiver == nil {
		return
	}

	every := time.Duration(a.cfg.S3.ArchiveEveryMins) * time.Minute
	age := time.Duration(a.cfg.S3.ArchiveAfterHours) * time.Hour

	g.Go(func() error {
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				cutoff := time.Now().Add(-age)
				if _, err := deps.Archiver.ArchiveSignals(ctx, cutoff); err != nil {
					a.logger.Error().Err(err).Msg("signal archive failed")
				}
			}
		}
	})
}
