// Package engine holds the stateful signal engine: it joins spot moves with
// prediction-market snapshots and decides, through an ordered chain of gates,
// whether a move becomes an arbitrage signal.
package engine

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Healzy1/poly-latency-arb-bot/internal/domain"
	"github.com/Healzy1/poly-latency-arb-bot/internal/metrics"
)

// Options configures the engine's gates and history retention.
type Options struct {
	// Markets maps a spot symbol to the prediction-market token whose book
	// lags it. Moves on unmapped symbols are ignored.
	Markets map[string]string

	MaxSpreadBps  float64
	MinDepth      float64
	Cooldown      time.Duration
	MinEdgeBps    float64
	HistoryWindow time.Duration
}

// Engine evaluates spot moves against the most recent counterpart snapshots.
// Gates run in a fixed order and the first failing gate wins, so every
// evaluated move yields exactly one signal or exactly one discard.
type Engine struct {
	opts   Options
	logger zerolog.Logger

	mu         sync.Mutex
	histories  map[string][]domain.MarketData // keyed by token ID, oldest first
	lastSignal time.Time
}

// New creates an engine. The market map is copied so later mutation of the
// caller's map cannot change routing, and its keys are canonicalized to upper
// case to match the symbols moves arrive with.
func New(opts Options, logger zerolog.Logger) *Engine {
	markets := make(map[string]string, len(opts.Markets))
	for sym, tok := range opts.Markets {
		markets[strings.ToUpper(strings.TrimSpace(sym))] = tok
	}
	opts.Markets = markets

	return &Engine{
		opts:      opts,
		logger:    logger.With().Str("component", "engine").Logger(),
		histories: make(map[string][]domain.MarketData, len(markets)),
	}
}

// UpdateSnapshot records a counterpart snapshot into its token's history and
// prunes entries older than the history window.
func (e *Engine) UpdateSnapshot(md domain.MarketData) {
	e.mu.Lock()
	defer e.mu.Unlock()

	hist := append(e.histories[md.TokenID], md)
	cutoff := md.LocalTime.Add(-e.opts.HistoryWindow)
	i := 0
	for i < len(hist) && hist[i].LocalTime.Before(cutoff) {
		i++
	}
	e.histories[md.TokenID] = hist[i:]
}

// ProcessMove evaluates one spot move. It returns a signal when every gate
// passes, or the single discard produced by the first failing gate. A move on
// a symbol with no mapped token returns (nil, nil) and is not evaluated.
func (e *Engine) ProcessMove(move domain.Move) (*domain.ArbSignal, domain.Discard) {
	tokenID, ok := e.opts.Markets[move.Symbol]
	if !ok {
		return nil, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	sig, discard := e.evaluate(move, tokenID)
	if discard != nil {
		metrics.DiscardsTotal.WithLabelValues(string(discard.Reason())).Inc()
		evt := e.logger.Debug().
			Str("symbol", move.Symbol).
			Float64("move_bps", move.MoveBps).
			Str("reason", string(discard.Reason()))
		for k, v := range discard.Fields() {
			evt = evt.Interface(k, v)
		}
		evt.Msg("move discarded")
		return nil, discard
	}

	e.lastSignal = move.At
	metrics.SignalsTotal.Inc()
	e.logger.Warn().
		Str("signal_id", sig.ID).
		Str("symbol", sig.SpotSymbol).
		Float64("spot_move_bps", sig.SpotMoveBps).
		Str("token_id", sig.PolyTokenID).
		Float64("poly_mid", sig.PolyMidPrice).
		Float64("poly_move_bps", sig.PolyMoveBps).
		Float64("edge_bps", sig.EdgeBps).
		Msg("arbitrage signal")

	return sig, nil
}

// evaluate runs the gate chain. Callers hold e.mu.
func (e *Engine) evaluate(move domain.Move, tokenID string) (*domain.ArbSignal, domain.Discard) {
	hist := e.histories[tokenID]
	if len(hist) == 0 {
		return nil, domain.NoPolySnapshotDiscard{TokenID: tokenID}
	}

	latest := hist[len(hist)-1]

	if latest.SpreadBps > e.opts.MaxSpreadBps {
		return nil, domain.WideSpreadDiscard{
			TokenID:      tokenID,
			SpreadBps:    latest.SpreadBps,
			MaxSpreadBps: e.opts.MaxSpreadBps,
		}
	}

	if latest.Depth < e.opts.MinDepth {
		return nil, domain.LowDepthDiscard{
			TokenID:  tokenID,
			Depth:    latest.Depth,
			MinDepth: e.opts.MinDepth,
		}
	}

	// The cooldown is global across symbols: one signal quiets the whole
	// engine. A fresh engine has never signalled and is never in cooldown.
	if !e.lastSignal.IsZero() {
		elapsed := move.At.Sub(e.lastSignal)
		if elapsed < e.opts.Cooldown {
			return nil, domain.CooldownDiscard{
				ElapsedMs:  elapsed.Milliseconds(),
				CooldownMs: e.opts.Cooldown.Milliseconds(),
			}
		}
	}

	polyMoveBps := e.polyMoveBps(hist)
	edgeBps := math.Abs(move.MoveBps) - math.Abs(polyMoveBps)
	if edgeBps < e.opts.MinEdgeBps {
		return nil, domain.InsufficientEdgeDiscard{
			TokenID:     tokenID,
			MoveBps:     move.MoveBps,
			PolyMoveBps: polyMoveBps,
			EdgeBps:     edgeBps,
			MinEdgeBps:  e.opts.MinEdgeBps,
		}
	}

	return &domain.ArbSignal{
		ID:            uuid.NewString(),
		At:            move.At,
		Reason:        "spot_move_unpriced",
		SpotSymbol:    move.Symbol,
		SpotPrice:     move.Price,
		SpotMoveBps:   move.MoveBps,
		SpotDirection: move.Direction,
		PolyTokenID:   tokenID,
		PolyMidPrice:  latest.MidPrice,
		PolySpreadBps: latest.SpreadBps,
		PolyDepth:     latest.Depth,
		PolyMoveBps:   polyMoveBps,
		EdgeBps:       edgeBps,
	}, nil
}

// polyMoveBps is the counterpart's own move over its history window, oldest
// to newest mid. With a single snapshot the counterpart has not moved.
func (e *Engine) polyMoveBps(hist []domain.MarketData) float64 {
	if len(hist) < 2 {
		return 0
	}
	oldest := hist[0].MidPrice
	newest := hist[len(hist)-1].MidPrice
	if oldest == 0 {
		return 0
	}
	return (newest - oldest) / oldest * 10_000
}
