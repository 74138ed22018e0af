package engine

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Healzy1/poly-latency-arb-bot/internal/domain"
)

var base = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return New(Options{
		Markets:       map[string]string{"BTCUSDT": "tok-1"},
		MaxSpreadBps:  500,
		MinDepth:      100,
		Cooldown:      60 * time.Second,
		MinEdgeBps:    50,
		HistoryWindow: 60 * time.Second,
	}, zerolog.Nop())
}

func snapshot(mid, spreadBps, depth float64, at time.Time) domain.MarketData {
	return domain.MarketData{
		TokenID:   "tok-1",
		BestBid:   mid - 0.01,
		BestAsk:   mid + 0.01,
		MidPrice:  mid,
		SpreadBps: spreadBps,
		Depth:     depth,
		LocalTime: at,
	}
}

func moveAt(bps float64, at time.Time) domain.Move {
	return domain.Move{
		Symbol:    "BTCUSDT",
		Price:     65_000,
		MoveBps:   bps,
		Direction: domain.DirectionOf(bps),
		WindowMs:  9_000,
		At:        at,
	}
}

func TestLowercaseMarketKeyRoutesMoves(t *testing.T) {
	// Operators write symbols the way the stream names look; routing must
	// not depend on the configured case.
	e := New(Options{
		Markets:       map[string]string{"btcusdt": "tok-1"},
		MaxSpreadBps:  500,
		MinDepth:      100,
		Cooldown:      60 * time.Second,
		MinEdgeBps:    50,
		HistoryWindow: 60 * time.Second,
	}, zerolog.Nop())
	e.UpdateSnapshot(snapshot(0.55, 100, 500, base))

	sig, discard := e.ProcessMove(moveAt(100, base.Add(time.Second)))
	assert.Nil(t, discard)
	require.NotNil(t, sig)
	assert.Equal(t, "tok-1", sig.PolyTokenID)
}

func TestUnmappedSymbolIgnored(t *testing.T) {
	e := newTestEngine()
	sig, discard := e.ProcessMove(domain.Move{Symbol: "SOLUSDT", MoveBps: 100, At: base})
	assert.Nil(t, sig)
	assert.Nil(t, discard)
}

func TestGateNoPolySnapshot(t *testing.T) {
	e := newTestEngine()
	sig, discard := e.ProcessMove(moveAt(100, base))
	assert.Nil(t, sig)
	require.NotNil(t, discard)
	assert.Equal(t, domain.DiscardNoPolySnapshot, discard.Reason())
}

func TestGateWideSpread(t *testing.T) {
	e := newTestEngine()
	// Wide spread AND low depth: spread is checked first and wins.
	e.UpdateSnapshot(snapshot(0.55, 800, 10, base))

	_, discard := e.ProcessMove(moveAt(100, base.Add(time.Second)))
	require.NotNil(t, discard)
	assert.Equal(t, domain.DiscardWideSpread, discard.Reason())

	d := discard.(domain.WideSpreadDiscard)
	assert.Equal(t, 800.0, d.SpreadBps)
	assert.Equal(t, 500.0, d.MaxSpreadBps)
}

func TestGateLowDepth(t *testing.T) {
	e := newTestEngine()
	e.UpdateSnapshot(snapshot(0.55, 100, 40, base))

	_, discard := e.ProcessMove(moveAt(100, base.Add(time.Second)))
	require.NotNil(t, discard)
	assert.Equal(t, domain.DiscardLowDepth, discard.Reason())
}

func TestGateSpreadAtLimitPasses(t *testing.T) {
	e := newTestEngine()
	// Exactly at the limits: both gates pass, signal emits.
	e.UpdateSnapshot(snapshot(0.55, 500, 100, base))

	sig, discard := e.ProcessMove(moveAt(100, base.Add(time.Second)))
	assert.Nil(t, discard)
	require.NotNil(t, sig)
}

func TestSignalEmission(t *testing.T) {
	e := newTestEngine()
	e.UpdateSnapshot(snapshot(0.55, 100, 500, base))

	sig, discard := e.ProcessMove(moveAt(-120, base.Add(time.Second)))
	assert.Nil(t, discard)
	require.NotNil(t, sig)

	assert.NotEmpty(t, sig.ID)
	assert.Equal(t, base.Add(time.Second), sig.At)
	assert.Equal(t, "BTCUSDT", sig.SpotSymbol)
	assert.Equal(t, -120.0, sig.SpotMoveBps)
	assert.Equal(t, domain.DirectionDown, sig.SpotDirection)
	assert.Equal(t, "tok-1", sig.PolyTokenID)
	assert.Equal(t, 0.55, sig.PolyMidPrice)
	assert.Equal(t, 0.0, sig.PolyMoveBps, "single snapshot means no counterpart move")
	assert.InDelta(t, 120.0, sig.EdgeBps, 1e-9)
}

func TestGateCooldown(t *testing.T) {
	e := newTestEngine()
	e.UpdateSnapshot(snapshot(0.55, 100, 500, base))

	sig, _ := e.ProcessMove(moveAt(100, base))
	require.NotNil(t, sig)

	// One tick before the cooldown expires: still quiet.
	_, discard := e.ProcessMove(moveAt(100, base.Add(60*time.Second-time.Millisecond)))
	require.NotNil(t, discard)
	assert.Equal(t, domain.DiscardCooldown, discard.Reason())

	d := discard.(domain.CooldownDiscard)
	assert.Equal(t, int64(59_999), d.ElapsedMs)
	assert.Equal(t, int64(60_000), d.CooldownMs)

	// Exactly at the boundary the cooldown has elapsed.
	sig, discard = e.ProcessMove(moveAt(100, base.Add(60*time.Second)))
	assert.Nil(t, discard)
	assert.NotNil(t, sig)
}

func TestGateInsufficientEdge(t *testing.T) {
	e := newTestEngine()
	// Counterpart already moved: mid 0.50 -> 0.55 is +1000bps.
	e.UpdateSnapshot(snapshot(0.50, 100, 500, base))
	e.UpdateSnapshot(snapshot(0.55, 100, 500, base.Add(5*time.Second)))

	// |1040| - |1000| = 40 < 50: no edge left.
	_, discard := e.ProcessMove(moveAt(1040, base.Add(6*time.Second)))
	require.NotNil(t, discard)
	assert.Equal(t, domain.DiscardInsufficientEdge, discard.Reason())

	d := discard.(domain.InsufficientEdgeDiscard)
	assert.InDelta(t, 1000.0, d.PolyMoveBps, 1e-9)
	assert.InDelta(t, 40.0, d.EdgeBps, 1e-9)

	// |1050| - |1000| = 50 meets the minimum.
	sig, discard := e.ProcessMove(moveAt(1050, base.Add(7*time.Second)))
	assert.Nil(t, discard)
	require.NotNil(t, sig)
	assert.InDelta(t, 50.0, sig.EdgeBps, 1e-9)
}

func TestEdgeUsesMagnitudesOnly(t *testing.T) {
	e := newTestEngine()
	// Counterpart moved down 1000bps while spot moved up: magnitudes cancel.
	e.UpdateSnapshot(snapshot(0.55, 100, 500, base))
	e.UpdateSnapshot(snapshot(0.495, 100, 500, base.Add(5*time.Second)))

	_, discard := e.ProcessMove(moveAt(1010, base.Add(6*time.Second)))
	require.NotNil(t, discard)
	assert.Equal(t, domain.DiscardInsufficientEdge, discard.Reason())
}

func TestHistoryPruning(t *testing.T) {
	e := newTestEngine()
	// An old snapshot at a different mid is pruned once a fresh one arrives
	// more than the history window later, so the counterpart move resets.
	e.UpdateSnapshot(snapshot(0.40, 100, 500, base))
	e.UpdateSnapshot(snapshot(0.55, 100, 500, base.Add(61*time.Second)))

	sig, discard := e.ProcessMove(moveAt(100, base.Add(62*time.Second)))
	assert.Nil(t, discard)
	require.NotNil(t, sig)
	assert.Equal(t, 0.0, sig.PolyMoveBps)
}

func TestExactlyOneOutcomePerMove(t *testing.T) {
	e := newTestEngine()
	e.UpdateSnapshot(snapshot(0.55, 100, 500, base))

	for i := 0; i < 10; i++ {
		sig, discard := e.ProcessMove(moveAt(100, base.Add(time.Duration(i)*time.Second)))
		if sig != nil {
			assert.Nil(t, discard)
		} else {
			assert.NotNil(t, discard)
		}
	}
}
