package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Healzy1/poly-latency-arb-bot/internal/domain"
)

func tickAt(symbol string, price float64, at time.Time) domain.Tick {
	return domain.Tick{Symbol: symbol, Price: price, ExchangeTime: at, LocalTime: at}
}

func TestWindowDownsampling(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	w := newTickWindow("BTCUSDT", 10*time.Second, 500*time.Millisecond)

	// Ticks every 100ms for 2 seconds: of 21 ticks only those at 0ms, 500ms,
	// 1000ms, 1500ms, 2000ms are admitted.
	admitted := 0
	for i := 0; i <= 20; i++ {
		if w.Observe(tickAt("BTCUSDT", 100, base.Add(time.Duration(i)*100*time.Millisecond))) {
			admitted++
		}
	}
	assert.Equal(t, 5, admitted)
	assert.Equal(t, 5, w.Len())

	// Latest tracks every tick, including downsampled ones.
	latest, ok := w.Latest()
	require.True(t, ok)
	assert.Equal(t, base.Add(2*time.Second), latest.LocalTime)
}

func TestWindowPruning(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	w := newTickWindow("BTCUSDT", 10*time.Second, time.Second)

	for i := 0; i < 5; i++ {
		w.Observe(tickAt("BTCUSDT", 100, base.Add(time.Duration(i)*time.Second)))
	}
	assert.Equal(t, 5, w.Len())

	// A tick 11s after base evicts everything older than 1s after base.
	w.Observe(tickAt("BTCUSDT", 100, base.Add(11*time.Second)))
	assert.Equal(t, 5, w.Len()) // ticks at 1s..4s plus the new one

	ret, ok := w.Return()
	require.True(t, ok)
	assert.Equal(t, int64(10_000), ret.WindowMs)
}

func TestWindowReturn(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	w := newTickWindow("BTCUSDT", 10*time.Second, time.Second)

	w.Observe(tickAt("BTCUSDT", 100, base))
	_, ok := w.Return()
	assert.False(t, ok, "single tick must not produce a return")

	w.Observe(tickAt("BTCUSDT", 110, base.Add(2*time.Second)))
	ret, ok := w.Return()
	require.True(t, ok)

	// 100 -> 110 is a 10% move, i.e. 1000 bps.
	assert.InDelta(t, 1000.0, ret.ReturnBps, 1e-9)
	assert.Equal(t, domain.DirectionUp, ret.Direction)
	assert.Equal(t, 100.0, ret.PastPrice)
	assert.Equal(t, 110.0, ret.CurrentPrice)
	assert.Equal(t, int64(2000), ret.WindowMs)
}

func TestWindowReturnDown(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	w := newTickWindow("ETHUSDT", 10*time.Second, time.Second)

	w.Observe(tickAt("ETHUSDT", 200, base))
	w.Observe(tickAt("ETHUSDT", 198, base.Add(3*time.Second)))

	ret, ok := w.Return()
	require.True(t, ok)
	assert.InDelta(t, -100.0, ret.ReturnBps, 1e-9)
	assert.Equal(t, domain.DirectionDown, ret.Direction)
}
