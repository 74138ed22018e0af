// Package metrics registers the Prometheus instruments exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "polyarb_ticks_total", Help: "Trades admitted into the sliding window"},
		[]string{"symbol"},
	)
	TicksDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "polyarb_ticks_dropped_total", Help: "Trades rejected by the downsample gate or malformed"},
		[]string{"symbol", "cause"},
	)
	MovesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "polyarb_moves_total", Help: "Threshold-crossing moves detected"},
		[]string{"symbol"},
	)
	PollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "polyarb_polls_total", Help: "Orderbook poll cycles by outcome"},
		[]string{"result"},
	)
	SignalsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "polyarb_signals_total", Help: "Arbitrage signals emitted"},
	)
	DiscardsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "polyarb_discards_total", Help: "Moves rejected by the signal engine, by gate"},
		[]string{"reason"},
	)
	WSConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "polyarb_ws_connected", Help: "1 when the trade stream is connected"},
	)
	Reconnects = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "polyarb_ws_reconnects_total", Help: "Trade stream reconnect attempts"},
	)
)

func init() {
	prometheus.MustRegister(
		TicksTotal, TicksDroppedTotal, MovesTotal, PollsTotal,
		SignalsTotal, DiscardsTotal, WSConnected, Reconnects,
	)
}

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
