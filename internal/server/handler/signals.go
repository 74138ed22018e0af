package handler

import (
	"context"
	"net/http"

	"github.com/Healzy1/poly-latency-arb-bot/internal/domain"
)

// SignalSource is the read side the signals endpoint needs. The Postgres
// signal store satisfies it; without Postgres the in-memory recent buffer
// stands in.
type SignalSource interface {
	ListRecent(ctx context.Context, limit int) ([]domain.ArbSignal, error)
}

// SignalsHandler serves recently emitted signals.
type SignalsHandler struct {
	source SignalSource
}

// NewSignalsHandler creates a SignalsHandler backed by the given source.
func NewSignalsHandler(source SignalSource) *SignalsHandler {
	return &SignalsHandler{source: source}
}

// ListSignals responds with the most recent signals, newest first.
// GET /api/signals?limit=N
func (h *SignalsHandler) ListSignals(w http.ResponseWriter, r *http.Request) {
	signals, err := h.source.ListRecent(r.Context(), parseLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list signals")
		return
	}
	if signals == nil {
		signals = []domain.ArbSignal{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"signals": signals,
		"count":   len(signals),
	})
}
