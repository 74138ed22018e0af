package handler

import (
	"net/http"
	"time"
)

// StatusHandler serves the detector's static configuration and uptime.
type StatusHandler struct {
	Mode      string
	Symbols   []string
	Markets   map[string]string
	StartedAt time.Time
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(mode string, symbols []string, markets map[string]string) *StatusHandler {
	return &StatusHandler{
		Mode:      mode,
		Symbols:   symbols,
		Markets:   markets,
		StartedAt: time.Now().UTC(),
	}
}

// GetStatus responds with the running mode, watched markets, and uptime.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":       h.Mode,
		"symbols":    h.Symbols,
		"markets":    h.Markets,
		"started_at": h.StartedAt.Format(time.RFC3339),
		"uptime_s":   int64(time.Since(h.StartedAt).Seconds()),
	})
}
