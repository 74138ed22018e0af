// Package notify fans alert messages out to operator channels (Telegram,
// Discord). Delivery is best effort and filtered by event type so operators
// receive only the alerts they care about.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Healzy1/poly-latency-arb-bot/internal/domain"
)

// Sender is the interface each notification channel implements.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier for the sender.
	Name() string
}

// Notifier dispatches notifications to one or more Senders. Notify only
// forwards messages whose event type is in the allowed set.
type Notifier struct {
	senders []Sender
	events  map[string]bool // allowed event types; empty allows all
	logger  zerolog.Logger
}

// NewNotifier creates a Notifier delivering to the given senders. Only events
// whose type appears in events are forwarded; an empty list allows all.
func NewNotifier(senders []Sender, events []string, logger zerolog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = true
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With().Str("component", "notifier").Logger(),
	}
}

// Notify sends a notification to all senders when the event type is allowed.
func (n *Notifier) Notify(ctx context.Context, event, title, message string) error {
	if len(n.events) > 0 && !n.events[event] {
		n.logger.Debug().Str("event", event).Msg("event filtered out")
		return nil
	}
	return n.dispatch(ctx, title, message)
}

// NotifySignal formats and delivers an emitted arbitrage signal under the
// "signal" event type.
func (n *Notifier) NotifySignal(ctx context.Context, sig domain.ArbSignal) error {
	return n.Notify(ctx, "signal", "Arbitrage signal", FormatSignal(sig))
}

// dispatch sends to every sender; one failing sender does not prevent
// delivery to the rest, and failures come back as a combined error.
func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.Error().Err(err).Str("sender", s.Name()).Msg("sender failed")
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		n.logger.Debug().Str("sender", s.Name()).Str("title", title).Msg("notification sent")
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}

// FormatSignal renders a signal as a short operator-readable message.
func FormatSignal(sig domain.ArbSignal) string {
	return fmt.Sprintf(
		"%s moved %.1fbps (%s) at %s\ntoken %s mid %.4f spread %.1fbps depth %.0f\ncounterpart move %.1fbps, edge %.1fbps",
		sig.SpotSymbol, sig.SpotMoveBps, sig.SpotDirection,
		sig.At.UTC().Format("15:04:05.000"),
		sig.PolyTokenID, sig.PolyMidPrice, sig.PolySpreadBps, sig.PolyDepth,
		sig.PolyMoveBps, sig.EdgeBps,
	)
}
