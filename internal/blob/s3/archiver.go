package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Healzy1/poly-latency-arb-bot/internal/domain"
)

// SignalArchiveStore provides the read side the archiver needs. The Postgres
// signal store satisfies it through its ListBefore method.
type SignalArchiveStore interface {
	ListBefore(ctx context.Context, before time.Time) ([]domain.ArbSignal, error)
}

// Archiver copies aged signal rows out of the primary store into blob
// storage as JSONL batches.
//
// Deletion of the archived rows is intentionally not performed here; the
// store stays append-only and retention is an operator decision.
type Archiver struct {
	writer domain.BlobWriter
	store  SignalArchiveStore
	logger zerolog.Logger
}

// NewArchiver creates an Archiver.
func NewArchiver(writer domain.BlobWriter, store SignalArchiveStore, logger zerolog.Logger) *Archiver {
	return &Archiver{
		writer: writer,
		store:  store,
		logger: logger.With().Str("component", "archiver").Logger(),
	}
}

// ArchiveSignals uploads every signal older than the cutoff as one JSONL
// object at archive/signals/YYYY/MM/DD/<unix>.jsonl and returns the count.
// An empty batch uploads nothing.
func (a *Archiver) ArchiveSignals(ctx context.Context, before time.Time) (int64, error) {
	signals, err := a.store.ListBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive signals query: %w", err)
	}
	if len(signals) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range signals {
		if err := enc.Encode(&signals[i]); err != nil {
			return 0, fmt.Errorf("s3blob: encode signal %s: %w", signals[i].ID, err)
		}
	}

	path := fmt.Sprintf("archive/signals/%s/%d.jsonl",
		before.UTC().Format("2006/01/02"), before.UTC().Unix())

	if err := a.writer.Put(ctx, path, &buf, "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive signals upload: %w", err)
	}

	a.logger.Info().
		Int("count", len(signals)).
		Str("path", path).
		Time("before", before).
		Msg("signals archived")

	return int64(len(signals)), nil
}
