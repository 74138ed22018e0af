package domain

import (
	"context"
	"io"
	"time"
)

// SignalStore is an append-only record of emitted signals.
type SignalStore interface {
	Insert(ctx context.Context, sig ArbSignal) error
	ListRecent(ctx context.Context, limit int) ([]ArbSignal, error)
	ListBefore(ctx context.Context, before time.Time) ([]ArbSignal, error)
}

// SignalBus publishes emitted signals to external consumers.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	StreamAppend(ctx context.Context, stream string, payload []byte) error
}

// PriceCache stores the latest observed price per symbol for external readers.
type PriceCache interface {
	SetPrice(ctx context.Context, symbol string, price float64, ts time.Time) error
	GetPrice(ctx context.Context, symbol string) (float64, time.Time, error)
}

// BlobWriter uploads a single object to blob storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}
