package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Healzy1/poly-latency-arb-bot/internal/domain"
)

// SignalStore is the append-only record of emitted signals. Rows are never
// updated; the archiver eventually copies aged rows to blob storage.
type SignalStore struct {
	pool *pgxpool.Pool
}

// NewSignalStore creates a SignalStore backed by the given connection pool.
func NewSignalStore(pool *pgxpool.Pool) *SignalStore {
	return &SignalStore{pool: pool}
}

const signalColumns = `id, at, reason, spot_symbol, spot_price, spot_move_bps,
	spot_direction, poly_token_id, poly_mid_price, poly_spread_bps, poly_depth,
	poly_move_bps, edge_bps`

// Insert appends one signal.
func (s *SignalStore) Insert(ctx context.Context, sig domain.ArbSignal) error {
	const query = `
		INSERT INTO signals (` + signalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := s.pool.Exec(ctx, query,
		sig.ID, sig.At, sig.Reason,
		sig.SpotSymbol, sig.SpotPrice, sig.SpotMoveBps, int16(sig.SpotDirection),
		sig.PolyTokenID, sig.PolyMidPrice, sig.PolySpreadBps, sig.PolyDepth,
		sig.PolyMoveBps, sig.EdgeBps,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert signal %s: %w", sig.ID, err)
	}
	return nil
}

// ListRecent returns the most recent signals, newest first.
func (s *SignalStore) ListRecent(ctx context.Context, limit int) ([]domain.ArbSignal, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT ` + signalColumns + `
		FROM signals
		ORDER BY at DESC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent signals: %w", err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// ListBefore returns all signals older than the given cutoff, oldest first.
// The archiver uses this to page aged rows into blob storage.
func (s *SignalStore) ListBefore(ctx context.Context, before time.Time) ([]domain.ArbSignal, error) {
	const query = `
		SELECT ` + signalColumns + `
		FROM signals
		WHERE at < $1
		ORDER BY at ASC`

	rows, err := s.pool.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list signals before %s: %w", before, err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

func scanSignals(rows pgx.Rows) ([]domain.ArbSignal, error) {
	var signals []domain.ArbSignal
	for rows.Next() {
		var sig domain.ArbSignal
		var direction int16

		if err := rows.Scan(
			&sig.ID, &sig.At, &sig.Reason,
			&sig.SpotSymbol, &sig.SpotPrice, &sig.SpotMoveBps, &direction,
			&sig.PolyTokenID, &sig.PolyMidPrice, &sig.PolySpreadBps, &sig.PolyDepth,
			&sig.PolyMoveBps, &sig.EdgeBps,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan signal: %w", err)
		}
		sig.SpotDirection = domain.Direction(direction)
		signals = append(signals, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: signal rows: %w", err)
	}
	return signals, nil
}

// Compile-time interface check.
var _ domain.SignalStore = (*SignalStore)(nil)
