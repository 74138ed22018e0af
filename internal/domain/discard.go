package domain

// DiscardReason identifies the gate that rejected a move. Exactly one reason
// is produced per rejected move; gates are mutually exclusive and ordered.
type DiscardReason string

const (
	DiscardNoPolySnapshot   DiscardReason = "no_poly_snapshot"
	DiscardWideSpread       DiscardReason = "wide_spread"
	DiscardLowDepth         DiscardReason = "low_depth"
	DiscardCooldown         DiscardReason = "cooldown"
	DiscardInsufficientEdge DiscardReason = "insufficient_edge"
)

// Discard is a closed union over gate rejections. Each variant carries only
// the fields relevant to its gate; callers switch on the concrete type or use
// Reason and Fields for logging.
type Discard interface {
	Reason() DiscardReason
	// Fields returns the numeric context for structured logging.
	Fields() map[string]any
}

// NoPolySnapshotDiscard: the counterpart history held no snapshots.
type NoPolySnapshotDiscard struct {
	TokenID string
}

func (NoPolySnapshotDiscard) Reason() DiscardReason { return DiscardNoPolySnapshot }

func (d NoPolySnapshotDiscard) Fields() map[string]any {
	return map[string]any{"token_id": d.TokenID}
}

// WideSpreadDiscard: the latest snapshot's spread exceeded the maximum.
type WideSpreadDiscard struct {
	TokenID      string
	SpreadBps    float64
	MaxSpreadBps float64
}

func (WideSpreadDiscard) Reason() DiscardReason { return DiscardWideSpread }

func (d WideSpreadDiscard) Fields() map[string]any {
	return map[string]any{
		"token_id":       d.TokenID,
		"spread_bps":     d.SpreadBps,
		"max_spread_bps": d.MaxSpreadBps,
	}
}

// LowDepthDiscard: the latest snapshot's depth was below the minimum.
type LowDepthDiscard struct {
	TokenID  string
	Depth    float64
	MinDepth float64
}

func (LowDepthDiscard) Reason() DiscardReason { return DiscardLowDepth }

func (d LowDepthDiscard) Fields() map[string]any {
	return map[string]any{
		"token_id":  d.TokenID,
		"depth":     d.Depth,
		"min_depth": d.MinDepth,
	}
}

// CooldownDiscard: not enough time elapsed since the last emitted signal.
type CooldownDiscard struct {
	ElapsedMs  int64
	CooldownMs int64
}

func (CooldownDiscard) Reason() DiscardReason { return DiscardCooldown }

func (d CooldownDiscard) Fields() map[string]any {
	return map[string]any{
		"elapsed_ms":  d.ElapsedMs,
		"cooldown_ms": d.CooldownMs,
	}
}

// InsufficientEdgeDiscard: the computed edge fell short of the minimum.
type InsufficientEdgeDiscard struct {
	TokenID     string
	MoveBps     float64
	PolyMoveBps float64
	EdgeBps     float64
	MinEdgeBps  float64
}

func (InsufficientEdgeDiscard) Reason() DiscardReason { return DiscardInsufficientEdge }

func (d InsufficientEdgeDiscard) Fields() map[string]any {
	return map[string]any{
		"token_id":      d.TokenID,
		"move_bps":      d.MoveBps,
		"poly_move_bps": d.PolyMoveBps,
		"edge_bps":      d.EdgeBps,
		"min_edge_bps":  d.MinEdgeBps,
	}
}
