package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Healzy1/poly-latency-arb-bot/internal/domain"
)

func rawBook(bids, asks []domain.RawLevel) domain.RawOrderBook {
	return domain.RawOrderBook{TokenID: "tok-1", Bids: bids, Asks: asks}
}

func TestNormalizeBook(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	raw := rawBook(
		[]domain.RawLevel{{Price: "0.54", Size: "300"}, {Price: "0.55", Size: "120"}},
		[]domain.RawLevel{{Price: "0.58", Size: "50"}, {Price: "0.57", Size: "80"}},
	)

	md, err := NormalizeBook(raw, 10, now)
	require.NoError(t, err)

	assert.Equal(t, "tok-1", md.TokenID)
	assert.Equal(t, 0.55, md.BestBid)
	assert.Equal(t, 0.57, md.BestAsk)
	assert.InDelta(t, 0.56, md.MidPrice, 1e-12)
	assert.InDelta(t, (0.57-0.55)/0.56*10_000, md.SpreadBps, 1e-9)
	assert.InDelta(t, 550.0, md.Depth, 1e-9) // all four levels
	assert.Equal(t, now, md.LocalTime)
}

func TestNormalizeBookDepthLevels(t *testing.T) {
	raw := rawBook(
		[]domain.RawLevel{{Price: "0.55", Size: "120"}, {Price: "0.54", Size: "300"}},
		[]domain.RawLevel{{Price: "0.57", Size: "80"}},
	)

	// Top-1 per side: 120 + 80. The short ask side contributes what it has.
	md, err := NormalizeBook(raw, 1, time.Now())
	require.NoError(t, err)
	assert.InDelta(t, 200.0, md.Depth, 1e-9)

	// depthLevels beyond the book just sums everything.
	md, err = NormalizeBook(raw, 5, time.Now())
	require.NoError(t, err)
	assert.InDelta(t, 500.0, md.Depth, 1e-9)
}

func TestNormalizeBookCrossed(t *testing.T) {
	raw := rawBook(
		[]domain.RawLevel{{Price: "99", Size: "5"}, {Price: "101", Size: "3"}},
		[]domain.RawLevel{{Price: "102", Size: "4"}, {Price: "100", Size: "2"}},
	)

	md, err := NormalizeBook(raw, 1, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 101.0, md.BestBid)
	assert.Equal(t, 100.0, md.BestAsk)
	assert.InDelta(t, 100.5, md.MidPrice, 1e-12)
	// Crossed book: negative spread, no error.
	assert.InDelta(t, (100.0-101.0)/100.5*10_000, md.SpreadBps, 1e-9)
	assert.InDelta(t, 5.0, md.Depth, 1e-9)
}

func TestNormalizeBookEmptySides(t *testing.T) {
	_, err := NormalizeBook(rawBook(nil, []domain.RawLevel{{Price: "0.5", Size: "1"}}), 10, time.Now())
	assert.ErrorIs(t, err, domain.ErrEmptyBook)

	_, err = NormalizeBook(rawBook([]domain.RawLevel{{Price: "0.5", Size: "1"}}, nil), 10, time.Now())
	assert.ErrorIs(t, err, domain.ErrEmptyBook)
}

func TestNormalizeBookRejectsInvalidPrice(t *testing.T) {
	// A malformed level that would sort to best must reject the snapshot,
	// not quietly promote the next level.
	raw := rawBook(
		[]domain.RawLevel{{Price: "abc", Size: "50"}, {Price: "0.50", Size: "10"}},
		[]domain.RawLevel{{Price: "0.60", Size: "25"}},
	)
	_, err := NormalizeBook(raw, 10, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	// Non-positive prices are equally fatal, on either side.
	raw = rawBook(
		[]domain.RawLevel{{Price: "0.50", Size: "10"}},
		[]domain.RawLevel{{Price: "-1", Size: "25"}, {Price: "0.60", Size: "25"}},
	)
	_, err = NormalizeBook(raw, 10, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	raw = rawBook(
		[]domain.RawLevel{{Price: "0", Size: "10"}},
		[]domain.RawLevel{{Price: "0.60", Size: "25"}},
	)
	_, err = NormalizeBook(raw, 10, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestNormalizeBookDropsInvalidSizes(t *testing.T) {
	raw := rawBook(
		[]domain.RawLevel{
			{Price: "0.50", Size: "nope"},
			{Price: "0.52", Size: "40"},
		},
		[]domain.RawLevel{{Price: "0.60", Size: "25"}},
	)

	// A bad size drops only its own level; the book stays usable.
	md, err := NormalizeBook(raw, 10, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0.52, md.BestBid)
	assert.InDelta(t, 65.0, md.Depth, 1e-9)

	// A side whose every level lost its size counts as empty.
	raw = rawBook(
		[]domain.RawLevel{{Price: "0.50", Size: "x"}, {Price: "0.52", Size: "-3"}},
		[]domain.RawLevel{{Price: "0.60", Size: "25"}},
	)
	_, err = NormalizeBook(raw, 10, time.Now())
	assert.ErrorIs(t, err, domain.ErrEmptyBook)
}
