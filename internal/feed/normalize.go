package feed

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Healzy1/poly-latency-arb-bot/internal/domain"
)

// bookLevel is a parsed and validated price level.
type bookLevel struct {
	price float64
	size  float64
}

// NormalizeBook turns a raw orderbook snapshot into the figures the signal
// engine consumes. Levels are parsed exactly from their textual form, sorted
// best-first (bids descending, asks ascending), and reduced to best quotes,
// mid price, spread in bps of mid, and summed depth over the top depthLevels
// of each side. Any level with an unparseable or non-positive price rejects
// the whole snapshot with ErrInvalidPrice; a bad price anywhere means the
// book cannot be trusted, and dropping the level could silently promote a
// worse quote to best. A side left empty after validation yields
// ErrEmptyBook.
//
// A crossed book (best bid above best ask) is not an error; it produces a
// negative spread, which the engine's spread gate then rejects or admits on
// its own terms.
func NormalizeBook(raw domain.RawOrderBook, depthLevels int, now time.Time) (domain.MarketData, error) {
	if depthLevels < 1 {
		depthLevels = 1
	}

	bids, err := parseLevels(raw.Bids)
	if err != nil {
		return domain.MarketData{}, fmt.Errorf("feed: token %s bids: %w", raw.TokenID, err)
	}
	asks, err := parseLevels(raw.Asks)
	if err != nil {
		return domain.MarketData{}, fmt.Errorf("feed: token %s asks: %w", raw.TokenID, err)
	}

	if len(bids) == 0 {
		return domain.MarketData{}, fmt.Errorf("feed: token %s bids: %w", raw.TokenID, domain.ErrEmptyBook)
	}
	if len(asks) == 0 {
		return domain.MarketData{}, fmt.Errorf("feed: token %s asks: %w", raw.TokenID, domain.ErrEmptyBook)
	}

	sort.Slice(bids, func(i, j int) bool { return bids[i].price > bids[j].price })
	sort.Slice(asks, func(i, j int) bool { return asks[i].price < asks[j].price })

	bestBid := bids[0].price
	bestAsk := asks[0].price
	mid := (bestBid + bestAsk) / 2
	spreadBps := (bestAsk - bestBid) / mid * 10_000

	depth := sumDepth(bids, depthLevels) + sumDepth(asks, depthLevels)

	return domain.MarketData{
		TokenID:   raw.TokenID,
		BestBid:   bestBid,
		BestAsk:   bestAsk,
		MidPrice:  mid,
		SpreadBps: spreadBps,
		Depth:     depth,
		LocalTime: now,
	}, nil
}

// parseLevels converts textual levels to numeric ones. An unparseable or
// non-positive price fails the whole side with ErrInvalidPrice. A level with
// an unparseable or negative size is dropped on its own; the price ladder is
// still intact without it.
func parseLevels(raw []domain.RawLevel) ([]bookLevel, error) {
	levels := make([]bookLevel, 0, len(raw))
	for _, lvl := range raw {
		price, err := decimal.NewFromString(lvl.Price)
		if err != nil || !price.IsPositive() {
			return nil, fmt.Errorf("level price %q: %w", lvl.Price, domain.ErrInvalidPrice)
		}
		size, err := decimal.NewFromString(lvl.Size)
		if err != nil || size.IsNegative() {
			continue
		}
		levels = append(levels, bookLevel{
			price: price.InexactFloat64(),
			size:  size.InexactFloat64(),
		})
	}
	return levels, nil
}

func sumDepth(levels []bookLevel, n int) float64 {
	if n > len(levels) {
		n = len(levels)
	}
	var total float64
	for i := 0; i < n; i++ {
		total += levels[i].size
	}
	return total
}
