package binance

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Healzy1/poly-latency-arb-bot/internal/domain"
)

// streamEnvelope is the outer frame of the combined-stream endpoint: the
// stream name plus the per-stream payload.
type streamEnvelope struct {
	Stream string       `json:"stream"`
	Data   tradeMessage `json:"data"`
}

// tradeMessage is a single trade event as Binance sends it. Price arrives as
// text; TradeTime is epoch milliseconds assigned by the exchange.
type tradeMessage struct {
	EventType string `json:"e"`
	Symbol    string `json:"s"`
	Price     string `json:"p"`
	Quantity  string `json:"q"`
	TradeTime int64  `json:"T"`
}

// StreamURL builds the multiplexed combined-stream URL for the given symbols,
// one "<symbol>@trade" stream per symbol.
func StreamURL(host string, symbols []string) string {
	streams := make([]string, len(symbols))
	for i, sym := range symbols {
		streams[i] = strings.ToLower(strings.TrimSpace(sym)) + "@trade"
	}
	return fmt.Sprintf("%s/stream?streams=%s", strings.TrimSuffix(host, "/"), strings.Join(streams, "/"))
}

// ParseTick decodes a raw combined-stream message into a domain Tick. The
// symbol is canonicalized to upper case and local is recorded as the receipt
// timestamp. A malformed or incomplete message yields an error; the caller
// drops it and continues.
func ParseTick(raw []byte, local time.Time) (domain.Tick, error) {
	var env streamEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return domain.Tick{}, fmt.Errorf("binance: decode message: %w", err)
	}

	symbol := strings.ToUpper(strings.TrimSpace(env.Data.Symbol))
	if symbol == "" {
		// Fall back to the stream name ("btcusdt@trade").
		if i := strings.IndexByte(env.Stream, '@'); i > 0 {
			symbol = strings.ToUpper(env.Stream[:i])
		}
	}
	if symbol == "" {
		return domain.Tick{}, fmt.Errorf("binance: message missing symbol")
	}
	if env.Data.Price == "" {
		return domain.Tick{}, fmt.Errorf("binance: message missing price")
	}

	price, err := strconv.ParseFloat(env.Data.Price, 64)
	if err != nil || price <= 0 {
		return domain.Tick{}, fmt.Errorf("binance: invalid price %q: %w", env.Data.Price, domain.ErrInvalidPrice)
	}

	return domain.Tick{
		Symbol:       symbol,
		Price:        price,
		ExchangeTime: time.UnixMilli(env.Data.TradeTime),
		LocalTime:    local,
	}, nil
}
