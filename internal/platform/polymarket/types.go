package polymarket

import (
	"encoding/json"
	"strings"

	"github.com/Healzy1/poly-latency-arb-bot/internal/domain"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// --------------------------------------------------------------------------
// CLOB API DTOs
// --------------------------------------------------------------------------

// APIBook is an orderbook snapshot as returned by the CLOB /book endpoint.
// Prices and sizes arrive as strings; normalization happens downstream.
type APIBook struct {
	AssetID   string          `json:"asset_id"`
	Market    string          `json:"market"`
	Bids      []APIPriceLevel `json:"bids"`
	Asks      []APIPriceLevel `json:"asks"`
	Timestamp string          `json:"timestamp"`
	Hash      string          `json:"hash"`
}

// APIPriceLevel is a single bid/ask level in the CLOB orderbook response.
type APIPriceLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// ToDomainBook converts an APIBook to a raw domain orderbook, preserving the
// textual price levels.
func (b *APIBook) ToDomainBook(tokenID string) domain.RawOrderBook {
	book := domain.RawOrderBook{
		TokenID: tokenID,
		Bids:    make([]domain.RawLevel, 0, len(b.Bids)),
		Asks:    make([]domain.RawLevel, 0, len(b.Asks)),
	}
	for _, lvl := range b.Bids {
		book.Bids = append(book.Bids, domain.RawLevel{Price: lvl.Price, Size: lvl.Size})
	}
	for _, lvl := range b.Asks {
		book.Asks = append(book.Asks, domain.RawLevel{Price: lvl.Price, Size: lvl.Size})
	}
	return book
}

// --------------------------------------------------------------------------
// Gamma API DTOs
// --------------------------------------------------------------------------

// APIMarket represents a market as returned by the Polymarket Gamma API.
type APIMarket struct {
	ID           string   `json:"id"`
	Question     string   `json:"question"`
	ConditionID  string   `json:"conditionId"`
	Slug         string   `json:"slug"`
	Active       flexBool `json:"active"` // API may send bool or "true"/"false" string
	Closed       bool     `json:"closed"`
	Outcomes     string   `json:"outcomes"`     // JSON-encoded: e.g. "[\"Yes\",\"No\"]"
	ClobTokenIDs string   `json:"clobTokenIds"` // JSON-encoded: e.g. "[\"123\",\"456\"]"
	Volume       string   `json:"volume"`
}

// ToDomainMarket converts an APIMarket to a domain.Market, decoding the
// JSON-encoded outcome and token-ID lists.
func (m *APIMarket) ToDomainMarket() domain.Market {
	out := domain.Market{
		ID:       m.ID,
		Question: m.Question,
		Slug:     m.Slug,
		Active:   bool(m.Active),
		Closed:   m.Closed,
	}

	// Outcomes and token IDs arrive double-encoded; a decode failure leaves
	// the slice empty rather than failing the whole market.
	var tokenIDs []string
	if err := json.Unmarshal([]byte(m.ClobTokenIDs), &tokenIDs); err == nil {
		out.TokenIDs = tokenIDs
	}
	var outcomes []string
	if err := json.Unmarshal([]byte(m.Outcomes), &outcomes); err == nil {
		out.Outcomes = outcomes
	}

	return out
}
