package polymarket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Healzy1/poly-latency-arb-bot/internal/domain"
)

func TestSearchMarkets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/markets", r.URL.Path)
		assert.Equal(t, "bitcoin", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`[{
			"id": "m-1",
			"question": "Will BTC close above 70k?",
			"slug": "btc-70k",
			"active": "true",
			"closed": false,
			"outcomes": "[\"Yes\",\"No\"]",
			"clobTokenIds": "[\"111\",\"222\"]"
		}]`))
	}))
	defer srv.Close()

	g := NewGammaClient(srv.URL)
	markets, err := g.SearchMarkets(context.Background(), "bitcoin", 0)
	require.NoError(t, err)
	require.Len(t, markets, 1)

	m := markets[0]
	assert.Equal(t, "m-1", m.ID)
	assert.True(t, m.Active)
	assert.Equal(t, []string{"111", "222"}, m.TokenIDs)
	assert.Equal(t, []string{"Yes", "No"}, m.Outcomes)
}

func TestGetMarketBySlugNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	g := NewGammaClient(srv.URL)
	_, err := g.GetMarketBySlug(context.Background(), "no-such-market")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
