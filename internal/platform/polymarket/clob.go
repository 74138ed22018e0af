// Package polymarket provides REST clients for the Polymarket CLOB and Gamma
// APIs, limited to the read-only surfaces the detector needs.
package polymarket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/Healzy1/poly-latency-arb-bot/internal/domain"
)

// ClobClient is the REST client for the Polymarket CLOB (Central Limit Order
// Book) API. Only the public, unauthenticated endpoints are used; requests
// are throttled by a client-side rate limiter.
type ClobClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClobClient creates a new CLOB REST client.
//
// baseURL is the CLOB API root, e.g. "https://clob.polymarket.com".
// ratePerSec caps outbound requests per second.
func NewClobClient(baseURL string, ratePerSec float64) *ClobClient {
	if ratePerSec <= 0 {
		ratePerSec = 5
	}
	return &ClobClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), 1),
	}
}

// GetOrderBook fetches the current orderbook snapshot for a token. A missing
// book (unknown token or empty response) maps to domain.ErrBookUnavailable so
// callers can distinguish "no book right now" from a transport failure.
func (c *ClobClient) GetOrderBook(ctx context.Context, tokenID string) (domain.RawOrderBook, error) {
	params := url.Values{}
	params.Set("token_id", tokenID)

	body, err := c.doGet(ctx, "/book?"+params.Encode())
	if err != nil {
		if isNotFound(err) {
			return domain.RawOrderBook{}, fmt.Errorf("polymarket/clob: book for token %s: %w", tokenID, domain.ErrBookUnavailable)
		}
		return domain.RawOrderBook{}, fmt.Errorf("polymarket/clob: get book for token %s: %w", tokenID, err)
	}

	var apiBook APIBook
	if err := json.Unmarshal(body, &apiBook); err != nil {
		return domain.RawOrderBook{}, fmt.Errorf("polymarket/clob: decode book: %w", err)
	}

	if len(apiBook.Bids) == 0 && len(apiBook.Asks) == 0 {
		return domain.RawOrderBook{}, fmt.Errorf("polymarket/clob: book for token %s: %w", tokenID, domain.ErrBookUnavailable)
	}

	return apiBook.ToDomainBook(tokenID), nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doGet waits for a rate-limiter slot, sends an unauthenticated GET request,
// and reads the response body.
func (c *ClobClient) doGet(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// checkHTTPStatus maps non-2xx status codes to appropriate domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
