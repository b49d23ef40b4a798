// Package dexscreener queries the DexScreener market-data aggregator for
// the trading pairs referencing a token, together with their USD liquidity.
package dexscreener

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/kmoon-analytics/internal/metrics"
)

const (
	// DefaultBaseURL is the public DexScreener endpoint.
	DefaultBaseURL = "https://api.dexscreener.com/latest/dex"

	rateLimit = 300 // requests per minute
)

// Response is the top-level DexScreener payload for a token query.
type Response struct {
	SchemaVersion string `json:"schemaVersion"`
	Pairs         []Pair `json:"pairs"`
}

// Pair describes one trading pair referencing the queried token.
type Pair struct {
	ChainID     string    `json:"chainId"`
	DexID       string    `json:"dexId"`
	PairAddress string    `json:"pairAddress"`
	Liquidity   Liquidity `json:"liquidity"`
}

// Liquidity carries the pair's liquidity. USD stays a json.Number so the
// value reaches decimal arithmetic without a float round-trip.
type Liquidity struct {
	USD json.Number `json:"usd"`
}

// Client is a rate-limited DexScreener HTTP client. Transient upstream
// errors are retried here; the metric core never retries.
type Client struct {
	client      *http.Client
	baseURL     string
	logger      *zap.Logger
	rateLimiter *time.Ticker
	maxElapsed  time.Duration
}

// New creates a DexScreener client. timeout bounds each individual request.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		client:      &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		logger:      logger.Named("dexscreener"),
		rateLimiter: time.NewTicker(time.Minute / rateLimit),
		maxElapsed:  2 * timeout,
	}
}

// TokenPairs returns every pair referencing the token address. An empty
// slice means DexScreener knows no pairs for the token, which is a valid
// answer, not an error.
func (c *Client) TokenPairs(ctx context.Context, address string) ([]Pair, error) {
	url := fmt.Sprintf("%s/tokens/%s", c.baseURL, address)

	op := func() (*Response, error) {
		return c.doRequest(ctx, url)
	}
	response, err := backoff.Retry(
		ctx,
		op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(c.maxElapsed),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get token pairs: %w", err)
	}

	c.logger.Debug("Fetched token pairs",
		zap.String("address", address),
		zap.Int("pairs", len(response.Pairs)))

	return response.Pairs, nil
}

// doRequest executes one HTTP request under the rate limit. Upstream 5xx and
// 429 responses are retryable; everything else is permanent.
func (c *Client) doRequest(ctx context.Context, url string) (*Response, error) {
	select {
	case <-ctx.Done():
		return nil, backoff.Permanent(ctx.Err())
	case <-c.rateLimiter.C:
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, backoff.Permanent(fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body)))
	}

	var response Response
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&response); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: decode pairs: %v", metrics.ErrMalformed, err))
	}

	return &response, nil
}
