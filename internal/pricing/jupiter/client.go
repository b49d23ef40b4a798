// Package jupiter queries the Jupiter price aggregator for USD spot prices
// of Solana mints.
package jupiter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/kmoon-analytics/internal/metrics"
)

// DefaultBaseURL is the public Jupiter price API endpoint.
const DefaultBaseURL = "https://price.jup.ag/v4"

// ErrNotListed is returned when the oracle has no entry for the mint.
var ErrNotListed = errors.New("token not listed on jupiter")

// Quote is one USD price answer. Symbol may be empty when Jupiter does not
// know the mint's ticker.
type Quote struct {
	Symbol string
	Price  decimal.Decimal
}

// Client is a Jupiter price API client.
type Client struct {
	http    *resty.Client
	baseURL string
	logger  *zap.Logger
}

// New creates a Jupiter client with the given per-request timeout.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    resty.New().SetTimeout(timeout),
		baseURL: baseURL,
		logger:  logger.Named("jupiter"),
	}
}

// Price returns the USD quote for mint. Absence of the mint from the oracle
// response yields ErrNotListed.
func (c *Client) Price(ctx context.Context, mint string) (Quote, error) {
	url := fmt.Sprintf("%s/price?ids=%s", c.baseURL, mint)

	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to execute request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return Quote{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}

	var result struct {
		Data map[string]struct {
			MintSymbol string      `json:"mintSymbol"`
			Price      json.Number `json:"price"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return Quote{}, fmt.Errorf("%w: decode price: %v", metrics.ErrMalformed, err)
	}

	entry, ok := result.Data[mint]
	if !ok {
		return Quote{}, ErrNotListed
	}

	price, err := metrics.FromNumber(entry.Price)
	if err != nil {
		return Quote{}, err
	}

	c.logger.Debug("Fetched price",
		zap.String("mint", mint),
		zap.String("symbol", entry.MintSymbol),
		zap.String("price", price.String()))

	return Quote{Symbol: entry.MintSymbol, Price: price}, nil
}
