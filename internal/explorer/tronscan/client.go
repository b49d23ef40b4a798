// Package tronscan wraps the TRONSCAN block-explorer REST API used to look
// up TRC20 token metadata and market information.
package tronscan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/kmoon-analytics/internal/metrics"
)

// DefaultBaseURL is the public TRONSCAN API endpoint.
const DefaultBaseURL = "https://apilist.tronscan.org/api"

// ErrUnknownToken is returned when the explorer has no record of the
// contract address.
var ErrUnknownToken = errors.New("token unknown to tronscan")

// Number tolerates the explorer's mixed encoding: the same field may arrive
// as a bare JSON number or as a quoted string. The exact wire text is kept
// so decimal parsing never goes through a float.
type Number string

// UnmarshalJSON strips the optional quoting.
func (n *Number) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "null" {
		s = ""
	}
	*n = Number(s)
	return nil
}

// JSONNumber converts to the stdlib representation used by the decimal
// helpers.
func (n Number) JSONNumber() json.Number {
	return json.Number(n)
}

// MarketInfo is the market sub-object of a token record. Both fields are
// already USD-denominated by the explorer.
type MarketInfo struct {
	PriceInUSD Number `json:"priceInUsd"`
	Liquidity  Number `json:"liquidity"`
}

// TokenInfo is one TRC20 token record. Decimals is a pointer because the
// explorer sometimes omits the field; the provider applies the TRON default.
type TokenInfo struct {
	Symbol                  string      `json:"symbol"`
	Decimals                *uint8      `json:"decimals"`
	TotalSupplyWithDecimals Number      `json:"total_supply_with_decimals"`
	MarketInfo              *MarketInfo `json:"market_info"`
}

// Client is a TRONSCAN REST client.
type Client struct {
	http    *resty.Client
	baseURL string
	logger  *zap.Logger
}

// New creates a TRONSCAN client with the given per-request timeout.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    resty.New().SetTimeout(timeout),
		baseURL: baseURL,
		logger:  logger.Named("tronscan"),
	}
}

// TokenInfo fetches the TRC20 record for a contract address. An empty
// trc20_tokens list yields ErrUnknownToken.
func (c *Client) TokenInfo(ctx context.Context, contract string) (*TokenInfo, error) {
	url := fmt.Sprintf("%s/token_trc20?contract=%s", c.baseURL, contract)

	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}

	var result struct {
		TRC20Tokens []TokenInfo `json:"trc20_tokens"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("%w: decode token info: %v", metrics.ErrMalformed, err)
	}

	if len(result.TRC20Tokens) == 0 {
		return nil, ErrUnknownToken
	}

	info := result.TRC20Tokens[0]
	c.logger.Debug("Fetched token info",
		zap.String("contract", contract),
		zap.String("symbol", info.Symbol),
		zap.Bool("has_market_info", info.MarketInfo != nil))

	return &info, nil
}
