// Package solana provides the Solana side of ecosystem analytics: the
// on-chain supply lookup and the provider combining supply, price and
// liquidity into a normalized metric.
package solana

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/kmoon-analytics/internal/metrics"
)

// ErrNoSupply is returned when the RPC answers without a supply value,
// which happens when the address is not a valid mint.
var ErrNoSupply = errors.New("no supply value for address")

// Client reads token supplies from a Solana RPC node.
type Client struct {
	rpc     *rpc.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient connects to the given RPC endpoint. timeout bounds every
// individual supply request.
func NewClient(endpoint string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		rpc:     rpc.New(endpoint),
		timeout: timeout,
		logger:  logger.Named("solana-rpc"),
	}
}

// TokenSupply fetches the raw supply (amount + decimals) for a mint.
func (c *Client) TokenSupply(ctx context.Context, mint string) (metrics.RawSupply, error) {
	pubkey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return metrics.RawSupply{}, fmt.Errorf("invalid mint address %q: %w", mint, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.rpc.GetTokenSupply(ctx, pubkey, rpc.CommitmentFinalized)
	if err != nil {
		return metrics.RawSupply{}, fmt.Errorf("getTokenSupply: %w", err)
	}
	if out == nil || out.Value == nil {
		return metrics.RawSupply{}, ErrNoSupply
	}

	amount, err := metrics.ParseRawAmount(out.Value.Amount)
	if err != nil {
		return metrics.RawSupply{}, err
	}

	c.logger.Debug("Fetched token supply",
		zap.String("mint", mint),
		zap.String("amount", out.Value.Amount),
		zap.Uint8("decimals", out.Value.Decimals))

	return metrics.RawSupply{Amount: amount, Decimals: out.Value.Decimals}, nil
}
