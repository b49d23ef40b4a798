package solana

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/kmoon-analytics/internal/metrics"
	"github.com/rovshanmuradov/kmoon-analytics/internal/pricing/dexscreener"
	"github.com/rovshanmuradov/kmoon-analytics/internal/pricing/jupiter"
)

// SupplyReader fetches a mint's raw on-chain supply.
type SupplyReader interface {
	TokenSupply(ctx context.Context, mint string) (metrics.RawSupply, error)
}

// PriceReader fetches a mint's USD spot price from the price oracle.
type PriceReader interface {
	Price(ctx context.Context, mint string) (jupiter.Quote, error)
}

// PairsReader fetches the trading pairs referencing a mint.
type PairsReader interface {
	TokenPairs(ctx context.Context, address string) ([]dexscreener.Pair, error)
}

// Provider computes normalized metrics for Solana mints. Supply comes from
// the RPC, price from Jupiter, liquidity from DexScreener; a supply or price
// failure short-circuits the later steps.
type Provider struct {
	supply SupplyReader
	price  PriceReader
	pairs  PairsReader
	logger *zap.Logger
}

// NewProvider wires the three Solana collaborators into a provider.
func NewProvider(supply SupplyReader, price PriceReader, pairs PairsReader, logger *zap.Logger) *Provider {
	return &Provider{
		supply: supply,
		price:  price,
		pairs:  pairs,
		logger: logger.Named("solana"),
	}
}

// TokenMetrics implements metrics.Provider.
func (p *Provider) TokenMetrics(ctx context.Context, address string) (metrics.NormalizedMetric, error) {
	p.logger.Debug("Collecting token metrics", zap.String("address", address))

	raw, err := p.supply.TokenSupply(ctx, address)
	if err != nil {
		return metrics.NormalizedMetric{}, metrics.Fail(metrics.ChainSolana, address, metrics.ReasonSupplyUnavailable, err)
	}

	quote, err := p.price.Price(ctx, address)
	if err != nil {
		return metrics.NormalizedMetric{}, metrics.Fail(metrics.ChainSolana, address, metrics.ReasonPriceUnavailable, err)
	}

	liquidity, err := p.totalLiquidity(ctx, address)
	if err != nil {
		return metrics.NormalizedMetric{}, metrics.Fail(metrics.ChainSolana, address, metrics.ReasonLiquidityUnavailable, err)
	}

	return metrics.NormalizedMetric{
		Ticker:   quote.Symbol,
		PriceUSD: quote.Price,
		Supply:   raw.Supply(),
		TVLUSD:   liquidity,
	}, nil
}

// totalLiquidity sums the USD liquidity over every pair referencing the
// mint. No pairs at all is a legitimate zero; only a failed or unreadable
// pairs query is an error.
func (p *Provider) totalLiquidity(ctx context.Context, address string) (decimal.Decimal, error) {
	pairs, err := p.pairs.TokenPairs(ctx, address)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, pair := range pairs {
		usd, err := metrics.FromNumber(pair.Liquidity.USD)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(usd)
	}
	return total, nil
}

var _ metrics.Provider = (*Provider)(nil)
