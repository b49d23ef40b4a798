package ethereum

import (
	"context"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/kmoon-analytics/internal/metrics"
)

// wethDecimals is the decimals of the wrapped native asset.
const wethDecimals = 18

// ContractReader is the on-chain surface the provider needs. *Client
// implements it against a live node; tests substitute fakes.
type ContractReader interface {
	TokenMeta(ctx context.Context, token string) (TokenMeta, error)
	PairFor(ctx context.Context, token string) (string, error)
	Reserves(ctx context.Context, pair string) (reserve0, reserve1 *big.Int, err error)
	Token0(ctx context.Context, pair string) (string, error)
	NativePriceUSD(ctx context.Context) (decimal.Decimal, error)
	WETH() string
}

// Provider computes normalized metrics for ERC-20 tokens from the token
// contract, the canonical AMM pair against the wrapped native asset, and
// the native-asset price oracle.
type Provider struct {
	reader ContractReader
	logger *zap.Logger
}

// NewProvider wraps a contract reader into a metrics provider.
func NewProvider(reader ContractReader, logger *zap.Logger) *Provider {
	return &Provider{
		reader: reader,
		logger: logger.Named("ethereum"),
	}
}

// TokenMetrics implements metrics.Provider.
//
// TVL is approximated as nativeReserve × nativeUSD × 2: constant-product
// pools hold roughly equal USD value on both legs, so the native side is
// doubled rather than pricing the token leg separately.
func (p *Provider) TokenMetrics(ctx context.Context, address string) (metrics.NormalizedMetric, error) {
	p.logger.Debug("Collecting token metrics", zap.String("address", address))

	meta, err := p.reader.TokenMeta(ctx, address)
	if err != nil {
		return metrics.NormalizedMetric{}, metrics.Fail(metrics.ChainEthereum, address, metrics.ReasonContractCallFailed, err)
	}
	supply := metrics.FromRaw(meta.TotalSupply, meta.Decimals)

	pair, err := p.reader.PairFor(ctx, address)
	if err != nil {
		return metrics.NormalizedMetric{}, metrics.Fail(metrics.ChainEthereum, address, metrics.ReasonContractCallFailed, err)
	}

	// No pair at the factory: the token simply has no canonical pool.
	// Zero price and TVL, not a failure.
	if IsZeroPair(pair) {
		p.logger.Debug("No canonical pair for token", zap.String("address", address))
		return metrics.NormalizedMetric{
			Ticker:   meta.Symbol,
			PriceUSD: decimal.Zero,
			Supply:   supply,
			TVLUSD:   decimal.Zero,
		}, nil
	}

	tokenReserve, nativeReserve, err := p.pairReserves(ctx, pair, address, meta.Decimals)
	if err != nil {
		return metrics.NormalizedMetric{}, metrics.Fail(metrics.ChainEthereum, address, metrics.ReasonContractCallFailed, err)
	}

	if tokenReserve.IsZero() {
		return metrics.NormalizedMetric{}, metrics.Fail(metrics.ChainEthereum, address, metrics.ReasonReserveZero, nil)
	}

	nativeUSD, err := p.reader.NativePriceUSD(ctx)
	if err != nil {
		return metrics.NormalizedMetric{}, metrics.Fail(metrics.ChainEthereum, address, metrics.ReasonOracleUnavailable, err)
	}

	price := nativeReserve.Div(tokenReserve).Mul(nativeUSD)
	tvl := nativeReserve.Mul(nativeUSD).Mul(decimal.NewFromInt(2))

	return metrics.NormalizedMetric{
		Ticker:   meta.Symbol,
		PriceUSD: price,
		Supply:   supply,
		TVLUSD:   tvl,
	}, nil
}

// pairReserves reads the pool reserves and resolves which slot holds the
// token. The factory orders pair tokens deterministically by address, so
// the assignment varies per pair; assuming a fixed slot would silently
// swap the price.
func (p *Provider) pairReserves(ctx context.Context, pair, token string, tokenDecimals uint8) (tokenReserve, nativeReserve decimal.Decimal, err error) {
	reserve0, reserve1, err := p.reader.Reserves(ctx, pair)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	token0, err := p.reader.Token0(ctx, pair)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	if strings.EqualFold(token0, token) {
		tokenReserve = metrics.FromRaw(reserve0, tokenDecimals)
		nativeReserve = metrics.FromRaw(reserve1, wethDecimals)
	} else {
		tokenReserve = metrics.FromRaw(reserve1, tokenDecimals)
		nativeReserve = metrics.FromRaw(reserve0, wethDecimals)
	}
	return tokenReserve, nativeReserve, nil
}

var _ metrics.Provider = (*Provider)(nil)
