// Package tron derives normalized token metrics from TRONSCAN explorer
// records, which carry supply and USD market data in a single response.
package tron

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/kmoon-analytics/internal/explorer/tronscan"
	"github.com/rovshanmuradov/kmoon-analytics/internal/metrics"
)

// defaultDecimals is the TRC20 convention applied when the explorer omits
// the decimals field.
const defaultDecimals = 6

// ExplorerReader fetches a TRC20 token record by contract address.
type ExplorerReader interface {
	TokenInfo(ctx context.Context, contract string) (*tronscan.TokenInfo, error)
}

// Provider computes normalized metrics for TRC20 tokens.
type Provider struct {
	explorer ExplorerReader
	logger   *zap.Logger
}

// NewProvider wraps an explorer client into a metrics provider.
func NewProvider(explorer ExplorerReader, logger *zap.Logger) *Provider {
	return &Provider{
		explorer: explorer,
		logger:   logger.Named("tron"),
	}
}

// TokenMetrics implements metrics.Provider. A token record without market
// info fails with MarketInfoMissing; individual missing market fields
// default to zero instead of failing the token.
func (p *Provider) TokenMetrics(ctx context.Context, address string) (metrics.NormalizedMetric, error) {
	p.logger.Debug("Collecting token metrics", zap.String("address", address))

	info, err := p.explorer.TokenInfo(ctx, address)
	if err != nil {
		reason := metrics.ReasonTokenUnknown
		if !errors.Is(err, tronscan.ErrUnknownToken) {
			reason = metrics.ReasonMalformedResponse
		}
		return metrics.NormalizedMetric{}, metrics.Fail(metrics.ChainTron, address, reason, err)
	}

	if info.MarketInfo == nil {
		return metrics.NormalizedMetric{}, metrics.Fail(metrics.ChainTron, address, metrics.ReasonMarketInfoMissing, nil)
	}

	decimals := uint8(defaultDecimals)
	if info.Decimals != nil {
		decimals = *info.Decimals
	}

	supply, err := p.rawSupply(info, decimals)
	if err != nil {
		return metrics.NormalizedMetric{}, metrics.Fail(metrics.ChainTron, address, metrics.ReasonSupplyUnavailable, err)
	}

	price, err := metrics.FromNumber(info.MarketInfo.PriceInUSD.JSONNumber())
	if err != nil {
		return metrics.NormalizedMetric{}, metrics.Fail(metrics.ChainTron, address, metrics.ReasonPriceUnavailable, err)
	}
	liquidity, err := metrics.FromNumber(info.MarketInfo.Liquidity.JSONNumber())
	if err != nil {
		return metrics.NormalizedMetric{}, metrics.Fail(metrics.ChainTron, address, metrics.ReasonLiquidityUnavailable, err)
	}

	return metrics.NormalizedMetric{
		Ticker:   info.Symbol,
		PriceUSD: price,
		Supply:   supply,
		TVLUSD:   liquidity,
	}, nil
}

func (p *Provider) rawSupply(info *tronscan.TokenInfo, decimals uint8) (decimal.Decimal, error) {
	if info.TotalSupplyWithDecimals == "" {
		return decimal.Zero, nil
	}
	amount, err := metrics.ParseRawAmount(string(info.TotalSupplyWithDecimals))
	if err != nil {
		return decimal.Zero, err
	}
	return metrics.FromRaw(amount, decimals), nil
}

var _ metrics.Provider = (*Provider)(nil)
