package solana

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/kmoon-analytics/internal/metrics"
	"github.com/rovshanmuradov/kmoon-analytics/internal/pricing/dexscreener"
	"github.com/rovshanmuradov/kmoon-analytics/internal/pricing/jupiter"
)

const testMint = "5tzkqRo8XjHefzuJumij7suA6N7nTZA1FSLtzM8Bpump"

type fakeSupply struct {
	raw metrics.RawSupply
	err error
}

func (f *fakeSupply) TokenSupply(context.Context, string) (metrics.RawSupply, error) {
	return f.raw, f.err
}

type fakePrice struct {
	quote jupiter.Quote
	err   error
}

func (f *fakePrice) Price(context.Context, string) (jupiter.Quote, error) {
	return f.quote, f.err
}

type fakePairs struct {
	pairs []dexscreener.Pair
	err   error
}

func (f *fakePairs) TokenPairs(context.Context, string) ([]dexscreener.Pair, error) {
	return f.pairs, f.err
}

func pairWithUSD(usd string) dexscreener.Pair {
	return dexscreener.Pair{Liquidity: dexscreener.Liquidity{USD: json.Number(usd)}}
}

func healthyProvider() *Provider {
	return NewProvider(
		&fakeSupply{raw: metrics.RawSupply{Amount: big.NewInt(1_000_000), Decimals: 6}},
		&fakePrice{quote: jupiter.Quote{Symbol: "IYKYK", Price: decimal.RequireFromString("2.5")}},
		&fakePairs{pairs: []dexscreener.Pair{pairWithUSD("1500.25"), pairWithUSD("499.75")}},
		zap.NewNop(),
	)
}

func TestProviderSuccess(t *testing.T) {
	m, err := healthyProvider().TokenMetrics(context.Background(), testMint)
	require.NoError(t, err)

	assert.Equal(t, "IYKYK", m.Ticker)
	assert.Equal(t, "1", m.Supply.String())
	assert.Equal(t, "2.5", m.PriceUSD.String())
	assert.Equal(t, "2.5", m.MarketCap().String())
	assert.Equal(t, "2000", m.TVLUSD.String())
}

func TestProviderSupplyUnavailable(t *testing.T) {
	p := NewProvider(
		&fakeSupply{err: ErrNoSupply},
		&fakePrice{},
		&fakePairs{},
		zap.NewNop(),
	)

	_, err := p.TokenMetrics(context.Background(), testMint)
	reason, ok := metrics.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, metrics.ReasonSupplyUnavailable, reason)
}

func TestProviderPriceUnavailable(t *testing.T) {
	p := NewProvider(
		&fakeSupply{raw: metrics.RawSupply{Amount: big.NewInt(10), Decimals: 0}},
		&fakePrice{err: jupiter.ErrNotListed},
		&fakePairs{},
		zap.NewNop(),
	)

	_, err := p.TokenMetrics(context.Background(), testMint)
	reason, ok := metrics.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, metrics.ReasonPriceUnavailable, reason)
}

func TestProviderNoPairsIsZeroLiquidity(t *testing.T) {
	p := NewProvider(
		&fakeSupply{raw: metrics.RawSupply{Amount: big.NewInt(1_000_000), Decimals: 6}},
		&fakePrice{quote: jupiter.Quote{Price: decimal.NewFromInt(1)}},
		&fakePairs{pairs: nil}, // aggregator knows the token, just no pools
		zap.NewNop(),
	)

	m, err := p.TokenMetrics(context.Background(), testMint)
	require.NoError(t, err)
	assert.True(t, m.TVLUSD.IsZero())
}

func TestProviderLiquidityQueryError(t *testing.T) {
	// a failed pairs query is not the same as an empty pairs answer
	p := NewProvider(
		&fakeSupply{raw: metrics.RawSupply{Amount: big.NewInt(1_000_000), Decimals: 6}},
		&fakePrice{quote: jupiter.Quote{Price: decimal.NewFromInt(1)}},
		&fakePairs{err: errors.New("connection refused")},
		zap.NewNop(),
	)

	_, err := p.TokenMetrics(context.Background(), testMint)
	reason, ok := metrics.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, metrics.ReasonLiquidityUnavailable, reason)
}

func TestProviderTimeoutClassification(t *testing.T) {
	p := NewProvider(
		&fakeSupply{err: context.DeadlineExceeded},
		&fakePrice{},
		&fakePairs{},
		zap.NewNop(),
	)

	_, err := p.TokenMetrics(context.Background(), testMint)
	reason, ok := metrics.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, metrics.ReasonNetworkTimeout, reason)
}

func TestProviderMissingPairLiquidityDefaultsZero(t *testing.T) {
	p := NewProvider(
		&fakeSupply{raw: metrics.RawSupply{Amount: big.NewInt(1_000_000), Decimals: 6}},
		&fakePrice{quote: jupiter.Quote{Price: decimal.NewFromInt(1)}},
		&fakePairs{pairs: []dexscreener.Pair{pairWithUSD(""), pairWithUSD("10")}},
		zap.NewNop(),
	)

	m, err := p.TokenMetrics(context.Background(), testMint)
	require.NoError(t, err)
	assert.Equal(t, "10", m.TVLUSD.String())
}
