package ethereum

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/kmoon-analytics/internal/metrics"
)

const (
	testToken = "0x5C050f01DB04C98206eb55a6Ca4dc3287c69ABff"
	testWETH  = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	testPair  = "0x1111111111111111111111111111111111111111"
	zeroPair  = "0x0000000000000000000000000000000000000000"
)

// fakeReader scripts the on-chain answers for one token.
type fakeReader struct {
	meta      TokenMeta
	metaErr   error
	pair      string
	pairErr   error
	reserve0  *big.Int
	reserve1  *big.Int
	resErr    error
	token0    string
	token0Err error
	nativeUSD decimal.Decimal
	oracleErr error
}

func (f *fakeReader) TokenMeta(context.Context, string) (TokenMeta, error) {
	return f.meta, f.metaErr
}
func (f *fakeReader) PairFor(context.Context, string) (string, error) {
	return f.pair, f.pairErr
}
func (f *fakeReader) Reserves(context.Context, string) (*big.Int, *big.Int, error) {
	return f.reserve0, f.reserve1, f.resErr
}
func (f *fakeReader) Token0(context.Context, string) (string, error) {
	return f.token0, f.token0Err
}
func (f *fakeReader) NativePriceUSD(context.Context) (decimal.Decimal, error) {
	return f.nativeUSD, f.oracleErr
}
func (f *fakeReader) WETH() string { return testWETH }

// eth scales a human amount into an 18-decimal raw integer.
func eth(units int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(units), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func healthyReader() *fakeReader {
	return &fakeReader{
		meta: TokenMeta{
			Decimals:    18,
			Symbol:      "AA",
			TotalSupply: eth(5000),
		},
		pair:      testPair,
		reserve0:  eth(1000), // token side
		reserve1:  eth(2),    // native side
		token0:    testToken,
		nativeUSD: decimal.NewFromInt(3000),
	}
}

func TestProviderPriceAndTVL(t *testing.T) {
	p := NewProvider(healthyReader(), zap.NewNop())

	m, err := p.TokenMetrics(context.Background(), testToken)
	require.NoError(t, err)

	// price = (2 / 1000) × 3000, tvl = 2 × 3000 × 2
	assert.Equal(t, "6", m.PriceUSD.String())
	assert.Equal(t, "12000", m.TVLUSD.String())
	assert.Equal(t, "AA", m.Ticker)
	assert.Equal(t, "5000", m.Supply.String())
	assert.Equal(t, "30000", m.MarketCap().String())
}

func TestProviderReserveSlotResolution(t *testing.T) {
	// same pool, but the factory ordered WETH into slot 0
	reader := healthyReader()
	reader.reserve0 = eth(2)
	reader.reserve1 = eth(1000)
	reader.token0 = testWETH

	p := NewProvider(reader, zap.NewNop())
	m, err := p.TokenMetrics(context.Background(), testToken)
	require.NoError(t, err)

	// identical result: slot assignment must come from token0, not position
	assert.Equal(t, "6", m.PriceUSD.String())
	assert.Equal(t, "12000", m.TVLUSD.String())
}

func TestProviderCaseInsensitiveTokenMatch(t *testing.T) {
	reader := healthyReader()
	reader.token0 = "0x5c050f01db04c98206eb55a6ca4dc3287c69abff" // lowercase

	p := NewProvider(reader, zap.NewNop())
	m, err := p.TokenMetrics(context.Background(), testToken)
	require.NoError(t, err)
	assert.Equal(t, "6", m.PriceUSD.String())
}

func TestProviderNoPair(t *testing.T) {
	reader := healthyReader()
	reader.pair = zeroPair

	p := NewProvider(reader, zap.NewNop())
	m, err := p.TokenMetrics(context.Background(), testToken)
	require.NoError(t, err)

	// no canonical pool: zero price and TVL, supply still reported
	assert.True(t, m.PriceUSD.IsZero())
	assert.True(t, m.TVLUSD.IsZero())
	assert.Equal(t, "5000", m.Supply.String())
}

func TestProviderReserveZero(t *testing.T) {
	reader := healthyReader()
	reader.reserve0 = big.NewInt(0)

	p := NewProvider(reader, zap.NewNop())
	_, err := p.TokenMetrics(context.Background(), testToken)
	require.Error(t, err)

	reason, ok := metrics.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, metrics.ReasonReserveZero, reason)
}

func TestProviderContractCallFailed(t *testing.T) {
	reader := healthyReader()
	reader.metaErr = errors.New("execution reverted")

	p := NewProvider(reader, zap.NewNop())
	_, err := p.TokenMetrics(context.Background(), testToken)

	reason, ok := metrics.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, metrics.ReasonContractCallFailed, reason)
}

func TestProviderOracleUnavailable(t *testing.T) {
	reader := healthyReader()
	reader.oracleErr = errors.New("call failed")

	p := NewProvider(reader, zap.NewNop())
	_, err := p.TokenMetrics(context.Background(), testToken)

	reason, ok := metrics.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, metrics.ReasonOracleUnavailable, reason)
}

func TestIsZeroPair(t *testing.T) {
	assert.True(t, IsZeroPair(zeroPair))
	assert.True(t, IsZeroPair(""))
	assert.False(t, IsZeroPair(testPair))
}
