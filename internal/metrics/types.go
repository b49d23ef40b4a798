// Package metrics contains the chain-agnostic core: normalized token
// metrics, the per-chain provider contract, and the ecosystem aggregator
// that folds per-token results into USD totals.
package metrics

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Chain identifies one of the supported blockchains.
type Chain string

const (
	ChainSolana   Chain = "solana"
	ChainEthereum Chain = "ethereum"
	ChainTron     Chain = "tron"
)

// Chains lists supported chains in the canonical iteration order.
var Chains = []Chain{ChainSolana, ChainEthereum, ChainTron}

// Valid reports whether c is one of the supported chains.
func (c Chain) Valid() bool {
	switch c {
	case ChainSolana, ChainEthereum, ChainTron:
		return true
	}
	return false
}

// TokenRef identifies one token on one chain. References come from the
// configuration and are never created at runtime.
type TokenRef struct {
	Chain   Chain
	Address string
}

// RawSupply is a chain-native token supply before unit conversion:
// an integer amount scaled by 10^Decimals.
type RawSupply struct {
	Amount   *big.Int
	Decimals uint8
}

// Supply converts the raw amount to human units. The conversion is exact:
// shifting the decimal exponent never touches binary floating point.
func (s RawSupply) Supply() decimal.Decimal {
	if s.Amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(s.Amount, -int32(s.Decimals))
}

// NormalizedMetric is the common USD-denominated view of one token,
// produced by a chain provider.
type NormalizedMetric struct {
	Ticker   string
	PriceUSD decimal.Decimal
	Supply   decimal.Decimal
	TVLUSD   decimal.Decimal
}

// MarketCap returns PriceUSD × Supply under exact decimal arithmetic.
func (m NormalizedMetric) MarketCap() decimal.Decimal {
	return m.PriceUSD.Mul(m.Supply)
}

// MetricResult is the outcome of one provider invocation: either a
// normalized metric or a failure. Exactly one of Metric/Err is meaningful.
type MetricResult struct {
	Ref    TokenRef
	Metric NormalizedMetric
	Err    error
}

// Ok reports whether the provider call succeeded.
func (r MetricResult) Ok() bool {
	return r.Err == nil
}
