package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestFailClassification(t *testing.T) {
	// the step-level reason is kept for ordinary errors
	f := Fail(ChainSolana, "mint", ReasonPriceUnavailable, errors.New("no entry"))
	assert.Equal(t, ReasonPriceUnavailable, f.Reason)

	// deadline and net timeouts reclassify to NetworkTimeout
	f = Fail(ChainSolana, "mint", ReasonSupplyUnavailable, context.DeadlineExceeded)
	assert.Equal(t, ReasonNetworkTimeout, f.Reason)

	f = Fail(ChainTron, "addr", ReasonTokenUnknown, fmt.Errorf("get: %w", timeoutErr{}))
	assert.Equal(t, ReasonNetworkTimeout, f.Reason)

	// decode problems reclassify to MalformedResponse
	f = Fail(ChainEthereum, "0xabc", ReasonContractCallFailed, fmt.Errorf("%w: bad json", ErrMalformed))
	assert.Equal(t, ReasonMalformedResponse, f.Reason)
}

func TestReasonOf(t *testing.T) {
	err := Fail(ChainEthereum, "0xabc", ReasonReserveZero, nil)
	wrapped := fmt.Errorf("provider: %w", err)

	reason, ok := ReasonOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, ReasonReserveZero, reason)

	_, ok = ReasonOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestFailureError(t *testing.T) {
	f := Fail(ChainTron, "TLx", ReasonMarketInfoMissing, nil)
	assert.Contains(t, f.Error(), "tron")
	assert.Contains(t, f.Error(), "TLx")
	assert.Contains(t, f.Error(), "market_info_unavailable")

	underlying := errors.New("boom")
	f = Fail(ChainSolana, "mint", ReasonLiquidityUnavailable, underlying)
	assert.ErrorIs(t, f, underlying)
}
