package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// FailureReason tags a provider failure with its cause.
type FailureReason string

const (
	ReasonSupplyUnavailable    FailureReason = "supply_unavailable"
	ReasonPriceUnavailable     FailureReason = "price_unavailable"
	ReasonLiquidityUnavailable FailureReason = "liquidity_unavailable"
	ReasonContractCallFailed   FailureReason = "contract_call_failed"
	ReasonReserveZero          FailureReason = "reserve_zero"
	ReasonOracleUnavailable    FailureReason = "oracle_price_unavailable"
	ReasonTokenUnknown         FailureReason = "token_unknown"
	ReasonMarketInfoMissing    FailureReason = "market_info_unavailable"
	ReasonNetworkTimeout       FailureReason = "network_timeout"
	ReasonMalformedResponse    FailureReason = "malformed_response"
)

// ErrMalformed marks responses that were received but could not be decoded.
// Wire clients wrap their decode errors with it so Fail can classify them.
var ErrMalformed = errors.New("malformed response")

// Failure is the typed error a provider returns for one token. It is local
// to its TokenRef: the aggregator logs it and excludes the token, nothing
// more.
type Failure struct {
	Chain   Chain
	Address string
	Reason  FailureReason
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", f.Chain, f.Address, f.Reason, f.Err)
	}
	return fmt.Sprintf("%s %s: %s", f.Chain, f.Address, f.Reason)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Fail builds a Failure, reclassifying the reason when the underlying error
// is a timeout or a decode problem. Callers pass the reason that matches the
// step that failed; the wire-level causes win over it.
func Fail(chain Chain, address string, reason FailureReason, err error) *Failure {
	switch {
	case isTimeout(err):
		reason = ReasonNetworkTimeout
	case errors.Is(err, ErrMalformed):
		reason = ReasonMalformedResponse
	}
	return &Failure{Chain: chain, Address: address, Reason: reason, Err: err}
}

// ReasonOf extracts the failure reason from an error chain.
func ReasonOf(err error) (FailureReason, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Reason, true
	}
	return "", false
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
