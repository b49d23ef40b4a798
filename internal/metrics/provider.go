package metrics

import "context"

// Provider computes normalized metrics for one token on one chain.
// A failed call returns a *Failure; the metric value is then meaningless.
type Provider interface {
	// TokenMetrics fetches and normalizes price, supply and liquidity for
	// the token at address. Implementations must honor ctx cancellation and
	// bound every external call with a timeout.
	TokenMetrics(ctx context.Context, address string) (NormalizedMetric, error)
}

// Registry resolves the provider responsible for a chain.
type Registry map[Chain]Provider

// Resolve returns the provider registered for chain.
func (r Registry) Resolve(chain Chain) (Provider, bool) {
	p, ok := r[chain]
	return p, ok
}
