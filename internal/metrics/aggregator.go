package metrics

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Aggregator drives the per-chain providers over the configured token set
// and folds successful results into a Report. One token's failure never
// aborts or corrupts the processing of the others.
type Aggregator struct {
	tokens   []TokenRef
	registry Registry
	workers  int
	logger   *zap.Logger
}

// NewAggregator builds an aggregator over the fixed token set. workers
// bounds the number of concurrent provider calls; values below 2 run the
// tokens sequentially.
func NewAggregator(tokens []TokenRef, registry Registry, workers int, logger *zap.Logger) *Aggregator {
	if workers < 1 {
		workers = 1
	}
	return &Aggregator{
		tokens:   tokens,
		registry: registry,
		workers:  workers,
		logger:   logger.Named("aggregator"),
	}
}

// Run invokes every token's provider exactly once and returns the report.
// Tokens are computed independently; the fold into totals always happens in
// the configured order, so the sums are deterministic regardless of worker
// scheduling. On cancellation the already-completed results are still folded
// and reported.
func (a *Aggregator) Run(ctx context.Context) *Report {
	a.logger.Info("Starting ecosystem aggregation",
		zap.Int("tokens", len(a.tokens)),
		zap.Int("workers", a.workers))

	results := a.collect(ctx)

	report := NewReport()
	for _, res := range results {
		if !res.Ok() {
			reason, _ := ReasonOf(res.Err)
			a.logger.Warn("Token excluded from totals",
				zap.String("chain", string(res.Ref.Chain)),
				zap.String("address", res.Ref.Address),
				zap.String("reason", string(reason)),
				zap.Error(res.Err))
			continue
		}
		report.Add(res.Ref.Address, res.Metric)
		a.logger.Info("Token metrics collected",
			zap.String("chain", string(res.Ref.Chain)),
			zap.String("address", res.Ref.Address),
			zap.String("ticker", res.Metric.Ticker),
			zap.String("market_cap", res.Metric.MarketCap().String()),
			zap.String("tvl", res.Metric.TVLUSD.String()))
	}

	a.logger.Info("Aggregation finished",
		zap.Int("succeeded", len(report.Tokens)),
		zap.Int("failed", len(a.tokens)-len(report.Tokens)),
		zap.String("total_market_cap", report.Totals.TotalMarketCap.String()),
		zap.String("total_tvl", report.Totals.TotalTVL.String()))

	return report
}

// collect computes one MetricResult per token, preserving slot order.
func (a *Aggregator) collect(ctx context.Context) []MetricResult {
	results := make([]MetricResult, len(a.tokens))

	if a.workers == 1 {
		for i, ref := range a.tokens {
			results[i] = a.fetchOne(ctx, ref)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(a.workers)
	for i, ref := range a.tokens {
		g.Go(func() error {
			results[i] = a.fetchOne(ctx, ref)
			return nil
		})
	}
	g.Wait() // tasks never return errors, failures live in the slots

	return results
}

func (a *Aggregator) fetchOne(ctx context.Context, ref TokenRef) MetricResult {
	provider, ok := a.registry.Resolve(ref.Chain)
	if !ok {
		return MetricResult{Ref: ref, Err: Fail(ref.Chain, ref.Address, ReasonTokenUnknown,
			fmt.Errorf("no provider registered for chain %q", ref.Chain))}
	}
	if err := ctx.Err(); err != nil {
		return MetricResult{Ref: ref, Err: Fail(ref.Chain, ref.Address, ReasonNetworkTimeout, err)}
	}

	metric, err := provider.TokenMetrics(ctx, ref.Address)
	if err != nil {
		return MetricResult{Ref: ref, Err: err}
	}
	return MetricResult{Ref: ref, Metric: metric}
}
