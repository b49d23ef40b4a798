// Package app wires configuration, chain clients, providers and the
// aggregator into one runnable analytics pass.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/kmoon-analytics/internal/blockchain/ethereum"
	"github.com/rovshanmuradov/kmoon-analytics/internal/blockchain/solana"
	"github.com/rovshanmuradov/kmoon-analytics/internal/blockchain/tron"
	"github.com/rovshanmuradov/kmoon-analytics/internal/config"
	"github.com/rovshanmuradov/kmoon-analytics/internal/explorer/tronscan"
	"github.com/rovshanmuradov/kmoon-analytics/internal/export"
	"github.com/rovshanmuradov/kmoon-analytics/internal/metrics"
	"github.com/rovshanmuradov/kmoon-analytics/internal/pricing/dexscreener"
	"github.com/rovshanmuradov/kmoon-analytics/internal/pricing/jupiter"
)

type Runner struct {
	logger     *zap.Logger
	cfg        *config.Config
	ethClient  *ethereum.Client
	registry   metrics.Registry
	exporter   *export.ReportExporter
	shutdownCh chan os.Signal
}

// NewRunner builds all collaborators from the configuration. The Ethereum
// client holds a live RPC connection; Close releases it.
func NewRunner(cfg *config.Config, logger *zap.Logger) (*Runner, error) {
	timeout := cfg.RequestTimeout()

	solClient := solana.NewClient(cfg.SolanaRPC, timeout, logger)
	jupClient := jupiter.New(cfg.JupiterURL, timeout, logger)
	dexClient := dexscreener.New(cfg.DexScreenerURL, timeout, logger)
	tronClient := tronscan.New(cfg.TronScanURL, timeout, logger)

	ethClient, err := ethereum.Dial(cfg.EthereumRPC, cfg.EthFactory, cfg.EthWETH, cfg.EthPriceFeed, timeout, logger)
	if err != nil {
		return nil, fmt.Errorf("ethereum client: %w", err)
	}

	registry := metrics.Registry{
		metrics.ChainSolana:   solana.NewProvider(solClient, jupClient, dexClient, logger),
		metrics.ChainEthereum: ethereum.NewProvider(ethClient, logger),
		metrics.ChainTron:     tron.NewProvider(tronClient, logger),
	}

	return &Runner{
		logger:     logger,
		cfg:        cfg,
		ethClient:  ethClient,
		registry:   registry,
		exporter:   export.NewReportExporter(logger),
		shutdownCh: make(chan os.Signal, 1),
	}, nil
}

// Close releases held connections.
func (r *Runner) Close() {
	if r.ethClient != nil {
		r.ethClient.Close()
	}
}

// Collect executes one aggregation pass and returns the report without
// emitting anything. Callers embedding the tool use this directly.
func (r *Runner) Collect(ctx context.Context) *metrics.Report {
	aggregator := metrics.NewAggregator(r.cfg.TokenRefs(), r.registry, r.cfg.Workers, r.logger)
	return aggregator.Run(ctx)
}

// Run executes one aggregation pass and emits the report: the JSON artifact
// under output_dir plus the console summary. A SIGINT/SIGTERM cancels
// in-flight provider calls; whatever completed is still reported.
func (r *Runner) Run(ctx context.Context) error {
	signal.Notify(r.shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case sig := <-r.shutdownCh:
			r.logger.Info("Signal received, finishing with partial results", zap.String("signal", sig.String()))
			cancel()
		case <-runCtx.Done():
		}
	}()

	report := r.Collect(runCtx)

	path, err := r.exporter.WriteJSON(report, r.cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("export report: %w", err)
	}
	r.logger.Info("Findings written", zap.String("path", path))

	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	fmt.Println()
	fmt.Print(export.Summary(report))
	fmt.Println()
	fmt.Println(string(raw))

	return nil
}
