package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/kmoon-analytics/internal/app"
	"github.com/rovshanmuradov/kmoon-analytics/internal/config"
	"github.com/rovshanmuradov/kmoon-analytics/internal/logger"
)

func main() {
	configPath := flag.String("config", "configs/config.json", "path to the configuration file")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fallback := logger.New(false)
		fallback.Fatal("Failed to load configuration", zap.Error(err))
		os.Exit(1)
	}

	log := logger.New(cfg.DebugLogging)
	defer log.Sync()
	log.Info("Starting ecosystem analytics", zap.String("config", *configPath))

	runner, err := app.NewRunner(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize", zap.Error(err))
		os.Exit(1)
	}
	defer runner.Close()

	if err := runner.Run(ctx); err != nil {
		log.Fatal("Analytics run failed", zap.Error(err))
		os.Exit(1)
	}
}
