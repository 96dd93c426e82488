package main

import (
	"context"
	"flag"
	"log"
	"os"

	"UKPredict/internal/di"
	"UKPredict/pkg/config"
	"UKPredict/pkg/logger"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/housing.yaml", "config file path")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	l, err := logger.New(&logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.Service.Name,
	})
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	l.Info("starting housing price api", logger.String("env", cfg.Environment), logger.String("version", cfg.Service.Version))

	ctx := context.Background()

	// Wire DI: Initialize all dependencies
	app, cleanup, err := di.InitializeHousingApp(ctx, cfg, l)
	if err != nil {
		l.Error("app initialization failed", logger.Error(err))
		os.Exit(1)
	}
	defer cleanup()

	// Run application (blocks until signal)
	if err := app.Run(ctx); err != nil {
		l.Error("app error", logger.Error(err))
		cleanup()
		os.Exit(1)
	}
}
