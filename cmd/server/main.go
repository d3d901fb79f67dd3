package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/dmitrijs2005/shopkeeper/internal/server"
	"github.com/dmitrijs2005/shopkeeper/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger, err := logging.NewProductionZapLogger("shopkeeper", cfg.Environment, cfg.Debug)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "app init failed", "error", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "shutdown error", "error", err)
	}

}
