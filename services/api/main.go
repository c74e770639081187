package main

import (
	"context"
	_ "embed"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vigilancia-chile/neumonia-monitor/services/api/config"
	"github.com/vigilancia-chile/neumonia-monitor/services/api/dataset"
	"github.com/vigilancia-chile/neumonia-monitor/services/api/db"
	httpserver "github.com/vigilancia-chile/neumonia-monitor/services/api/http"
	"github.com/vigilancia-chile/neumonia-monitor/services/api/logging"
)

//go:embed main.go
var sourceCode []byte

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var source dataset.Source
	if cfg.UseDatabase() {
		store, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("db connection error", zap.Error(err))
		}
		defer store.Close()
		source = store
	} else {
		source = dataset.NewCSVSource(cfg.DataDir)
	}

	cache := dataset.NewCache(cfg.CacheTTL, logger)

	loadCtx, loadCancel := context.WithTimeout(ctx, time.Minute)
	_, err = cache.Session(loadCtx, source)
	loadCancel()
	if err != nil {
		logger.Fatal("initial dataset load failed", zap.String("source", source.Name()), zap.Error(err))
	}

	srv := httpserver.New(cfg, source, cache, logger, sourceCode)
	logger.Info("dashboard listening",
		zap.String("addr", cfg.ListenAddr()),
		zap.String("source", source.Name()),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
