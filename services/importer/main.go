package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/vigilancia-chile/neumonia-monitor/services/api/dataset"
	apidb "github.com/vigilancia-chile/neumonia-monitor/services/api/db"
	"github.com/vigilancia-chile/neumonia-monitor/services/api/logging"
	"github.com/vigilancia-chile/neumonia-monitor/services/importer/internal/config"
	"github.com/vigilancia-chile/neumonia-monitor/services/importer/internal/db"
	"github.com/vigilancia-chile/neumonia-monitor/services/importer/internal/models"
	"github.com/vigilancia-chile/neumonia-monitor/services/importer/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("importer failed: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("importer failed: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("importer failed", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ImportTimeout)
	defer cancel()

	src := dataset.NewCSVSource(cfg.DataDir)
	sess, err := dataset.Load(ctx, src, logger)
	if err != nil {
		return err
	}

	store, err := apidb.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.DryRun {
		logger.Info("dry-run: skipping schema creation")
	} else if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	existing, err := store.Historical(ctx)
	if err != nil {
		// dry run against an empty database
		if !cfg.DryRun {
			return err
		}
		logger.Warn("dry-run: stored rows unavailable", zap.Error(err))
	}

	plan := utils.BuildPlan(sess, utils.StoredHistorical(existing))
	for _, k := range plan.Skipped {
		logger.Warn("artifact missing, table left untouched", zap.String("file", k.FileName()))
	}

	fields := []zap.Field{
		zap.String("source", src.Name()),
		zap.String("target", store.Name()),
		zap.Int("historical_changed", len(plan.Historical)),
		zap.Int("historical_total", len(sess.Historical)),
		zap.Int("forecast", len(plan.Forecast)),
		zap.Int("models", len(plan.Models)),
		zap.Int("imputed", len(plan.Imputed)),
		zap.Bool("dry_run", cfg.DryRun),
	}

	if plan.Empty() {
		logger.Info("nothing to import", fields...)
		return nil
	}

	logger.Info("prepared import", fields...)

	if cfg.DryRun {
		for _, r := range plan.Historical {
			logger.Debug("dry-run: would upsert",
				zap.Time("fecha", r.Date),
				zap.String("region", r.Region),
				zap.Int("casos", r.Cases),
			)
		}
		return nil
	}

	start := time.Now()
	if err := apply(ctx, store, plan); err != nil {
		return err
	}

	logger.Info("import complete", append(fields, zap.Duration("elapsed", time.Since(start)))...)
	return nil
}

func apply(ctx context.Context, store *apidb.Store, plan models.Plan) error {
	pool := store.Pool()

	if err := db.UpsertHistorical(ctx, pool, plan.Historical); err != nil {
		return err
	}
	if plan.Forecast != nil {
		if err := db.ReplaceForecast(ctx, pool, plan.Forecast); err != nil {
			return err
		}
	}
	if plan.Models != nil {
		if err := db.ReplaceModels(ctx, pool, plan.Models); err != nil {
			return err
		}
	}
	if plan.Imputed != nil {
		if err := db.ReplaceImputed(ctx, pool, plan.Imputed); err != nil {
			return err
		}
	}
	return nil
}
