package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vigilancia-chile/neumonia-monitor/services/api/dataset"
)

// UpsertHistorical inserts or updates weekly observations.
func UpsertHistorical(ctx context.Context, pool *pgxpool.Pool, rows []dataset.HistoricalRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `INSERT INTO neumonia.historico (fecha, anio, semana, region, casos)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (fecha, region) DO UPDATE
SET anio = EXCLUDED.anio,
    semana = EXCLUDED.semana,
    casos = EXCLUDED.casos`

	for _, r := range rows {
		batch.Queue(query, r.Date, r.Year, r.Week, r.Region, r.Cases)
	}

	res := pool.SendBatch(ctx, batch)
	defer res.Close()

	for range rows {
		if _, err := res.Exec(); err != nil {
			return fmt.Errorf("upsert historico: %w", err)
		}
	}

	return nil
}

// ReplaceForecast rewrites the forecast table.
func ReplaceForecast(ctx context.Context, pool *pgxpool.Pool, rows []dataset.ForecastRow) error {
	query := `INSERT INTO neumonia.predicciones (fecha, region, casos, lower, upper)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (fecha, region) DO UPDATE
SET casos = EXCLUDED.casos,
    lower = EXCLUDED.lower,
    upper = EXCLUDED.upper`

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(query, r.Date, r.Region, r.Cases, r.Lower, r.Upper)
	}
	return replace(ctx, pool, "predicciones", batch)
}

// ReplaceModels rewrites the model descriptor table.
func ReplaceModels(ctx context.Context, pool *pgxpool.Pool, rows []dataset.ModelRow) error {
	query := `INSERT INTO neumonia.modelos (region, modelo)
VALUES ($1,$2)
ON CONFLICT (region) DO UPDATE
SET modelo = EXCLUDED.modelo`

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(query, r.Region, r.Model)
	}
	return replace(ctx, pool, "modelos", batch)
}

// ReplaceImputed rewrites the pandemic-corrected series.
func ReplaceImputed(ctx context.Context, pool *pgxpool.Pool, rows []dataset.ImputedRow) error {
	query := `INSERT INTO neumonia.serie_imputada (fecha, region, casos, imputado)
VALUES ($1,$2,$3,$4)
ON CONFLICT (fecha, region) DO UPDATE
SET casos = EXCLUDED.casos,
    imputado = EXCLUDED.imputado`

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(query, r.Date, r.Region, r.Cases, r.Imputed)
	}
	return replace(ctx, pool, "serie_imputada", batch)
}

// replace empties table and runs batch in one transaction.
func replace(ctx context.Context, pool *pgxpool.Pool, table string, batch *pgx.Batch) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin %s: %w", table, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, "DELETE FROM neumonia."+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}

	if n := batch.Len(); n > 0 {
		res := tx.SendBatch(ctx, batch)
		for i := 0; i < n; i++ {
			if _, err := res.Exec(); err != nil {
				res.Close()
				return fmt.Errorf("insert %s: %w", table, err)
			}
		}
		if err := res.Close(); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}
	return nil
}
