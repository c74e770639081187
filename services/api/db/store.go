package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vigilancia-chile/neumonia-monitor/services/api/dataset"
)

// undefinedTable is the SQLSTATE for a missing relation.
const undefinedTable = "42P01"

// Store wraps database access helpers. It implements dataset.Source.
type Store struct {
	pool *pgxpool.Pool
	name string
}

// New creates a Store backed by a pgx pool.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	cc := pool.Config().ConnConfig
	name := fmt.Sprintf("postgres:%s:%d/%s", cc.Host, cc.Port, cc.Database)
	return &Store{pool: pool, name: name}, nil
}

// Close releases the pool resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Name identifies the store for session caching.
func (s *Store) Name() string {
	return s.name
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const historicalSQL = `
    SELECT fecha, anio, semana, region, casos
    FROM neumonia.historico
    ORDER BY fecha, region
`

// Historical returns the observed weekly series.
func (s *Store) Historical(ctx context.Context) ([]dataset.HistoricalRow, error) {
	rows, err := s.pool.Query(ctx, historicalSQL)
	if err != nil {
		return nil, tableErr("historico", err)
	}
	defer rows.Close()

	out := make([]dataset.HistoricalRow, 0)
	for rows.Next() {
		var r dataset.HistoricalRow
		if err := rows.Scan(&r.Date, &r.Year, &r.Week, &r.Region, &r.Cases); err != nil {
			return nil, err
		}
		r.Date = dataset.Day(r.Date)
		out = append(out, r)
	}
	return out, tableErr("historico", rows.Err())
}

const forecastSQL = `
    SELECT fecha, region, casos, lower, upper
    FROM neumonia.predicciones
    ORDER BY fecha, region
`

// Forecast returns the forecast bands.
func (s *Store) Forecast(ctx context.Context) ([]dataset.ForecastRow, error) {
	rows, err := s.pool.Query(ctx, forecastSQL)
	if err != nil {
		return nil, tableErr("predicciones", err)
	}
	defer rows.Close()

	out := make([]dataset.ForecastRow, 0)
	for rows.Next() {
		var r dataset.ForecastRow
		if err := rows.Scan(&r.Date, &r.Region, &r.Cases, &r.Lower, &r.Upper); err != nil {
			return nil, err
		}
		r.Date = dataset.Day(r.Date)
		out = append(out, r)
	}
	return out, tableErr("predicciones", rows.Err())
}

const modelsSQL = `
    SELECT region, modelo
    FROM neumonia.modelos
    ORDER BY region
`

// Models returns the fitted-model descriptors.
func (s *Store) Models(ctx context.Context) ([]dataset.ModelRow, error) {
	rows, err := s.pool.Query(ctx, modelsSQL)
	if err != nil {
		return nil, tableErr("modelos", err)
	}
	defer rows.Close()

	out := make([]dataset.ModelRow, 0)
	for rows.Next() {
		var r dataset.ModelRow
		if err := rows.Scan(&r.Region, &r.Model); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, tableErr("modelos", rows.Err())
}

const imputedSQL = `
    SELECT fecha, region, casos, imputado
    FROM neumonia.serie_imputada
    ORDER BY fecha, region
`

// Imputed returns the pandemic-corrected series.
func (s *Store) Imputed(ctx context.Context) ([]dataset.ImputedRow, error) {
	rows, err := s.pool.Query(ctx, imputedSQL)
	if err != nil {
		return nil, tableErr("serie_imputada", err)
	}
	defer rows.Close()

	out := make([]dataset.ImputedRow, 0)
	for rows.Next() {
		var r dataset.ImputedRow
		if err := rows.Scan(&r.Date, &r.Region, &r.Cases, &r.Imputed); err != nil {
			return nil, err
		}
		r.Date = dataset.Day(r.Date)
		out = append(out, r)
	}
	return out, tableErr("serie_imputada", rows.Err())
}

// EnsureSchema creates the dataset tables when absent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, SchemaSQL)
	return err
}

// Pool exposes the underlying pool for writers.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// tableErr maps a missing relation to dataset.ErrMissing.
func tableErr(table string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
		return fmt.Errorf("neumonia.%s: %w", table, dataset.ErrMissing)
	}
	return fmt.Errorf("query neumonia.%s: %w", table, err)
}
