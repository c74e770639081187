package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrMissing marks an artifact that does not exist in its source.
var ErrMissing = errors.New("artifact not found")

// Source provides the four artifacts as typed rows.
type Source interface {
	Name() string
	Historical(ctx context.Context) ([]HistoricalRow, error)
	Forecast(ctx context.Context) ([]ForecastRow, error)
	Models(ctx context.Context) ([]ModelRow, error)
	Imputed(ctx context.Context) ([]ImputedRow, error)
}

// RawOpener is implemented by sources that can hand out an artifact's
// unmodified bytes.
type RawOpener interface {
	Open(ctx context.Context, k Kind) (io.ReadCloser, error)
}

// Session is the immutable result of one load. Handlers receive it
// explicitly and never mutate it.
type Session struct {
	Source     string
	LoadedAt   time.Time
	Historical []HistoricalRow
	Forecast   []ForecastRow
	Models     []ModelRow
	Imputed    []ImputedRow
	Warnings   []string
	missing    map[Kind]bool
}

// Missing reports whether an optional artifact was absent at load time.
func (s *Session) Missing(k Kind) bool {
	return s.missing[k]
}

// Load reads every artifact from src. A missing or malformed historical
// table is an error; a missing optional table becomes an empty table plus a
// warning.
func Load(ctx context.Context, src Source, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	hist, err := src.Historical(ctx)
	if err != nil {
		return nil, fmt.Errorf("load historical series: %w", err)
	}

	sess := &Session{
		Source:     src.Name(),
		LoadedAt:   time.Now().UTC(),
		Historical: hist,
		missing:    make(map[Kind]bool),
	}

	// optional artifacts load concurrently; each goroutine owns its field
	var warnings [3]string
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		sess.Forecast, warnings[0], err = optional(egCtx, logger, KindForecast, src.Forecast)
		return err
	})
	eg.Go(func() (err error) {
		sess.Models, warnings[1], err = optional(egCtx, logger, KindModels, src.Models)
		return err
	})
	eg.Go(func() (err error) {
		sess.Imputed, warnings[2], err = optional(egCtx, logger, KindImputed, src.Imputed)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	for i, k := range []Kind{KindForecast, KindModels, KindImputed} {
		if warnings[i] != "" {
			sess.missing[k] = true
			sess.Warnings = append(sess.Warnings, warnings[i])
		}
	}

	logger.Info("datasets loaded",
		zap.String("source", sess.Source),
		zap.Int("historical", len(sess.Historical)),
		zap.Int("forecast", len(sess.Forecast)),
		zap.Int("models", len(sess.Models)),
		zap.Int("imputed", len(sess.Imputed)),
		zap.Int("warnings", len(sess.Warnings)),
	)
	return sess, nil
}

// optional reads one optional artifact. A missing artifact yields an empty
// table and a non-empty warning.
func optional[R any](
	ctx context.Context,
	logger *zap.Logger,
	k Kind,
	read func(context.Context) ([]R, error),
) ([]R, string, error) {
	rows, err := read(ctx)
	if errors.Is(err, ErrMissing) {
		logger.Warn("optional dataset missing", zap.String("dataset", string(k)), zap.Error(err))
		return []R{}, fmt.Sprintf("%s not found; continuing without %s data", k.FileName(), k), nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("load %s: %w", k, err)
	}
	return rows, "", nil
}
