package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// errNoRows marks a file holding at most a header line.
var errNoRows = errors.New("no data rows")

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02-01-2006",
	"2006/01/02",
}

// CSVSource reads the artifacts from a directory of CSV files.
type CSVSource struct {
	Dir string
}

// NewCSVSource returns a source rooted at dir.
func NewCSVSource(dir string) CSVSource {
	if dir == "" {
		dir = "."
	}
	return CSVSource{Dir: dir}
}

// Name identifies the source for caching.
func (s CSVSource) Name() string {
	abs, err := filepath.Abs(s.Dir)
	if err != nil {
		abs = s.Dir
	}
	return "csv:" + abs
}

// Path returns the file path backing an artifact.
func (s CSVSource) Path(k Kind) string {
	return filepath.Join(s.Dir, k.FileName())
}

// Open returns the artifact's raw bytes, unmodified.
func (s CSVSource) Open(_ context.Context, k Kind) (io.ReadCloser, error) {
	f, err := os.Open(s.Path(k))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", k.FileName(), ErrMissing)
		}
		return nil, err
	}
	return f, nil
}

func (s CSVSource) Historical(_ context.Context) ([]HistoricalRow, error) {
	df, err := s.frame(KindHistorical, map[string]series.Type{
		"fecha":  series.String,
		"Año":    series.Int,
		"Semana": series.Int,
		"Region": series.String,
		"Casos":  series.Float,
	})
	if errors.Is(err, errNoRows) {
		return []HistoricalRow{}, nil
	}
	if err != nil {
		return nil, err
	}

	dates, err := parseDates(df.Col("fecha").Records())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KindHistorical.FileName(), err)
	}
	years, err := df.Col("Año").Int()
	if err != nil {
		return nil, fmt.Errorf("%s: column Año: %w", KindHistorical.FileName(), err)
	}
	weeks, err := df.Col("Semana").Int()
	if err != nil {
		return nil, fmt.Errorf("%s: column Semana: %w", KindHistorical.FileName(), err)
	}
	cases, err := counts(df.Col("Casos").Float())
	if err != nil {
		return nil, fmt.Errorf("%s: column Casos: %w", KindHistorical.FileName(), err)
	}
	regions := df.Col("Region").Records()

	rows := make([]HistoricalRow, 0, df.Nrow())
	for i := range dates {
		rows = append(rows, HistoricalRow{
			Date:   dates[i],
			Year:   years[i],
			Week:   weeks[i],
			Region: regions[i],
			Cases:  cases[i],
		})
	}
	return rows, nil
}

func (s CSVSource) Forecast(_ context.Context) ([]ForecastRow, error) {
	df, err := s.frame(KindForecast, map[string]series.Type{
		"fecha":  series.String,
		"Region": series.String,
		"Casos":  series.Float,
		"Lower":  series.Float,
		"Upper":  series.Float,
	})
	if errors.Is(err, errNoRows) {
		return []ForecastRow{}, nil
	}
	if err != nil {
		return nil, err
	}

	dates, err := parseDates(df.Col("fecha").Records())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KindForecast.FileName(), err)
	}
	regions := df.Col("Region").Records()
	mean := df.Col("Casos").Float()
	lower := df.Col("Lower").Float()
	upper := df.Col("Upper").Float()

	rows := make([]ForecastRow, 0, df.Nrow())
	for i := range dates {
		rows = append(rows, ForecastRow{
			Date:   dates[i],
			Region: regions[i],
			Cases:  mean[i],
			Lower:  lower[i],
			Upper:  upper[i],
		})
	}
	return rows, nil
}

func (s CSVSource) Models(_ context.Context) ([]ModelRow, error) {
	df, err := s.frame(KindModels, map[string]series.Type{
		"Region": series.String,
		"Modelo": series.String,
	})
	if errors.Is(err, errNoRows) {
		return []ModelRow{}, nil
	}
	if err != nil {
		return nil, err
	}

	regions := df.Col("Region").Records()
	models := df.Col("Modelo").Records()
	rows := make([]ModelRow, 0, df.Nrow())
	for i := range regions {
		rows = append(rows, ModelRow{Region: regions[i], Model: models[i]})
	}
	return rows, nil
}

func (s CSVSource) Imputed(_ context.Context) ([]ImputedRow, error) {
	df, err := s.frame(KindImputed, map[string]series.Type{
		"fecha":    series.String,
		"Region":   series.String,
		"Casos":    series.Float,
		"Imputado": series.String,
	})
	if errors.Is(err, errNoRows) {
		return []ImputedRow{}, nil
	}
	if err != nil {
		return nil, err
	}

	dates, err := parseDates(df.Col("fecha").Records())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KindImputed.FileName(), err)
	}
	cases, err := counts(df.Col("Casos").Float())
	if err != nil {
		return nil, fmt.Errorf("%s: column Casos: %w", KindImputed.FileName(), err)
	}
	regions := df.Col("Region").Records()
	flags := df.Col("Imputado").Records()

	rows := make([]ImputedRow, 0, df.Nrow())
	for i := range dates {
		rows = append(rows, ImputedRow{
			Date:    dates[i],
			Region:  regions[i],
			Cases:   cases[i],
			Imputed: ParseImputedFlag(flags[i]),
		})
	}
	return rows, nil
}

// frame reads one artifact into a dataframe with the given column types and
// checks that every typed column is present.
func (s CSVSource) frame(k Kind, types map[string]series.Type) (dataframe.DataFrame, error) {
	raw, err := os.ReadFile(s.Path(k))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return dataframe.DataFrame{}, fmt.Errorf("%s: %w", k.FileName(), ErrMissing)
		}
		return dataframe.DataFrame{}, fmt.Errorf("read %s: %w", k.FileName(), err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if bytes.Count(bytes.TrimSpace(raw), []byte("\n")) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("%s: %w", k.FileName(), errNoRows)
	}

	df := dataframe.ReadCSV(bytes.NewReader(raw),
		dataframe.WithTypes(types),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return df, fmt.Errorf("parse %s: %w", k.FileName(), df.Err)
	}

	have := make(map[string]bool, len(df.Names()))
	for _, name := range df.Names() {
		have[name] = true
	}
	for col := range types {
		if !have[col] {
			return df, fmt.Errorf("%s: missing column %q", k.FileName(), col)
		}
	}
	return df, nil
}

func parseDates(values []string) ([]time.Time, error) {
	out := make([]time.Time, len(values))
	for i, v := range values {
		t, err := ParseDate(v)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out[i] = t
	}
	return out, nil
}

// ParseDate accepts the date layouts found in the artifacts and returns the
// calendar day at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid fecha %q", s)
}

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func counts(values []float64) ([]int, error) {
	out := make([]int, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("row %d: not a number", i+2)
		}
		out[i] = int(v)
	}
	return out, nil
}
