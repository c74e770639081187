package dataset

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFixture(t, dir, KindHistorical,
		"fecha,Año,Semana,Region,Casos",
		"2023-01-01,2023,1,Norte,10",
		"2023-01-01,2023,1,Sur,20",
		"2023-01-08,2023,2,Norte,12",
		"2023-01-08,2023,2,Sur,18",
	)
	writeFixture(t, dir, KindForecast,
		"fecha,Region,Casos,Lower,Upper",
		"2025-06-01,Norte,14.5,10.2,18.9",
		"2025-06-01,Total País,40,30,50",
	)
	writeFixture(t, dir, KindModels,
		"Region,Modelo",
		`Norte,"Regression with ARIMA(1,0,0) errors"`,
	)
	writeFixture(t, dir, KindImputed,
		"fecha,Region,Casos,Imputado",
		"2020-04-05,Norte,9,TRUE",
		"2020-04-12,Norte,7,false",
		"2020-04-19,Norte,8,1",
		"2020-04-26,Norte,8,True",
		"2020-05-03,Norte,8,NA",
	)
	return dir
}

func TestLoad_CSVSource(t *testing.T) {
	src := NewCSVSource(fullFixture(t))
	sess, err := Load(context.Background(), src, nil)
	require.NoError(t, err)

	require.Len(t, sess.Historical, 4)
	assert.Equal(t, HistoricalRow{Date: day("2023-01-01"), Year: 2023, Week: 1, Region: "Norte", Cases: 10}, sess.Historical[0])

	require.Len(t, sess.Forecast, 2)
	assert.Equal(t, ForecastRow{Date: day("2025-06-01"), Region: "Norte", Cases: 14.5, Lower: 10.2, Upper: 18.9}, sess.Forecast[0])
	assert.Equal(t, TotalCountry, sess.Forecast[1].Region)

	require.Len(t, sess.Models, 1)
	assert.Equal(t, "Regression with ARIMA(1,0,0) errors", sess.Models[0].Model)

	require.Len(t, sess.Imputed, 5)
	flags := make([]bool, 0, len(sess.Imputed))
	for _, r := range sess.Imputed {
		flags = append(flags, r.Imputed)
	}
	assert.Equal(t, []bool{true, false, true, true, false}, flags)

	assert.Empty(t, sess.Warnings)
	assert.Equal(t, src.Name(), sess.Source)
}

func TestLoad_MissingHistoricalIsFatal(t *testing.T) {
	_, err := Load(context.Background(), NewCSVSource(t.TempDir()), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissing)
}

func TestLoad_UnparsableHistoricalDate(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, KindHistorical,
		"fecha,Año,Semana,Region,Casos",
		"yesterday,2023,1,Norte,10",
	)
	_, err := Load(context.Background(), NewCSVSource(dir), nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissing)
	assert.Contains(t, err.Error(), "invalid fecha")
}

func TestLoad_MissingColumn(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, KindHistorical,
		"fecha,Semana,Region,Casos",
		"2023-01-01,1,Norte,10",
	)
	_, err := Load(context.Background(), NewCSVSource(dir), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Año")
}

func TestLoad_OptionalArtifactsMissing(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, KindHistorical,
		"\ufefffecha,Año,Semana,Region,Casos",
		"2023-01-01,2023,1,Norte,10",
	)

	sess, err := Load(context.Background(), NewCSVSource(dir), nil)
	require.NoError(t, err)
	assert.Len(t, sess.Historical, 1)
	assert.NotNil(t, sess.Forecast)
	assert.Empty(t, sess.Forecast)
	assert.Empty(t, sess.Models)
	assert.Empty(t, sess.Imputed)
	assert.Len(t, sess.Warnings, 3)
	for _, k := range []Kind{KindForecast, KindModels, KindImputed} {
		assert.True(t, sess.Missing(k), k)
	}
	assert.False(t, sess.Missing(KindHistorical))

	sel := Selection{Region: TotalCountry, Start: day("2023-01-01"), End: day("2023-12-31")}
	s := Summarize(FilterHistorical(sess.Historical, sel), FilterForecast(sess.Forecast, sel, ForecastTotalLiteral))
	assert.Equal(t, NotAvailable, s.ProjectedPeakLabel())
}

func TestLoad_HeaderOnlyOptional(t *testing.T) {
	dir := fullFixture(t)
	writeFixture(t, dir, KindForecast, "fecha,Region,Casos,Lower,Upper")

	sess, err := Load(context.Background(), NewCSVSource(dir), nil)
	require.NoError(t, err)
	assert.Empty(t, sess.Forecast)
	assert.False(t, sess.Missing(KindForecast))
}

func TestCSVSource_Open(t *testing.T) {
	dir := fullFixture(t)
	src := NewCSVSource(dir)

	rc, err := src.Open(context.Background(), KindModels)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "Region,Modelo\nNorte,\"Regression with ARIMA(1,0,0) errors\"\n", string(body))

	_, err = NewCSVSource(t.TempDir()).Open(context.Background(), KindModels)
	assert.ErrorIs(t, err, ErrMissing)
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2023-03-05", "2023-03-05 00:00:00", "2023-03-05T10:00:00Z", "05-03-2023", " 2023/03/05 "} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, day("2023-03-05"), got, in)
	}
	_, err := ParseDate("03/05/2023")
	assert.Error(t, err)
}

func TestParseImputedFlag(t *testing.T) {
	for _, v := range []string{"TRUE", "true", "True", "tRuE", "1"} {
		assert.True(t, ParseImputedFlag(v), v)
	}
	for _, v := range []string{"FALSE", "0", "", "yes", "T", "1.0", " true"} {
		assert.False(t, ParseImputedFlag(v), v)
	}
}

func TestWriteCSV(t *testing.T) {
	sess, err := Load(context.Background(), NewCSVSource(fullFixture(t)), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sess, KindForecast))
	assert.Equal(t, "fecha,Region,Casos,Lower,Upper\n2025-06-01,Norte,14.5,10.2,18.9\n2025-06-01,Total País,40,30,50\n", buf.String())
}

// countingSource wraps a source and counts historical reads.
type countingSource struct {
	Source
	reads atomic.Int32
	fail  error
}

func (c *countingSource) Historical(ctx context.Context) ([]HistoricalRow, error) {
	c.reads.Add(1)
	if c.fail != nil {
		return nil, c.fail
	}
	return c.Source.Historical(ctx)
}

func TestCache_LoadsOnce(t *testing.T) {
	src := &countingSource{Source: NewCSVSource(fullFixture(t))}
	cache := NewCache(0, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Session(context.Background(), src)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	first, err := cache.Session(context.Background(), src)
	require.NoError(t, err)
	second, err := cache.Session(context.Background(), src)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), src.reads.Load())

	cache.Invalidate(src)
	third, err := cache.Session(context.Background(), src)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, int32(2), src.reads.Load())
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	src := &countingSource{Source: NewCSVSource(fullFixture(t)), fail: errors.New("disk gone")}
	cache := NewCache(0, nil)

	_, err := cache.Session(context.Background(), src)
	require.Error(t, err)

	src.fail = nil
	_, err = cache.Session(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.reads.Load())
}
