package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoRegions() []HistoricalRow {
	return []HistoricalRow{
		{Date: day("2023-01-01"), Year: 2023, Week: 1, Region: "A", Cases: 3},
		{Date: day("2023-01-01"), Year: 2023, Week: 1, Region: "B", Cases: 4},
		{Date: day("2023-01-08"), Year: 2023, Week: 2, Region: "B", Cases: 6},
		{Date: day("2023-01-08"), Year: 2023, Week: 2, Region: "A", Cases: 5},
		{Date: day("2023-01-15"), Year: 2023, Week: 3, Region: "A", Cases: 1},
		{Date: day("2023-01-15"), Year: 2023, Week: 3, Region: "B", Cases: 2},
	}
}

func TestFilterHistorical_Region(t *testing.T) {
	sel := Selection{Region: "A", Start: day("2023-01-08"), End: day("2023-01-15")}
	got := FilterHistorical(twoRegions(), sel)

	require.Len(t, got, 2)
	for _, r := range got {
		assert.Equal(t, "A", r.Region)
		assert.True(t, sel.Contains(r.Date))
	}
	assert.Equal(t, 5, got[0].Cases)
	assert.Equal(t, 1, got[1].Cases)
}

func TestFilterHistorical_SynthesizesTotal(t *testing.T) {
	sel := Selection{Region: TotalCountry, Start: day("2023-01-01"), End: day("2023-12-31")}
	got := FilterHistorical(twoRegions(), sel)

	require.Len(t, got, 3)
	want := []int{7, 11, 3}
	for i, r := range got {
		assert.Equal(t, TotalCountry, r.Region)
		assert.Equal(t, i+1, r.Week)
		assert.Equal(t, want[i], r.Cases)
	}
}

func TestFilterHistorical_LiteralTotalWins(t *testing.T) {
	rows := append(twoRegions(), HistoricalRow{Date: day("2023-01-01"), Year: 2023, Week: 1, Region: TotalCountry, Cases: 100})
	sel := Selection{Region: TotalCountry, Start: day("2023-01-01"), End: day("2023-12-31")}

	got := FilterHistorical(rows, sel)
	require.Len(t, got, 1)
	assert.Equal(t, 100, got[0].Cases)
}

func TestFilterHistorical_InclusiveBounds(t *testing.T) {
	sel := Selection{Region: "B", Start: day("2023-01-01"), End: day("2023-01-15")}
	assert.Len(t, FilterHistorical(twoRegions(), sel), 3)

	sel.Start = day("2023-01-02")
	sel.End = day("2023-01-14")
	got := FilterHistorical(twoRegions(), sel)
	require.Len(t, got, 1)
	assert.Equal(t, day("2023-01-08"), got[0].Date)
}

func TestFilterHistorical_Atacama2023(t *testing.T) {
	sel := Selection{Region: "Región de Atacama", Start: day("2023-01-01"), End: day("2023-12-31")}
	got := FilterHistorical(atacama2023(), sel)
	require.Len(t, got, 52)

	s := Summarize(got, nil)
	assert.True(t, s.Available)
	assert.Equal(t, 35, s.Mean)
	assert.Equal(t, 1846, s.Total)
	assert.Equal(t, 61, s.Peak)
	assert.Nil(t, s.ProjectedPeak)
}

func forecastRows() []ForecastRow {
	return []ForecastRow{
		{Date: day("2025-06-01"), Region: "A", Cases: 10, Lower: 8, Upper: 12},
		{Date: day("2025-06-01"), Region: "B", Cases: 20, Lower: 15, Upper: 25},
		{Date: day("2025-06-08"), Region: "A", Cases: 11, Lower: 9, Upper: 13},
	}
}

func TestFilterForecast_TotalPolicies(t *testing.T) {
	sel := Selection{Region: TotalCountry, Start: day("2025-01-01"), End: day("2025-12-31")}

	assert.Empty(t, FilterForecast(forecastRows(), sel, ForecastTotalLiteral))

	got := FilterForecast(forecastRows(), sel, ForecastTotalSynthesize)
	require.Len(t, got, 2)
	assert.Equal(t, ForecastRow{Date: day("2025-06-01"), Region: TotalCountry, Cases: 30, Lower: 23, Upper: 37}, got[0])
	assert.Equal(t, 11.0, got[1].Cases)
}

func TestFilterForecast_Region(t *testing.T) {
	sel := Selection{Region: "A", Start: day("2025-06-01"), End: day("2025-06-01")}
	got := FilterForecast(forecastRows(), sel, ForecastTotalLiteral)
	require.Len(t, got, 1)
	assert.Equal(t, 10.0, got[0].Cases)
}

func TestFilterImputed_NoTotalSynthesis(t *testing.T) {
	rows := []ImputedRow{
		{Date: day("2020-04-05"), Region: "A", Cases: 9, Imputed: true},
		{Date: day("2020-04-05"), Region: "B", Cases: 4, Imputed: false},
	}
	sel := Selection{Region: TotalCountry, Start: day("2020-01-01"), End: day("2020-12-31")}
	assert.Empty(t, FilterImputed(rows, sel))

	sel.Region = "A"
	assert.Len(t, FilterImputed(rows, sel), 1)
}

func TestFilterOnEmptyTables(t *testing.T) {
	sel := Selection{Region: TotalCountry, Start: day("2020-01-01"), End: day("2020-12-31")}
	assert.Empty(t, FilterHistorical(nil, sel))
	assert.Empty(t, FilterForecast(nil, sel, ForecastTotalSynthesize))
	assert.Empty(t, FilterImputed(nil, sel))
}

func TestParseForecastTotal(t *testing.T) {
	p, err := ParseForecastTotal("")
	require.NoError(t, err)
	assert.Equal(t, ForecastTotalLiteral, p)

	p, err = ParseForecastTotal("Synthesize")
	require.NoError(t, err)
	assert.Equal(t, ForecastTotalSynthesize, p)

	_, err = ParseForecastTotal("sum")
	assert.Error(t, err)
}

func TestDefaultRange(t *testing.T) {
	hist := []HistoricalRow{
		{Date: day("2015-01-04"), Region: "A"},
		{Date: day("2024-12-29"), Region: "A"},
	}
	forecast := []ForecastRow{{Date: day("2025-12-28"), Region: "A"}}

	start, end := DefaultRange(hist, forecast)
	assert.Equal(t, day("2017-01-01"), start)
	assert.Equal(t, day("2025-12-28"), end)

	hist[0].Date = day("2019-01-06")
	start, end = DefaultRange(hist, nil)
	assert.Equal(t, day("2019-01-06"), start)
	assert.Equal(t, day("2024-12-29"), end)

	hist[0].Date = day("2017-01-01")
	start, _ = DefaultRange(hist, nil)
	assert.Equal(t, day("2017-01-01"), start)
}

func TestBounds(t *testing.T) {
	_, _, ok := Bounds(nil, nil)
	assert.False(t, ok)

	min, max, ok := Bounds(twoRegions(), forecastRows())
	require.True(t, ok)
	assert.Equal(t, day("2023-01-01"), min)
	assert.Equal(t, day("2025-06-08"), max)
}
