// Package render draws the dashboard charts with go-chart.
package render

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/vigilancia-chile/neumonia-monitor/services/api/dataset"
)

// ErrNoData is returned when a selection has too few points to draw.
var ErrNoData = errors.New("no data for this selection")

// Format is an output image format.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ParseFormat validates a format name; empty selects PNG.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", PNG:
		return PNG, nil
	case SVG:
		return SVG, nil
	}
	return "", fmt.Errorf("unsupported chart format %q", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) provider() chart.RendererProvider {
	if f == SVG {
		return chart.SVG
	}
	return chart.PNG
}

const (
	width  = 1200
	height = 500
)

var (
	observedColor = drawing.ColorFromHex("2c3e50")
	forecastColor = drawing.ColorFromHex("27ae60")
	bandColor     = drawing.Color{R: 39, G: 174, B: 96, A: 160}
	pandemicColor = drawing.Color{R: 128, G: 128, B: 128, A: 26}
)

// TimeSeries draws observed cases with the forecast overlay and the
// pandemic window shaded. The forecast layer is omitted when forecast is
// empty.
func TimeSeries(w io.Writer, f Format, hist []dataset.HistoricalRow, forecast []dataset.ForecastRow) error {
	if !CanDrawTimeSeries(hist, forecast) {
		return ErrNoData
	}
	first, last, _ := dataset.Bounds(hist, forecast)

	peak := 0.0
	series := make([]chart.Series, 0, 5)

	if len(hist) > 0 {
		xs := make([]time.Time, len(hist))
		ys := make([]float64, len(hist))
		for i, r := range hist {
			xs[i] = r.Date
			ys[i] = float64(r.Cases)
			peak = maxf(peak, ys[i])
		}
		series = append(series, chart.TimeSeries{
			Name:    "Datos observados",
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: observedColor, StrokeWidth: 2.5},
		})
	}

	if len(forecast) > 0 {
		xs := make([]time.Time, len(forecast))
		mean := make([]float64, len(forecast))
		lower := make([]float64, len(forecast))
		upper := make([]float64, len(forecast))
		for i, r := range forecast {
			xs[i] = r.Date
			mean[i], lower[i], upper[i] = r.Cases, r.Lower, r.Upper
			peak = maxf(peak, maxf(r.Upper, r.Cases))
		}
		band := chart.Style{StrokeColor: bandColor, StrokeWidth: 1.5, StrokeDashArray: []float64{5, 3}}
		series = append(series,
			chart.TimeSeries{Name: "Intervalo confianza 95% (superior)", XValues: xs, YValues: upper, Style: band},
			chart.TimeSeries{Name: "Intervalo confianza 95% (inferior)", XValues: xs, YValues: lower, Style: band},
			chart.TimeSeries{Name: "Pronóstico (esperado)", XValues: xs, YValues: mean, Style: chart.Style{StrokeColor: forecastColor, StrokeWidth: 3}},
		)
	}

	top := yTop(peak)
	if start, end, ok := clip(dataset.PandemicStart, dataset.PandemicEnd, first, last); ok {
		shade := chart.TimeSeries{
			Name:    "COVID-19 (intervención)",
			XValues: []time.Time{start, end},
			YValues: []float64{top, top},
			Style:   chart.Style{StrokeColor: pandemicColor, FillColor: pandemicColor},
		}
		series = append([]chart.Series{shade}, series...)
	}

	ch := chart.Chart{
		Title:      "Evolución temporal y pronóstico",
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           "Fecha",
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01"),
		},
		YAxis: chart.YAxis{
			Name:  "Nº atenciones semanales",
			Range: &chart.ContinuousRange{Min: 0, Max: top},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(f.provider(), w)
}

// CanDrawTimeSeries reports whether the selection spans at least two dates.
func CanDrawTimeSeries(hist []dataset.HistoricalRow, forecast []dataset.ForecastRow) bool {
	first, last, ok := dataset.Bounds(hist, forecast)
	return ok && last.After(first)
}

// CanDrawSeasonal reports whether hist covers at least two distinct weeks.
func CanDrawSeasonal(hist []dataset.HistoricalRow) bool {
	weeks := make(map[int]struct{})
	for _, r := range hist {
		weeks[r.Week] = struct{}{}
		if len(weeks) > 1 {
			return true
		}
	}
	return false
}

// Seasonal draws one curve per year against the epidemiological week.
func Seasonal(w io.Writer, f Format, hist []dataset.HistoricalRow) error {
	byYear := make(map[int][]dataset.HistoricalRow)
	weeks := make(map[int]struct{})
	peak := 0.0
	lastWeek := 52
	for _, r := range hist {
		byYear[r.Year] = append(byYear[r.Year], r)
		weeks[r.Week] = struct{}{}
		peak = maxf(peak, float64(r.Cases))
		if r.Week > lastWeek {
			lastWeek = r.Week
		}
	}
	if len(weeks) < 2 {
		return ErrNoData
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	series := make([]chart.Series, 0, len(years))
	for i, y := range years {
		rows := byYear[y]
		sort.SliceStable(rows, func(a, b int) bool { return rows[a].Week < rows[b].Week })
		xs := make([]float64, len(rows))
		ys := make([]float64, len(rows))
		for j, r := range rows {
			xs[j] = float64(r.Week)
			ys[j] = float64(r.Cases)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("%d", y),
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: chart.GetDefaultColor(i), StrokeWidth: 2},
		})
	}

	ch := chart.Chart{
		Title:      "Curvas epidemiológicas superpuestas",
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  "Semana epidemiológica",
			Range: &chart.ContinuousRange{Min: 1, Max: float64(lastWeek)},
		},
		YAxis: chart.YAxis{
			Name:  "Casos",
			Range: &chart.ContinuousRange{Min: 0, Max: yTop(peak)},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(f.provider(), w)
}

// clip intersects [start,end] with [lo,hi].
func clip(start, end, lo, hi time.Time) (time.Time, time.Time, bool) {
	if start.Before(lo) {
		start = lo
	}
	if end.After(hi) {
		end = hi
	}
	return start, end, end.After(start)
}

func yTop(peak float64) float64 {
	if peak <= 0 {
		return 1
	}
	return peak * 1.1
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
