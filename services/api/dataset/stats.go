package dataset

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// NotAvailable is shown for a KPI that has no data.
const NotAvailable = "N/A"

// Summary holds the dashboard KPIs for one selection. Values are truncated
// to integers.
type Summary struct {
	Available     bool       `json:"available"`
	Rows          int        `json:"rows"`
	Mean          int        `json:"mean"`
	Total         int        `json:"total"`
	Peak          int        `json:"peak"`
	LastDate      *time.Time `json:"last_date,omitempty"`
	LastCases     *int       `json:"last_cases,omitempty"`
	ProjectedPeak *int       `json:"projected_peak,omitempty"`
}

// Summarize reduces the filtered historical and forecast tables.
func Summarize(hist []HistoricalRow, forecast []ForecastRow) Summary {
	s := Summary{Rows: len(hist)}
	if len(forecast) > 0 {
		mean := make([]float64, len(forecast))
		for i, r := range forecast {
			mean[i] = r.Cases
		}
		peak := int(floats.Max(mean))
		s.ProjectedPeak = &peak
	}
	if len(hist) == 0 {
		return s
	}

	cases := make([]float64, len(hist))
	for i, r := range hist {
		cases[i] = float64(r.Cases)
	}
	last := hist[len(hist)-1]
	lastDate, lastCases := last.Date, last.Cases

	s.Available = true
	s.Mean = int(stat.Mean(cases, nil))
	s.Total = int(floats.Sum(cases))
	s.Peak = int(floats.Max(cases))
	s.LastDate = &lastDate
	s.LastCases = &lastCases
	return s
}

// ProjectedPeakLabel renders the projected peak KPI.
func (s Summary) ProjectedPeakLabel() string {
	if s.ProjectedPeak == nil {
		return NotAvailable
	}
	return FormatCount(*s.ProjectedPeak)
}

var printer = message.NewPrinter(language.MustParse("es-CL"))

// FormatCount prints n with Chilean digit grouping, e.g. 12.345.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}
