package dataset

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Selection is the user-controlled view: one region and an inclusive date
// window.
type Selection struct {
	Region string
	Start  time.Time
	End    time.Time
}

// Contains reports whether t falls inside the window, by calendar day.
func (s Selection) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(Day(s.Start)) && !d.After(Day(s.End))
}

// Policy configures how a table answers a TotalCountry selection.
type Policy struct {
	Name string
	// SynthesizeTotal sums all regions per date key when the table has no
	// literal TotalCountry rows.
	SynthesizeTotal bool
}

var (
	HistoricalPolicy = Policy{Name: "historical", SynthesizeTotal: true}
	ImputedPolicy    = Policy{Name: "imputed"}
)

// ForecastTotal names how forecast data answers a TotalCountry selection
// when the forecast file has no literal country rows.
type ForecastTotal string

const (
	// ForecastTotalLiteral matches only literal TotalCountry rows.
	ForecastTotalLiteral ForecastTotal = "literal"
	// ForecastTotalSynthesize sums mean and band edges across regions.
	ForecastTotalSynthesize ForecastTotal = "synthesize"
)

// ParseForecastTotal validates a policy name; empty selects the literal policy.
func ParseForecastTotal(s string) (ForecastTotal, error) {
	switch ForecastTotal(strings.ToLower(strings.TrimSpace(s))) {
	case "", ForecastTotalLiteral:
		return ForecastTotalLiteral, nil
	case ForecastTotalSynthesize:
		return ForecastTotalSynthesize, nil
	}
	return "", fmt.Errorf("unknown forecast total policy %q", s)
}

// ForecastPolicy returns the filter policy for forecast rows.
func ForecastPolicy(p ForecastTotal) Policy {
	return Policy{Name: "forecast-" + string(p), SynthesizeTotal: p == ForecastTotalSynthesize}
}

type record interface {
	region() string
	date() time.Time
}

func filterRows[R record](rows []R, sel Selection, p Policy, total func([]R) []R) []R {
	out := make([]R, 0)
	if sel.Region == TotalCountry && p.SynthesizeTotal && !hasLiteral(rows, TotalCountry) {
		for _, r := range total(rows) {
			if sel.Contains(r.date()) {
				out = append(out, r)
			}
		}
		return out
	}
	for _, r := range rows {
		if r.region() == sel.Region && sel.Contains(r.date()) {
			out = append(out, r)
		}
	}
	return out
}

func hasLiteral[R record](rows []R, region string) bool {
	for _, r := range rows {
		if r.region() == region {
			return true
		}
	}
	return false
}

// FilterHistorical projects the historical table onto sel.
func FilterHistorical(rows []HistoricalRow, sel Selection) []HistoricalRow {
	return filterRows(rows, sel, HistoricalPolicy, sumHistorical)
}

// FilterForecast projects the forecast table onto sel under policy p.
func FilterForecast(rows []ForecastRow, sel Selection, p ForecastTotal) []ForecastRow {
	return filterRows(rows, sel, ForecastPolicy(p), sumForecast)
}

// FilterImputed projects the imputed series onto sel. Country totals are
// never synthesized for it.
func FilterImputed(rows []ImputedRow, sel Selection) []ImputedRow {
	return filterRows(rows, sel, ImputedPolicy, nil)
}

type weekKey struct {
	date time.Time
	year int
	week int
}

func sumHistorical(rows []HistoricalRow) []HistoricalRow {
	sums := make(map[weekKey]int)
	for _, r := range rows {
		sums[weekKey{date: r.Date, year: r.Year, week: r.Week}] += r.Cases
	}

	out := make([]HistoricalRow, 0, len(sums))
	for k, v := range sums {
		out = append(out, HistoricalRow{Date: k.date, Year: k.year, Week: k.week, Region: TotalCountry, Cases: v})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Week < b.Week
	})
	return out
}

func sumForecast(rows []ForecastRow) []ForecastRow {
	idx := make(map[time.Time]int)
	out := make([]ForecastRow, 0)
	for _, r := range rows {
		i, ok := idx[r.Date]
		if !ok {
			i = len(out)
			idx[r.Date] = i
			out = append(out, ForecastRow{Date: r.Date, Region: TotalCountry})
		}
		out[i].Cases += r.Cases
		out[i].Lower += r.Lower
		out[i].Upper += r.Upper
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Bounds returns the earliest and latest dates across the historical and
// forecast tables. ok is false when both are empty.
func Bounds(hist []HistoricalRow, forecast []ForecastRow) (min, max time.Time, ok bool) {
	visit := func(t time.Time) {
		if !ok {
			min, max, ok = t, t, true
			return
		}
		if t.Before(min) {
			min = t
		}
		if t.After(max) {
			max = t
		}
	}
	for _, r := range hist {
		visit(r.Date)
	}
	for _, r := range forecast {
		visit(r.Date)
	}
	return min, max, ok
}

// DefaultStartFloor is the earliest default lower bound of the date window.
var DefaultStartFloor = time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC)

// DefaultRange returns the initial date window: from 2017-01-01 (or the
// first historical date when that is later) to the last date across the
// historical and forecast tables.
func DefaultRange(hist []HistoricalRow, forecast []ForecastRow) (start, end time.Time) {
	var histMin time.Time
	for i, r := range hist {
		if i == 0 || r.Date.Before(histMin) {
			histMin = r.Date
		}
	}
	_, end, _ = Bounds(hist, forecast)

	start = histMin
	if !histMin.After(DefaultStartFloor) {
		start = DefaultStartFloor
	}
	return start, end
}
