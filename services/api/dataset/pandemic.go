package dataset

import (
	"fmt"
	"strings"
	"time"
)

// Pandemic reporting window corrected by the imputed series.
var (
	PandemicStart = time.Date(2020, time.March, 15, 0, 0, 0, 0, time.UTC)
	PandemicEnd   = time.Date(2021, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// InPandemic reports whether t falls inside the pandemic window.
func InPandemic(t time.Time) bool {
	d := Day(t)
	return !d.Before(PandemicStart) && !d.After(PandemicEnd)
}

// PandemicMode selects how historical points inside the pandemic window are shown.
type PandemicMode string

const (
	PandemicObserved PandemicMode = "observed"
	PandemicHidden   PandemicMode = "hidden"
	PandemicImputed  PandemicMode = "imputed"
)

// ParsePandemicMode validates a mode name; empty selects observed data.
func ParsePandemicMode(s string) (PandemicMode, error) {
	switch PandemicMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", PandemicObserved:
		return PandemicObserved, nil
	case PandemicHidden:
		return PandemicHidden, nil
	case PandemicImputed:
		return PandemicImputed, nil
	}
	return "", fmt.Errorf("unknown pandemic mode %q", s)
}

// ApplyPandemic returns hist as seen under mode. imputed must already be
// filtered to the same selection.
func ApplyPandemic(hist []HistoricalRow, imputed []ImputedRow, mode PandemicMode) []HistoricalRow {
	switch mode {
	case PandemicHidden:
		out := make([]HistoricalRow, 0, len(hist))
		for _, r := range hist {
			if !InPandemic(r.Date) {
				out = append(out, r)
			}
		}
		return out
	case PandemicImputed:
		fills := make(map[time.Time]int)
		for _, r := range imputed {
			if r.Imputed {
				fills[r.Date] = r.Cases
			}
		}
		if len(fills) == 0 {
			return hist
		}
		out := make([]HistoricalRow, len(hist))
		for i, r := range hist {
			if v, ok := fills[r.Date]; ok {
				r.Cases = v
				r.Imputed = true
			}
			out[i] = r
		}
		return out
	}
	return hist
}
