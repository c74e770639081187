package dataset

import (
	"fmt"
	"strings"
	"time"
)

// TotalCountry is the synthetic whole-country region.
const TotalCountry = "Total País"

// Kind identifies one of the four input artifacts.
type Kind string

const (
	KindHistorical Kind = "historical"
	KindForecast   Kind = "forecast"
	KindModels     Kind = "models"
	KindImputed    Kind = "imputed"
)

// Kinds lists every artifact in load order.
var Kinds = []Kind{KindHistorical, KindForecast, KindModels, KindImputed}

// FileName returns the canonical CSV file name for the artifact.
func (k Kind) FileName() string {
	switch k {
	case KindHistorical:
		return "base_neumonia_dashboard_READY.csv"
	case KindForecast:
		return "predicciones_dashboard.csv"
	case KindModels:
		return "modelos_neumonia.csv"
	case KindImputed:
		return "serie_imputada_dashboard.csv"
	}
	return ""
}

// Required reports whether a missing artifact is fatal.
func (k Kind) Required() bool {
	return k == KindHistorical
}

// ParseKind validates a kind name coming from a request path.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k.FileName() == "" {
		return "", fmt.Errorf("unknown dataset %q", s)
	}
	return k, nil
}

// HistoricalRow is one observed weekly count.
type HistoricalRow struct {
	Date    time.Time `json:"fecha"`
	Year    int       `json:"anio"`
	Week    int       `json:"semana"`
	Region  string    `json:"region"`
	Cases   int       `json:"casos"`
	Imputed bool      `json:"imputado,omitempty"`
}

// ForecastRow is one point of a forecast band.
type ForecastRow struct {
	Date   time.Time `json:"fecha"`
	Region string    `json:"region"`
	Cases  float64   `json:"casos"`
	Lower  float64   `json:"lower"`
	Upper  float64   `json:"upper"`
}

// ModelRow describes the model fitted for a region.
type ModelRow struct {
	Region string `json:"region"`
	Model  string `json:"modelo"`
}

// ImputedRow is one point of the pandemic-corrected series.
type ImputedRow struct {
	Date    time.Time `json:"fecha"`
	Region  string    `json:"region"`
	Cases   int       `json:"casos"`
	Imputed bool      `json:"imputado"`
}

func (r HistoricalRow) region() string  { return r.Region }
func (r HistoricalRow) date() time.Time { return r.Date }
func (r ForecastRow) region() string    { return r.Region }
func (r ForecastRow) date() time.Time   { return r.Date }
func (r ImputedRow) region() string     { return r.Region }
func (r ImputedRow) date() time.Time    { return r.Date }

// ParseImputedFlag normalizes the Imputado column: "TRUE" and "1" in any
// case are true, everything else is false.
func ParseImputedFlag(s string) bool {
	return strings.EqualFold(s, "TRUE") || s == "1"
}
