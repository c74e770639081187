package models

import (
	"time"

	"github.com/vigilancia-chile/neumonia-monitor/services/api/dataset"
)

// HistoricalKey identifies one stored weekly observation.
type HistoricalKey struct {
	Date   time.Time
	Region string
}

// StoredHistorical is the persisted state of one weekly observation, used to
// skip unchanged rows.
type StoredHistorical struct {
	Year  int
	Week  int
	Cases int
}

// Plan is the set of writes one import run performs.
type Plan struct {
	// Historical holds new or changed rows only.
	Historical []dataset.HistoricalRow
	// Forecast, Models and Imputed replace their tables in full. A nil
	// slice leaves the table untouched.
	Forecast []dataset.ForecastRow
	Models   []dataset.ModelRow
	Imputed  []dataset.ImputedRow
	Skipped  []dataset.Kind
}

// Empty reports whether the plan writes nothing.
func (p Plan) Empty() bool {
	return len(p.Historical) == 0 && p.Forecast == nil && p.Models == nil && p.Imputed == nil
}
