package utils

import (
	"github.com/vigilancia-chile/neumonia-monitor/services/api/dataset"
	"github.com/vigilancia-chile/neumonia-monitor/services/importer/internal/models"
)

// StoredHistorical indexes rows already persisted by (fecha, region).
func StoredHistorical(rows []dataset.HistoricalRow) map[models.HistoricalKey]models.StoredHistorical {
	out := make(map[models.HistoricalKey]models.StoredHistorical, len(rows))
	for _, r := range rows {
		out[models.HistoricalKey{Date: dataset.Day(r.Date), Region: r.Region}] = models.StoredHistorical{
			Year:  r.Year,
			Week:  r.Week,
			Cases: r.Cases,
		}
	}
	return out
}

// FilterChangedHistorical selects rows that are new or differ from the
// stored copy. Later duplicates of a key win.
func FilterChangedHistorical(rows []dataset.HistoricalRow, stored map[models.HistoricalKey]models.StoredHistorical) []dataset.HistoricalRow {
	latest := make(map[models.HistoricalKey]int, len(rows))
	order := make([]models.HistoricalKey, 0, len(rows))
	for i, r := range rows {
		key := models.HistoricalKey{Date: dataset.Day(r.Date), Region: r.Region}
		if _, ok := latest[key]; !ok {
			order = append(order, key)
		}
		latest[key] = i
	}

	out := make([]dataset.HistoricalRow, 0, len(order))
	for _, key := range order {
		r := rows[latest[key]]
		prev, ok := stored[key]
		if ok && prev.Year == r.Year && prev.Week == r.Week && prev.Cases == r.Cases {
			continue
		}
		out = append(out, r)
	}
	return out
}

// BuildPlan decides what an import of sess writes given the stored
// historical rows. Missing optional artifacts are skipped, never cleared.
func BuildPlan(sess *dataset.Session, stored map[models.HistoricalKey]models.StoredHistorical) models.Plan {
	plan := models.Plan{
		Historical: FilterChangedHistorical(sess.Historical, stored),
	}

	if sess.Missing(dataset.KindForecast) {
		plan.Skipped = append(plan.Skipped, dataset.KindForecast)
	} else {
		plan.Forecast = append(make([]dataset.ForecastRow, 0, len(sess.Forecast)), sess.Forecast...)
	}

	if sess.Missing(dataset.KindModels) {
		plan.Skipped = append(plan.Skipped, dataset.KindModels)
	} else {
		plan.Models = append(make([]dataset.ModelRow, 0, len(sess.Models)), sess.Models...)
	}

	if sess.Missing(dataset.KindImputed) {
		plan.Skipped = append(plan.Skipped, dataset.KindImputed)
	} else {
		plan.Imputed = append(make([]dataset.ImputedRow, 0, len(sess.Imputed)), sess.Imputed...)
	}

	return plan
}
