package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vigilancia-chile/neumonia-monitor/services/api/dataset"
)

// handleV1Regions returns the selectable regions, country total first
// GET /api/v1/core/regions
func (s *Server) handleV1Regions(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}

	regions := dataset.Regions(sess.Historical)
	c.JSON(http.StatusOK, gin.H{
		"data": regions,
		"meta": gin.H{
			"count": len(regions),
		},
	})
}

// handleV1Range returns the data bounds and the default date window
// GET /api/v1/core/range
func (s *Server) handleV1Range(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}

	first, last, found := dataset.Bounds(sess.Historical, sess.Forecast)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no data loaded"})
		return
	}
	start, end := dataset.DefaultRange(sess.Historical, sess.Forecast)

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"min":           first.Format(dateLayout),
			"max":           last.Format(dateLayout),
			"default_start": start.Format(dateLayout),
			"default_end":   end.Format(dateLayout),
		},
	})
}

// handleV1Dashboard returns KPIs, model label and tables for a selection
// GET /api/v1/dashboard?region=Total%20País&start=2017-01-01&end=2025-12-31&pandemic=observed
func (s *Server) handleV1Dashboard(c *gin.Context) {
	v, ok := s.resolveView(c)
	if !ok {
		return
	}

	summary := v.summary()
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"summary":  summary,
			"kpis":     kpis(summary),
			"model":    v.modelLabel(),
			"forecast": v.forecast,
			"recent":   v.recent(s.cfg.RecentRows),
		},
		"meta": gin.H{
			"selection": v.selectionMeta(),
			"warnings":  v.sess.Warnings,
			"source":    v.sess.Source,
			"loaded_at": v.sess.LoadedAt.Format(time.RFC3339),
		},
	})
}

// handleV1Series returns one filtered table
// GET /api/v1/series/:kind  (historical, forecast, imputed, models)
func (s *Server) handleV1Series(c *gin.Context) {
	kind, err := dataset.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	v, ok := s.resolveView(c)
	if !ok {
		return
	}

	var data any
	count := 0
	switch kind {
	case dataset.KindHistorical:
		data, count = v.hist, len(v.hist)
	case dataset.KindForecast:
		data, count = v.forecast, len(v.forecast)
	case dataset.KindImputed:
		data, count = v.imputed, len(v.imputed)
	case dataset.KindModels:
		models := make([]dataset.ModelRow, 0, 1)
		for _, m := range v.sess.Models {
			if m.Region == v.sel.Region {
				models = append(models, m)
			}
		}
		data, count = models, len(models)
	}

	meta := gin.H{
		"selection": v.selectionMeta(),
		"count":     count,
	}
	if count == 0 {
		meta["message"] = "no data for this selection"
	}
	c.JSON(http.StatusOK, gin.H{"data": data, "meta": meta})
}

// kpis formats the summary for display.
func kpis(s dataset.Summary) gin.H {
	out := gin.H{
		"projected_peak": s.ProjectedPeakLabel(),
	}
	if !s.Available {
		out["mean"] = dataset.NotAvailable
		out["total"] = dataset.NotAvailable
		out["peak"] = dataset.NotAvailable
		out["last_date"] = dataset.NotAvailable
		out["last_cases"] = dataset.NotAvailable
		return out
	}
	out["mean"] = dataset.FormatCount(s.Mean)
	out["total"] = dataset.FormatCount(s.Total)
	out["peak"] = dataset.FormatCount(s.Peak)
	out["last_date"] = s.LastDate.Format("02-01-2006")
	out["last_cases"] = dataset.FormatCount(*s.LastCases)
	return out
}
