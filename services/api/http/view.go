package http

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vigilancia-chile/neumonia-monitor/services/api/dataset"
)

const dateLayout = "2006-01-02"

// view is one resolved user selection over a session.
type view struct {
	sess     *dataset.Session
	sel      dataset.Selection
	pandemic dataset.PandemicMode
	policy   dataset.ForecastTotal
	hist     []dataset.HistoricalRow
	forecast []dataset.ForecastRow
	imputed  []dataset.ImputedRow
}

// resolveView parses region, start, end and pandemic from the query string.
// On failure it writes the error response and returns false.
func (s *Server) resolveView(c *gin.Context) (*view, bool) {
	sess, ok := s.session(c)
	if !ok {
		return nil, false
	}
	v, status, err := buildView(sess, s.cfg.ForecastTotal, c.Query("region"), c.Query("start"), c.Query("end"), c.Query("pandemic"))
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return nil, false
	}
	return v, true
}

func buildView(sess *dataset.Session, policy dataset.ForecastTotal, region, startStr, endStr, pandemic string) (*view, int, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		region = dataset.TotalCountry
	}
	if !dataset.HasRegion(sess.Historical, region) {
		return nil, http.StatusNotFound, fmt.Errorf("unknown region %q", region)
	}

	start, end := dataset.DefaultRange(sess.Historical, sess.Forecast)
	if startStr != "" {
		t, err := time.Parse(dateLayout, startStr)
		if err != nil {
			return nil, http.StatusBadRequest, errors.New("invalid start date, expected YYYY-MM-DD")
		}
		start = t
	}
	if endStr != "" {
		t, err := time.Parse(dateLayout, endStr)
		if err != nil {
			return nil, http.StatusBadRequest, errors.New("invalid end date, expected YYYY-MM-DD")
		}
		end = t
	}
	if end.Before(start) {
		return nil, http.StatusBadRequest, errors.New("start must not be after end")
	}

	mode, err := dataset.ParsePandemicMode(pandemic)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	v := &view{
		sess:     sess,
		sel:      dataset.Selection{Region: region, Start: start, End: end},
		pandemic: mode,
		policy:   policy,
	}
	v.imputed = dataset.FilterImputed(sess.Imputed, v.sel)
	v.hist = dataset.ApplyPandemic(dataset.FilterHistorical(sess.Historical, v.sel), v.imputed, mode)
	v.forecast = dataset.FilterForecast(sess.Forecast, v.sel, policy)
	return v, http.StatusOK, nil
}

func (v *view) summary() dataset.Summary {
	return dataset.Summarize(v.hist, v.forecast)
}

func (v *view) modelLabel() *string {
	label, ok := dataset.ModelLabel(v.sess.Models, v.sel.Region)
	if !ok {
		return nil
	}
	return &label
}

// recent returns up to n historical rows, newest first.
func (v *view) recent(n int) []dataset.HistoricalRow {
	rows := make([]dataset.HistoricalRow, len(v.hist))
	copy(rows, v.hist)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.After(rows[j].Date) })
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

func (v *view) selectionMeta() gin.H {
	return gin.H{
		"region":                v.sel.Region,
		"start":                 v.sel.Start.Format(dateLayout),
		"end":                   v.sel.End.Format(dateLayout),
		"pandemic":              v.pandemic,
		"forecast_total_policy": v.policy,
	}
}
