package http

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vigilancia-chile/neumonia-monitor/services/api/dataset"
	"github.com/vigilancia-chile/neumonia-monitor/services/api/render"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("").Funcs(template.FuncMap{
	"count": dataset.FormatCount,
	"round": func(v float64) string { return dataset.FormatCount(int(v)) },
	"day":   func(t time.Time) string { return t.Format("02-01-2006") },
}).ParseFS(templateFS, "templates/*.html"))

type downloadLink struct {
	Label string
	URL   string
}

type pageData struct {
	Error     string
	Regions   []string
	Region    string
	Start     string
	End       string
	Min       string
	Max       string
	Pandemic  dataset.PandemicMode
	Modes     []dataset.PandemicMode
	KPIs      gin.H
	Model     string
	HasModel  bool
	Forecast  []dataset.ForecastRow
	Recent    []dataset.HistoricalRow
	Warnings  []string
	Source    string
	LoadedAt  string
	Downloads []downloadLink

	TimeSeriesURL string
	SeasonalURL   string
	HasTimeSeries bool
	HasSeasonal   bool
}

// handlePage renders the HTML dashboard for the selection in the query string
// GET /?region=...&start=...&end=...&pandemic=...
func (s *Server) handlePage(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}

	data := pageData{
		Regions:  dataset.Regions(sess.Historical),
		Modes:    []dataset.PandemicMode{dataset.PandemicObserved, dataset.PandemicHidden, dataset.PandemicImputed},
		Warnings: sess.Warnings,
		Source:   sess.Source,
		LoadedAt: sess.LoadedAt.Format("02-01-2006 15:04"),
	}
	if first, last, found := dataset.Bounds(sess.Historical, sess.Forecast); found {
		data.Min, data.Max = first.Format(dateLayout), last.Format(dateLayout)
	}
	for _, k := range dataset.Kinds {
		if sess.Missing(k) {
			continue
		}
		data.Downloads = append(data.Downloads,
			downloadLink{Label: k.FileName(), URL: "/api/v1/downloads/" + string(k)},
			downloadLink{Label: k.FileName() + " (xlsx)", URL: "/api/v1/downloads/" + string(k) + "?format=xlsx"},
		)
	}
	if len(s.sourceCode) > 0 {
		data.Downloads = append(data.Downloads, downloadLink{Label: sourceFileName, URL: "/api/v1/downloads/source"})
	}

	v, status, err := buildView(sess, s.cfg.ForecastTotal, c.Query("region"), c.Query("start"), c.Query("end"), c.Query("pandemic"))
	if err != nil {
		data.Error = err.Error()
		c.HTML(status, "dashboard.html", data)
		return
	}

	data.Region = v.sel.Region
	data.Start = v.sel.Start.Format(dateLayout)
	data.End = v.sel.End.Format(dateLayout)
	data.Pandemic = v.pandemic
	data.KPIs = kpis(v.summary())
	data.Forecast = v.forecast
	data.Recent = v.recent(s.cfg.RecentRows)
	if label := v.modelLabel(); label != nil {
		data.Model, data.HasModel = *label, true
	}

	q := url.Values{}
	q.Set("region", data.Region)
	q.Set("start", data.Start)
	q.Set("end", data.End)
	q.Set("pandemic", string(data.Pandemic))
	data.TimeSeriesURL = "/api/v1/charts/timeseries?" + q.Encode()
	data.SeasonalURL = "/api/v1/charts/seasonal?" + q.Encode()
	data.HasTimeSeries = render.CanDrawTimeSeries(v.hist, v.forecast)
	data.HasSeasonal = render.CanDrawSeasonal(v.hist)

	c.HTML(http.StatusOK, "dashboard.html", data)
}
