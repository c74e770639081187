package http

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vigilancia-chile/neumonia-monitor/services/api/render"
)

// handleV1TimeSeriesChart draws observed cases with the forecast overlay
// GET /api/v1/charts/timeseries?region=...&format=png
func (s *Server) handleV1TimeSeriesChart(c *gin.Context) {
	s.serveChart(c, func(v *view, f render.Format, buf *bytes.Buffer) error {
		return render.TimeSeries(buf, f, v.hist, v.forecast)
	})
}

// handleV1SeasonalChart draws the year-over-year seasonal comparison
// GET /api/v1/charts/seasonal?region=...&format=svg
func (s *Server) handleV1SeasonalChart(c *gin.Context) {
	s.serveChart(c, func(v *view, f render.Format, buf *bytes.Buffer) error {
		return render.Seasonal(buf, f, v.hist)
	})
}

func (s *Server) serveChart(c *gin.Context, draw func(*view, render.Format, *bytes.Buffer) error) {
	format, err := render.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v, ok := s.resolveView(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := draw(v, format, &buf); err != nil {
		if errors.Is(err, render.ErrNoData) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     err.Error(),
				"selection": v.selectionMeta(),
			})
			return
		}
		s.logger.Error("chart render failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
