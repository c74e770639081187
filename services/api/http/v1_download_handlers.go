package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/vigilancia-chile/neumonia-monitor/services/api/dataset"
)

const (
	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	sourceFileName  = "main.go"
)

// handleV1Download serves an input artifact, or the service's own source
// GET /api/v1/downloads/:kind?format=csv|xlsx
func (s *Server) handleV1Download(c *gin.Context) {
	if c.Param("kind") == "source" {
		s.handleV1SourceDownload(c)
		return
	}

	kind, err := dataset.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid format, expected csv or xlsx"})
		return
	}

	sess, ok := s.session(c)
	if !ok {
		return
	}
	if sess.Missing(kind) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("%s is not available", kind.FileName())})
		return
	}

	if format == "xlsx" {
		s.serveXLSX(c, sess, kind)
		return
	}

	if opener, ok := s.source.(dataset.RawOpener); ok {
		rc, err := opener.Open(c.Request.Context(), kind)
		if err == nil {
			defer rc.Close()
			body, err := io.ReadAll(rc)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			attachment(c, kind.FileName())
			c.Data(http.StatusOK, csvContentType, body)
			return
		}
		if !errors.Is(err, dataset.ErrMissing) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		// removed since load; fall back to the loaded copy
		s.logger.Warn("artifact vanished after load", zap.String("dataset", string(kind)))
	}

	var buf bytes.Buffer
	if err := dataset.WriteCSV(&buf, sess, kind); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	attachment(c, kind.FileName())
	c.Data(http.StatusOK, csvContentType, buf.Bytes())
}

func (s *Server) serveXLSX(c *gin.Context, sess *dataset.Session, kind dataset.Kind) {
	records, err := dataset.Records(sess, kind)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	for i, rec := range records {
		row := make([]any, len(rec))
		for j, cell := range rec {
			if i > 0 {
				if v, err := strconv.ParseFloat(cell, 64); err == nil {
					row[j] = v
					continue
				}
			}
			row[j] = cell
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	attachment(c, strings.TrimSuffix(kind.FileName(), ".csv")+".xlsx")
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// handleV1SourceDownload returns the service's own source text verbatim
// GET /api/v1/downloads/source
func (s *Server) handleV1SourceDownload(c *gin.Context) {
	if len(s.sourceCode) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "source not available"})
		return
	}
	attachment(c, sourceFileName)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", s.sourceCode)
}

// handleV1Reload drops the cached session and loads it again
// POST /api/v1/admin/reload
func (s *Server) handleV1Reload(c *gin.Context) {
	s.cache.Invalidate(s.source)

	sess, ok := s.session(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"source":     sess.Source,
			"loaded_at":  sess.LoadedAt.Format(time.RFC3339),
			"historical": len(sess.Historical),
			"forecast":   len(sess.Forecast),
			"models":     len(sess.Models),
			"imputed":    len(sess.Imputed),
		},
		"meta": gin.H{
			"warnings": sess.Warnings,
		},
	})
}

func attachment(c *gin.Context, name string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
}
