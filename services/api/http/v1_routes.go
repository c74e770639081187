package http

import "github.com/gin-gonic/gin"

// registerV1Routes sets up the v1 API structure
// Groups: /api/v1/core, /api/v1/series, /api/v1/charts, /api/v1/downloads, /api/v1/admin
func (s *Server) registerV1Routes() {
	v1 := s.engine.Group("/api/v1")
	v1.Use(apiVersionMiddleware())

	core := v1.Group("/core")
	{
		core.GET("/regions", s.handleV1Regions)
		core.GET("/range", s.handleV1Range)
	}

	v1.GET("/dashboard", s.handleV1Dashboard)
	v1.GET("/series/:kind", s.handleV1Series)

	charts := v1.Group("/charts")
	{
		charts.GET("/timeseries", s.handleV1TimeSeriesChart)
		charts.GET("/seasonal", s.handleV1SeasonalChart)
	}

	// :kind also accepts "source" for the service's own source text
	v1.GET("/downloads/:kind", s.handleV1Download)

	admin := v1.Group("/admin")
	if s.cfg.BearerToken != "" {
		admin.Use(bearerAuthMiddleware(s.cfg.BearerToken))
	}
	{
		admin.POST("/reload", s.handleV1Reload)
	}
}

func apiVersionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-API-Version", "v1")
		c.Next()
	}
}
