package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vigilancia-chile/neumonia-monitor/services/api/config"
	"github.com/vigilancia-chile/neumonia-monitor/services/api/dataset"
	"github.com/vigilancia-chile/neumonia-monitor/services/api/logging"
)

// Server bundles router and dependencies for the dashboard API.
type Server struct {
	cfg        config.Config
	source     dataset.Source
	cache      *dataset.Cache
	logger     *zap.Logger
	engine     *gin.Engine
	sourceCode []byte
}

// New constructs a server with routes and middleware. sourceCode is served
// verbatim by the source download.
func New(cfg config.Config, source dataset.Source, cache *dataset.Cache, logger *zap.Logger, sourceCode []byte) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logging.Gin(logger))
	engine.Use(corsMiddleware())
	engine.SetHTMLTemplate(pageTemplate)

	server := &Server{
		cfg:        cfg,
		source:     source,
		cache:      cache,
		logger:     logger,
		engine:     engine,
		sourceCode: sourceCode,
	}
	server.registerRoutes()
	server.registerV1Routes()
	return server
}

// Engine exposes the underlying gin engine (for tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts the HTTP server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr(),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/", s.handlePage)
}

func bearerAuthMiddleware(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if token != expected {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	sess, err := s.cache.Session(ctx, s.source)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"source":    sess.Source,
		"loaded_at": sess.LoadedAt.Format(time.RFC3339),
		"warnings":  len(sess.Warnings),
	})
}

// session returns the cached session, answering 500 when the load fails.
func (s *Server) session(c *gin.Context) (*dataset.Session, bool) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	sess, err := s.cache.Session(ctx, s.source)
	if err != nil {
		s.logger.Error("dataset load failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return sess, true
}
