// Package http provides the HTTP server, its router and the shared middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	businessDayHTTP "github.com/allisson/storesync/internal/businessday/http"
	"github.com/allisson/storesync/internal/config"
	inventoryHTTP "github.com/allisson/storesync/internal/inventory/http"
	"github.com/allisson/storesync/internal/metrics"
	outboxHTTP "github.com/allisson/storesync/internal/outbox/http"
	"github.com/allisson/storesync/internal/session"
)

// readinessTimeout bounds the database ping of the readiness probe.
const readinessTimeout = 2 * time.Second

// Server represents the HTTP server.
type Server struct {
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new HTTP server. Call SetupRouter before Start.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter registers the middleware chain and every route of the operator API.
func (s *Server) SetupRouter(
	cfg *config.Config,
	packHandler *inventoryHTTP.PackHandler,
	businessDayHandler *businessDayHTTP.BusinessDayHandler,
	syncHandler *outboxHTTP.SyncHandler,
	metricsProvider *metrics.Provider,
) {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	v1.Use(SessionMiddleware(s.logger))
	if cfg.RateLimitEnabled {
		v1.Use(RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	packs := v1.Group("/packs")
	{
		packs.POST("", packHandler.ReceiveHandler)
		packs.GET("/:id", packHandler.GetHandler)
		packs.POST("/:id/activate", packHandler.ActivateHandler)
		packs.POST("/:id/deplete", packHandler.DepleteHandler)
		packs.POST("/:id/return", packHandler.ReturnHandler)
	}

	days := v1.Group("/business-days")
	{
		days.GET("/current", businessDayHandler.CurrentHandler)
		days.GET("/:id", businessDayHandler.GetHandler)
		days.POST("/:id/prepare-close", businessDayHandler.PrepareCloseHandler)
		days.POST("/:id/commit-close", RequireRole(session.RoleManager, s.logger), businessDayHandler.CommitCloseHandler)
		days.POST("/:id/cancel-close", RequireRole(session.RoleManager, s.logger), businessDayHandler.CancelCloseHandler)
		days.POST("/:id/requeue-sync", RequireRole(session.RoleManager, s.logger), businessDayHandler.RequeueSyncHandler)
	}

	syncGroup := v1.Group("/sync")
	syncGroup.Use(RequireRole(session.RoleManager, s.logger))
	{
		syncGroup.GET("/status", syncHandler.StatusHandler)
		syncGroup.POST("/dispatch", syncHandler.DispatchHandler)
		syncGroup.GET("/dead-letters", syncHandler.ListDeadLettersHandler)
		syncGroup.GET("/dead-letters/stats", syncHandler.DeadLetterStatsHandler)
		syncGroup.POST("/dead-letters/restore", syncHandler.RestoreManyHandler)
		syncGroup.POST("/dead-letters/:id/restore", syncHandler.RestoreHandler)
		syncGroup.DELETE("/dead-letters/:id", RequireRole(session.RoleAdmin, s.logger), syncHandler.DeleteHandler)
		syncGroup.POST("/items/:id/dead-letter", syncHandler.ManualDeadLetterHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports that the process is alive.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the local store answers.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if s.db == nil || s.db.PingContext(ctx) != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}
