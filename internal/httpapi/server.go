// Package httpapi provides the HTTP API for tripd.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tripweave/tripd/internal/auth"
	"github.com/tripweave/tripd/internal/enrichment"
	"github.com/tripweave/tripd/internal/extraction"
	"github.com/tripweave/tripd/internal/trips"
)

// Config holds HTTP server configuration.
type Config struct {
	Host        string
	Port        int
	AuthEnabled bool
	RateLimit   RateLimitConfig
}

// Server provides HTTP endpoints for tripd.
type Server struct {
	echo      *echo.Echo
	trips     trips.Store
	extractor *extraction.Service
	enricher  *enrichment.Enricher
	sessions  *auth.Manager
	limiter   *rateLimiter
	logger    *zap.Logger
	config    *Config
}

// NewServer creates a new HTTP server.
func NewServer(store trips.Store, extractor *extraction.Service, enricher *enrichment.Enricher, sessions *auth.Manager, logger *zap.Logger, cfg *Config) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("trip store cannot be nil")
	}
	if extractor == nil {
		return nil, fmt.Errorf("extraction service cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8090,
		}
	}
	if cfg.AuthEnabled && sessions == nil {
		return nil, fmt.Errorf("session manager is required when auth is enabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})
	e.Use(metricsMiddleware())

	s := &Server{
		echo:      e,
		trips:     store,
		extractor: extractor,
		enricher:  enricher,
		sessions:  sessions,
		logger:    logger,
		config:    cfg,
	}

	if cfg.RateLimit.Enabled {
		s.limiter = newRateLimiter(cfg.RateLimit)
	}

	// Register routes
	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	// Health check and metrics stay unauthenticated.
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Session issuance cannot itself require a session.
	s.echo.POST("/api/v1/sessions", s.handleCreateSession)
	s.echo.POST("/api/v1/sessions/rotate", s.handleRotateSession)

	// API v1 routes
	v1 := s.echo.Group("/api/v1")
	if s.config.AuthEnabled {
		v1.Use(s.authMiddleware())
	}
	if s.limiter != nil {
		v1.Use(s.rateLimitMiddleware())
	}

	v1.POST("/extract", s.handleExtract)

	v1.POST("/trips", s.handleCreateTrip)
	v1.GET("/trips", s.handleListTrips)
	v1.GET("/trips/:id", s.handleGetTrip)
	v1.PUT("/trips/:id", s.handleUpdateTrip)
	v1.DELETE("/trips/:id", s.handleDeleteTrip)
	v1.POST("/trips/:id/enrich", s.handleEnrichTrip)

	v1.GET("/search", s.handleSearch)

	v1.GET("/service/stats", s.handleStats)
	v1.PUT("/service/config", s.handleUpdateConfig)
}

// authMiddleware validates bearer tokens and stores the resolved user
// ID on the request context.
func (s *Server) authMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			userID, err := s.sessions.Validate(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
			}
			c.Set("user_id", userID)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
