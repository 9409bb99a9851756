// Package server exposes report generation over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/chrisdamba/foodwaste/internal/logging"
	"github.com/chrisdamba/foodwaste/internal/models"
	"github.com/chrisdamba/foodwaste/internal/report"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg      *models.Config
	gen      *report.Generator
	engine   *gin.Engine
	registry *prometheus.Registry
	metrics  *metrics
}

// New builds the router around gen. Each Server owns its metrics registry.
func New(gen *report.Generator) *Server {
	registry := prometheus.NewRegistry()
	s := &Server{
		cfg:      gen.Config(),
		gen:      gen,
		engine:   gin.New(),
		registry: registry,
		metrics:  newMetrics(registry),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.engine
	r.Use(gin.Recovery(), logging.GinLogger(), s.metrics.middleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = s.cfg.Server.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", logging.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", logging.RequestIDHeader, RunIDHeader}
	if len(corsConfig.AllowOrigins) > 0 {
		r.Use(cors.New(corsConfig))
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := r.Group("/api/v1")
	api.GET("/venues", s.listVenues)
	reports := api.Group("/reports", s.limitUpload())
	reports.POST("/monthly", s.monthlyReport)
	reports.POST("/weekly", s.weeklyReport)
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on the configured port until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// limitUpload caps request bodies at the configured upload size.
func (s *Server) limitUpload() gin.HandlerFunc {
	limit := s.cfg.Server.MaxUploadMB << 20
	return func(c *gin.Context) {
		if limit > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
