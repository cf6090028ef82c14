package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pulsegrid/app"
	"pulsegrid/internal"
	"pulsegrid/internal/metrics"
	"pulsegrid/ports"
)

// Server is the JSON API surface over the analytics engine. Handlers accept
// series payloads, run the pure engine calls and return the structured
// results; no computation state lives in the server.
type Server struct {
	router   *gin.Engine
	analysis *app.AnalysisService
	repo     ports.SeriesRepository
	rec      metrics.Recorder
	logger   *internal.Logger
}

// Config holds server construction options.
type Config struct {
	GinMode  string
	Analysis *app.AnalysisService
	Repo     ports.SeriesRepository
	Recorder metrics.Recorder
	Logger   *internal.Logger
}

// NewServer wires the API routes.
func NewServer(cfg Config) *Server {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	if cfg.Recorder == nil {
		cfg.Recorder = metrics.Nop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = internal.DefaultLogger
	}

	s := &Server{
		router:   gin.Default(),
		analysis: cfg.Analysis,
		repo:     cfg.Repo,
		rec:      cfg.Recorder,
		logger:   cfg.Logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api/v1")
	api.POST("/descriptive", s.handleDescriptive)
	api.POST("/forecast", s.handleForecast)
	api.POST("/correlation", s.handleCorrelation)
	api.POST("/anomalies", s.handleAnomalies)
	api.POST("/causality", s.handleCausality)
	api.POST("/causality/matrix", s.handleCausalityMatrix)
	api.POST("/risk", s.handleRisk)
	api.POST("/report", s.handleReport)

	api.GET("/countries", s.handleListCountries)
	api.GET("/countries/:country/indicators", s.handleListIndicators)
	api.GET("/countries/:country/dashboard", s.handleDashboard)
}

// Run starts the server on the given port.
func (s *Server) Run(port string) error {
	addr := ":" + port
	s.logger.Info("API server listening on %s", addr)
	return s.router.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
