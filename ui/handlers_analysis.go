package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pulsegrid/domain/core"
	"pulsegrid/domain/series"
	"pulsegrid/engine/anomaly"
	"pulsegrid/engine/causality"
	"pulsegrid/engine/correlation"
	"pulsegrid/engine/descriptive"
	"pulsegrid/engine/forecast"
	"pulsegrid/engine/profile"
)

// seriesRequest is the common single-series payload.
type seriesRequest struct {
	Series series.TimeSeries `json:"series" binding:"required"`
}

// handleDescriptive computes summary statistics, CAGR, volatility, change
// and the distribution profile for one series.
func (s *Server) handleDescriptive(c *gin.Context) {
	var req seriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{"summary": descriptive.Describe(req.Series)}
	if v, ok := descriptive.CAGR(req.Series); ok {
		resp["cagr"] = v
	} else {
		resp["cagr"] = nil
	}
	if v, ok := descriptive.Volatility(req.Series); ok {
		resp["volatility"] = v
	} else {
		resp["volatility"] = nil
	}
	if ch, ok := descriptive.Change(req.Series); ok {
		resp["change"] = ch
	} else {
		resp["change"] = nil
	}
	if p, err := profile.Analyze(req.Series); err == nil {
		resp["profile"] = p
	}
	c.JSON(http.StatusOK, resp)
}

type forecastRequest struct {
	Series series.TimeSeries `json:"series" binding:"required"`
	Config *forecast.Config  `json:"config"`
}

// handleForecast runs the exponential-smoothing forecaster. Too little data
// is a 200 with a null result: the dashboard renders an empty state.
func (s *Server) handleForecast(c *gin.Context) {
	var req forecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := s.analysis.Defaults().Forecast
	if req.Config != nil {
		cfg = *req.Config
	}
	result, err := s.analysis.Forecaster().Run(req.Series, cfg)
	if err != nil {
		if core.IsInsufficientData(err) {
			c.JSON(http.StatusOK, gin.H{"forecast": nil, "reason": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"forecast": result})
}

type datasetsRequest struct {
	Datasets []series.Named `json:"datasets" binding:"required"`
}

// handleCorrelation builds the pairwise Pearson matrix plus insights.
func (s *Server) handleCorrelation(c *gin.Context) {
	var req datasetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, correlation.BuildMatrix(req.Datasets))
}

type anomalyRequest struct {
	Series series.TimeSeries `json:"series" binding:"required"`
	Config *anomaly.Config   `json:"config"`
}

// handleAnomalies scores one series for outliers.
func (s *Server) handleAnomalies(c *gin.Context) {
	var req anomalyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := s.analysis.Defaults().Anomaly
	if req.Config != nil {
		cfg = *req.Config
	}
	c.JSON(http.StatusOK, anomaly.Detect(req.Series, cfg))
}

type causalityRequest struct {
	Cause  series.TimeSeries `json:"cause" binding:"required"`
	Effect series.TimeSeries `json:"effect" binding:"required"`
	Config *causality.Config `json:"config"`
}

// handleCausality runs a single directed Granger test.
func (s *Server) handleCausality(c *gin.Context) {
	var req causalityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := s.analysis.Defaults().Causality
	if req.Config != nil {
		cfg = *req.Config
	}
	result, err := s.analysis.Tester().Test(req.Cause, req.Effect, cfg)
	if err != nil {
		if core.IsInsufficientData(err) {
			c.JSON(http.StatusOK, gin.H{"result": nil, "reason": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

type causalityMatrixRequest struct {
	Datasets []series.Named    `json:"datasets" binding:"required"`
	Config   *causality.Config `json:"config"`
}

// handleCausalityMatrix runs every ordered pairwise test.
func (s *Server) handleCausalityMatrix(c *gin.Context) {
	var req causalityMatrixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := s.analysis.Defaults().Causality
	if req.Config != nil {
		cfg = *req.Config
	}
	c.JSON(http.StatusOK, s.analysis.Tester().BuildMatrix(c.Request.Context(), req.Datasets, cfg))
}

type riskRequest struct {
	Country    string                       `json:"country" binding:"required"`
	Indicators map[string]series.TimeSeries `json:"indicators" binding:"required"`
}

// handleRisk scores the composite recession model for one country.
func (s *Server) handleRisk(c *gin.Context) {
	var req riskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	country, err := core.ParseCountryCode(req.Country)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	data := make(map[core.IndicatorKey]series.TimeSeries, len(req.Indicators))
	for k, ts := range req.Indicators {
		data[core.IndicatorKey(k)] = ts
	}

	timeline, err := s.analysis.Scorer().Score(country, data)
	if err != nil {
		if core.IsInsufficientData(err) {
			c.JSON(http.StatusOK, gin.H{"timeline": nil, "reason": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if s.repo != nil {
		if err := s.repo.SaveRiskTimeline(c.Request.Context(), timeline); err != nil {
			s.logger.Warn("failed to persist risk timeline for %s: %v", country, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"timeline": timeline})
}
