package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pulsegrid/domain/core"
	"pulsegrid/domain/series"
	"pulsegrid/internal/brief"
	"pulsegrid/internal/metrics"
)

type reportRequest struct {
	Country    string                       `json:"country" binding:"required"`
	Indicators map[string]series.TimeSeries `json:"indicators" binding:"required"`
	Format     string                       `json:"format"` // "markdown" (default) or "html"
}

// handleReport builds the full dashboard report and serializes its insight
// lists into an intelligence brief.
func (s *Server) handleReport(c *gin.Context) {
	var req reportRequest
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

	report, err := s.analysis.BuildDashboard(c.Request.Context(), country, data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	doc := brief.Build(report)
	s.rec.Inc(metrics.CounterReportsRendered)

	if req.Format == "html" {
		c.Data(http.StatusOK, "text/html; charset=utf-8", brief.RenderHTML(doc))
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(doc))
}
