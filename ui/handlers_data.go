package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pulsegrid/domain/core"
	"pulsegrid/domain/series"
)

// handleListCountries lists every country with stored series.
func (s *Server) handleListCountries(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no data store configured"})
		return
	}
	countries, err := s.repo.ListCountries(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"countries": countries})
}

// handleListIndicators lists the stored indicators for one country.
func (s *Server) handleListIndicators(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no data store configured"})
		return
	}
	country, err := core.ParseCountryCode(c.Param("country"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	keys, err := s.repo.ListIndicators(c.Request.Context(), country)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"country": country, "indicators": keys})
}

// handleDashboard builds the full analysis report for a stored country.
func (s *Server) handleDashboard(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no data store configured"})
		return
	}
	country, err := core.ParseCountryCode(c.Param("country"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	keys, err := s.repo.ListIndicators(c.Request.Context(), country)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(keys) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no data for country " + country.String()})
		return
	}

	data := make(map[core.IndicatorKey]series.TimeSeries, len(keys))
	for _, k := range keys {
		ts, err := s.repo.GetSeries(c.Request.Context(), country, k)
		if err != nil {
			s.logger.Warn("failed to load %s/%s: %v", country, k, err)
			continue
		}
		data[k] = ts
	}

	report, err := s.analysis.BuildDashboard(c.Request.Context(), country, data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}
