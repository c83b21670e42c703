package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AnalyticsDashboard returns the aggregated progress view.
func (h *Handler) AnalyticsDashboard(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, unauthorizedError())
		return
	}

	days := parseIntQuery(c, "days", 30)
	dashboard, err := h.analyticsSvc.BuildDashboard(c.Request.Context(), claims.UserID, days)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "analytics_failed", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// MoodTrends returns the sentiment trend classification for a window.
func (h *Handler) MoodTrends(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, unauthorizedError())
		return
	}

	days := parseIntQuery(c, "days", 30)
	trend, err := h.analyticsSvc.AnalyzeMoodTrend(c.Request.Context(), claims.UserID, days)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "analytics_failed", errMessage(err), err))
		return
	}
	if trend == nil {
		c.JSON(http.StatusOK, gin.H{"trend": nil, "message": "not enough data for trend analysis"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trend": trend})
}
