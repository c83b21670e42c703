package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ListEmotionAnalyses returns the user's recent emotion analyses.
func (h *Handler) ListEmotionAnalyses(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, unauthorizedError())
		return
	}

	days := parseIntQuery(c, "days", 30)
	limit := parseIntQuery(c, "limit", 50)
	since := time.Now().UTC().AddDate(0, 0, -days)

	analyses, err := h.emotionSvc.ListAnalyses(c.Request.Context(), claims.UserID, since, limit)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "fetch_failed", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": analyses})
}

// ListEmotionPatterns returns recurring emotional patterns over a window.
func (h *Handler) ListEmotionPatterns(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, unauthorizedError())
		return
	}

	days := parseIntQuery(c, "days", 30)
	patterns, err := h.emotionSvc.DetectPatterns(c.Request.Context(), claims.UserID, days)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "fetch_failed", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": patterns})
}
