package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/innercalm/backend/internal/domain/recommendation"
	apperrors "github.com/innercalm/backend/pkg/errors"
)

// GenerateRecommendations creates new personalized suggestions.
func (h *Handler) GenerateRecommendations(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, unauthorizedError())
		return
	}

	limit := parseIntQuery(c, "limit", 3)
	recs, err := h.recSvc.Generate(c.Request.Context(), claims.UserID, limit)
	if err != nil {
		abortWithError(c, recommendationError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": recs})
}

// ListRecommendations returns stored suggestions, optionally filtered by
// completion state.
func (h *Handler) ListRecommendations(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, unauthorizedError())
		return
	}

	filter := recommendation.ListFilter{
		Limit:  parseIntQuery(c, "limit", 20),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if raw := c.Query("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			abortWithError(c, invalidRequestError("completed must be true or false", err))
			return
		}
		filter.Completed = &completed
	}

	recs, err := h.recSvc.List(c.Request.Context(), claims.UserID, filter)
	if err != nil {
		abortWithError(c, recommendationError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": recs})
}

// GetRecommendation returns one suggestion.
func (h *Handler) GetRecommendation(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, unauthorizedError())
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, invalidRequestError("invalid recommendation id", err))
		return
	}

	rec, err := h.recSvc.Get(c.Request.Context(), claims.UserID, id)
	if err != nil {
		abortWithError(c, recommendationError(err))
		return
	}
	c.JSON(http.StatusOK, rec)
}

// UpdateRecommendation marks completion, rating or notes.
func (h *Handler) UpdateRecommendation(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, unauthorizedError())
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, invalidRequestError("invalid recommendation id", err))
		return
	}
	var update recommendation.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		abortWithError(c, invalidRequestError(errMessage(err), err))
		return
	}

	rec, err := h.recSvc.Update(c.Request.Context(), claims.UserID, id, update)
	if err != nil {
		abortWithError(c, recommendationError(err))
		return
	}
	c.JSON(http.StatusOK, rec)
}

// DeleteRecommendation removes a suggestion.
func (h *Handler) DeleteRecommendation(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, unauthorizedError())
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, invalidRequestError("invalid recommendation id", err))
		return
	}

	if err := h.recSvc.Delete(c.Request.Context(), claims.UserID, id); err != nil {
		abortWithError(c, recommendationError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "recommendation deleted"})
}

// RecommendationSummary returns completion and effectiveness statistics.
func (h *Handler) RecommendationSummary(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, unauthorizedError())
		return
	}

	summary, err := h.recSvc.Summarize(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, recommendationError(err))
		return
	}
	c.JSON(http.StatusOK, summary)
}

func recommendationError(err error) *HTTPError {
	status := http.StatusInternalServerError
	code := "recommendation_failed"
	switch {
	case apperrors.IsCode(err, "invalid_input"):
		status = http.StatusBadRequest
		code = "invalid_request"
	case apperrors.IsCode(err, "recommendation_not_found"):
		status = http.StatusNotFound
		code = "not_found"
	}
	return NewHTTPError(status, code, errMessage(err), err)
}
