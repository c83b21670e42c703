package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/innercalm/backend/internal/domain/analytics"
	"github.com/innercalm/backend/internal/domain/auth"
	"github.com/innercalm/backend/internal/domain/chat"
	"github.com/innercalm/backend/internal/domain/emotion"
	"github.com/innercalm/backend/internal/domain/recommendation"
	apperrors "github.com/innercalm/backend/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	authSvc      auth.Service
	chatSvc      chat.Service
	emotionSvc   emotion.Service
	recSvc       recommendation.Service
	analyticsSvc analytics.Service
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(
	authSvc auth.Service,
	chatSvc chat.Service,
	emotionSvc emotion.Service,
	recSvc recommendation.Service,
	analyticsSvc analytics.Service,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		authSvc:      authSvc,
		chatSvc:      chatSvc,
		emotionSvc:   emotionSvc,
		recSvc:       recSvc,
		analyticsSvc: analyticsSvc,
		logger:       logger.With("component", "http.handler"),
	}
}

// Register creates a new account and returns an access token.
func (h *Handler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidRequestError(errMessage(err), err))
		return
	}

	resp, err := h.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "registration_failed"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, "email_exists"), apperrors.IsCode(err, "username_exists"):
			status = http.StatusConflict
			code = apperrors.Code(err)
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login exchanges credentials for an access token.
func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidRequestError(errMessage(err), err))
		return
	}

	resp, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "login_failed"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, "invalid_credentials"):
			status = http.StatusUnauthorized
			code = "invalid_credentials"
		case apperrors.IsCode(err, "inactive_user"):
			status = http.StatusForbidden
			code = "inactive_user"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, unauthorizedError())
		return
	}

	profile, err := h.authSvc.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "profile_failed", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, profile)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
