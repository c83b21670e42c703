package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/innercalm/backend/internal/domain/auth"
	apperrors "github.com/innercalm/backend/pkg/errors"
)

// UpdateProfile applies partial profile changes.
func (h *Handler) UpdateProfile(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, unauthorizedError())
		return
	}
	var req auth.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidRequestError(errMessage(err), err))
		return
	}

	profile, err := h.authSvc.UpdateProfile(c.Request.Context(), claims.UserID, req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "update_failed"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, "email_exists"):
			status = http.StatusConflict
			code = "email_exists"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ChangePassword rotates the account password.
func (h *Handler) ChangePassword(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, unauthorizedError())
		return
	}
	var req auth.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidRequestError(errMessage(err), err))
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), claims.UserID, req); err != nil {
		status := http.StatusInternalServerError
		code := "update_failed"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, "invalid_credentials"):
			status = http.StatusUnauthorized
			code = "invalid_credentials"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// GetPreferences returns the user's stored preferences.
func (h *Handler) GetPreferences(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, unauthorizedError())
		return
	}

	prefs, err := h.authSvc.GetPreferences(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "fetch_failed", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// UpdatePreferences applies partial preference changes.
func (h *Handler) UpdatePreferences(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, unauthorizedError())
		return
	}
	var req auth.PreferencesUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidRequestError(errMessage(err), err))
		return
	}

	prefs, err := h.authSvc.UpdatePreferences(c.Request.Context(), claims.UserID, req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "update_failed"
		if apperrors.IsCode(err, "invalid_input") {
			status = http.StatusBadRequest
			code = "invalid_request"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// DeactivateAccount disables the account without removing its data.
func (h *Handler) DeactivateAccount(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, unauthorizedError())
		return
	}

	if err := h.authSvc.Deactivate(c.Request.Context(), claims.UserID); err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "update_failed", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account deactivated"})
}

// DeleteAccount permanently removes the account.
func (h *Handler) DeleteAccount(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, unauthorizedError())
		return
	}

	if err := h.emotionSvc.DeleteUserData(c.Request.Context(), claims.UserID); err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "delete_failed", errMessage(err), err))
		return
	}
	if err := h.authSvc.DeleteAccount(c.Request.Context(), claims.UserID); err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "delete_failed", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}
