package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/innercalm/backend/internal/domain/analytics"
	"github.com/innercalm/backend/internal/domain/chat"
	apperrors "github.com/innercalm/backend/pkg/errors"
)

// SendMessage handles one chat turn.
func (h *Handler) SendMessage(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, unauthorizedError())
		return
	}
	var req chat.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidRequestError(errMessage(err), err))
		return
	}

	resp, err := h.chatSvc.Send(c.Request.Context(), claims.UserID, req)
	if err != nil {
		abortWithError(c, chatError(err))
		return
	}

	if resp.CrisisDetected {
		h.trackCrisisEvent(c, claims.UserID, resp.ConversationID)
	}

	c.JSON(http.StatusOK, resp)
}

// StreamMessage streams the assistant reply using Server-Sent Events.
func (h *Handler) StreamMessage(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, unauthorizedError())
		return
	}
	var req chat.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidRequestError(errMessage(err), err))
		return
	}

	stream, err := h.chatSvc.SendStream(c.Request.Context(), claims.UserID, req)
	if err != nil {
		abortWithError(c, chatError(err))
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "stream_unsupported", "streaming not supported", nil))
		return
	}

	for chunk := range stream {
		payload, err := json.Marshal(chunk)
		if err != nil {
			h.logger.Error("marshal chunk failed", "error", err)
			continue
		}
		c.Writer.Write([]byte("data: "))
		c.Writer.Write(payload)
		c.Writer.Write([]byte("\n\n"))
		flusher.Flush()
	}
}

// ListConversations returns the user's active conversations.
func (h *Handler) ListConversations(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, unauthorizedError())
		return
	}

	limit := parseIntQuery(c, "limit", 20)
	conversations, err := h.chatSvc.ListConversations(c.Request.Context(), claims.UserID, limit)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "fetch_failed", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": conversations})
}

// GetConversation returns one conversation with its messages.
func (h *Handler) GetConversation(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, unauthorizedError())
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, invalidRequestError("invalid conversation id", err))
		return
	}

	view, err := h.chatSvc.GetConversation(c.Request.Context(), claims.UserID, id)
	if err != nil {
		abortWithError(c, chatError(err))
		return
	}
	c.JSON(http.StatusOK, view)
}

// DeleteConversation removes a conversation and its history.
func (h *Handler) DeleteConversation(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, unauthorizedError())
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, invalidRequestError("invalid conversation id", err))
		return
	}

	if err := h.chatSvc.DeleteConversation(c.Request.Context(), claims.UserID, id); err != nil {
		abortWithError(c, chatError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "conversation deleted"})
}

func (h *Handler) trackCrisisEvent(c *gin.Context, userID, conversationID int64) {
	if h.analyticsSvc == nil {
		return
	}
	_, err := h.analyticsSvc.TrackEvent(c.Request.Context(), analytics.Event{
		UserID:         userID,
		ConversationID: conversationID,
		Type:           "crisis_detected",
		Name:           "crisis keywords in message",
		Severity:       analytics.SeverityCritical,
	})
	if err != nil {
		h.logger.Error("track crisis event failed", "error", err, "user_id", userID)
	}
}

func chatError(err error) *HTTPError {
	status := http.StatusInternalServerError
	code := "chat_failed"
	switch {
	case apperrors.IsCode(err, "invalid_input"):
		status = http.StatusBadRequest
		code = "invalid_request"
	case apperrors.IsCode(err, "conversation_not_found"):
		status = http.StatusNotFound
		code = "not_found"
	case apperrors.IsCode(err, "llm_error"):
		status = http.StatusBadGateway
		code = "llm_error"
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
