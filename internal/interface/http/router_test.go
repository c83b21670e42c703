package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/innercalm/backend/internal/domain/analytics"
	"github.com/innercalm/backend/internal/domain/auth"
	"github.com/innercalm/backend/internal/domain/chat"
	"github.com/innercalm/backend/internal/domain/emotion"
	"github.com/innercalm/backend/internal/domain/recommendation"
	"github.com/innercalm/backend/internal/infra/analyticsrepo"
	"github.com/innercalm/backend/internal/infra/chatrepo"
	"github.com/innercalm/backend/internal/infra/config"
	"github.com/innercalm/backend/internal/infra/emotioncache"
	"github.com/innercalm/backend/internal/infra/emotionrepo"
	"github.com/innercalm/backend/internal/infra/llm/openai"
	"github.com/innercalm/backend/internal/infra/recrepo"
	"github.com/innercalm/backend/internal/infra/userrepo"
)

type stubChatClient struct {
	response string
}

func (c *stubChatClient) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	var resp openai.ChatCompletionResponse
	resp.Choices = []struct {
		Message openai.Message `json:"message"`
	}{{Message: openai.Message{Role: "assistant", Content: c.response}}}
	return resp, nil
}

func (c *stubChatClient) CreateChatCompletionStream(_ context.Context, _ openai.ChatCompletionRequest) (openai.Stream, error) {
	return nil, io.ErrUnexpectedEOF
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newServerUnderTest(t *testing.T) *http.Server {
	t.Helper()
	logger := newTestLogger()

	chatRepo := chatrepo.NewMemoryRepository()
	authSvc := auth.NewService(auth.Config{SecretKey: "test-secret", TokenTTL: time.Hour}, userrepo.NewMemoryRepository(), logger)
	emotionSvc := emotion.NewService(emotion.Config{Threshold: 0.5}, emotionrepo.NewMemoryRepository(), nil, emotioncache.NewMemoryStore(), logger)
	chatSvc := chat.NewService(chat.Config{Model: "gpt-4", MaxHistory: 20}, chatRepo, &stubChatClient{response: "I'm listening."}, emotionSvc, nil, logger)
	recSvc := recommendation.NewService(recrepo.NewMemoryRepository(), emotionSvc, logger)
	analyticsSvc := analytics.NewService(analyticsrepo.NewMemoryRepository(), emotionSvc, chatRepo, logger)

	handler := NewHandler(authSvc, chatSvc, emotionSvc, recSvc, analyticsSvc, logger)
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	return NewRouter(cfg, handler, authSvc)
}

func doJSON(server *http.Server, method, path, body, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, server *http.Server) string {
	t.Helper()
	rec := doJSON(server, http.MethodPost, "/api/auth/register",
		`{"email":"alex@example.com","username":"alex_r","password":"supersecret1","fullName":"Alex R"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp auth.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	require.Equal(t, "bearer", resp.TokenType)
	return resp.AccessToken
}

func TestRouter_HealthAndRoot(t *testing.T) {
	server := newServerUnderTest(t)

	rec := doJSON(server, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "healthy")

	rec = doJSON(server, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "InnerCalm")
}

func TestRouter_RegisterLoginAndMe(t *testing.T) {
	server := newServerUnderTest(t)
	token := registerAndLogin(t, server)

	rec := doJSON(server, http.MethodGet, "/api/auth/me", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile auth.UserView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	require.Equal(t, "alex_r", profile.Username)

	rec = doJSON(server, http.MethodPost, "/api/auth/token",
		`{"username":"alex_r","password":"supersecret1"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_DuplicateRegistrationConflicts(t *testing.T) {
	server := newServerUnderTest(t)
	registerAndLogin(t, server)

	rec := doJSON(server, http.MethodPost, "/api/auth/register",
		`{"email":"alex@example.com","username":"other_name","password":"supersecret1"}`, "")
	require.Equal(t, http.StatusConflict, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "email_exists", errBody["error"]["code"])
}

func TestRouter_RejectsMissingToken(t *testing.T) {
	server := newServerUnderTest(t)

	rec := doJSON(server, http.MethodPost, "/api/chat", `{"message":"hi"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "unauthorized", errBody["error"]["code"])
}

func TestRouter_RejectsGarbageToken(t *testing.T) {
	server := newServerUnderTest(t)

	rec := doJSON(server, http.MethodGet, "/api/auth/me", "", "not-a-token")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ChatTurnAndConversations(t *testing.T) {
	server := newServerUnderTest(t)
	token := registerAndLogin(t, server)

	rec := doJSON(server, http.MethodPost, "/api/chat", `{"message":"I feel sad today"}`, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp chat.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "I'm listening.", resp.Response)
	require.NotZero(t, resp.ConversationID)
	require.NotNil(t, resp.Emotion)

	rec = doJSON(server, http.MethodGet, "/api/chat/conversations", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "I feel sad today")

	rec = doJSON(server, http.MethodGet, "/api/chat/conversations/999", "", token)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_EmotionAnalysesAfterChat(t *testing.T) {
	server := newServerUnderTest(t)
	token := registerAndLogin(t, server)

	rec := doJSON(server, http.MethodPost, "/api/chat", `{"message":"I am so angry and frustrated"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(server, http.MethodGet, "/api/emotions/analysis", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items []emotion.Analysis `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	require.Greater(t, body.Items[0].Anger, 0.0)
}

func TestRouter_RecommendationLifecycle(t *testing.T) {
	server := newServerUnderTest(t)
	token := registerAndLogin(t, server)

	rec := doJSON(server, http.MethodPost, "/api/recommendations/generate?limit=2", "", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var generated struct {
		Items []recommendation.Recommendation `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &generated))
	require.NotEmpty(t, generated.Items)
	first := generated.Items[0]

	rec = doJSON(server, http.MethodPatch, "/api/recommendations/"+itoa64(first.ID),
		`{"isCompleted":true,"effectivenessRating":4}`, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated recommendation.Recommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.True(t, updated.IsCompleted)

	rec = doJSON(server, http.MethodGet, "/api/recommendations/summary/stats", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary recommendation.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.Equal(t, 1, summary.CompletedCount)

	rec = doJSON(server, http.MethodDelete, "/api/recommendations/"+itoa64(first.ID), "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(server, http.MethodGet, "/api/recommendations/"+itoa64(first.ID), "", token)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_AnalyticsDashboard(t *testing.T) {
	server := newServerUnderTest(t)
	token := registerAndLogin(t, server)

	rec := doJSON(server, http.MethodGet, "/api/analytics/dashboard", "", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var dashboard analytics.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dashboard))
	require.Equal(t, 30, dashboard.AnalysisPeriodDays)

	rec = doJSON(server, http.MethodGet, "/api/analytics/mood-trends", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "not enough data")
}

func TestRouter_PreferencesRoundTrip(t *testing.T) {
	server := newServerUnderTest(t)
	token := registerAndLogin(t, server)

	rec := doJSON(server, http.MethodGet, "/api/users/preferences", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(server, http.MethodPut, "/api/users/preferences", `{"theme":"dark"}`, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var prefs auth.Preferences
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prefs))
	require.Equal(t, "dark", prefs.Theme)
}

func TestRouter_CORSPreflight(t *testing.T) {
	server := newServerUnderTest(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_DeleteAccountRemovesEmotionHistory(t *testing.T) {
	logger := newTestLogger()
	chatRepo := chatrepo.NewMemoryRepository()
	emotionRepo := emotionrepo.NewMemoryRepository()
	authSvc := auth.NewService(auth.Config{SecretKey: "test-secret", TokenTTL: time.Hour}, userrepo.NewMemoryRepository(), logger)
	emotionSvc := emotion.NewService(emotion.Config{Threshold: 0.5}, emotionRepo, nil, emotioncache.NewMemoryStore(), logger)
	chatSvc := chat.NewService(chat.Config{Model: "gpt-4", MaxHistory: 20}, chatRepo, &stubChatClient{response: "I'm listening."}, emotionSvc, nil, logger)
	recSvc := recommendation.NewService(recrepo.NewMemoryRepository(), emotionSvc, logger)
	analyticsSvc := analytics.NewService(analyticsrepo.NewMemoryRepository(), emotionSvc, chatRepo, logger)
	handler := NewHandler(authSvc, chatSvc, emotionSvc, recSvc, analyticsSvc, logger)
	server := NewRouter(&config.Config{HTTP: config.HTTPConfig{Address: ":0"}}, handler, authSvc)

	token := registerAndLogin(t, server)

	rec := doJSON(server, http.MethodPost, "/api/chat", `{"message":"I feel sad and lonely today"}`, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := emotionRepo.ListByUser(context.Background(), 1, time.Time{}, 0)
	require.NoError(t, err)
	require.NotEmpty(t, stored)

	rec = doJSON(server, http.MethodDelete, "/api/users/account", "", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err = emotionRepo.ListByUser(context.Background(), 1, time.Time{}, 0)
	require.NoError(t, err)
	require.Empty(t, stored)

	rec = doJSON(server, http.MethodGet, "/api/auth/me", "", token)
	require.NotEqual(t, http.StatusOK, rec.Code)
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func itoa64(id int64) string {
	return strconv.FormatInt(id, 10)
}
