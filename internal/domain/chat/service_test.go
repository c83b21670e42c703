package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/innercalm/backend/internal/domain/emotion"
	"github.com/innercalm/backend/internal/infra/llm/openai"
	apperrors "github.com/innercalm/backend/pkg/errors"
)

type stubClient struct {
	response  string
	err       error
	streamErr error
	lastReq   openai.ChatCompletionRequest
	calls     int
}

func (c *stubClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.calls++
	c.lastReq = req
	if c.err != nil {
		return openai.ChatCompletionResponse{}, c.err
	}
	var resp openai.ChatCompletionResponse
	resp.Choices = []struct {
		Message openai.Message `json:"message"`
	}{{Message: openai.Message{Role: "assistant", Content: c.response}}}
	resp.Usage = openai.Usage{PromptTokens: 12, CompletionTokens: 8, TotalTokens: 20}
	return resp, nil
}

func (c *stubClient) CreateChatCompletionStream(_ context.Context, req openai.ChatCompletionRequest) (openai.Stream, error) {
	c.calls++
	c.lastReq = req
	if c.streamErr != nil {
		return nil, c.streamErr
	}
	return &stubStream{parts: strings.Split(c.response, " ")}, nil
}

type stubStream struct {
	parts []string
	idx   int
}

func (s *stubStream) Recv() (openai.ChatCompletionStreamChunk, error) {
	if s.idx >= len(s.parts) {
		return openai.ChatCompletionStreamChunk{}, io.EOF
	}
	part := s.parts[s.idx]
	if s.idx > 0 {
		part = " " + part
	}
	s.idx++
	var chunk openai.ChatCompletionStreamChunk
	chunk.Choices = []struct {
		Delta        openai.Message `json:"delta"`
		FinishReason string         `json:"finish_reason"`
	}{{Delta: openai.Message{Content: part}}}
	return chunk, nil
}

func (s *stubStream) Close() error { return nil }

type stubEmotionService struct {
	analysis emotion.Analysis
	err      error
	calls    int
}

func (s *stubEmotionService) Analyze(_ context.Context, userID, messageID int64, _ string) (emotion.Analysis, error) {
	s.calls++
	if s.err != nil {
		return emotion.Analysis{}, s.err
	}
	out := s.analysis
	out.UserID = userID
	out.MessageID = messageID
	return out, nil
}

func (s *stubEmotionService) ListAnalyses(context.Context, int64, time.Time, int) ([]emotion.Analysis, error) {
	return nil, nil
}

func (s *stubEmotionService) DetectPatterns(context.Context, int64, int) ([]emotion.Pattern, error) {
	return nil, nil
}

func (s *stubEmotionService) DeleteUserData(context.Context, int64) error {
	return nil
}

type memoryRepo struct {
	mu            sync.Mutex
	conversations map[int64]Conversation
	messages      map[int64][]Message
	nextConv      int64
	nextMsg       int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		conversations: make(map[int64]Conversation),
		messages:      make(map[int64][]Message),
	}
}

func (r *memoryRepo) CreateConversation(_ context.Context, userID int64, publicID, title string) (Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextConv++
	conv := Conversation{ID: r.nextConv, PublicID: publicID, UserID: userID, Title: title, IsActive: true, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	r.conversations[conv.ID] = conv
	return conv, nil
}

func (r *memoryRepo) GetConversation(_ context.Context, id, userID int64) (Conversation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.conversations[id]
	if !ok || conv.UserID != userID {
		return Conversation{}, false, nil
	}
	return conv, true, nil
}

func (r *memoryRepo) ListConversations(_ context.Context, userID int64, _ int) ([]Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Conversation
	for _, conv := range r.conversations {
		if conv.UserID == userID {
			out = append(out, conv)
		}
	}
	return out, nil
}

func (r *memoryRepo) TouchConversation(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conv, ok := r.conversations[id]; ok {
		conv.UpdatedAt = time.Now()
		r.conversations[id] = conv
	}
	return nil
}

func (r *memoryRepo) DeleteConversation(_ context.Context, id, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conv, ok := r.conversations[id]; ok && conv.UserID == userID {
		delete(r.conversations, id)
		delete(r.messages, id)
	}
	return nil
}

func (r *memoryRepo) AddMessage(_ context.Context, conversationID int64, content string, isUser bool) (Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextMsg++
	msg := Message{ID: r.nextMsg, ConversationID: conversationID, Content: content, IsUserMessage: isUser, Timestamp: time.Now()}
	r.messages[conversationID] = append(r.messages[conversationID], msg)
	return msg, nil
}

func (r *memoryRepo) ListMessages(_ context.Context, conversationID int64, _ int) ([]Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages[conversationID]))
	copy(out, r.messages[conversationID])
	return out, nil
}

func (r *memoryRepo) CountMessages(_ context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for id, conv := range r.conversations {
		if conv.UserID == userID {
			total += int64(len(r.messages[id]))
		}
	}
	return total, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sadAnalysis() emotion.Analysis {
	return emotion.Analysis{
		Sadness:        0.82,
		SentimentScore: -0.82,
		SentimentLabel: "negative",
		Confidence:     0.82,
		AnalyzedAt:     time.Now(),
	}
}

func newTestService(repo Repository, client ChatClient, emotions emotion.Service) Service {
	cfg := Config{Model: "gpt-4", Temperature: 0.7, MaxHistory: 20}
	return NewService(cfg, repo, client, emotions, nil, testLogger())
}

func TestSendCreatesConversationAndStoresTurn(t *testing.T) {
	repo := newMemoryRepo()
	client := &stubClient{response: "That sounds really hard. I'm here with you."}
	emotions := &stubEmotionService{analysis: sadAnalysis()}
	svc := newTestService(repo, client, emotions)

	resp, err := svc.Send(context.Background(), 1, Request{Message: "I feel so sad lately"})
	require.NoError(t, err)
	require.Equal(t, client.response, resp.Response)
	require.NotZero(t, resp.ConversationID)
	require.Equal(t, "emotion_regulation", resp.TherapeuticApproach)
	require.Equal(t, "validating_supportive", resp.ResponseTone)
	require.False(t, resp.CrisisDetected)
	require.NotNil(t, resp.Emotion)
	require.NotNil(t, resp.Usage)
	require.Equal(t, 20, resp.Usage.TotalTokens)

	msgs, err := repo.ListMessages(context.Background(), resp.ConversationID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.True(t, msgs[0].IsUserMessage)
	require.False(t, msgs[1].IsUserMessage)
}

func TestSendReusesExistingConversation(t *testing.T) {
	repo := newMemoryRepo()
	client := &stubClient{response: "ok"}
	svc := newTestService(repo, client, nil)

	first, err := svc.Send(context.Background(), 1, Request{Message: "hello"})
	require.NoError(t, err)

	second, err := svc.Send(context.Background(), 1, Request{Message: "still here", ConversationID: first.ConversationID})
	require.NoError(t, err)
	require.Equal(t, first.ConversationID, second.ConversationID)

	msgs, err := repo.ListMessages(context.Background(), first.ConversationID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
}

func TestSendRejectsForeignConversation(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &stubClient{response: "ok"}, nil)

	first, err := svc.Send(context.Background(), 1, Request{Message: "mine"})
	require.NoError(t, err)

	_, err = svc.Send(context.Background(), 2, Request{Message: "theirs", ConversationID: first.ConversationID})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "conversation_not_found"))
}

func TestSendEmptyMessage(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &stubClient{}, nil)
	_, err := svc.Send(context.Background(), 1, Request{Message: "   "})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestSendFallsBackWhenModelFails(t *testing.T) {
	repo := newMemoryRepo()
	client := &stubClient{err: errors.New("boom")}
	svc := newTestService(repo, client, nil)

	resp, err := svc.Send(context.Background(), 1, Request{Message: "are you there?"})
	require.NoError(t, err)
	require.Equal(t, fallbackResponse, resp.Response)
	require.Nil(t, resp.Usage)

	msgs, err := repo.ListMessages(context.Background(), resp.ConversationID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, fallbackResponse, msgs[1].Content)
}

func TestSendCrisisShortCircuitsModel(t *testing.T) {
	repo := newMemoryRepo()
	client := &stubClient{response: "should not be used"}
	emotions := &stubEmotionService{analysis: sadAnalysis()}
	svc := newTestService(repo, client, emotions)

	resp, err := svc.Send(context.Background(), 1, Request{Message: "I want to die, nothing helps"})
	require.NoError(t, err)
	require.True(t, resp.CrisisDetected)
	require.Contains(t, resp.Response, "988")
	require.Equal(t, 0, client.calls)
	require.Equal(t, 1, emotions.calls)
}

func TestSendSurvivesEmotionFailure(t *testing.T) {
	repo := newMemoryRepo()
	client := &stubClient{response: "ok"}
	emotions := &stubEmotionService{err: errors.New("classifier down")}
	svc := newTestService(repo, client, emotions)

	resp, err := svc.Send(context.Background(), 1, Request{Message: "rough day"})
	require.NoError(t, err)
	require.Nil(t, resp.Emotion)
	require.Equal(t, "person_centered", resp.TherapeuticApproach)
}

func TestSendIncludesSystemPromptAndHistory(t *testing.T) {
	repo := newMemoryRepo()
	client := &stubClient{response: "ok"}
	svc := newTestService(repo, client, nil)

	first, err := svc.Send(context.Background(), 1, Request{Message: "first message"})
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), 1, Request{Message: "second message", ConversationID: first.ConversationID})
	require.NoError(t, err)

	require.NotEmpty(t, client.lastReq.Messages)
	require.Equal(t, "system", client.lastReq.Messages[0].Role)
	require.Contains(t, client.lastReq.Messages[0].Content, "Inner Ally")

	var contents []string
	for _, msg := range client.lastReq.Messages[1:] {
		contents = append(contents, msg.Content)
	}
	require.Contains(t, contents, "first message")
	require.Contains(t, contents, "second message")
}

func TestSendStreamDeliversChunksAndPersists(t *testing.T) {
	repo := newMemoryRepo()
	client := &stubClient{response: "one two three"}
	svc := newTestService(repo, client, nil)

	out, err := svc.SendStream(context.Background(), 1, Request{Message: "stream please"})
	require.NoError(t, err)

	var builder strings.Builder
	var final StreamChunk
	for chunk := range out {
		builder.WriteString(chunk.Delta)
		if chunk.Completed {
			final = chunk
		}
	}
	require.Equal(t, "one two three", builder.String())
	require.True(t, final.Completed)
	require.NotZero(t, final.ConversationID)
	require.NotZero(t, final.MessageID)

	msgs, err := repo.ListMessages(context.Background(), final.ConversationID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "one two three", msgs[1].Content)
}

func TestSendStreamFallsBackWhenStreamFails(t *testing.T) {
	repo := newMemoryRepo()
	client := &stubClient{streamErr: errors.New("stream down")}
	svc := newTestService(repo, client, nil)

	out, err := svc.SendStream(context.Background(), 1, Request{Message: "anyone?"})
	require.NoError(t, err)

	var builder strings.Builder
	for chunk := range out {
		builder.WriteString(chunk.Delta)
	}
	require.Equal(t, fallbackResponse, builder.String())
}

func TestGetConversationReturnsMessages(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &stubClient{response: "ok"}, nil)

	sent, err := svc.Send(context.Background(), 1, Request{Message: "hello there"})
	require.NoError(t, err)

	view, err := svc.GetConversation(context.Background(), 1, sent.ConversationID)
	require.NoError(t, err)
	require.Equal(t, sent.ConversationID, view.ID)
	require.Len(t, view.Messages, 2)

	_, err = svc.GetConversation(context.Background(), 2, sent.ConversationID)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "conversation_not_found"))
}

func TestDeleteConversation(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &stubClient{response: "ok"}, nil)

	sent, err := svc.Send(context.Background(), 1, Request{Message: "hello"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteConversation(context.Background(), 1, sent.ConversationID))

	err = svc.DeleteConversation(context.Background(), 1, sent.ConversationID)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "conversation_not_found"))
}

func TestConversationTitleTruncates(t *testing.T) {
	require.Equal(t, "short", conversationTitle("short"))
	long := strings.Repeat("a", 80)
	title := conversationTitle(long)
	require.Equal(t, strings.Repeat("a", 50)+"...", title)
}
