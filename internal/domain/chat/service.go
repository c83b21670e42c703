package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/innercalm/backend/internal/domain/emotion"
	"github.com/innercalm/backend/internal/infra/llm/openai"
	apperrors "github.com/innercalm/backend/pkg/errors"
	"github.com/innercalm/backend/pkg/metrics"
)

// Service exposes the conversational support workflows.
type Service interface {
	Send(ctx context.Context, userID int64, req Request) (Response, error)
	SendStream(ctx context.Context, userID int64, req Request) (<-chan StreamChunk, error)
	ListConversations(ctx context.Context, userID int64, limit int) ([]Conversation, error)
	GetConversation(ctx context.Context, userID, conversationID int64) (ConversationView, error)
	DeleteConversation(ctx context.Context, userID, conversationID int64) error
}

type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateChatCompletionStream(ctx context.Context, req openai.ChatCompletionRequest) (openai.Stream, error)
}

type service struct {
	cfg      Config
	repo     Repository
	client   ChatClient
	emotions emotion.Service
	personas *PersonaCatalog
	counter  *tokenCounter
	logger   *slog.Logger
}

// NewService constructs a Service. emotions may be nil, in which case turns
// are not analyzed.
func NewService(cfg Config, repo Repository, client ChatClient, emotions emotion.Service, personas *PersonaCatalog, logger *slog.Logger) Service {
	if cfg.TokenBudget <= 0 {
		cfg.TokenBudget = defaultTokenBudget
	}
	if personas == nil {
		personas = builtinCatalog()
	}
	return &service{
		cfg:      cfg,
		repo:     repo,
		client:   client,
		emotions: emotions,
		personas: personas,
		counter:  newTokenCounter(cfg.Model),
		logger:   logger.With("component", "chat.service"),
	}
}

func (s *service) Send(ctx context.Context, userID int64, req Request) (Response, error) {
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return Response{}, apperrors.Wrap("invalid_input", "message cannot be empty", nil)
	}

	conv, err := s.resolveConversation(ctx, userID, req.ConversationID, text)
	if err != nil {
		return Response{}, err
	}

	userMsg, err := s.repo.AddMessage(ctx, conv.ID, text, true)
	if err != nil {
		return Response{}, apperrors.Wrap("chat_error", "store user message failed", err)
	}

	analysis := s.analyze(ctx, userID, userMsg.ID, text)
	approach := selectApproach(analysis)

	if detectCrisis(text) {
		s.logger.Warn("crisis indicators detected", "user_id", userID, "conversation_id", conv.ID)
		return s.finishTurn(ctx, conv, crisisResponse, approach, analysis, metrics.TokenUsage{}, true)
	}

	messages, err := s.buildPrompt(ctx, conv, approach, analysis)
	if err != nil {
		return Response{}, err
	}

	reply := fallbackResponse
	var usage metrics.TokenUsage
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Messages:    messages,
		Temperature: s.cfg.Temperature,
	})
	switch {
	case err != nil:
		s.logger.Error("model request failed, using fallback", "error", err)
	case len(resp.Choices) == 0:
		s.logger.Error("model returned no choices, using fallback")
	default:
		reply = resp.Choices[0].Message.Content
		usage = metrics.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	return s.finishTurn(ctx, conv, reply, approach, analysis, usage, false)
}

func (s *service) SendStream(ctx context.Context, userID int64, req Request) (<-chan StreamChunk, error) {
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, apperrors.Wrap("invalid_input", "message cannot be empty", nil)
	}

	conv, err := s.resolveConversation(ctx, userID, req.ConversationID, text)
	if err != nil {
		return nil, err
	}

	userMsg, err := s.repo.AddMessage(ctx, conv.ID, text, true)
	if err != nil {
		return nil, apperrors.Wrap("chat_error", "store user message failed", err)
	}

	analysis := s.analyze(ctx, userID, userMsg.ID, text)
	approach := selectApproach(analysis)

	out := make(chan StreamChunk)

	if detectCrisis(text) {
		s.logger.Warn("crisis indicators detected", "user_id", userID, "conversation_id", conv.ID)
		go func() {
			defer close(out)
			out <- StreamChunk{Delta: crisisResponse}
			s.completeStream(ctx, out, conv, crisisResponse)
		}()
		return out, nil
	}

	messages, err := s.buildPrompt(ctx, conv, approach, analysis)
	if err != nil {
		return nil, err
	}

	stream, err := s.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Messages:    messages,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		s.logger.Error("model stream request failed, using fallback", "error", err)
		go func() {
			defer close(out)
			out <- StreamChunk{Delta: fallbackResponse}
			s.completeStream(ctx, out, conv, fallbackResponse)
		}()
		return out, nil
	}

	go func() {
		defer close(out)
		defer stream.Close()

		var builder strings.Builder
		for {
			chunk, recvErr := stream.Recv()
			if recvErr != nil {
				if !errors.Is(recvErr, io.EOF) {
					s.logger.Error("model stream recv failed", "error", recvErr)
				}
				break
			}
			for _, choice := range chunk.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				builder.WriteString(choice.Delta.Content)
				select {
				case out <- StreamChunk{Delta: choice.Delta.Content}:
				case <-ctx.Done():
					return
				}
			}
		}

		reply := builder.String()
		if reply == "" {
			reply = fallbackResponse
			out <- StreamChunk{Delta: reply}
		}
		s.completeStream(ctx, out, conv, reply)
	}()

	return out, nil
}

func (s *service) ListConversations(ctx context.Context, userID int64, limit int) ([]Conversation, error) {
	conversations, err := s.repo.ListConversations(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.Wrap("chat_error", "list conversations failed", err)
	}
	return conversations, nil
}

func (s *service) GetConversation(ctx context.Context, userID, conversationID int64) (ConversationView, error) {
	conv, found, err := s.repo.GetConversation(ctx, conversationID, userID)
	if err != nil {
		return ConversationView{}, apperrors.Wrap("chat_error", "load conversation failed", err)
	}
	if !found {
		return ConversationView{}, apperrors.Wrap("conversation_not_found", "conversation does not exist", nil)
	}
	messages, err := s.repo.ListMessages(ctx, conv.ID, 0)
	if err != nil {
		return ConversationView{}, apperrors.Wrap("chat_error", "load messages failed", err)
	}
	return ConversationView{Conversation: conv, Messages: messages}, nil
}

func (s *service) DeleteConversation(ctx context.Context, userID, conversationID int64) error {
	_, found, err := s.repo.GetConversation(ctx, conversationID, userID)
	if err != nil {
		return apperrors.Wrap("chat_error", "load conversation failed", err)
	}
	if !found {
		return apperrors.Wrap("conversation_not_found", "conversation does not exist", nil)
	}
	if err := s.repo.DeleteConversation(ctx, conversationID, userID); err != nil {
		return apperrors.Wrap("chat_error", "delete conversation failed", err)
	}
	return nil
}

func (s *service) resolveConversation(ctx context.Context, userID, conversationID int64, firstMessage string) (Conversation, error) {
	if conversationID != 0 {
		conv, found, err := s.repo.GetConversation(ctx, conversationID, userID)
		if err != nil {
			return Conversation{}, apperrors.Wrap("chat_error", "load conversation failed", err)
		}
		if !found {
			return Conversation{}, apperrors.Wrap("conversation_not_found", "conversation does not exist", nil)
		}
		return conv, nil
	}

	conv, err := s.repo.CreateConversation(ctx, userID, uuid.NewString(), conversationTitle(firstMessage))
	if err != nil {
		return Conversation{}, apperrors.Wrap("chat_error", "create conversation failed", err)
	}
	return conv, nil
}

func (s *service) analyze(ctx context.Context, userID, messageID int64, text string) *emotion.Analysis {
	if s.emotions == nil {
		return nil
	}
	analysis, err := s.emotions.Analyze(ctx, userID, messageID, text)
	if err != nil {
		s.logger.Error("emotion analysis failed", "error", err)
		return nil
	}
	return &analysis
}

func (s *service) buildPrompt(ctx context.Context, conv Conversation, approach string, analysis *emotion.Analysis) ([]openai.Message, error) {
	history, err := s.repo.ListMessages(ctx, conv.ID, 0)
	if err != nil {
		return nil, apperrors.Wrap("chat_error", "load history failed", err)
	}

	turns := make([]openai.Message, 0, len(history))
	for _, msg := range history {
		role := "assistant"
		if msg.IsUserMessage {
			role = "user"
		}
		turns = append(turns, openai.Message{Role: role, Content: msg.Content})
	}
	turns = trimHistory(turns, s.cfg.MaxHistory, s.cfg.TokenBudget, s.counter)

	persona := s.personas.Default()
	messages := make([]openai.Message, 0, len(turns)+1)
	messages = append(messages, openai.Message{
		Role:    "system",
		Content: buildSystemPrompt(persona, approach, analysis),
	})
	return append(messages, turns...), nil
}

func (s *service) finishTurn(ctx context.Context, conv Conversation, reply, approach string, analysis *emotion.Analysis, usage metrics.TokenUsage, crisis bool) (Response, error) {
	assistantMsg, err := s.repo.AddMessage(ctx, conv.ID, reply, false)
	if err != nil {
		return Response{}, apperrors.Wrap("chat_error", "store assistant message failed", err)
	}
	if err := s.repo.TouchConversation(ctx, conv.ID); err != nil {
		s.logger.Error("touch conversation failed", "error", err, "conversation_id", conv.ID)
	}

	var usagePtr *metrics.TokenUsage
	if !usage.IsZero() {
		usagePtr = &usage
	}

	tone := approachTones[approach]
	return Response{
		Response:            reply,
		ConversationID:      conv.ID,
		MessageID:           assistantMsg.ID,
		TherapeuticApproach: approach,
		ResponseTone:        tone,
		CrisisDetected:      crisis,
		Emotion:             analysis,
		Usage:               usagePtr,
	}, nil
}

func (s *service) completeStream(ctx context.Context, out chan<- StreamChunk, conv Conversation, reply string) {
	assistantMsg, err := s.repo.AddMessage(ctx, conv.ID, reply, false)
	if err != nil {
		s.logger.Error("store assistant message failed", "error", err, "conversation_id", conv.ID)
		return
	}
	if err := s.repo.TouchConversation(ctx, conv.ID); err != nil {
		s.logger.Error("touch conversation failed", "error", err, "conversation_id", conv.ID)
	}
	out <- StreamChunk{
		Completed:      true,
		ConversationID: conv.ID,
		MessageID:      assistantMsg.ID,
	}
}

func conversationTitle(message string) string {
	title := strings.TrimSpace(message)
	if utf8.RuneCountInString(title) <= 50 {
		return title
	}
	runes := []rune(title)
	return string(runes[:50]) + "..."
}
