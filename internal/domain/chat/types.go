package chat

import (
	"time"

	"github.com/innercalm/backend/internal/domain/emotion"
	"github.com/innercalm/backend/pkg/metrics"
)

// Conversation is one chat session owned by a user.
type Conversation struct {
	ID        int64     `json:"id"`
	PublicID  string    `json:"publicId"`
	UserID    int64     `json:"userId"`
	Title     string    `json:"title"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Message is a single chat turn, from the user or the assistant.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversationId"`
	Content        string    `json:"content"`
	IsUserMessage  bool      `json:"isUserMessage"`
	Timestamp      time.Time `json:"timestamp"`
}

// Request is the send-message payload.
type Request struct {
	Message        string `json:"message"`
	ConversationID int64  `json:"conversationId,omitempty"`
}

// Response is the assistant reply plus turn metadata.
type Response struct {
	Response            string              `json:"response"`
	ConversationID      int64               `json:"conversationId"`
	MessageID           int64               `json:"messageId"`
	TherapeuticApproach string              `json:"therapeuticApproach"`
	ResponseTone        string              `json:"responseTone"`
	CrisisDetected      bool                `json:"crisisDetected,omitempty"`
	Emotion             *emotion.Analysis   `json:"emotion,omitempty"`
	Usage               *metrics.TokenUsage `json:"usage,omitempty"`
}

// StreamChunk is one SSE frame of a streaming reply.
type StreamChunk struct {
	Delta          string `json:"delta,omitempty"`
	Completed      bool   `json:"completed,omitempty"`
	ConversationID int64  `json:"conversationId,omitempty"`
	MessageID      int64  `json:"messageId,omitempty"`
}

// ConversationView bundles a conversation with its messages.
type ConversationView struct {
	Conversation
	Messages []Message `json:"messages"`
}

// Config tunes conversation handling.
type Config struct {
	Model       string
	Temperature float32
	// MaxHistory bounds how many prior messages are replayed to the model.
	MaxHistory int
	// TokenBudget bounds the prompt size; history is dropped oldest-first
	// until the replayed turns fit.
	TokenBudget int
}

const defaultTokenBudget = 3000

// fallbackResponse is returned when the model call fails; the conversation
// must keep working even when the provider is down.
const fallbackResponse = "I'm here to listen and support you. Could you tell me more about what's on your mind?"

// crisisResponse short-circuits the model when self-harm indicators are
// detected in the user's message.
const crisisResponse = "I'm really concerned about what you're going through right now. " +
	"You don't have to face this alone. Please reach out to a crisis line right away - " +
	"in the US you can call or text 988 (Suicide & Crisis Lifeline), available 24/7. " +
	"If you are in immediate danger, please call your local emergency number. " +
	"Your life matters, and there are people who want to help you through this moment."
