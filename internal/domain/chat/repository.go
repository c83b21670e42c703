package chat

import "context"

// Repository abstracts conversation and message persistence.
type Repository interface {
	CreateConversation(ctx context.Context, userID int64, publicID, title string) (Conversation, error)
	GetConversation(ctx context.Context, id, userID int64) (Conversation, bool, error)
	ListConversations(ctx context.Context, userID int64, limit int) ([]Conversation, error)
	TouchConversation(ctx context.Context, id int64) error
	DeleteConversation(ctx context.Context, id, userID int64) error

	AddMessage(ctx context.Context, conversationID int64, content string, isUser bool) (Message, error)
	ListMessages(ctx context.Context, conversationID int64, limit int) ([]Message, error)
	CountMessages(ctx context.Context, userID int64) (int64, error)
}
