package chatrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/innercalm/backend/internal/domain/chat"
)

// MemoryRepository keeps conversations in memory. Used in development and
// tests when Postgres is not configured.
type MemoryRepository struct {
	mu            sync.RWMutex
	conversations map[int64]chat.Conversation
	messages      map[int64][]chat.Message
	nextConvID    int64
	nextMsgID     int64
}

var _ chat.Repository = (*MemoryRepository)(nil)

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		conversations: make(map[int64]chat.Conversation),
		messages:      make(map[int64][]chat.Message),
	}
}

func (r *MemoryRepository) CreateConversation(_ context.Context, userID int64, publicID, title string) (chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextConvID++
	now := time.Now().UTC()
	conv := chat.Conversation{
		ID:        r.nextConvID,
		PublicID:  publicID,
		UserID:    userID,
		Title:     title,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.conversations[conv.ID] = conv
	return conv, nil
}

func (r *MemoryRepository) GetConversation(_ context.Context, id, userID int64) (chat.Conversation, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, ok := r.conversations[id]
	if !ok || conv.UserID != userID || !conv.IsActive {
		return chat.Conversation{}, false, nil
	}
	return conv, true, nil
}

func (r *MemoryRepository) ListConversations(_ context.Context, userID int64, limit int) ([]chat.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]chat.Conversation, 0)
	for _, conv := range r.conversations {
		if conv.UserID == userID && conv.IsActive {
			out = append(out, conv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) TouchConversation(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conv, ok := r.conversations[id]; ok {
		conv.UpdatedAt = time.Now().UTC()
		r.conversations[id] = conv
	}
	return nil
}

func (r *MemoryRepository) DeleteConversation(_ context.Context, id, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.conversations[id]
	if !ok || conv.UserID != userID {
		return nil
	}
	delete(r.conversations, id)
	delete(r.messages, id)
	return nil
}

func (r *MemoryRepository) AddMessage(_ context.Context, conversationID int64, content string, isUser bool) (chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextMsgID++
	msg := chat.Message{
		ID:             r.nextMsgID,
		ConversationID: conversationID,
		Content:        content,
		IsUserMessage:  isUser,
		Timestamp:      time.Now().UTC(),
	}
	r.messages[conversationID] = append(r.messages[conversationID], msg)
	return msg, nil
}

func (r *MemoryRepository) ListMessages(_ context.Context, conversationID int64, limit int) ([]chat.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := r.messages[conversationID]
	out := make([]chat.Message, len(msgs))
	copy(out, msgs)
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *MemoryRepository) CountMessages(_ context.Context, userID int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total int64
	for id, conv := range r.conversations {
		if conv.UserID == userID {
			total += int64(len(r.messages[id]))
		}
	}
	return total, nil
}
