package chatrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/innercalm/backend/internal/domain/chat"
)

// PostgresRepository persists conversations and messages in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ chat.Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) CreateConversation(ctx context.Context, userID int64, publicID, title string) (chat.Conversation, error) {
	conv := chat.Conversation{PublicID: publicID, UserID: userID, Title: title, IsActive: true}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO conversations (public_id, user_id, title, is_active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id, created_at, updated_at
	`, publicID, userID, title)
	if err := row.Scan(&conv.ID, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
		return chat.Conversation{}, err
	}
	return conv, nil
}

func (r *PostgresRepository) GetConversation(ctx context.Context, id, userID int64) (chat.Conversation, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, public_id, user_id, title, is_active, created_at, updated_at
		FROM conversations
		WHERE id = $1 AND user_id = $2 AND is_active
	`, id, userID)
	conv, err := scanConversation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.Conversation{}, false, nil
	}
	if err != nil {
		return chat.Conversation{}, false, err
	}
	return conv, true, nil
}

func (r *PostgresRepository) ListConversations(ctx context.Context, userID int64, limit int) ([]chat.Conversation, error) {
	query := `
		SELECT id, public_id, user_id, title, is_active, created_at, updated_at
		FROM conversations
		WHERE user_id = $1 AND is_active
		ORDER BY updated_at DESC
	`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []chat.Conversation
	for rows.Next() {
		conv, scanErr := scanConversation(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, conv)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) TouchConversation(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE conversations SET updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) DeleteConversation(ctx context.Context, id, userID int64) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM conversations WHERE id = $1 AND user_id = $2
	`, id, userID)
	return err
}

func (r *PostgresRepository) AddMessage(ctx context.Context, conversationID int64, content string, isUser bool) (chat.Message, error) {
	msg := chat.Message{ConversationID: conversationID, Content: content, IsUserMessage: isUser}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO messages (conversation_id, content, is_user_message)
		VALUES ($1, $2, $3)
		RETURNING id, timestamp
	`, conversationID, content, isUser)
	if err := row.Scan(&msg.ID, &msg.Timestamp); err != nil {
		return chat.Message{}, err
	}
	return msg, nil
}

func (r *PostgresRepository) ListMessages(ctx context.Context, conversationID int64, limit int) ([]chat.Message, error) {
	query := `
		SELECT id, conversation_id, content, is_user_message, timestamp
		FROM messages
		WHERE conversation_id = $1
		ORDER BY timestamp ASC, id ASC
	`
	args := []any{conversationID}
	if limit > 0 {
		// Keep the most recent messages while preserving chronological order.
		query = `
			SELECT id, conversation_id, content, is_user_message, timestamp FROM (
				SELECT id, conversation_id, content, is_user_message, timestamp
				FROM messages
				WHERE conversation_id = $1
				ORDER BY timestamp DESC, id DESC
				LIMIT $2
			) recent
			ORDER BY timestamp ASC, id ASC
		`
		args = append(args, limit)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []chat.Message
	for rows.Next() {
		var msg chat.Message
		if scanErr := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Content, &msg.IsUserMessage, &msg.Timestamp); scanErr != nil {
			return nil, scanErr
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) CountMessages(ctx context.Context, userID int64) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE c.user_id = $1
	`, userID).Scan(&total)
	return total, err
}

func scanConversation(row pgx.Row) (chat.Conversation, error) {
	var conv chat.Conversation
	err := row.Scan(&conv.ID, &conv.PublicID, &conv.UserID, &conv.Title,
		&conv.IsActive, &conv.CreatedAt, &conv.UpdatedAt)
	return conv, err
}
