package analyticsrepo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/innercalm/backend/internal/domain/analytics"
)

// PostgresRepository persists analytics events in Postgres. Event payloads
// are stored as JSONB.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ analytics.EventRepository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Save(ctx context.Context, event analytics.Event) (analytics.Event, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO analytics_events (user_id, conversation_id, event_type, event_name, severity, event_data, event_timestamp)
		VALUES ($1, NULLIF($2, 0), $3, $4, $5, $6, $7)
		RETURNING id
	`, event.UserID, event.ConversationID, event.Type, event.Name, event.Severity, event.Data, event.Timestamp)
	if err := row.Scan(&event.ID); err != nil {
		return analytics.Event{}, err
	}
	return event, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]analytics.Event, error) {
	query := `
		SELECT id, user_id, COALESCE(conversation_id, 0), event_type, event_name, severity, event_data, event_timestamp
		FROM analytics_events
		WHERE user_id = $1
		ORDER BY event_timestamp DESC, id DESC
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

	var out []analytics.Event
	for rows.Next() {
		var event analytics.Event
		if scanErr := rows.Scan(&event.ID, &event.UserID, &event.ConversationID,
			&event.Type, &event.Name, &event.Severity, &event.Data, &event.Timestamp); scanErr != nil {
			return nil, scanErr
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) CountByType(ctx context.Context, userID int64, eventType string, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM analytics_events
		WHERE user_id = $1 AND event_type = $2 AND event_timestamp >= $3
	`, userID, eventType, since).Scan(&count)
	return count, err
}
