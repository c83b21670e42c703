package emotionrepo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/innercalm/backend/internal/domain/emotion"
)

// PostgresRepository persists emotion analyses in Postgres. Themes and
// keywords are stored as JSONB, matching the flexible shape they carry.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Save(ctx context.Context, analysis emotion.Analysis) (emotion.Analysis, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO emotion_analyses (
			user_id, message_id, joy, sadness, anger, fear, surprise, disgust, neutral,
			sentiment_score, sentiment_label, themes, keywords, confidence, analyzed_at
		)
		VALUES ($1, NULLIF($2, 0), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`, analysis.UserID, analysis.MessageID,
		analysis.Joy, analysis.Sadness, analysis.Anger, analysis.Fear,
		analysis.Surprise, analysis.Disgust, analysis.Neutral,
		analysis.SentimentScore, analysis.SentimentLabel,
		analysis.Themes, analysis.Keywords, analysis.Confidence, analysis.AnalyzedAt)
	if err := row.Scan(&analysis.ID); err != nil {
		return emotion.Analysis{}, err
	}
	return analysis, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64, since time.Time, limit int) ([]emotion.Analysis, error) {
	query := `
		SELECT id, user_id, COALESCE(message_id, 0), joy, sadness, anger, fear, surprise, disgust, neutral,
			sentiment_score, sentiment_label, themes, keywords, confidence, analyzed_at
		FROM emotion_analyses
		WHERE user_id = $1 AND analyzed_at >= $2
		ORDER BY analyzed_at DESC
	`
	args := []any{userID, since}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []emotion.Analysis
	for rows.Next() {
		var analysis emotion.Analysis
		var analyzedAt time.Time
		if err := rows.Scan(&analysis.ID, &analysis.UserID, &analysis.MessageID,
			&analysis.Joy, &analysis.Sadness, &analysis.Anger, &analysis.Fear,
			&analysis.Surprise, &analysis.Disgust, &analysis.Neutral,
			&analysis.SentimentScore, &analysis.SentimentLabel,
			&analysis.Themes, &analysis.Keywords, &analysis.Confidence, &analyzedAt); err != nil {
			return nil, err
		}
		analysis.AnalyzedAt = analyzedAt.UTC()
		out = append(out, analysis)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM emotion_analyses WHERE user_id = $1`, userID)
	return err
}

var _ emotion.Repository = (*PostgresRepository)(nil)
