package recrepo

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/innercalm/backend/internal/domain/recommendation"
)

// PostgresRepository persists recommendations in Postgres. Target emotions
// are stored as JSONB.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ recommendation.Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Save(ctx context.Context, rec recommendation.Recommendation) (recommendation.Recommendation, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO recommendations (
			user_id, type, title, description, instructions,
			target_emotions, difficulty_level, estimated_duration
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, rec.UserID, rec.Type, rec.Title, rec.Description, rec.Instructions,
		rec.TargetEmotions, rec.DifficultyLevel, rec.EstimatedDuration)
	if err := row.Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return recommendation.Recommendation{}, err
	}
	return rec, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id, userID int64) (recommendation.Recommendation, bool, error) {
	row := r.pool.QueryRow(ctx, selectColumns+`
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	rec, err := scanRecommendation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return recommendation.Recommendation{}, false, nil
	}
	if err != nil {
		return recommendation.Recommendation{}, false, err
	}
	return rec, true, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID int64, filter recommendation.ListFilter) ([]recommendation.Recommendation, error) {
	query := selectColumns + ` WHERE user_id = $1`
	args := []any{userID}
	if filter.Completed != nil {
		query += ` AND is_completed = $2`
		args = append(args, *filter.Completed)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []recommendation.Recommendation
	for rows.Next() {
		rec, scanErr := scanRecommendation(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Update(ctx context.Context, rec recommendation.Recommendation) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE recommendations
		SET is_completed = $3, effectiveness_rating = $4, notes = $5, completed_at = $6
		WHERE id = $1 AND user_id = $2
	`, rec.ID, rec.UserID, rec.IsCompleted, rec.EffectivenessRating, rec.Notes, rec.CompletedAt)
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID int64) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM recommendations WHERE id = $1 AND user_id = $2
	`, id, userID)
	return err
}

const selectColumns = `
	SELECT id, user_id, type, title, description, instructions,
		target_emotions, difficulty_level, estimated_duration,
		is_completed, effectiveness_rating, COALESCE(notes, ''), created_at, completed_at
	FROM recommendations
`

func scanRecommendation(row pgx.Row) (recommendation.Recommendation, error) {
	var rec recommendation.Recommendation
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Type, &rec.Title, &rec.Description,
		&rec.Instructions, &rec.TargetEmotions, &rec.DifficultyLevel, &rec.EstimatedDuration,
		&rec.IsCompleted, &rec.EffectivenessRating, &rec.Notes, &rec.CreatedAt, &rec.CompletedAt)
	return rec, err
}
