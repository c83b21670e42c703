package userrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/innercalm/backend/internal/domain/auth"
)

// PostgresRepository persists users and preferences in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, email, username, fullName, passwordHash string) (auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, username, full_name, password_hash, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, email, username, full_name, password_hash, is_active, created_at, updated_at
	`, email, username, fullName, passwordHash)
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "users_username_key" {
				return auth.User{}, auth.ErrUsernameExists
			}
			return auth.User{}, auth.ErrEmailExists
		}
		return auth.User{}, err
	}
	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (auth.User, bool, error) {
	return r.getOne(ctx, `WHERE email = $1`, email)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (auth.User, bool, error) {
	return r.getOne(ctx, `WHERE username = $1`, username)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (auth.User, bool, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, arg any) (auth.User, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, username, full_name, password_hash, is_active, created_at, updated_at
		FROM users `+where+` LIMIT 1
	`, arg)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.User{}, false, nil
		}
		return auth.User{}, false, err
	}
	return user, true, nil
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id int64, email, fullName string) (auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET email = $2, full_name = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING id, email, username, full_name, password_hash, is_active, created_at, updated_at
	`, id, email, fullName)
	return scanUser(row)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1
	`, id, passwordHash)
	return err
}

func (r *PostgresRepository) SetActive(ctx context.Context, id int64, active bool) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1
	`, id, active)
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) GetPreferences(ctx context.Context, userID int64) (auth.Preferences, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT theme, language, timezone, daily_reminders, weekly_reports, recommendations, achievements
		FROM user_preferences
		WHERE user_id = $1
	`, userID)
	var prefs auth.Preferences
	err := row.Scan(&prefs.Theme, &prefs.Language, &prefs.Timezone,
		&prefs.DailyReminders, &prefs.WeeklyReports, &prefs.Recommendations, &prefs.Achievements)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.Preferences{}, false, nil
		}
		return auth.Preferences{}, false, err
	}
	return prefs, true, nil
}

func (r *PostgresRepository) SavePreferences(ctx context.Context, userID int64, prefs auth.Preferences) (auth.Preferences, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_preferences (user_id, theme, language, timezone, daily_reminders, weekly_reports, recommendations, achievements)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			theme = EXCLUDED.theme,
			language = EXCLUDED.language,
			timezone = EXCLUDED.timezone,
			daily_reminders = EXCLUDED.daily_reminders,
			weekly_reports = EXCLUDED.weekly_reports,
			recommendations = EXCLUDED.recommendations,
			achievements = EXCLUDED.achievements,
			updated_at = NOW()
	`, userID, prefs.Theme, prefs.Language, prefs.Timezone,
		prefs.DailyReminders, prefs.WeeklyReports, prefs.Recommendations, prefs.Achievements)
	if err != nil {
		return auth.Preferences{}, err
	}
	return prefs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (auth.User, error) {
	var user auth.User
	var created, updated time.Time
	if err := row.Scan(&user.ID, &user.Email, &user.Username, &user.FullName,
		&user.PasswordHash, &user.IsActive, &created, &updated); err != nil {
		return auth.User{}, err
	}
	user.CreatedAt = created.UTC()
	user.UpdatedAt = updated.UTC()
	return user, nil
}

var _ auth.Repository = (*PostgresRepository)(nil)
