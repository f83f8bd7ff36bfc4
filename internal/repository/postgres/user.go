package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/clusterboard/dashboard-api/internal/model"
	"github.com/clusterboard/dashboard-api/internal/repository"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `
		SELECT username, password_hash, enabled, permissions,
		       pwd_expiration_date, pwd_update_required, created_at, updated_at
		FROM users
		WHERE username = $1
	`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (username, password_hash, enabled, permissions,
		                   pwd_expiration_date, pwd_update_required, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`

	_, err := r.db.ExecContext(ctx, query,
		user.Username, user.PasswordHash, user.Enabled, user.Permissions,
		user.PwdExpirationDate, user.PwdUpdateRequired)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) SetEnabled(ctx context.Context, username string, enabled bool) error {
	query := `UPDATE users SET enabled = $2, updated_at = NOW() WHERE username = $1`

	result, err := r.db.ExecContext(ctx, query, username, enabled)
	if err != nil {
		return fmt.Errorf("failed to update enabled flag: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

type attemptRepository struct {
	db *sqlx.DB
}

func NewAttemptRepository(db *sqlx.DB) repository.AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Get(ctx context.Context, username string) (int, error) {
	var attempts int
	err := r.db.GetContext(ctx, &attempts,
		`SELECT attempts FROM login_attempts WHERE username = $1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get attempt counter: %w", err)
	}
	return attempts, nil
}

// Increment is a single upsert so concurrent failed logins for the same
// username serialize on the row and never lose a count.
func (r *attemptRepository) Increment(ctx context.Context, username string) (int, error) {
	query := `
		INSERT INTO login_attempts (username, attempts, updated_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (username) DO UPDATE
		SET attempts = login_attempts.attempts + 1, updated_at = NOW()
		RETURNING attempts
	`

	var attempts int
	if err := r.db.GetContext(ctx, &attempts, query, username); err != nil {
		return 0, fmt.Errorf("failed to increment attempt counter: %w", err)
	}
	return attempts, nil
}

func (r *attemptRepository) Reset(ctx context.Context, username string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM login_attempts WHERE username = $1`, username); err != nil {
		return fmt.Errorf("failed to reset attempt counter: %w", err)
	}
	return nil
}
