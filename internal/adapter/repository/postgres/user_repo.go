package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/tripledger/internal/domain"
)

// UserRepository implements usecase.UserRepository.
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert inserts a user or refreshes the mirrored profile. CreatedAt is set
// from the stored row. Empty profile fields keep the stored value.
func (r *UserRepository) Upsert(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, name, username, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = COALESCE(NULLIF(EXCLUDED.name, ''), users.name),
		    username = COALESCE(NULLIF(EXCLUDED.username, ''), users.username),
		    email = COALESCE(NULLIF(EXCLUDED.email, ''), users.email),
		    updated_at = EXCLUDED.updated_at
		RETURNING created_at
	`

	return r.db.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Username,
		user.Email,
		time.Now().UTC(),
	).Scan(&user.CreatedAt)
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, name, username, email, created_at
		FROM users
		WHERE id = $1
	`

	var user domain.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Username,
		&user.Email,
		&user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}
