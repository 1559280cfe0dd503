package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"housemonitor/internal/db/sqlc/gen"
	"housemonitor/internal/user/domain"
)

// ErrNotFound is returned by UpdateLastLogin when no row matched.
var ErrNotFound = errors.New("user not found")

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db)}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := r.queries.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return genUserToDomain(&u), nil
}

// Ensure inserts the user row when missing; an existing row is left untouched.
func (r *PostgresRepository) Ensure(ctx context.Context, id int64) error {
	return r.queries.EnsureUser(ctx, id)
}

// UpdateLastLogin records a successful login at the given time.
func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	n, err := r.queries.UpdateUserLastLogin(ctx, gen.UpdateUserLastLoginParams{
		ID:          id,
		LastLoginAt: sql.NullTime{Time: at, Valid: true},
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func genUserToDomain(u *gen.User) *domain.User {
	if u == nil {
		return nil
	}
	var last *time.Time
	if u.LastLoginAt.Valid {
		t := u.LastLoginAt.Time
		last = &t
	}
	return &domain.User{
		ID:          u.ID,
		LastLoginAt: last,
		CreatedAt:   u.CreatedAt,
	}
}
