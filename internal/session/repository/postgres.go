package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"housemonitor/internal/db"
	"housemonitor/internal/db/sqlc/gen"
	"housemonitor/internal/session/domain"
)

type PostgresRepository struct {
	queries *gen.Queries
	timeout time.Duration
}

// NewPostgresRepository returns a remember-token repository that uses the given db for persistence.
func NewPostgresRepository(conn *sql.DB, timeout time.Duration) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(conn), timeout: timeout}
}

// GetByTokenHash returns the token for tokenHash, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RememberToken, error) {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()
	t, err := r.queries.GetRememberTokenByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return genTokenToDomain(&t), nil
}

// Create persists t and fills in its generated ID.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.RememberToken) error {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()
	row, err := r.queries.CreateRememberToken(ctx, gen.CreateRememberTokenParams{
		UserID:     t.UserID,
		TokenHash:  t.TokenHash,
		ExpiresAt:  t.ExpiresAt,
		DeviceInfo: t.DeviceInfo,
		LastUsedAt: timeToNullTime(t.LastUsedAt),
		CreatedAt:  t.CreatedAt,
	})
	if err != nil {
		return err
	}
	t.ID = row.ID
	return nil
}

// DeleteByTokenHash removes the token matching tokenHash.
func (r *PostgresRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()
	_, err := r.queries.DeleteRememberTokenByHash(ctx, tokenHash)
	return err
}

// PruneKeepLatest keeps the n newest tokens of userID and returns how many were deleted.
// The keep-set and delete run in one statement.
func (r *PostgresRepository) PruneKeepLatest(ctx context.Context, userID int64, n int) (int64, error) {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.queries.PruneRememberTokens(ctx, gen.PruneRememberTokensParams{UserID: userID, Limit: int32(n)})
}

// TouchLastUsed records that the token was used to restore a session.
func (r *PostgresRepository) TouchLastUsed(ctx context.Context, tokenHash string, at time.Time) error {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.queries.TouchRememberToken(ctx, gen.TouchRememberTokenParams{
		TokenHash:  tokenHash,
		LastUsedAt: sql.NullTime{Time: at, Valid: true},
	})
}

func timeToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullTimeToPtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	return &n.Time
}

func genTokenToDomain(t *gen.RememberToken) *domain.RememberToken {
	if t == nil {
		return nil
	}
	return &domain.RememberToken{
		ID:         t.ID,
		UserID:     t.UserID,
		TokenHash:  t.TokenHash,
		ExpiresAt:  t.ExpiresAt,
		DeviceInfo: t.DeviceInfo,
		LastUsedAt: nullTimeToPtr(t.LastUsedAt),
		CreatedAt:  t.CreatedAt,
	}
}
