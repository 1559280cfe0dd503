package repository

import (
	"context"
	"time"

	"housemonitor/internal/session/domain"
)

// Repository defines persistence for remember-me tokens. Tokens are addressed by
// the SHA-256 hash of the raw cookie value.
type Repository interface {
	// GetByTokenHash returns the token, or nil if none matches.
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RememberToken, error)
	Create(ctx context.Context, t *domain.RememberToken) error
	// DeleteByTokenHash removes the matching token; a missing token is not an error.
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	// PruneKeepLatest deletes all but the n most recently created tokens of userID.
	PruneKeepLatest(ctx context.Context, userID int64, n int) (int64, error)
	TouchLastUsed(ctx context.Context, tokenHash string, at time.Time) error
}
