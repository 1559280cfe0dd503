// Package store keeps browser sessions keyed by session id.
package store

import (
	"context"
	"time"

	"housemonitor/internal/session/domain"
)

// Store is a keyed session store with explicit create/read/expire operations.
type Store interface {
	// Get returns the session for id, or nil if missing or expired.
	Get(ctx context.Context, id string) (*domain.Session, error)
	// Save creates or replaces the session; it expires ttl after this call.
	Save(ctx context.Context, s *domain.Session, ttl time.Duration) error
	// Delete removes the session. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}
