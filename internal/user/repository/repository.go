package repository

import (
	"context"
	"time"

	"housemonitor/internal/user/domain"
)

// Repository defines persistence for the dashboard account.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// Ensure creates the user row if it does not exist.
	Ensure(ctx context.Context, id int64) error
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}
