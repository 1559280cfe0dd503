package repository

import (
	"context"
	"time"

	"housemonitor/internal/reading/domain"
)

// Repository defines persistence for sensor readings. List methods return rows
// with MeasuredAt <= from, newest first, skipping offset rows and returning at most limit.
type Repository interface {
	InsertClimate(ctx context.Context, r domain.ClimateReading) error
	InsertMotion(ctx context.Context, r domain.MotionReading) error
	ListClimate(ctx context.Context, from time.Time, offset, limit int) ([]domain.ClimatePoint, error)
	ListMotion(ctx context.Context, from time.Time, offset, limit int) ([]domain.MotionPoint, error)
}
