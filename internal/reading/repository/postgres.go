package repository

import (
	"context"
	"database/sql"
	"time"

	"housemonitor/internal/db"
	"housemonitor/internal/db/sqlc/gen"
	"housemonitor/internal/reading/domain"
)

type PostgresRepository struct {
	queries *gen.Queries
	timeout time.Duration
}

// NewPostgresRepository returns a readings repository backed by the given db.
// Every call is bounded by timeout.
func NewPostgresRepository(conn *sql.DB, timeout time.Duration) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(conn), timeout: timeout}
}

// InsertClimate stores one climate reading.
func (r *PostgresRepository) InsertClimate(ctx context.Context, c domain.ClimateReading) error {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.queries.InsertClimateReading(ctx, gen.InsertClimateReadingParams{
		Temperature: c.Temperature,
		Humidity:    c.Humidity,
		Pressure:    c.Pressure,
		MeasuredAt:  wallClock(c.MeasuredAt),
		CreatedAt:   wallClock(c.RecordedAt),
	})
}

// InsertMotion stores one motion reading.
func (r *PostgresRepository) InsertMotion(ctx context.Context, m domain.MotionReading) error {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.queries.InsertMotionReading(ctx, gen.InsertMotionReadingParams{
		SensorNo:   int32(m.SensorNo),
		Count:      int32(m.Count),
		MeasuredAt: wallClock(m.MeasuredAt),
		CreatedAt:  wallClock(m.RecordedAt),
	})
}

// ListClimate returns one page of climate rows, newest first.
func (r *PostgresRepository) ListClimate(ctx context.Context, from time.Time, offset, limit int) ([]domain.ClimatePoint, error) {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()
	rows, err := r.queries.ListClimateReadings(ctx, gen.ListClimateReadingsParams{
		MeasuredAt: wallClock(from),
		Limit:      int32(limit),
		Offset:     int32(offset),
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.ClimatePoint, len(rows))
	for i, row := range rows {
		out[i] = domain.ClimatePoint{
			Temperature: row.Temperature,
			Humidity:    row.Humidity,
			Pressure:    row.Pressure,
			MeasuredAt:  row.MeasuredAt,
		}
	}
	return out, nil
}

// ListMotion returns one page of motion rows, newest first.
func (r *PostgresRepository) ListMotion(ctx context.Context, from time.Time, offset, limit int) ([]domain.MotionPoint, error) {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()
	rows, err := r.queries.ListMotionReadings(ctx, gen.ListMotionReadingsParams{
		MeasuredAt: wallClock(from),
		Limit:      int32(limit),
		Offset:     int32(offset),
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.MotionPoint, len(rows))
	for i, row := range rows {
		out[i] = domain.MotionPoint{Count: int(row.Count), MeasuredAt: row.MeasuredAt}
	}
	return out, nil
}

// wallClock keeps the clock reading of t and drops its zone, matching the
// TIMESTAMP (without time zone) columns.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
