package service

import (
	"context"
	"fmt"
	"time"

	"housemonitor/internal/reading/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Store is the write side of the readings repository.
type Store interface {
	InsertClimate(ctx context.Context, r domain.ClimateReading) error
	InsertMotion(ctx context.Context, r domain.MotionReading) error
}

// IngestService persists readings pushed by sensor nodes. Each call is exactly
// one insert; failures are returned to the caller and never retried here.
type IngestService struct {
	store    Store
	now      func() time.Time
	ingested metric.Int64Counter
}

// ClockIn returns a clock reading the current time in loc, so receipt times share
// the zone measured timestamps are parsed in.
func ClockIn(loc *time.Location) func() time.Time {
	if loc == nil {
		return time.Now
	}
	return func() time.Time { return time.Now().In(loc) }
}

// NewIngestService returns an IngestService. now defaults to time.Now.
func NewIngestService(store Store, now func() time.Time) *IngestService {
	if now == nil {
		now = time.Now
	}
	counter, err := otel.Meter("housemonitor/reading").Int64Counter(
		"housemonitor.readings.ingested",
		metric.WithDescription("Sensor readings stored, by kind."),
	)
	if err != nil {
		otel.Handle(err)
	}
	return &IngestService{store: store, now: now, ingested: counter}
}

// IngestClimate stamps r with the receipt time and stores it.
func (s *IngestService) IngestClimate(ctx context.Context, r domain.ClimateReading) error {
	r.RecordedAt = s.now()
	if err := s.store.InsertClimate(ctx, r); err != nil {
		return fmt.Errorf("insert climate reading: %w", err)
	}
	s.count(ctx, domain.KindClimate)
	return nil
}

// IngestMotion stamps r with the receipt time and stores it.
func (s *IngestService) IngestMotion(ctx context.Context, r domain.MotionReading) error {
	r.RecordedAt = s.now()
	if err := s.store.InsertMotion(ctx, r); err != nil {
		return fmt.Errorf("insert motion reading: %w", err)
	}
	s.count(ctx, domain.KindMotion)
	return nil
}

func (s *IngestService) count(ctx context.Context, kind domain.Kind) {
	if s.ingested == nil {
		return
	}
	s.ingested.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(kind))))
}
