package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"housemonitor/internal/reading/domain"
)

func TestIngestService_IngestClimate_StampsRecordedAt(t *testing.T) {
	repo := &memReadings{}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewIngestService(repo, func() time.Time { return now })

	measured := time.Date(2024, 6, 1, 11, 59, 0, 0, time.UTC)
	err := svc.IngestClimate(context.Background(), domain.ClimateReading{
		Temperature: 21.5, Humidity: 40, Pressure: 1013.2, MeasuredAt: measured,
		RecordedAt: time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("IngestClimate: %v", err)
	}
	if len(repo.climate) != 1 {
		t.Fatalf("stored %d readings, want 1", len(repo.climate))
	}
	got := repo.climate[0]
	if !got.RecordedAt.Equal(now) {
		t.Errorf("RecordedAt = %v, want server time %v", got.RecordedAt, now)
	}
	if !got.MeasuredAt.Equal(measured) || got.Temperature != 21.5 {
		t.Errorf("stored reading = %+v", got)
	}
}

func TestIngestService_RecordedAtInServerZone(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	repo := &memReadings{}
	svc := NewIngestService(repo, ClockIn(loc))

	measured := time.Date(2024, 6, 1, 8, 0, 0, 0, loc)
	if err := svc.IngestMotion(context.Background(), domain.MotionReading{SensorNo: 1, Count: 2, MeasuredAt: measured}); err != nil {
		t.Fatalf("IngestMotion: %v", err)
	}
	got := repo.motion[0].RecordedAt
	if got.Location() != loc {
		t.Errorf("RecordedAt zone = %v, want %v", got.Location(), loc)
	}
	if d := time.Since(got); d < 0 || d > time.Minute {
		t.Errorf("RecordedAt = %v, not close to now", got)
	}
	if ClockIn(nil)().IsZero() {
		t.Error("ClockIn(nil) should fall back to time.Now")
	}
}

func TestIngestService_IngestMotion(t *testing.T) {
	repo := &memReadings{}
	svc := NewIngestService(repo, nil)
	if err := svc.IngestMotion(context.Background(), domain.MotionReading{SensorNo: 3, Count: 7, MeasuredAt: time.Now()}); err != nil {
		t.Fatalf("IngestMotion: %v", err)
	}
	if len(repo.motion) != 1 || repo.motion[0].SensorNo != 3 || repo.motion[0].Count != 7 {
		t.Errorf("stored = %+v", repo.motion)
	}
	if repo.motion[0].RecordedAt.IsZero() {
		t.Error("RecordedAt should be set")
	}
}

func TestIngestService_StoreErrorIsWrappedAndNotRetried(t *testing.T) {
	storeErr := errors.New("connection refused")
	repo := &memReadings{err: storeErr}
	svc := NewIngestService(repo, nil)

	err := svc.IngestClimate(context.Background(), domain.ClimateReading{MeasuredAt: time.Now()})
	if !errors.Is(err, storeErr) {
		t.Fatalf("err = %v, want wrapped store error", err)
	}
	err = svc.IngestMotion(context.Background(), domain.MotionReading{MeasuredAt: time.Now()})
	if !errors.Is(err, storeErr) {
		t.Fatalf("err = %v, want wrapped store error", err)
	}
}
