package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"housemonitor/internal/db"
	"housemonitor/internal/db/migrate"
	"housemonitor/internal/reading/domain"
)

func TestWallClock(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	in := time.Date(2024, 6, 1, 8, 15, 30, 0, jst)
	got := wallClock(in)
	want := time.Date(2024, 6, 1, 8, 15, 30, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("wallClock = %v, want %v", got, want)
	}
	if domain.FormatMeasured(got) != "2024-06-01 08:15:30" {
		t.Errorf("formatted = %q", domain.FormatMeasured(got))
	}
}

func TestPostgresRepository_ListClimate(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	if err := migrate.Run(dsn, migrate.Up); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	conn, err := db.Open(dsn)
	if err != nil {
		t.Skipf("Database connection failed: %v", err)
	}
	defer conn.Close()
	if _, err := conn.Exec("TRUNCATE climate_readings"); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	repo := NewPostgresRepository(conn, 5*time.Second)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local)
	for i := 0; i < 5; i++ {
		err := repo.InsertClimate(ctx, domain.ClimateReading{
			Temperature: 20 + float64(i),
			Humidity:    50,
			Pressure:    1013,
			MeasuredAt:  base.Add(time.Duration(i) * 10 * time.Minute),
			RecordedAt:  time.Now(),
		})
		if err != nil {
			t.Fatalf("InsertClimate: %v", err)
		}
	}

	got, err := repo.ListClimate(ctx, base.Add(30*time.Minute), 1, 2)
	if err != nil {
		t.Fatalf("ListClimate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// Rows 0..3 qualify; newest first, offset 1 skips row 3.
	if got[0].Temperature != 22 || got[1].Temperature != 21 {
		t.Errorf("temperatures = %v, %v; want 22, 21", got[0].Temperature, got[1].Temperature)
	}
	if domain.FormatMeasured(got[0].MeasuredAt) != "2024-06-01 00:20:00" {
		t.Errorf("MeasuredAt = %s", domain.FormatMeasured(got[0].MeasuredAt))
	}
}
