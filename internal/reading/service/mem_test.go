package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"housemonitor/internal/reading/domain"
)

// memReadings is an in-memory readings store with the same paging semantics as Postgres.
type memReadings struct {
	mu      sync.Mutex
	climate []domain.ClimateReading
	motion  []domain.MotionReading
	err     error
}

func (m *memReadings) InsertClimate(_ context.Context, r domain.ClimateReading) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.climate = append(m.climate, r)
	return nil
}

func (m *memReadings) InsertMotion(_ context.Context, r domain.MotionReading) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.motion = append(m.motion, r)
	return nil
}

func (m *memReadings) ListClimate(_ context.Context, from time.Time, offset, limit int) ([]domain.ClimatePoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var pts []domain.ClimatePoint
	for _, r := range m.climate {
		if !r.MeasuredAt.After(from) {
			pts = append(pts, domain.ClimatePoint{Temperature: r.Temperature, Humidity: r.Humidity, Pressure: r.Pressure, MeasuredAt: r.MeasuredAt})
		}
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].MeasuredAt.After(pts[j].MeasuredAt) })
	return page(pts, offset, limit), nil
}

func (m *memReadings) ListMotion(_ context.Context, from time.Time, offset, limit int) ([]domain.MotionPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var pts []domain.MotionPoint
	for _, r := range m.motion {
		if !r.MeasuredAt.After(from) {
			pts = append(pts, domain.MotionPoint{Count: r.Count, MeasuredAt: r.MeasuredAt})
		}
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].MeasuredAt.After(pts[j].MeasuredAt) })
	return page(pts, offset, limit), nil
}

func page[T any](pts []T, offset, limit int) []T {
	if offset >= len(pts) {
		return nil
	}
	pts = pts[offset:]
	if len(pts) > limit {
		pts = pts[:limit]
	}
	return pts
}
