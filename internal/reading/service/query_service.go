package service

import (
	"context"
	"fmt"
	"html"
	"time"

	"housemonitor/internal/reading/domain"
)

// Lister is the read side of the readings repository.
type Lister interface {
	ListClimate(ctx context.Context, from time.Time, offset, limit int) ([]domain.ClimatePoint, error)
	ListMotion(ctx context.Context, from time.Time, offset, limit int) ([]domain.MotionPoint, error)
}

// ClimateSeries is one page of climate readings as parallel arrays, oldest first.
type ClimateSeries struct {
	Temps     []float64 `json:"temps"`
	Humids    []float64 `json:"humids"`
	Pressures []float64 `json:"pressures"`
	Measures  []string  `json:"measures"`
}

// MotionSeries is one page of motion readings as parallel arrays, oldest first.
type MotionSeries struct {
	Counts   []int    `json:"counts"`
	Measures []string `json:"measures"`
}

// QueryService pages through stored readings for the dashboard charts.
type QueryService struct {
	lister Lister
}

// NewQueryService returns a QueryService reading from lister.
func NewQueryService(lister Lister) *QueryService {
	return &QueryService{lister: lister}
}

// Climate returns the page addressed by c in ascending measured order.
func (s *QueryService) Climate(ctx context.Context, c domain.Cursor) (*ClimateSeries, error) {
	points, err := s.lister.ListClimate(ctx, c.From, c.Offset, domain.PageSize)
	if err != nil {
		return nil, fmt.Errorf("list climate readings: %w", err)
	}
	if len(points) > domain.PageSize {
		points = points[:domain.PageSize]
	}
	n := len(points)
	out := &ClimateSeries{
		Temps:     make([]float64, n),
		Humids:    make([]float64, n),
		Pressures: make([]float64, n),
		Measures:  make([]string, n),
	}
	// Storage order is newest first; fill from the back.
	for i, p := range points {
		j := n - 1 - i
		out.Temps[j] = p.Temperature
		out.Humids[j] = p.Humidity
		out.Pressures[j] = p.Pressure
		out.Measures[j] = html.EscapeString(domain.FormatMeasured(p.MeasuredAt))
	}
	return out, nil
}

// Motion returns the page addressed by c in ascending measured order.
func (s *QueryService) Motion(ctx context.Context, c domain.Cursor) (*MotionSeries, error) {
	points, err := s.lister.ListMotion(ctx, c.From, c.Offset, domain.PageSize)
	if err != nil {
		return nil, fmt.Errorf("list motion readings: %w", err)
	}
	if len(points) > domain.PageSize {
		points = points[:domain.PageSize]
	}
	n := len(points)
	out := &MotionSeries{
		Counts:   make([]int, n),
		Measures: make([]string, n),
	}
	for i, p := range points {
		j := n - 1 - i
		out.Counts[j] = p.Count
		out.Measures[j] = html.EscapeString(domain.FormatMeasured(p.MeasuredAt))
	}
	return out, nil
}

// Query dispatches on the cursor kind and returns a *ClimateSeries or *MotionSeries.
func (s *QueryService) Query(ctx context.Context, c domain.Cursor) (interface{}, error) {
	switch c.Kind {
	case domain.KindClimate:
		return s.Climate(ctx, c)
	case domain.KindMotion:
		return s.Motion(ctx, c)
	}
	return nil, domain.ErrInvalidAction
}
