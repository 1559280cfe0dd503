package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"housemonitor/internal/db"
	"housemonitor/internal/reading/domain"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/query"
)

const (
	climateMeasurement = "climate"
	motionMeasurement  = "motion"

	// measuredPrecision is the resolution measured timestamps keep in InfluxDB. The
	// sub-millisecond part of a point's time is a disambiguator, see pointTime.
	measuredPrecision = time.Millisecond
)

// InfluxRepository stores readings as points in an InfluxDB 2 bucket.
type InfluxRepository struct {
	client  influxdb2.Client
	writer  api.WriteAPIBlocking
	reader  api.QueryAPI
	bucket  string
	loc     *time.Location
	timeout time.Duration
	seq     atomic.Uint64
}

// NewInfluxRepository returns a readings repository for the given InfluxDB server.
// Timestamps are read back in loc so they render like the Postgres wall-clock rows.
func NewInfluxRepository(url, token, org, bucket string, loc *time.Location, timeout time.Duration) *InfluxRepository {
	client := influxdb2.NewClient(url, token)
	if loc == nil {
		loc = time.Local
	}
	return &InfluxRepository{
		client:  client,
		writer:  client.WriteAPIBlocking(org, bucket),
		reader:  client.QueryAPI(org),
		bucket:  bucket,
		loc:     loc,
		timeout: timeout,
	}
}

// Close releases the underlying HTTP client.
func (r *InfluxRepository) Close() {
	r.client.Close()
}

// Ping reports whether the InfluxDB server is reachable.
func (r *InfluxRepository) Ping(ctx context.Context) error {
	ok, err := r.client.Ping(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("influxdb: ping failed")
	}
	return nil
}

// InsertClimate writes one climate point.
func (r *InfluxRepository) InsertClimate(ctx context.Context, c domain.ClimateReading) error {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()
	p := influxdb2.NewPoint(climateMeasurement,
		nil,
		map[string]interface{}{
			"temperature": c.Temperature,
			"humidity":    c.Humidity,
			"pressure":    c.Pressure,
			"recorded_at": c.RecordedAt.Unix(),
		},
		r.pointTime(c.MeasuredAt, c.RecordedAt))
	if err := r.writer.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("influxdb write climate: %w", err)
	}
	return nil
}

// InsertMotion writes one motion point tagged with its sensor number.
func (r *InfluxRepository) InsertMotion(ctx context.Context, m domain.MotionReading) error {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()
	p := influxdb2.NewPoint(motionMeasurement,
		map[string]string{"sensor_no": fmt.Sprintf("%d", m.SensorNo)},
		map[string]interface{}{
			"count":       int64(m.Count),
			"recorded_at": m.RecordedAt.Unix(),
		},
		r.pointTime(m.MeasuredAt, m.RecordedAt))
	if err := r.writer.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("influxdb write motion: %w", err)
	}
	return nil
}

// ListClimate returns one page of climate points, newest first.
func (r *InfluxRepository) ListClimate(ctx context.Context, from time.Time, offset, limit int) ([]domain.ClimatePoint, error) {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()
	result, err := r.reader.Query(ctx, windowQuery(r.bucket, climateMeasurement, from, offset, limit))
	if err != nil {
		return nil, fmt.Errorf("influxdb query climate: %w", err)
	}
	defer result.Close()
	out := []domain.ClimatePoint{}
	for result.Next() {
		rec := result.Record()
		out = append(out, domain.ClimatePoint{
			Temperature: floatValue(rec, "temperature"),
			Humidity:    floatValue(rec, "humidity"),
			Pressure:    floatValue(rec, "pressure"),
			MeasuredAt:  measuredFromPoint(rec.Time(), r.loc),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("influxdb query climate: %w", err)
	}
	return out, nil
}

// ListMotion returns one page of motion points across all sensors, newest first.
func (r *InfluxRepository) ListMotion(ctx context.Context, from time.Time, offset, limit int) ([]domain.MotionPoint, error) {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()
	result, err := r.reader.Query(ctx, windowQuery(r.bucket, motionMeasurement, from, offset, limit))
	if err != nil {
		return nil, fmt.Errorf("influxdb query motion: %w", err)
	}
	defer result.Close()
	out := []domain.MotionPoint{}
	for result.Next() {
		rec := result.Record()
		out = append(out, domain.MotionPoint{
			Count:      int(floatValue(rec, "count")),
			MeasuredAt: measuredFromPoint(rec.Time(), r.loc),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("influxdb query motion: %w", err)
	}
	return out, nil
}

// pointTime returns the point timestamp for a reading. InfluxDB replaces a point that
// has the same series and time, so two readings with the same measured value need
// distinct times: the sub-millisecond nanoseconds carry a per-repository sequence
// (thousands of ns) and the receipt microseconds (units of ns).
func (r *InfluxRepository) pointTime(measured, recorded time.Time) time.Time {
	return pointTime(measured, recorded, r.seq.Add(1))
}

func pointTime(measured, recorded time.Time, seq uint64) time.Time {
	jitter := int64(seq%1000)*1000 + int64(recorded.Nanosecond()/1000%1000)
	return measured.Truncate(measuredPrecision).Add(time.Duration(jitter))
}

// measuredFromPoint strips the disambiguator added by pointTime.
func measuredFromPoint(t time.Time, loc *time.Location) time.Time {
	return t.Truncate(measuredPrecision).In(loc)
}

// windowQuery builds the Flux query for one page ending at from (inclusive).
// The stop bound covers every disambiguated point whose measured time is from.
func windowQuery(bucket, measurement string, from time.Time, offset, limit int) string {
	stop := from.Truncate(measuredPrecision).Add(measuredPrecision).UTC().Format(time.RFC3339Nano)
	return fmt.Sprintf(`from(bucket: %q)
  |> range(start: 0, stop: %s)
  |> filter(fn: (r) => r["_measurement"] == %q)
  |> pivot(rowKey: ["_time"], columnKey: ["_field"], valueColumn: "_value")
  |> group()
  |> sort(columns: ["_time"], desc: true)
  |> limit(n: %d, offset: %d)`, bucket, stop, measurement, limit, offset)
}

func floatValue(rec *query.FluxRecord, key string) float64 {
	switch v := rec.ValueByKey(key).(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	}
	return 0
}
