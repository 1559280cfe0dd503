package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DecodeClimate parses a climate ingestion body. Numbers may be JSON numbers or
// numeric strings; measured is interpreted in loc.
func DecodeClimate(body []byte, loc *time.Location) (ClimateReading, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return ClimateReading{}, err
	}
	var r ClimateReading
	if r.Temperature, err = floatField(fields, "temperature"); err != nil {
		return ClimateReading{}, err
	}
	if r.Humidity, err = floatField(fields, "humidity"); err != nil {
		return ClimateReading{}, err
	}
	if r.Pressure, err = floatField(fields, "pressure"); err != nil {
		return ClimateReading{}, err
	}
	if r.MeasuredAt, err = measuredField(fields, loc); err != nil {
		return ClimateReading{}, err
	}
	return r, nil
}

// DecodeMotion parses a motion ingestion body.
func DecodeMotion(body []byte, loc *time.Location) (MotionReading, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return MotionReading{}, err
	}
	var r MotionReading
	if r.Count, err = intField(fields, "count"); err != nil {
		return MotionReading{}, err
	}
	if r.SensorNo, err = intField(fields, "sensor_no"); err != nil {
		return MotionReading{}, err
	}
	if r.MeasuredAt, err = measuredField(fields, loc); err != nil {
		return MotionReading{}, err
	}
	return r, nil
}

// ParseMeasured accepts MeasuredLayout in loc or RFC 3339, returned as wall-clock time in loc.
func ParseMeasured(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(MeasuredLayout, s, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	return time.Time{}, fmt.Errorf("%w: measured %q", ErrInvalidField, s)
}

func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, ErrInvalidPayload
	}
	return fields, nil
}

func rawField(fields map[string]json.RawMessage, name string) (json.RawMessage, error) {
	raw, ok := fields[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, name)
	}
	return raw, nil
}

func floatField(fields map[string]json.RawMessage, name string) (float64, error) {
	raw, err := rawField(fields, name)
	if err != nil {
		return 0, err
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrInvalidField, name)
}

func intField(fields map[string]json.RawMessage, name string) (int, error) {
	f, err := floatField(fields, name)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidField, name)
	}
	return int(f), nil
}

func measuredField(fields map[string]json.RawMessage, loc *time.Location) (time.Time, error) {
	raw, err := rawField(fields, "measured")
	if err != nil {
		return time.Time{}, err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, fmt.Errorf("%w: measured", ErrInvalidField)
	}
	return ParseMeasured(s, loc)
}
