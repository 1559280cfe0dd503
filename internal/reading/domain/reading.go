package domain

import "time"

// MeasuredLayout is the wire and display format of measured timestamps.
const MeasuredLayout = "2006-01-02 15:04:05"

// ClimateReading is one temperature/humidity/pressure sample from a climate sensor.
type ClimateReading struct {
	Temperature float64
	Humidity    float64
	Pressure    float64
	MeasuredAt  time.Time // reported by the sensor node
	RecordedAt  time.Time // server receipt time
}

// MotionReading is one pulse-count sample from a numbered motion sensor.
type MotionReading struct {
	SensorNo   int
	Count      int
	MeasuredAt time.Time
	RecordedAt time.Time
}

// ClimatePoint is a climate row as returned by a window query.
type ClimatePoint struct {
	Temperature float64
	Humidity    float64
	Pressure    float64
	MeasuredAt  time.Time
}

// MotionPoint is a motion row as returned by a window query.
type MotionPoint struct {
	Count      int
	MeasuredAt time.Time
}
