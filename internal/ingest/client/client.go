// Package client pushes sensor readings to the ingestion API the way the sensor nodes do.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"housemonitor/internal/reading/domain"
)

// ErrRejected is returned when the server answers 4xx; such requests are never retried.
var ErrRejected = errors.New("reading rejected by server")

// Config configures a Client. Zero durations and a negative retry count fall back to defaults.
type Config struct {
	BaseURL string
	APIKey  string
	// Retries is the number of attempts after the first one.
	Retries     int
	WaitTime    time.Duration
	MaxWaitTime time.Duration
	Timeout     time.Duration
}

// Client posts climate and motion readings with X-Api-Key, retrying transport errors and 5xx
// with exponential backoff.
type Client struct {
	http *resty.Client
}

// New returns a Client for cfg.
func New(cfg Config) *Client {
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.WaitTime <= 0 {
		cfg.WaitTime = 10 * time.Second
	}
	if cfg.MaxWaitTime < cfg.WaitTime {
		cfg.MaxWaitTime = 64 * cfg.WaitTime
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("X-Api-Key", cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(cfg.WaitTime).
		SetRetryMaxWaitTime(cfg.MaxWaitTime).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r != nil && r.StatusCode() >= http.StatusInternalServerError
		})
	return &Client{http: c}
}

type climatePayload struct {
	Temperature string `json:"temperature"`
	Humidity    string `json:"humidity"`
	Pressure    string `json:"pressure"`
	Measured    string `json:"measured"`
}

type motionPayload struct {
	Count    int    `json:"count"`
	SensorNo int    `json:"sensor_no"`
	Measured string `json:"measured"`
}

// PushClimate posts r to /api/climate. Values are sent as two-decimal strings.
func (c *Client) PushClimate(ctx context.Context, r domain.ClimateReading) error {
	return c.post(ctx, "/api/climate", climatePayload{
		Temperature: strconv.FormatFloat(r.Temperature, 'f', 2, 64),
		Humidity:    strconv.FormatFloat(r.Humidity, 'f', 2, 64),
		Pressure:    strconv.FormatFloat(r.Pressure, 'f', 2, 64),
		Measured:    domain.FormatMeasured(r.MeasuredAt),
	})
}

// PushMotion posts r to /api/motion.
func (c *Client) PushMotion(ctx context.Context, r domain.MotionReading) error {
	return c.post(ctx, "/api/motion", motionPayload{
		Count:    r.Count,
		SensorNo: r.SensorNo,
		Measured: domain.FormatMeasured(r.MeasuredAt),
	})
}

func (c *Client) post(ctx context.Context, path string, body interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(path)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	switch code := resp.StatusCode(); {
	case code >= http.StatusInternalServerError:
		return fmt.Errorf("post %s: server error %d after %d attempts", path, code, resp.Request.Attempt)
	case code >= http.StatusBadRequest:
		return fmt.Errorf("post %s: %w (status %d)", path, ErrRejected, code)
	}
	return nil
}
