// sensorpush posts one reading to the ingestion API, the way a sensor node's cron job does.
//
//	sensorpush -kind climate -temperature 21.5 -humidity 48 -pressure 1013.2
//	sensorpush -kind motion -sensor-no 2 -count 3
//
// The API key comes from HOUSEMONITOR_API_KEY and the base URL from HOUSEMONITOR_API_URL.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"housemonitor/internal/config"
	"housemonitor/internal/ingest/client"
	"housemonitor/internal/logger"
	"housemonitor/internal/reading/domain"
)

func main() {
	kind := flag.String("kind", "climate", "Reading kind: climate or motion")
	temperature := flag.Float64("temperature", 0, "Temperature in °C (climate)")
	humidity := flag.Float64("humidity", 0, "Relative humidity in % (climate)")
	pressure := flag.Float64("pressure", 0, "Pressure in hPa (climate)")
	sensorNo := flag.Int("sensor-no", 1, "Motion sensor number (motion)")
	count := flag.Int("count", 0, "Pulse count since the last push (motion)")
	url := flag.String("url", "", "Base URL; overrides HOUSEMONITOR_API_URL")
	retries := flag.Int("retries", 6, "Retries after the first attempt on transport errors and 5xx")
	wait := flag.Duration("wait", 10*time.Second, "Initial backoff between retries")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if cfg.APIKey == "" {
		log.Fatal("HOUSEMONITOR_API_KEY is required")
	}
	baseURL := cfg.APIURL
	if *url != "" {
		baseURL = *url
	}

	c := client.New(client.Config{
		BaseURL:  baseURL,
		APIKey:   cfg.APIKey,
		Retries:  *retries,
		WaitTime: *wait,
	})

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("timezone", zap.Error(err))
	}
	now := time.Now().In(loc)
	ctx := context.Background()

	switch *kind {
	case "climate":
		err = c.PushClimate(ctx, domain.ClimateReading{
			Temperature: *temperature,
			Humidity:    *humidity,
			Pressure:    *pressure,
			MeasuredAt:  now,
		})
	case "motion":
		err = c.PushMotion(ctx, domain.MotionReading{SensorNo: *sensorNo, Count: *count, MeasuredAt: now})
	default:
		log.Fatal("unknown kind", zap.String("kind", *kind))
	}
	if err != nil {
		if errors.Is(err, client.ErrRejected) {
			log.Fatal("reading rejected", zap.String("kind", *kind), zap.Error(err))
		}
		log.Fatal("push failed", zap.String("kind", *kind), zap.Error(err))
	}
	log.Info("reading pushed", zap.String("kind", *kind), zap.String("measured", domain.FormatMeasured(now)))
}
