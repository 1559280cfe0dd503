// seed prepares a database for local use: it ensures the dashboard user row exists and
// optionally writes demo readings. With -hash-password it only prints a bcrypt hash for
// HOUSEMONITOR_DASHBOARD_PASSWORD_HASH and exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"go.uber.org/zap"

	"housemonitor/internal/config"
	"housemonitor/internal/db"
	"housemonitor/internal/logger"
	"housemonitor/internal/reading/domain"
	readingrepo "housemonitor/internal/reading/repository"
	"housemonitor/internal/security"
	userdomain "housemonitor/internal/user/domain"
	userrepo "housemonitor/internal/user/repository"
)

// sampleEvery matches the sensor nodes' cron interval.
const sampleEvery = 10 * time.Minute

func main() {
	hashPassword := flag.String("hash-password", "", "Print a bcrypt hash of this password and exit")
	demoDays := flag.Int("demo-days", 0, "Write this many days of demo climate and motion readings ending now")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	if *hashPassword != "" {
		hash, err := security.NewHasher(cfg.BcryptCost).Hash([]byte(*hashPassword))
		if err != nil {
			fmt.Fprintln(os.Stderr, "hash password:", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db", zap.Error(err))
	}
	defer conn.Close()
	ctx := context.Background()

	users := userrepo.NewPostgresRepository(conn)
	if err := users.Ensure(ctx, userdomain.DashboardUserID); err != nil {
		log.Fatal("ensure dashboard user", zap.Error(err))
	}
	u, err := users.GetByID(ctx, userdomain.DashboardUserID)
	if err != nil || u == nil {
		log.Fatal("load dashboard user", zap.Error(err))
	}
	lastLogin := "never"
	if u.LastLoginAt != nil {
		lastLogin = u.LastLoginAt.Format(time.RFC3339)
	}
	log.Info("dashboard user present", zap.Int64("id", u.ID), zap.String("last_login", lastLogin))

	if *demoDays <= 0 {
		return
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("timezone", zap.Error(err))
	}
	var repo readingrepo.Repository
	if cfg.ReadingsBackend == "influx" {
		influx := readingrepo.NewInfluxRepository(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket, loc, cfg.QueryTimeout())
		defer influx.Close()
		repo = influx
	} else {
		repo = readingrepo.NewPostgresRepository(conn, cfg.QueryTimeout())
	}

	n, err := writeDemoReadings(ctx, repo, time.Now().In(loc), *demoDays)
	if err != nil {
		log.Fatal("demo readings", zap.Int("written", n), zap.Error(err))
	}
	log.Info("demo readings written", zap.Int("count", n), zap.String("backend", cfg.ReadingsBackend))
}

// writeDemoReadings writes one climate and one motion sample per interval for days days up to end.
// Values follow a daily cycle so the charts have a recognizable shape.
func writeDemoReadings(ctx context.Context, repo readingrepo.Repository, end time.Time, days int) (int, error) {
	end = end.Truncate(sampleEvery)
	start := end.Add(-time.Duration(days) * 24 * time.Hour)
	written := 0
	for t := start; !t.After(end); t = t.Add(sampleEvery) {
		phase := 2 * math.Pi * float64(t.Hour()*60+t.Minute()) / (24 * 60)
		climate := domain.ClimateReading{
			Temperature: math.Round((22+4*math.Sin(phase-math.Pi/2))*100) / 100,
			Humidity:    math.Round((50-10*math.Sin(phase-math.Pi/2))*100) / 100,
			Pressure:    math.Round((1012+3*math.Cos(phase/2))*100) / 100,
			MeasuredAt:  t,
			RecordedAt:  t,
		}
		if err := repo.InsertClimate(ctx, climate); err != nil {
			return written, err
		}
		count := 0
		if h := t.Hour(); h >= 7 && h < 23 {
			count = (t.Minute()/10 + h) % 7
		}
		if err := repo.InsertMotion(ctx, domain.MotionReading{SensorNo: 1, Count: count, MeasuredAt: t, RecordedAt: t}); err != nil {
			return written, err
		}
		written += 2
	}
	return written, nil
}
