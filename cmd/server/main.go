// server runs the housemonitor HTTP service: sensor ingestion, dashboard login and window queries.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"housemonitor/internal/audit"
	"housemonitor/internal/config"
	"housemonitor/internal/db"
	healthhandler "housemonitor/internal/health/handler"
	identityhandler "housemonitor/internal/identity/handler"
	identityservice "housemonitor/internal/identity/service"
	"housemonitor/internal/logger"
	readinghandler "housemonitor/internal/reading/handler"
	readingrepo "housemonitor/internal/reading/repository"
	readingservice "housemonitor/internal/reading/service"
	"housemonitor/internal/security"
	"housemonitor/internal/server"
	"housemonitor/internal/server/middleware"
	sessionrepo "housemonitor/internal/session/repository"
	"housemonitor/internal/session/store"
	telemetryotel "housemonitor/internal/telemetry/otel"
	"housemonitor/internal/telemetry/producer"
	userdomain "housemonitor/internal/user/domain"
	userrepo "housemonitor/internal/user/repository"
)

const (
	shutdownTimeout   = 15 * time.Second
	sessionSweepEvery = 10 * time.Minute
)

func main() {
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

	if err := run(cfg, log); err != nil {
		log.Fatal("server", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	timeout := cfg.QueryTimeout()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.OTLPInsecure)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	providers.SetGlobal()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer conn.Close()

	health := healthhandler.NewHandler(log)
	health.AddCheck("postgres", healthhandler.PingCheck(conn))

	var rdb *redis.Client
	if cfg.UsesRedis() {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		health.AddCheck("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	var readings readingrepo.Repository
	if cfg.ReadingsBackend == "influx" {
		influx := readingrepo.NewInfluxRepository(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket, loc, timeout)
		defer influx.Close()
		health.AddCheck("influxdb", influx.Ping)
		readings = influx
	} else {
		readings = readingrepo.NewPostgresRepository(conn, timeout)
	}

	var sessions store.Store
	if cfg.SessionStore == "redis" {
		sessions = store.NewRedisStore(rdb)
	} else {
		mem := store.NewMemoryStore()
		go sweepSessions(ctx, mem, log)
		sessions = mem
	}

	users := userrepo.NewPostgresRepository(conn)
	if err := users.Ensure(ctx, userdomain.DashboardUserID); err != nil {
		log.Warn("ensure dashboard user", zap.Error(err))
	}

	emitters := []audit.Emitter{telemetryotel.NewAuditEmitter(providers.LoggerProvider)}
	var auditProducer producer.Producer
	if kp := producer.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.AuditKafkaTopic); kp != nil {
		auditProducer = kp
		emitters = append(emitters, auditProducer)
		log.Info("audit events published to kafka", zap.String("topic", cfg.AuditKafkaTopic))
	}
	auditLog := audit.NewLogger(log, middleware.ClientIPFrom, middleware.RequestIDFrom, emitters...)

	verifier := security.NewVerifier(cfg.APIKey, cfg.DashboardPassword, cfg.DashboardPasswordHash, security.NewHasher(cfg.BcryptCost))
	if cfg.APIKey == "" {
		log.Warn("HOUSEMONITOR_API_KEY is not set; all ingestion requests will be rejected")
	}
	if !verifier.DashboardPasswordConfigured() {
		log.Warn("no dashboard password configured; logins will be rejected")
	}

	authSvc := identityservice.NewAuthService(sessions, sessionrepo.NewPostgresRepository(conn, timeout), users, verifier, auditLog, log)

	var limiter func(http.Handler) http.Handler
	if cfg.LoginRateLimit > 0 {
		limiter = middleware.RateLimit(middleware.NewRedisCounter(rdb), cfg.LoginRateLimit, cfg.RateWindow(), "hm:ratelimit:login", log)
	}

	trustedProxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxyList())
	if err != nil {
		return fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}

	handler := server.NewRouter(server.Deps{
		Log:            log,
		Verifier:       verifier,
		Ingest:         readinghandler.NewIngestHandler(readingservice.NewIngestService(readings, readingservice.ClockIn(loc)), loc, log),
		Dashboard:      readinghandler.NewDashboardHandler(readingservice.NewQueryService(readings), loc, log),
		Identity:       identityhandler.NewHandler(authSvc, identityhandler.CookieConfig{Secure: cfg.CookieSecure}, log),
		Health:         health,
		LoginLimiter:   limiter,
		CORSOrigins:    cfg.CORSOrigins(),
		TrustedProxies: trustedProxies,
		ForceHTTPS:     cfg.ForceHTTPS,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("readings_backend", cfg.ReadingsBackend),
			zap.String("session_store", cfg.SessionStore),
			zap.String("timezone", loc.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	}

	log.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}

	// Let in-flight audit emits finish before closing their sinks.
	time.Sleep(audit.ShutdownDrainDuration)
	if auditProducer != nil {
		if err := auditProducer.Close(); err != nil {
			log.Warn("kafka producer close", zap.Error(err))
		}
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Warn("otel shutdown", zap.Error(err))
	}
	log.Info("HTTP server stopped")
	return nil
}

func sweepSessions(ctx context.Context, s *store.MemoryStore, log *zap.Logger) {
	ticker := time.NewTicker(sessionSweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Debug("expired sessions removed", zap.Int("count", n))
			}
		}
	}
}
