// worker consumes audit events from Kafka, logs them and forwards them to the OTel log pipeline.
// Requires KAFKA_BROKERS; AUDIT_KAFKA_TOPIC and KAFKA_GROUP_ID have defaults.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"housemonitor/internal/audit"
	"housemonitor/internal/config"
	"housemonitor/internal/logger"
	"housemonitor/internal/telemetry/consumer"
	telemetryotel "housemonitor/internal/telemetry/otel"
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
		log.Fatal("worker", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	brokers := cfg.KafkaBrokersList()
	if len(brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, cfg.ServiceName+"-worker", cfg.OTLPInsecure)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	events, err := providers.MeterProvider.Meter("housemonitor/worker").Int64Counter(
		"housemonitor.audit.events",
		metric.WithDescription("Audit events consumed from Kafka, by type."),
	)
	if err != nil {
		return fmt.Errorf("otel counter: %w", err)
	}
	forward := telemetryotel.NewAuditEmitter(providers.LoggerProvider)

	c, err := consumer.NewKafkaConsumer(brokers, cfg.AuditKafkaTopic, cfg.KafkaGroupID, func(ctx context.Context, e *audit.Event) error {
		log.Info("audit event",
			zap.String("id", e.ID),
			zap.String("type", string(e.Type)),
			zap.Int64("user_id", e.UserID),
			zap.String("ip", e.IP),
			zap.String("request_id", e.RequestID),
			zap.String("detail", e.Detail),
			zap.Time("created_at", e.CreatedAt),
		)
		events.Add(ctx, 1, metric.WithAttributes(attribute.String("type", string(e.Type))))
		return forward.Emit(ctx, e)
	}, log)
	if err != nil {
		return err
	}
	defer c.Close()

	log.Info("worker consuming",
		zap.String("topic", cfg.AuditKafkaTopic),
		zap.String("group", cfg.KafkaGroupID),
		zap.Strings("brokers", brokers),
	)
	if err := c.Run(ctx); err != nil {
		return err
	}
	log.Info("worker stopped")
	return nil
}
