package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"housemonitor/internal/audit"
)

// recordEmitter is the part of otellog.Logger the audit emitter needs.
type recordEmitter interface {
	Emit(ctx context.Context, rec otellog.Record)
}

// NewAuditEmitter returns an audit.Emitter that sends events as OTel log records.
// If provider is nil, returns a no-op emitter.
func NewAuditEmitter(provider *sdklog.LoggerProvider) audit.Emitter {
	if provider == nil {
		return noopEmitter{}
	}
	return &auditEmitter{logger: provider.Logger("housemonitor.audit")}
}

// NewAuditEmitterWithLogger wraps an arbitrary record sink; used in tests.
func NewAuditEmitterWithLogger(logger recordEmitter) audit.Emitter {
	if logger == nil {
		return noopEmitter{}
	}
	return &auditEmitter{logger: logger}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *audit.Event) error { return nil }

type auditEmitter struct {
	logger recordEmitter
}

// Emit converts the audit event to an OTel log record and emits it.
func (e *auditEmitter) Emit(ctx context.Context, event *audit.Event) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	ts := event.CreatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	rec.SetTimestamp(ts)
	rec.SetBody(otellog.StringValue(string(event.Type)))
	rec.SetSeverity(severityFor(event.Type))
	rec.AddAttributes(
		otellog.String("event_id", event.ID),
		otellog.String("event_type", string(event.Type)),
		otellog.String("ip", event.IP),
	)
	if event.UserID != 0 {
		rec.AddAttributes(otellog.Int64("user_id", event.UserID))
	}
	if event.RequestID != "" {
		rec.AddAttributes(otellog.String("request_id", event.RequestID))
	}
	if event.DeviceInfo != "" {
		rec.AddAttributes(otellog.String("device_info", event.DeviceInfo))
	}
	if event.Detail != "" {
		rec.AddAttributes(otellog.String("detail", event.Detail))
	}
	e.logger.Emit(ctx, rec)
	return nil
}

func severityFor(t audit.EventType) otellog.Severity {
	switch t {
	case audit.LoginFailure, audit.CSRFRejected:
		return otellog.SeverityWarn
	}
	return otellog.SeverityInfo
}
