package otel

import (
	"context"
	"testing"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"housemonitor/internal/audit"
)

func TestNewAuditEmitter_NilProvider_ReturnsNoop(t *testing.T) {
	em := NewAuditEmitter(nil)
	if em == nil {
		t.Fatal("NewAuditEmitter(nil) returned nil")
	}
	if err := em.Emit(context.Background(), &audit.Event{Type: audit.Logout}); err != nil {
		t.Errorf("noop Emit: %v", err)
	}
}

func TestEmit_NilEvent_ReturnsNil(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	defer func() { _ = provider.Shutdown(context.Background()) }()
	if err := NewAuditEmitter(provider).Emit(context.Background(), nil); err != nil {
		t.Errorf("Emit(ctx, nil): %v", err)
	}
}

// recordCapture stores the last Record passed to Emit for assertion.
type recordCapture struct {
	rec otellog.Record
}

func (r *recordCapture) Emit(ctx context.Context, rec otellog.Record) {
	r.rec = rec
}

func TestEmit_AttributeAndBodyMapping(t *testing.T) {
	capture := &recordCapture{}
	em := NewAuditEmitterWithLogger(capture)
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	event := &audit.Event{
		ID:         "ev-1",
		Type:       audit.LoginFailure,
		UserID:     1,
		RequestID:  "req-1",
		IP:         "10.0.0.1",
		DeviceInfo: "Firefox",
		CreatedAt:  at,
	}
	if err := em.Emit(context.Background(), event); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	rec := capture.rec
	if !rec.Timestamp().Equal(at) {
		t.Errorf("timestamp = %v, want %v", rec.Timestamp(), at)
	}
	if rec.Body().AsString() != "login_failure" {
		t.Errorf("body = %q", rec.Body().AsString())
	}
	if rec.Severity() != otellog.SeverityWarn {
		t.Errorf("severity = %v, want warn", rec.Severity())
	}
	attrs := map[string]otellog.Value{}
	rec.WalkAttributes(func(kv otellog.KeyValue) bool {
		attrs[kv.Key] = kv.Value
		return true
	})
	if attrs["ip"].AsString() != "10.0.0.1" || attrs["request_id"].AsString() != "req-1" {
		t.Errorf("attributes = %v", attrs)
	}
	if attrs["user_id"].AsInt64() != 1 {
		t.Errorf("user_id = %v", attrs["user_id"])
	}
	if _, ok := attrs["detail"]; ok {
		t.Error("empty detail should not be recorded")
	}
}

func TestEmit_DefaultsTimestamp(t *testing.T) {
	capture := &recordCapture{}
	_ = NewAuditEmitterWithLogger(capture).Emit(context.Background(), &audit.Event{Type: audit.Logout})
	if capture.rec.Timestamp().IsZero() {
		t.Error("timestamp should default to now")
	}
	if capture.rec.Severity() != otellog.SeverityInfo {
		t.Errorf("severity = %v, want info", capture.rec.Severity())
	}
}
