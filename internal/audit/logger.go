// Package audit records authentication events and fans them out to sinks.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContextExtractor pulls a request-scoped value (client IP, request id) from ctx.
type ContextExtractor func(context.Context) string

// AuditLogger records a single audit event. Used by the auth service.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, typ EventType, userID int64, deviceInfo, detail string)
}

// Logger implements AuditLogger: every event goes to the zap log and asynchronously to each emitter.
type Logger struct {
	log       *zap.Logger
	ip        ContextExtractor
	requestID ContextExtractor
	emitters  []Emitter
	nowF      func() time.Time
}

// NewLogger returns a Logger. ip and requestID may be nil; IP is then recorded as "unknown".
func NewLogger(log *zap.Logger, ip, requestID ContextExtractor, emitters ...Emitter) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{log: log, ip: ip, requestID: requestID, emitters: emitters, nowF: time.Now}
}

// LogEvent builds an Event from ctx and dispatches it.
func (l *Logger) LogEvent(ctx context.Context, typ EventType, userID int64, deviceInfo, detail string) {
	if l == nil {
		return
	}
	ev := &Event{
		ID:         uuid.New().String(),
		Type:       typ,
		UserID:     userID,
		IP:         "unknown",
		DeviceInfo: deviceInfo,
		Detail:     detail,
		CreatedAt:  l.nowF().UTC(),
	}
	if l.ip != nil {
		if ip := l.ip(ctx); ip != "" {
			ev.IP = ip
		}
	}
	if l.requestID != nil {
		ev.RequestID = l.requestID(ctx)
	}
	l.log.Info("audit",
		zap.String("event", string(ev.Type)),
		zap.Int64("user_id", ev.UserID),
		zap.String("ip", ev.IP),
		zap.String("request_id", ev.RequestID),
		zap.String("detail", ev.Detail))
	for _, e := range l.emitters {
		EmitAsync(e, l.log, ev)
	}
}
