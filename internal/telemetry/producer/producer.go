// Package producer publishes audit events to a message broker.
package producer

import "housemonitor/internal/audit"

// Producer publishes audit events. Callers use it best-effort: log and ignore errors.
type Producer interface {
	audit.Emitter
	// Close releases resources (e.g. Kafka writer). Safe to call if already closed.
	Close() error
}
