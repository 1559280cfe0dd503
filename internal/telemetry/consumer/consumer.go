// Package consumer reads audit events back off the Kafka topic the server produces to.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"housemonitor/internal/audit"
)

// messageReader is the part of *kafka.Reader the consumer uses.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Handler receives each decoded event. A returned error is logged; the message is not retried.
type Handler func(ctx context.Context, event *audit.Event) error

// Consumer decodes audit events from Kafka and hands them to a Handler.
type Consumer struct {
	reader  messageReader
	handler Handler
	log     *zap.Logger
	// backoff is the pause after a read error before the next attempt.
	backoff time.Duration
}

// NewKafkaConsumer creates a consumer-group reader on topic.
func NewKafkaConsumer(brokers []string, topic, groupID string, handler Handler, log *zap.Logger) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("consumer: at least one broker is required")
	}
	if topic == "" || groupID == "" {
		return nil, errors.New("consumer: topic and group id are required")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        time.Second,
		CommitInterval: time.Second,
	})
	return newConsumer(reader, handler, log), nil
}

func newConsumer(reader messageReader, handler Handler, log *zap.Logger) *Consumer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Consumer{reader: reader, handler: handler, log: log, backoff: time.Second}
}

// Run reads until ctx is cancelled. Malformed messages are logged and skipped.
// It returns nil on cancellation.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Warn("consumer: read failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.backoff):
			}
			continue
		}

		var event audit.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.log.Warn("consumer: skipping malformed event",
				zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset), zap.Error(err))
			continue
		}
		if event.Type == "" {
			c.log.Warn("consumer: skipping event without type", zap.Int64("offset", msg.Offset))
			continue
		}
		if err := c.handler(ctx, &event); err != nil {
			c.log.Warn("consumer: handler failed", zap.String("type", string(event.Type)), zap.Error(err))
		}
	}
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}
