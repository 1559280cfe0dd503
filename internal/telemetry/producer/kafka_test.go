package producer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"housemonitor/internal/audit"
)

type fakeWriter struct {
	msgs     []kafka.Message
	err      error
	closed   bool
	deadline bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestNewKafkaProducer_Disabled(t *testing.T) {
	if p := NewKafkaProducer(nil, "topic"); p != nil {
		t.Error("no brokers should disable the producer")
	}
	if p := NewKafkaProducer([]string{"localhost:9092"}, ""); p != nil {
		t.Error("empty topic should disable the producer")
	}
	var p *KafkaProducer
	if err := p.Emit(context.Background(), &audit.Event{}); err != nil {
		t.Errorf("nil producer Emit = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("nil producer Close = %v", err)
	}
}

func TestKafkaProducer_Emit(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaProducer{writer: w, topic: "housemonitor-audit"}
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	ev := &audit.Event{ID: "ev-1", Type: audit.LoginSuccess, UserID: 1, IP: "10.0.0.1", CreatedAt: at}

	if err := p.Emit(context.Background(), ev); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "login_success" {
		t.Errorf("key = %q", msg.Key)
	}
	if !msg.Time.Equal(at) {
		t.Errorf("time = %v", msg.Time)
	}
	var decoded audit.Event
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if decoded.ID != "ev-1" || decoded.IP != "10.0.0.1" {
		t.Errorf("decoded = %+v", decoded)
	}
	if !w.deadline {
		t.Error("write should be bounded by a deadline")
	}
}

func TestKafkaProducer_EmitError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := &KafkaProducer{writer: w}
	if err := p.Emit(context.Background(), &audit.Event{Type: audit.Logout}); err == nil {
		t.Error("Emit should surface writer errors")
	}
	if err := p.Close(); err != nil || !w.closed {
		t.Errorf("Close = %v, closed = %v", err, w.closed)
	}
}

func TestKafkaProducer_AsProducer(t *testing.T) {
	w := &fakeWriter{}
	var p Producer = &KafkaProducer{writer: w, topic: "housemonitor-audit"}
	if err := p.Emit(context.Background(), &audit.Event{Type: audit.Logout}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(w.msgs) != 1 || !w.closed {
		t.Errorf("msgs = %d, closed = %v", len(w.msgs), w.closed)
	}
}
