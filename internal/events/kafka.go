package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes events as JSON messages keyed by event name.
type KafkaSink struct {
	w        messageWriter
	minLevel slog.Level
	log      *slog.Logger
}

type kafkaEvent struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Level     string         `json:"level"`
	Timestamp time.Time      `json:"timestamp"`
	Attrs     map[string]any `json:"attrs,omitempty"`
}

// NewKafkaSink creates an asynchronous writer for topic. Events below minLevel
// are not published.
func NewKafkaSink(brokers []string, topic string, minLevel slog.Level, log *slog.Logger) *KafkaSink {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		Async:        true,
		MaxAttempts:  3,
		BatchTimeout: 50 * time.Millisecond,
		Completion: func(_ []kafka.Message, err error) {
			if err != nil {
				log.Warn("publish events", slog.Any("err", err))
			}
		},
	}
	return newKafkaSink(w, minLevel, log)
}

func newKafkaSink(w messageWriter, minLevel slog.Level, log *slog.Logger) *KafkaSink {
	return &KafkaSink{w: w, minLevel: minLevel, log: log}
}

func (s *KafkaSink) Emit(ctx context.Context, ev Event) {
	if ev.Level < s.minLevel {
		return
	}

	payload := kafkaEvent{
		ID:        uuid.NewString(),
		Name:      ev.Name,
		Level:     ev.Level.String(),
		Timestamp: time.Now().UTC(),
	}
	if len(ev.Attrs) > 0 {
		payload.Attrs = make(map[string]any, len(ev.Attrs))
		for _, a := range ev.Attrs {
			payload.Attrs[a.Key] = attrValue(a.Value)
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn("marshal event", slog.String("event", ev.Name), slog.Any("err", err))
		return
	}

	// The request context may end before an async batch flushes.
	if err := s.w.WriteMessages(context.WithoutCancel(ctx), kafka.Message{Key: []byte(ev.Name), Value: data}); err != nil {
		s.log.Warn("write event", slog.String("event", ev.Name), slog.Any("err", err))
	}
}

// Close flushes pending messages.
func (s *KafkaSink) Close() error {
	return s.w.Close()
}

func attrValue(v slog.Value) any {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return v.Any()
	case slog.KindGroup:
		group := make(map[string]any, len(v.Group()))
		for _, a := range v.Group() {
			group[a.Key] = attrValue(a.Value)
		}
		return group
	case slog.KindDuration:
		return v.Duration().String()
	default:
		return v.Any()
	}
}
