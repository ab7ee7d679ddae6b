// Package events carries diagnostic events out of the aggregation components.
// Components emit named events; the sink decides whether they become log
// lines, Kafka messages or test assertions.
package events

import (
	"context"
	"log/slog"
	"sync"
)

// Event is one diagnostic occurrence.
type Event struct {
	Name  string
	Level slog.Level
	Attrs []slog.Attr
}

// Attr returns the value of the named attribute.
func (e Event) Attr(key string) (slog.Value, bool) {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return slog.Value{}, false
}

// Debug builds a debug-level event.
func Debug(name string, attrs ...slog.Attr) Event {
	return Event{Name: name, Level: slog.LevelDebug, Attrs: attrs}
}

// Info builds an info-level event.
func Info(name string, attrs ...slog.Attr) Event {
	return Event{Name: name, Level: slog.LevelInfo, Attrs: attrs}
}

// Warn builds a warn-level event.
func Warn(name string, attrs ...slog.Attr) Event {
	return Event{Name: name, Level: slog.LevelWarn, Attrs: attrs}
}

// Sink receives events. Emit must not block on slow consumers.
type Sink interface {
	Emit(ctx context.Context, ev Event)
}

// Discard drops every event.
var Discard Sink = discard{}

type discard struct{}

func (discard) Emit(context.Context, Event) {}

type multi []Sink

// Multi fans every event out to each sink in order.
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multi) Emit(ctx context.Context, ev Event) {
	for _, s := range m {
		s.Emit(ctx, ev)
	}
}

// LogSink writes events to a slog logger at their own level.
type LogSink struct {
	log *slog.Logger
}

// NewLogSink wraps log.
func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Emit(ctx context.Context, ev Event) {
	s.log.LogAttrs(ctx, ev.Level, ev.Name, ev.Attrs...)
}

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Named returns the recorded events called name.
func (r *Recorder) Named(name string) []Event {
	var out []Event
	for _, ev := range r.Events() {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}
