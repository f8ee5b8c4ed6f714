// Package observability carries lifecycle events and metrics out of the
// retrieval pipeline without letting them influence its outcome.
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	EventDocumentProcessed = "document.processed"
	EventDocumentFailed    = "document.failed"
	EventGraphSaved        = "graph.saved"
	EventGraphLoaded       = "graph.loaded"
	EventRetrieveCompleted = "retrieve.completed"
	EventRetrieveEmpty     = "retrieve.empty"
	EventSynthesisModel    = "synthesis.model"
	EventSynthesisFallback = "synthesis.fallback"
	EventSynthesisLocal    = "synthesis.local"
	EventAnswerReady       = "answer.ready"
)

type Event struct {
	Name   string
	Time   time.Time
	Fields map[string]any
}

// NewEvent stamps an event with the current time. fields is a flat
// key/value list; a trailing key without value is dropped.
func NewEvent(name string, fields ...any) Event {
	ev := Event{Name: name, Time: time.Now(), Fields: make(map[string]any, len(fields)/2)}
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ev.Fields[key] = fields[i+1]
	}
	return ev
}

// Hook receives lifecycle events. Call it through Emit, never directly.
type Hook func(ctx context.Context, ev Event)

// Emit delivers ev. A nil hook is a no-op and a panicking hook is swallowed.
func (h Hook) Emit(ctx context.Context, name string, fields ...any) {
	if h == nil {
		return
	}
	defer func() { _ = recover() }()
	h(ctx, NewEvent(name, fields...))
}

// Multi fans an event out to every non-nil hook. One hook panicking does
// not stop the others.
func Multi(hooks ...Hook) Hook {
	var live []Hook
	for _, h := range hooks {
		if h != nil {
			live = append(live, h)
		}
	}
	if len(live) == 0 {
		return nil
	}
	return func(ctx context.Context, ev Event) {
		for _, h := range live {
			func() {
				defer func() { _ = recover() }()
				h(ctx, ev)
			}()
		}
	}
}

// LogHook writes each event at debug level.
func LogHook(logger *zap.Logger) Hook {
	if logger == nil {
		return nil
	}
	return func(_ context.Context, ev Event) {
		fields := make([]zap.Field, 0, len(ev.Fields)+1)
		fields = append(fields, zap.String("event", ev.Name))
		for k, v := range ev.Fields {
			fields = append(fields, zap.Any(k, v))
		}
		logger.Debug("pipeline event", fields...)
	}
}

// TraceHook records events on the span carried by ctx, if any.
func TraceHook() Hook {
	return func(ctx context.Context, ev Event) {
		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}
		attrs := make([]attribute.KeyValue, 0, len(ev.Fields))
		for k, v := range ev.Fields {
			attrs = append(attrs, toAttribute(k, v))
		}
		span.AddEvent(ev.Name, trace.WithTimestamp(ev.Time), trace.WithAttributes(attrs...))
	}
}

func toAttribute(key string, v any) attribute.KeyValue {
	switch val := v.(type) {
	case string:
		return attribute.String(key, val)
	case int:
		return attribute.Int(key, val)
	case int64:
		return attribute.Int64(key, val)
	case bool:
		return attribute.Bool(key, val)
	case float64:
		return attribute.Float64(key, val)
	case error:
		return attribute.String(key, val.Error())
	default:
		return attribute.String(key, "")
	}
}
