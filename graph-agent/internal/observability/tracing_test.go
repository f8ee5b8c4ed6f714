package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/config"
)

// resetGlobalTracerProvider leaves a no-op provider installed after t.
func resetGlobalTracerProvider(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })
}

func TestInitTracingNoneInstallsNothing(t *testing.T) {
	resetGlobalTracerProvider(t)
	before := otel.GetTracerProvider()

	shutdown, err := InitTracing(context.Background(), config.TracingConfig{Exporter: "none"})
	require.NoError(t, err)
	assert.Equal(t, before, otel.GetTracerProvider())
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracingUnknownExporter(t *testing.T) {
	_, err := InitTracing(context.Background(), config.TracingConfig{Exporter: "zipkin"})
	assert.ErrorIs(t, err, ErrUnknownExporter)
}

func TestInitTracingStdoutExportsSpans(t *testing.T) {
	resetGlobalTracerProvider(t)
	var buf bytes.Buffer

	shutdown, err := InitTracing(context.Background(),
		config.TracingConfig{Exporter: "stdout", ServiceName: "graph-rag-test"},
		WithStdoutWriter(&buf), WithEnvironment("development"))
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "graph.query")
	assert.True(t, span.IsRecording())
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "graph.query")
	assert.Contains(t, buf.String(), "graph-rag-test")
}

func TestTraceHookRecordsSpanEvents(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	ctx, span := tp.Tracer("test").Start(context.Background(), "graph.query")
	TraceHook().Emit(ctx, EventRetrieveCompleted, "docs", 2, "query", "iPhone")
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	events := ended[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, EventRetrieveCompleted, events[0].Name)
	assert.Len(t, events[0].Attributes, 2)
}
