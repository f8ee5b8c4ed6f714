package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/config"
)

var ErrUnknownExporter = errors.New("unknown trace exporter")

// TracingOption adjusts InitTracing.
type TracingOption func(*tracingOptions)

type tracingOptions struct {
	stdout      io.Writer
	environment string
}

// WithStdoutWriter redirects the stdout exporter.
func WithStdoutWriter(w io.Writer) TracingOption {
	return func(o *tracingOptions) { o.stdout = w }
}

// WithEnvironment tags every span's resource with the deployment environment.
func WithEnvironment(env string) TracingOption {
	return func(o *tracingOptions) { o.environment = env }
}

// InitTracing installs the global TracerProvider selected by cfg. With the
// "none" exporter nothing is installed and the returned shutdown is a no-op.
// Callers must run shutdown before exit so batched spans are flushed.
func InitTracing(ctx context.Context, cfg config.TracingConfig, opts ...TracingOption) (func(context.Context) error, error) {
	o := tracingOptions{stdout: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		exporter sdktrace.SpanExporter
		err      error
	)
	switch cfg.Exporter {
	case "", "none":
		return func(context.Context) error { return nil }, nil
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(o.stdout), stdouttrace.WithPrettyPrint())
	case "otlp":
		exporter, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.Endpoint),
			otlptracegrpc.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.Exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s exporter: %w", cfg.Exporter, err)
	}

	attrs := []attribute.KeyValue{attribute.String("service.name", cfg.ServiceName)}
	if o.environment != "" {
		attrs = append(attrs, attribute.String("deployment.environment", o.environment))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes("", attrs...)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return tp.Shutdown, nil
}
