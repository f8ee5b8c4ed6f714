package llm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "graph-rag.llm"

type traced struct {
	name string
	next Completer
}

// Traced wraps c so every call runs inside a span named after the capability.
// A nil c stays nil.
func Traced(name string, c Completer) Completer {
	if c == nil {
		return nil
	}
	return &traced{name: name, next: c}
}

func (t *traced) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "llm."+t.name)
	defer span.End()
	span.SetAttributes(attribute.Int("llm.prompt_chars", len(prompt)))

	out, err := t.next.Complete(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.Int("llm.response_chars", len(out)))
	return out, nil
}
