// Package llm adapts external language models to a single capability:
// given a prompt, return text.
package llm

import (
	"context"
	"errors"
)

// ErrNoProvider means no model is configured for a capability.
var ErrNoProvider = errors.New("llm: no provider configured")

type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc lets a plain function act as a Completer.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
