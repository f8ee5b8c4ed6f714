package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// LangChain wraps any langchaingo model.
type LangChain struct {
	model       llms.Model
	temperature float64
}

func NewLangChain(model llms.Model, temperature float64) *LangChain {
	return &LangChain{model: model, temperature: temperature}
}

// NewOllama connects to a local Ollama server through langchaingo.
func NewOllama(baseURL, model string, temperature float64) (*LangChain, error) {
	m, err := ollama.New(
		ollama.WithServerURL(strings.TrimSuffix(baseURL, "/")),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ollama client: %w", err)
	}
	return NewLangChain(m, temperature), nil
}

func (l *LangChain) Complete(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, l.model, prompt, llms.WithTemperature(l.temperature))
	if err != nil {
		return "", fmt.Errorf("calling model: %w", err)
	}
	return out, nil
}
