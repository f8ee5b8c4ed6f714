package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/logging"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
}

// OpenAI talks to the chat completions API. Any OpenAI-compatible endpoint
// works, which is how Gemini is reached as well.
type OpenAI struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

func NewOpenAI(cfg OpenAIConfig, logger *zap.Logger) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key not set")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai: model not set")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAI{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      logging.OrNop(logger),
	}, nil
}

func (o *OpenAI) Model() string { return o.model }

func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	o.logger.Debug("generating text via OpenAI", zap.String("model", o.model))
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: o.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("OpenAI returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
