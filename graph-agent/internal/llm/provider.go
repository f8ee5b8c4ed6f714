package llm

import (
	"fmt"

	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/config"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/logging"
	"go.uber.org/zap"
)

const defaultOpenAISynthesisModel = "gpt-3.5-turbo"

// Capabilities are the two model roles of the pipeline. Either may be nil,
// meaning that role has no model.
type Capabilities struct {
	Provider   string
	Extraction Completer
	Synthesis  Completer
}

// FromConfig selects the model provider once at startup. In auto mode the
// first configured of Gemini, OpenAI and Ollama is used for extraction;
// synthesis prefers OpenAI.
func FromConfig(cfg config.LLMConfig, logger *zap.Logger) (Capabilities, error) {
	logger = logging.OrNop(logger).Named("llm")

	provider := cfg.Provider
	if provider == config.ProviderAuto || provider == "" {
		provider = detect(cfg)
	}

	var caps Capabilities
	caps.Provider = provider

	switch provider {
	case config.ProviderNone:
		logger.Info("no language model configured, using local synthesis only")
		return caps, nil

	case config.ProviderGemini:
		extract, err := NewOpenAI(OpenAIConfig{
			APIKey:      cfg.GeminiAPIKey,
			BaseURL:     cfg.GeminiBaseURL,
			Model:       cfg.GeminiModel,
			Temperature: float32(cfg.Temperature),
		}, logger)
		if err != nil {
			return caps, fmt.Errorf("gemini: %w", err)
		}
		caps.Extraction = extract
		caps.Synthesis = extract
		if cfg.OpenAIAPIKey != "" {
			synth, err := openAISynthesis(cfg, logger)
			if err != nil {
				return caps, err
			}
			caps.Synthesis = synth
		}

	case config.ProviderOpenAI:
		extract, err := NewOpenAI(OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			Temperature: float32(cfg.Temperature),
		}, logger)
		if err != nil {
			return caps, err
		}
		synth, err := openAISynthesis(cfg, logger)
		if err != nil {
			return caps, err
		}
		caps.Extraction = extract
		caps.Synthesis = synth

	case config.ProviderOllama:
		if cfg.OllamaBaseURL == "" {
			return caps, fmt.Errorf("ollama: %w: OLLAMA_BASE_URL not set", ErrNoProvider)
		}
		extract, err := NewOllama(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.Temperature)
		if err != nil {
			return caps, err
		}
		caps.Extraction = extract
		caps.Synthesis = extract
		if cfg.SynthesisModel != "" && cfg.SynthesisModel != cfg.OllamaModel {
			synth, err := NewOllama(cfg.OllamaBaseURL, cfg.SynthesisModel, cfg.Temperature)
			if err != nil {
				return caps, err
			}
			caps.Synthesis = synth
		}

	default:
		return caps, fmt.Errorf("unknown llm provider %q", provider)
	}

	logger.Info("language model selected", zap.String("provider", provider))
	caps.Extraction = Traced("extraction", caps.Extraction)
	caps.Synthesis = Traced("synthesis", caps.Synthesis)
	return caps, nil
}

func detect(cfg config.LLMConfig) string {
	switch {
	case cfg.GeminiAPIKey != "":
		return config.ProviderGemini
	case cfg.OpenAIAPIKey != "":
		return config.ProviderOpenAI
	case cfg.OllamaBaseURL != "":
		return config.ProviderOllama
	default:
		return config.ProviderNone
	}
}

func openAISynthesis(cfg config.LLMConfig, logger *zap.Logger) (*OpenAI, error) {
	model := cfg.SynthesisModel
	if model == "" {
		model = defaultOpenAISynthesisModel
	}
	return NewOpenAI(OpenAIConfig{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       model,
		Temperature: float32(cfg.Temperature),
	}, logger)
}
