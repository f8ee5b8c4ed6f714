package config

import (
	"fmt"
	"os"
	"strconv"
)

func (c *Config) applyEnv() error {
	setString(&c.Environment, "APP_ENV")
	setString(&c.LogLevel, "LOG_LEVEL")

	setString(&c.Graph.Backend, "GRAPH_BACKEND")
	setString(&c.Graph.Path, "VECTORSTORE_PATH")
	setString(&c.Graph.Path, "GRAPH_PATH")
	setString(&c.Graph.RedisAddr, "REDIS_URL")
	setString(&c.Graph.RedisPassword, "REDIS_PASSWORD")
	setString(&c.Graph.RedisKey, "GRAPH_REDIS_KEY")
	setString(&c.Graph.DatabaseURL, "DATABASE_URL")
	setString(&c.Graph.DatabaseDriver, "DATABASE_DRIVER")

	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.LLM.GeminiModel, "GEMINI_MODEL")
	setString(&c.LLM.GeminiBaseURL, "GEMINI_BASE_URL")
	setString(&c.LLM.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&c.LLM.OpenAIModel, "OPENAI_MODEL")
	setString(&c.LLM.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&c.LLM.SynthesisModel, "SYNTHESIS_MODEL")
	setString(&c.LLM.OllamaBaseURL, "OLLAMA_BASE_URL")
	setString(&c.LLM.OllamaModel, "OLLAMA_MODEL")

	setString(&c.Server.Addr, "API_ADDR")
	setString(&c.MCP.Addr, "MCP_ADDR")
	setString(&c.MCP.APIURL, "GRAPH_RAG_API_URL")

	setString(&c.Drive.ClientID, "GOOGLE_CLIENT_ID")
	setString(&c.Drive.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&c.Drive.RedirectURL, "GOOGLE_REDIRECT_URL")
	setString(&c.Drive.TokenFile, "GOOGLE_TOKEN_FILE")
	setString(&c.Drive.FolderID, "GOOGLE_DRIVE_FOLDER_ID")

	setString(&c.Tracing.Exporter, "OTEL_TRACES_EXPORTER")
	setString(&c.Tracing.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&c.Tracing.ServiceName, "OTEL_SERVICE_NAME")

	if err := setInt(&c.Graph.RedisDB, "REDIS_DB"); err != nil {
		return err
	}
	if err := setInt(&c.Retrieval.TopK, "RETRIEVAL_TOP_K"); err != nil {
		return err
	}
	if err := setInt(&c.Retrieval.Hops, "RETRIEVAL_HOPS"); err != nil {
		return err
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("LLM_TEMPERATURE: %w", err)
		}
		c.LLM.Temperature = f
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
