// Package config loads graph-rag settings.
//
// Sources, lowest precedence first: built-in defaults, an optional YAML file,
// a .env file in the working directory, and the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"

	ProviderAuto   = "auto"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderNone   = "none"
)

type Config struct {
	Environment string          `yaml:"environment" validate:"oneof=development production"`
	LogLevel    string          `yaml:"log_level"`
	Graph       GraphConfig     `yaml:"graph"`
	LLM         LLMConfig       `yaml:"llm"`
	Retrieval   RetrievalConfig `yaml:"retrieval"`
	Server      ServerConfig    `yaml:"server"`
	MCP         MCPConfig       `yaml:"mcp"`
	Drive       DriveConfig     `yaml:"drive"`
	Tracing     TracingConfig   `yaml:"tracing"`
}

type GraphConfig struct {
	Backend        string `yaml:"backend" validate:"oneof=file redis postgres"`
	Path           string `yaml:"path" validate:"required_if=Backend file"`
	RedisAddr      string `yaml:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword  string `yaml:"redis_password"`
	RedisDB        int    `yaml:"redis_db" validate:"gte=0"`
	RedisKey       string `yaml:"redis_key"`
	DatabaseURL    string `yaml:"database_url" validate:"required_if=Backend postgres"`
	DatabaseDriver string `yaml:"database_driver" validate:"oneof=postgres pgx"`
}

type LLMConfig struct {
	Provider       string  `yaml:"provider" validate:"oneof=auto gemini openai ollama none"`
	GeminiAPIKey   string  `yaml:"gemini_api_key"`
	GeminiModel    string  `yaml:"gemini_model"`
	GeminiBaseURL  string  `yaml:"gemini_base_url"`
	OpenAIAPIKey   string  `yaml:"openai_api_key"`
	OpenAIModel    string  `yaml:"openai_model"`
	OpenAIBaseURL  string  `yaml:"openai_base_url"`
	SynthesisModel string  `yaml:"synthesis_model"`
	OllamaBaseURL  string  `yaml:"ollama_base_url"`
	OllamaModel    string  `yaml:"ollama_model"`
	Temperature    float64 `yaml:"temperature" validate:"gte=0,lte=2"`
}

type RetrievalConfig struct {
	TopK int `yaml:"top_k" validate:"gte=1"`
	Hops int `yaml:"hops" validate:"gte=0"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

type MCPConfig struct {
	Addr   string `yaml:"addr" validate:"required"`
	APIURL string `yaml:"api_url" validate:"required,url"`
}

type DriveConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
	TokenFile    string `yaml:"token_file"`
	FolderID     string `yaml:"folder_id"`
}

// TracingConfig selects the span exporter installed by the binaries.
type TracingConfig struct {
	Exporter    string `yaml:"exporter" validate:"oneof=none stdout otlp"`
	Endpoint    string `yaml:"endpoint" validate:"required_if=Exporter otlp"`
	ServiceName string `yaml:"service_name"`
}

// Load resolves the configuration. An empty path falls back to
// $GRAPH_RAG_CONFIG; no file at all is fine.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if path == "" {
		path = os.Getenv("GRAPH_RAG_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if c.Graph.Backend == "" {
		c.Graph.Backend = BackendFile
	}
	if c.Graph.Path == "" {
		c.Graph.Path = "data/graph.json"
	}
	c.Graph.Path = GraphFilePath(c.Graph.Path)
	if c.Graph.RedisKey == "" {
		c.Graph.RedisKey = "graph-rag:graph"
	}
	if c.Graph.DatabaseDriver == "" {
		c.Graph.DatabaseDriver = "postgres"
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderAuto
	}
	if c.LLM.GeminiModel == "" {
		c.LLM.GeminiModel = "gemini-2.5-flash"
	}
	if c.LLM.GeminiBaseURL == "" {
		c.LLM.GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	}
	if c.LLM.OpenAIModel == "" {
		c.LLM.OpenAIModel = "gpt-4o-mini"
	}
	if c.LLM.OllamaModel == "" {
		c.LLM.OllamaModel = "llama3"
	}

	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = 3
	}
	if c.Retrieval.Hops == 0 {
		c.Retrieval.Hops = 2
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.MCP.Addr == "" {
		c.MCP.Addr = ":8080"
	}
	if c.MCP.APIURL == "" {
		c.MCP.APIURL = "http://localhost:8000"
	}

	if c.Drive.RedirectURL == "" {
		c.Drive.RedirectURL = "urn:ietf:wg:oauth:2.0:oob"
	}
	if c.Drive.TokenFile == "" {
		c.Drive.TokenFile = "data/drive_token.json"
	}

	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = "none"
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "graph-rag"
	}
}

// GraphFilePath treats anything that isn't a .json file as a directory that
// holds graph.json.
func GraphFilePath(path string) string {
	if strings.HasSuffix(path, ".json") {
		return path
	}
	return filepath.Join(path, "graph.json")
}
