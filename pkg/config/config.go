// Package config loads application settings from an optional YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds every knob the application reads.
type Config struct {
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Chat      ChatConfig      `yaml:"chat"`
	Memory    MemoryConfig    `yaml:"memory"`
	Tools     ToolsConfig     `yaml:"tools"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type OpenAIConfig struct {
	APIKey      string   `yaml:"api_key"`
	Model       string   `yaml:"model"`
	BaseURL     string   `yaml:"base_url"`
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`

	EmbeddingAPIKey  string `yaml:"embedding_api_key"`
	EmbeddingBaseURL string `yaml:"embedding_base_url"`
}

type AnthropicConfig struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

type ChatConfig struct {
	Provider           string `yaml:"provider"`
	MaxContextMessages int    `yaml:"max_context_messages"`
	PromptsDir         string `yaml:"prompts_dir"`
}

type MemoryConfig struct {
	UseVectorDB bool   `yaml:"use_vector_db"`
	PostgresURL string `yaml:"postgres_url"`
}

type ToolsConfig struct {
	Dir   string `yaml:"dir"`
	Watch bool   `yaml:"watch"`
}

type TelemetryConfig struct {
	Endpoint    string `yaml:"endpoint"`
	Environment string `yaml:"environment"`
}

// Default returns the built-in settings used when neither the file nor the
// environment says otherwise.
func Default() *Config {
	temp := 0.7
	return &Config{
		OpenAI: OpenAIConfig{
			Model:       "gpt-4-turbo-preview",
			Temperature: &temp,
			MaxTokens:   2000,
		},
		Anthropic: AnthropicConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 4096,
		},
		Chat: ChatConfig{
			Provider:           "openai",
			MaxContextMessages: 10,
		},
		Telemetry: TelemetryConfig{
			Environment: "development",
		},
	}
}

// Load merges defaults, the YAML file at path (when non-empty) and
// environment variable overrides, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if cfg.Chat.MaxContextMessages <= 0 {
		cfg.Chat.MaxContextMessages = 10
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&c.OpenAI.Model, "OPENAI_MODEL")
	setString(&c.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&c.OpenAI.EmbeddingAPIKey, "OPENAI_EMBEDDING_API_KEY")
	setString(&c.OpenAI.EmbeddingBaseURL, "OPENAI_EMBEDDING_BASE_URL")
	setString(&c.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	setString(&c.Anthropic.Model, "ANTHROPIC_MODEL")
	setString(&c.Chat.Provider, "CHAT_PROVIDER")
	setString(&c.Memory.PostgresURL, "POSTGRES_URL")
	setString(&c.Tools.Dir, "TOOLS_DIR")
	setString(&c.Telemetry.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")

	if v, ok := lookupFloat("OPENAI_TEMPERATURE"); ok {
		c.OpenAI.Temperature = &v
	}
	if v, ok := lookupInt("OPENAI_MAX_TOKENS"); ok {
		c.OpenAI.MaxTokens = v
	}
	if v, ok := lookupInt("MAX_CONTEXT_MESSAGES"); ok {
		c.Chat.MaxContextMessages = v
	}
	if v, ok := lookupBool("USE_VECTOR_DB"); ok {
		c.Memory.UseVectorDB = v
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func lookupFloat(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func lookupInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func lookupBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}
