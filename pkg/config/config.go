// Package config defines the application configuration: YAML file with
// environment variable expansion, per-section defaults and validation.
package config

import (
	"fmt"
	"time"

	"github.com/kadirpekel/lector/pkg/observability"
)

type Config struct {
	LLM           LLMConfig           `yaml:"llm"`
	Embedder      EmbedderConfig      `yaml:"embedder"`
	VectorStore   VectorStoreConfig   `yaml:"vector_store"`
	RAG           RAGConfig           `yaml:"rag"`
	Preload       PreloadConfig       `yaml:"preload"`
	Session       SessionConfig       `yaml:"session"`
	Server        ServerConfig        `yaml:"server"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
}

type EmbedderConfig struct {
	Provider  string        `yaml:"provider"`
	Model     string        `yaml:"model"`
	APIKey    string        `yaml:"api_key"`
	BaseURL   string        `yaml:"base_url"`
	Dimension int           `yaml:"dimension"`
	BatchSize int           `yaml:"batch_size"`
	Timeout   time.Duration `yaml:"timeout"`
}

type VectorStoreConfig struct {
	// Provider selects the backend: "chromem" (embedded) or "qdrant".
	Provider string `yaml:"provider"`

	// Path enables on-disk persistence for the embedded store.
	Path string `yaml:"path,omitempty"`

	Host   string `yaml:"host,omitempty"`
	Port   int    `yaml:"port,omitempty"`
	APIKey string `yaml:"api_key,omitempty"`
	UseTLS bool   `yaml:"use_tls,omitempty"`
}

type RAGConfig struct {
	ChunkStrategy  string  `yaml:"chunk_strategy"`
	ChunkSize      int     `yaml:"chunk_size"`
	ChunkOverlap   int     `yaml:"chunk_overlap"`
	TopK           int     `yaml:"top_k"`
	ScoreThreshold float32 `yaml:"score_threshold"`
}

type PreloadConfig struct {
	// Directory of plain-text knowledge files read at session start.
	// Absence is non-fatal; the session proceeds without preloaded retrieval.
	Directory  string `yaml:"directory"`
	Collection string `yaml:"collection"`
	Watch      bool   `yaml:"watch"`
}

type SessionConfig struct {
	MaxIterations      int `yaml:"max_iterations"`
	HistoryTokenBudget int `yaml:"history_token_budget"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type ObservabilityConfig struct {
	Tracer  observability.TracerConfig  `yaml:"tracer"`
	Metrics observability.MetricsConfig `yaml:"metrics"`
}

func (c *Config) SetDefaults() {
	c.LLM.SetDefaults()
	c.Embedder.SetDefaults()
	c.VectorStore.SetDefaults()
	c.RAG.SetDefaults()
	c.Preload.SetDefaults()
	c.Session.SetDefaults()
	c.Server.SetDefaults()
}

func (c *Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if err := c.Embedder.Validate(); err != nil {
		return fmt.Errorf("embedder: %w", err)
	}
	if err := c.VectorStore.Validate(); err != nil {
		return fmt.Errorf("vector_store: %w", err)
	}
	if err := c.RAG.Validate(); err != nil {
		return fmt.Errorf("rag: %w", err)
	}
	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}

func (c *LLMConfig) SetDefaults() {
	if c.Provider == "" {
		c.Provider = "openai"
	}
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 4096
	}
	if c.Timeout == 0 {
		c.Timeout = 120 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
}

func (c *LLMConfig) Validate() error {
	if c.Provider != "openai" {
		return fmt.Errorf("unsupported provider '%s'", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	return nil
}

func (c *EmbedderConfig) SetDefaults() {
	if c.Provider == "" {
		c.Provider = "openai"
	}
	if c.Model == "" {
		c.Model = "text-embedding-3-small"
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.Dimension == 0 {
		c.Dimension = 1536
	}
	if c.BatchSize == 0 {
		c.BatchSize = 100
	}
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
}

func (c *EmbedderConfig) Validate() error {
	if c.Provider != "openai" {
		return fmt.Errorf("unsupported provider '%s'", c.Provider)
	}
	if c.Dimension <= 0 {
		return fmt.Errorf("dimension must be positive")
	}
	return nil
}

func (c *VectorStoreConfig) SetDefaults() {
	if c.Provider == "" {
		c.Provider = "chromem"
	}
	if c.Provider == "qdrant" {
		if c.Host == "" {
			c.Host = "localhost"
		}
		if c.Port == 0 {
			c.Port = 6334
		}
	}
}

func (c *VectorStoreConfig) Validate() error {
	switch c.Provider {
	case "chromem", "qdrant":
		return nil
	default:
		return fmt.Errorf("unsupported provider '%s'", c.Provider)
	}
}

func (c *RAGConfig) SetDefaults() {
	if c.ChunkStrategy == "" {
		c.ChunkStrategy = "overlapping"
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = 100
	}
	if c.ChunkOverlap == 0 {
		c.ChunkOverlap = 10
	}
	if c.TopK == 0 {
		c.TopK = 5
	}
}

func (c *RAGConfig) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap must be in [0, chunk_size)")
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive")
	}
	return nil
}

func (c *PreloadConfig) SetDefaults() {
	if c.Collection == "" {
		c.Collection = "knowledge"
	}
}

func (c *SessionConfig) SetDefaults() {
	if c.MaxIterations == 0 {
		c.MaxIterations = 8
	}
	if c.HistoryTokenBudget == 0 {
		c.HistoryTokenBudget = 8000
	}
}

func (c *SessionConfig) Validate() error {
	if c.MaxIterations <= 0 {
		return fmt.Errorf("max_iterations must be positive")
	}
	if c.HistoryTokenBudget <= 0 {
		return fmt.Errorf("history_token_budget must be positive")
	}
	return nil
}

func (c *ServerConfig) SetDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
}
