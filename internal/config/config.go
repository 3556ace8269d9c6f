// Package config provides configuration loading and structs for the KnowledgeBase Agent.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application. It is loaded once at
// startup and passed by reference into each component; there is no ambient
// global lookup.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Answer    AnswerConfig    `yaml:"answer"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Sources   SourcesConfig   `yaml:"sources"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

// StorageConfig holds paths for the database and indices.
type StorageConfig struct {
	DatabasePath     string `yaml:"database_path"`
	VectorIndexPath  string `yaml:"vector_index_path"`
	KeywordIndexPath string `yaml:"keyword_index_path"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	// Provider selects the embedder: "openai" (any OpenAI-compatible
	// embeddings endpoint) or "offline" (deterministic local vectors,
	// demo mode).
	Provider       string `yaml:"provider"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	APIKeyEnv      string `yaml:"api_key_env"`
	Dimensions     int    `yaml:"dimensions"`
	CacheSize      int    `yaml:"cache_size"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// AnswerConfig holds chat-completion provider settings and the retry policy.
type AnswerConfig struct {
	// Provider selects the answering backend: "claude", "gemini",
	// "openai", or "demo" (no live calls, always degraded answers).
	Provider          string  `yaml:"provider"`
	BaseURL           string  `yaml:"base_url"`
	Model             string  `yaml:"model"`
	Temperature       float32 `yaml:"temperature"`
	MaxTokens         int     `yaml:"max_tokens"`
	APIKeyEnv         string  `yaml:"api_key_env"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	MaxRetries        int     `yaml:"max_retries"`
	InitialBackoffMS  int     `yaml:"initial_backoff_ms"`
	MaxBackoffMS      int     `yaml:"max_backoff_ms"`
	RequestsPerMinute int     `yaml:"requests_per_minute"`
}

// RetrievalConfig holds chunking and retrieval settings.
type RetrievalConfig struct {
	TopK         int `yaml:"top_k"`
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	// PromptBudget caps the total characters of chunk text included in an
	// assembled prompt.
	PromptBudget int `yaml:"prompt_budget"`
}

// SourcesConfig holds multi-source mode settings.
type SourcesConfig struct {
	PerSourceTimeoutSeconds int             `yaml:"per_source_timeout_seconds"`
	WebSearch               WebSearchConfig `yaml:"web_search"`
	CodingAssistant         ToggleConfig    `yaml:"coding_assistant"`
	Chat                    ToggleConfig    `yaml:"chat"`
}

// WebSearchConfig holds Google Custom Search settings for the web source.
type WebSearchConfig struct {
	Enabled     bool   `yaml:"enabled"`
	APIKeyEnv   string `yaml:"api_key_env"`
	EngineIDEnv string `yaml:"engine_id_env"`
	MaxResults  int    `yaml:"max_results"`
}

// ToggleConfig enables or disables an optional source.
type ToggleConfig struct {
	Enabled bool `yaml:"enabled"`
}

// WatchDirectory is one watched directory and the category its files are
// ingested under.
type WatchDirectory struct {
	Path     string `yaml:"path"`
	Category string `yaml:"category"`
}

// WatchConfig holds directory watch settings.
type WatchConfig struct {
	Directories []WatchDirectory `yaml:"directories"`
	Extensions  []string         `yaml:"extensions"`
	Recursive   *bool            `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.VectorIndexPath = expandPath(cfg.Storage.VectorIndexPath, configDir)
	cfg.Storage.KeywordIndexPath = expandPath(cfg.Storage.KeywordIndexPath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i].Path = expandPath(cfg.Watch.Directories[i].Path, configDir)
	}

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
