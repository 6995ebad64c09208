package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// IndexConfig configures the per-user TF-IDF index.
type IndexConfig struct {
	MaxFeatures  int      `yaml:"max_features"`
	MinDocuments int      `yaml:"min_documents"`
	Stopwords    string   `yaml:"stopwords"`
	ExtraStop    []string `yaml:"extra_stopwords,omitempty"`
}

// QueryConfig configures ranking and result rendering.
type QueryConfig struct {
	DefaultLimit   int     `yaml:"default_limit"`
	RelevanceFloor float64 `yaml:"relevance_floor"`
	ExcerptChars   int     `yaml:"excerpt_chars"`
	SummaryField   string  `yaml:"summary_field"`
}

// TrendsConfig configures the trend reporter.
type TrendsConfig struct {
	DefaultWindow int `yaml:"default_window"`
}

// AnthropicConfig holds configuration for the Anthropic summarizer.
type AnthropicConfig struct {
	BaseURL     string `yaml:"base_url,omitempty"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	MaxTokens   int64  `yaml:"max_tokens"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
}

// SummarizerConfig selects and configures the summarization oracle.
type SummarizerConfig struct {
	Type         string           `yaml:"type"`
	MaxSentences int              `yaml:"max_sentences"`
	TimeoutSecs  int              `yaml:"timeout_secs"`
	Anthropic    *AnthropicConfig `yaml:"anthropic,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr                string `yaml:"addr"`
	ReadTimeoutSecs     int    `yaml:"read_timeout_secs"`
	WriteTimeoutSecs    int    `yaml:"write_timeout_secs"`
	ShutdownTimeoutSecs int    `yaml:"shutdown_timeout_secs"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Index      IndexConfig      `yaml:"index"`
	Query      QueryConfig      `yaml:"query"`
	Trends     TrendsConfig     `yaml:"trends"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/recall/config.yaml.
// If neither exists, it writes defaults to ~/.config/recall/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "recall", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Index.MaxFeatures == 0 {
		cfg.Index.MaxFeatures = 1000
	}
	if cfg.Index.MinDocuments == 0 {
		cfg.Index.MinDocuments = 2
	}
	if cfg.Index.Stopwords == "" {
		cfg.Index.Stopwords = "english"
	}
	if cfg.Query.DefaultLimit == 0 {
		cfg.Query.DefaultLimit = 5
	}
	if cfg.Query.RelevanceFloor == 0 {
		cfg.Query.RelevanceFloor = 0.1
	}
	if cfg.Query.ExcerptChars == 0 {
		cfg.Query.ExcerptChars = 200
	}
	if cfg.Query.SummaryField == "" {
		cfg.Query.SummaryField = "llm_summary"
	}
	if cfg.Trends.DefaultWindow == 0 {
		cfg.Trends.DefaultWindow = 4
	}
	if cfg.Summarizer.Type == "" {
		cfg.Summarizer.Type = "frequency"
	}
	if cfg.Summarizer.MaxSentences == 0 {
		cfg.Summarizer.MaxSentences = 3
	}
	if cfg.Summarizer.TimeoutSecs == 0 {
		cfg.Summarizer.TimeoutSecs = 30
	}
	if cfg.Summarizer.Type == "anthropic" && cfg.Summarizer.Anthropic == nil {
		cfg.Summarizer.Anthropic = &AnthropicConfig{}
	}
	if a := cfg.Summarizer.Anthropic; a != nil {
		if a.APIKeyEnv == "" {
			a.APIKeyEnv = "ANTHROPIC_API_KEY"
		}
		if a.Model == "" {
			a.Model = "claude-3-5-haiku-latest"
		}
		if a.MaxTokens == 0 {
			a.MaxTokens = 300
		}
		if a.TimeoutSecs == 0 {
			a.TimeoutSecs = 30
		}
		if a.MaxRetries == 0 {
			a.MaxRetries = 2
		}
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeoutSecs == 0 {
		cfg.Server.ReadTimeoutSecs = 15
	}
	if cfg.Server.WriteTimeoutSecs == 0 {
		cfg.Server.WriteTimeoutSecs = 60
	}
	if cfg.Server.ShutdownTimeoutSecs == 0 {
		cfg.Server.ShutdownTimeoutSecs = 10
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}
