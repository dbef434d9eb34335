package config

import "time"

// QualityTier trades speed and cost against answer quality when picking a
// model preset.
type QualityTier string

const (
	QualityLite   QualityTier = "lite"
	QualityNormal QualityTier = "normal"
	QualityMax    QualityTier = "max"
)

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderAnthropic  ProviderType = "anthropic"
	ProviderOpenAI     ProviderType = "openai"
	ProviderGoogle     ProviderType = "google"
	ProviderOllama     ProviderType = "ollama"
	ProviderMiniMax    ProviderType = "minimax"
	ProviderOpenRouter ProviderType = "openrouter"
)

// Config is the top-level configuration, corresponding to shopsage.yml.
type Config struct {
	Provider          ProviderType  `yaml:"provider" koanf:"provider"`
	Model             string        `yaml:"model" koanf:"model"`
	Quality           QualityTier   `yaml:"quality" koanf:"quality"`
	Temperature       float64       `yaml:"temperature" koanf:"temperature"`
	MaxTokens         int           `yaml:"max_tokens" koanf:"max_tokens"`
	RequestsPerMinute int           `yaml:"requests_per_minute" koanf:"requests_per_minute"`
	Timeout           time.Duration `yaml:"timeout" koanf:"timeout"`
	FlowFiles         []string      `yaml:"flow_files" koanf:"flow_files"`
	Log               LogConfig     `yaml:"log" koanf:"log"`
	Server            ServerConfig  `yaml:"server" koanf:"server"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port            int    `yaml:"port" koanf:"port"`
	AllowAllOrigins bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	JournalPath     string `yaml:"journal_path" koanf:"journal_path"`
	// JournalRetention prunes journal entries older than this; zero keeps all.
	JournalRetention time.Duration `yaml:"journal_retention" koanf:"journal_retention"`
}
