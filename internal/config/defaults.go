package config

import "time"

// QualityPreset names the model to use for a quality tier.
type QualityPreset struct {
	Model string
}

// qualityPresets maps each provider+quality combination to its model.
var qualityPresets = map[ProviderType]map[QualityTier]QualityPreset{
	ProviderGoogle: {
		QualityLite:   {Model: "gemini-2.0-flash-lite"},
		QualityNormal: {Model: "gemini-2.0-flash"},
		QualityMax:    {Model: "gemini-2.5-pro"},
	},
	ProviderAnthropic: {
		QualityLite:   {Model: "claude-haiku-4-5-20251001"},
		QualityNormal: {Model: "claude-sonnet-4-5-20250929"},
		QualityMax:    {Model: "claude-sonnet-4-5-20250929"},
	},
	ProviderOpenAI: {
		QualityLite:   {Model: "gpt-4o-mini"},
		QualityNormal: {Model: "gpt-4o"},
		QualityMax:    {Model: "gpt-4o"},
	},
	ProviderOllama: {
		QualityLite:   {Model: "llama3"},
		QualityNormal: {Model: "llama3"},
		QualityMax:    {Model: "llama3:70b"},
	},
	ProviderMiniMax: {
		QualityLite:   {Model: "MiniMax-M2.5-highspeed"},
		QualityNormal: {Model: "MiniMax-M2.5"},
		QualityMax:    {Model: "MiniMax-M2.5"},
	},
	ProviderOpenRouter: {
		QualityLite:   {Model: "google/gemini-2.0-flash-lite-001"},
		QualityNormal: {Model: "google/gemini-2.0-flash-001"},
		QualityMax:    {Model: "anthropic/claude-sonnet-4.5"},
	},
}

// DefaultFlowFiles are the globs searched for file-defined flows.
var DefaultFlowFiles = []string{"flows/**/*.yaml", "flows/**/*.yml"}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderGoogle,
		Model:             "gemini-2.0-flash",
		Quality:           QualityNormal,
		Temperature:       0.2,
		MaxTokens:         2048,
		RequestsPerMinute: 60,
		Timeout:           60 * time.Second,
		FlowFiles:         append([]string(nil), DefaultFlowFiles...),
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Server: ServerConfig{
			Port:        8080,
			JournalPath: ".shopsage/journal.db",
		},
	}
}

// GetPreset returns the quality preset for the given provider and tier.
// Returns the Normal Google preset if the combination is not found.
func GetPreset(provider ProviderType, tier QualityTier) QualityPreset {
	if tiers, ok := qualityPresets[provider]; ok {
		if preset, ok := tiers[tier]; ok {
			return preset
		}
	}
	return qualityPresets[ProviderGoogle][QualityNormal]
}
