package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderGoogle {
		t.Errorf("expected default provider %q, got %q", ProviderGoogle, cfg.Provider)
	}
	if cfg.Model != "gemini-2.0-flash" {
		t.Errorf("expected default model gemini-2.0-flash, got %q", cfg.Model)
	}
	if cfg.Timeout != time.Minute {
		t.Errorf("expected default timeout 1m, got %s", cfg.Timeout)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shopsage.yml")

	original := DefaultConfig()
	original.Provider = ProviderOpenAI
	original.Model = "gpt-4o"
	original.Temperature = 0.7
	original.Timeout = 15 * time.Second
	original.FlowFiles = []string{"custom/*.yaml"}
	original.Log.Format = "console"
	original.Server.AllowAllOrigins = true

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.Model != original.Model {
		t.Errorf("model: got %q, want %q", loaded.Model, original.Model)
	}
	if loaded.Temperature != original.Temperature {
		t.Errorf("temperature: got %f, want %f", loaded.Temperature, original.Temperature)
	}
	if loaded.Timeout != original.Timeout {
		t.Errorf("timeout: got %s, want %s", loaded.Timeout, original.Timeout)
	}
	if len(loaded.FlowFiles) != 1 || loaded.FlowFiles[0] != "custom/*.yaml" {
		t.Errorf("flow_files: got %v", loaded.FlowFiles)
	}
	if loaded.Log.Format != "console" {
		t.Errorf("log.format: got %q", loaded.Log.Format)
	}
	if !loaded.Server.AllowAllOrigins {
		t.Error("server.allow_all_origins lost in round-trip")
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Provider != ProviderGoogle {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
}

func TestLoadPicksPresetModel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shopsage.yml")
	if err := os.WriteFile(path, []byte("provider: openai\nquality: lite\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("model: got %q, want gpt-4o-mini", cfg.Model)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shopsage.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("SHOPSAGE_PROVIDER", "ollama")
	t.Setenv("SHOPSAGE_LOG_LEVEL", "debug")
	t.Setenv("SHOPSAGE_SERVER_PORT", "9090")
	t.Setenv("SHOPSAGE_REQUESTS_PER_MINUTE", "5")
	t.Setenv("SHOPSAGE_SERVER_JOURNAL_RETENTION", "72h")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Provider != ProviderOllama {
		t.Errorf("env override failed: got %q, want %q", loaded.Provider, ProviderOllama)
	}
	if loaded.Log.Level != "debug" {
		t.Errorf("log.level: got %q, want debug", loaded.Log.Level)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("server.port: got %d, want 9090", loaded.Server.Port)
	}
	if loaded.RequestsPerMinute != 5 {
		t.Errorf("requests_per_minute: got %d, want 5", loaded.RequestsPerMinute)
	}
	if loaded.Server.JournalRetention != 72*time.Hour {
		t.Errorf("server.journal_retention: got %s, want 72h", loaded.Server.JournalRetention)
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"SHOPSAGE_PROVIDER":                 "provider",
		"SHOPSAGE_MAX_TOKENS":               "max_tokens",
		"SHOPSAGE_LOG_FORMAT":               "log.format",
		"SHOPSAGE_SERVER_ALLOW_ALL_ORIGINS": "server.allow_all_origins",
		"SHOPSAGE_SERVER_JOURNAL_PATH":      "server.journal_path",
		"SHOPSAGE_SERVER_JOURNAL_RETENTION": "server.journal_retention",
	}
	for in, want := range tests {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty provider", func(c *Config) { c.Provider = "" }},
		{"invalid provider", func(c *Config) { c.Provider = "invalid" }},
		{"empty model", func(c *Config) { c.Model = "" }},
		{"invalid quality", func(c *Config) { c.Quality = "ultra" }},
		{"temperature", func(c *Config) { c.Temperature = 3 }},
		{"negative max tokens", func(c *Config) { c.MaxTokens = -1 }},
		{"negative rpm", func(c *Config) { c.RequestsPerMinute = -1 }},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
		{"port", func(c *Config) { c.Server.Port = 70000 }},
		{"negative journal retention", func(c *Config) { c.Server.JournalRetention = -time.Hour }},
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig should be valid, got: %v", err)
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset(ProviderAnthropic, QualityLite)
	if p.Model != "claude-haiku-4-5-20251001" {
		t.Errorf("expected haiku model, got %q", p.Model)
	}

	p = GetPreset(ProviderGoogle, QualityMax)
	if p.Model != "gemini-2.5-pro" {
		t.Errorf("expected gemini-2.5-pro, got %q", p.Model)
	}

	p = GetPreset("unknown", QualityLite)
	if p.Model != "gemini-2.0-flash" {
		t.Errorf("expected fallback to gemini-2.0-flash, got %q", p.Model)
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderAnthropic, "ANTHROPIC_API_KEY"},
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderGoogle, "GOOGLE_API_KEY"},
		{ProviderOpenRouter, "OPENROUTER_API_KEY"},
		{ProviderMiniMax, "MINIMAX_API_KEY"},
		{ProviderOllama, ""},
	}
	for _, tt := range tests {
		got := APIKeyEnvVar(tt.provider)
		if got != tt.want {
			t.Errorf("APIKeyEnvVar(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"flows/**/*.yaml", []string{"flows/**/*.yaml"}},
		{"", nil},
		{"  ,  , ", nil},
	}
	for _, tt := range tests {
		got := splitAndTrim(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("splitAndTrim(%q) len = %d, want %d", tt.input, len(got), len(tt.want))
			continue
		}
		for i, v := range got {
			if v != tt.want[i] {
				t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
			}
		}
	}
}
