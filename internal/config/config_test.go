package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config fixture: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Band.Name != "Metallica" {
		t.Errorf("Band.Name = %q, want default", cfg.Band.Name)
	}
	if cfg.Similarity.Threshold != 0.6 {
		t.Errorf("Similarity.Threshold = %v, want 0.6", cfg.Similarity.Threshold)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
band:
  name: Iron Maiden
  members: [Bruce Dickinson, Steve Harris]
ai:
  provider: gemini
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Band.Name != "Iron Maiden" {
		t.Errorf("Band.Name = %q", cfg.Band.Name)
	}
	if cfg.AI.Provider != "gemini" {
		t.Errorf("AI.Provider = %q", cfg.AI.Provider)
	}
	if cfg.History.Path != "./riffwire.db" {
		t.Errorf("History.Path = %q, want default preserved", cfg.History.Path)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
publish:
  endpoint: https://file.example.com/api
  api_key: file-key
`)
	t.Setenv("PUBLISH_API_URL", "https://env.example.com/api")
	t.Setenv("PUBLISH_API_KEY", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Publish.Endpoint != "https://env.example.com/api" {
		t.Errorf("Endpoint = %q, want env value", cfg.Publish.Endpoint)
	}
	if cfg.Publish.APIKey != "file-key" {
		t.Errorf("APIKey = %q, empty env must not override", cfg.Publish.APIKey)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		cfg := DefaultConfig()
		cfg.Publish.Endpoint = "https://api.example.com/news"
		cfg.Publish.APIKey = "k"
		cfg.AI.OpenAI.APIKey = "ok"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing endpoint", func(c *Config) { c.Publish.Endpoint = "" }, true},
		{"missing publish key", func(c *Config) { c.Publish.APIKey = "" }, true},
		{"missing provider key", func(c *Config) { c.AI.OpenAI.APIKey = "" }, true},
		{"unknown provider", func(c *Config) { c.AI.Provider = "llama" }, true},
		{
			"cohere provider with its key",
			func(c *Config) { c.AI.Provider = "cohere"; c.AI.Cohere.APIKey = "ck" },
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
