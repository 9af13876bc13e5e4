package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Publish    PublishConfig    `yaml:"publish"`
	AI         AIConfig         `yaml:"ai"`
	Band       BandConfig       `yaml:"band"`
	History    HistoryConfig    `yaml:"history"`
	Logging    LoggingConfig    `yaml:"logging"`
	Similarity SimilarityConfig `yaml:"similarity"`
}

type PublishConfig struct {
	Endpoint     string `yaml:"endpoint"`
	APIKey       string `yaml:"api_key"`
	DefaultImage string `yaml:"default_image"`
}

type AIConfig struct {
	Provider string         `yaml:"provider"`
	OpenAI   ProviderConfig `yaml:"openai"`
	Gemini   ProviderConfig `yaml:"gemini"`
	Cohere   ProviderConfig `yaml:"cohere"`
}

type ProviderConfig struct {
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Endpoint string `yaml:"endpoint"`
}

type BandConfig struct {
	Name          string   `yaml:"name"`
	Members       []string `yaml:"members"`
	FormerMembers []string `yaml:"former_members"`
	SideProjects  []string `yaml:"side_projects"`
}

type HistoryConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type SimilarityConfig struct {
	Threshold float64 `yaml:"threshold"`
	NGramSize int     `yaml:"ngram_size"`
}

func DefaultConfig() Config {
	return Config{
		Publish: PublishConfig{
			DefaultImage: "/images/news/default.jpg",
		},
		AI: AIConfig{
			Provider: "openai",
		},
		Band: BandConfig{
			Name:          "Metallica",
			Members:       []string{"James Hetfield", "Lars Ulrich", "Kirk Hammett", "Robert Trujillo"},
			FormerMembers: []string{"Dave Mustaine", "Cliff Burton", "Jason Newsted"},
			SideProjects:  []string{"Blackened Whiskey"},
		},
		History: HistoryConfig{
			Path: "./riffwire.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Similarity: SimilarityConfig{
			Threshold: 0.6,
			NGramSize: 3,
		},
	}
}

// Load reads a YAML config file and merges it over defaults, then applies
// environment variable overrides. If the file does not exist, defaults plus
// environment are returned without error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("No config file found, using defaults", "path", path)
			cfg.applyEnv()
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv lets deployment secrets override file values. The file is for
// shape, the environment is for credentials.
func (c *Config) applyEnv() {
	if v := os.Getenv("PUBLISH_API_URL"); v != "" {
		c.Publish.Endpoint = v
	}
	if v := os.Getenv("PUBLISH_API_KEY"); v != "" {
		c.Publish.APIKey = v
	}
	if v := os.Getenv("AI_PROVIDER"); v != "" {
		c.AI.Provider = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.AI.OpenAI.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.AI.Gemini.APIKey = v
	}
	if v := os.Getenv("COHERE_API_KEY"); v != "" {
		c.AI.Cohere.APIKey = v
	}
}

// Validate checks everything the run cannot proceed without. It runs before
// any network traffic so misconfiguration fails the process immediately.
func (c *Config) Validate() error {
	if c.Publish.Endpoint == "" {
		return fmt.Errorf("publish endpoint is not set (PUBLISH_API_URL)")
	}
	if c.Publish.APIKey == "" {
		return fmt.Errorf("publish API key is not set (PUBLISH_API_KEY)")
	}
	if c.Band.Name == "" {
		return fmt.Errorf("band name is not set")
	}

	switch c.AI.Provider {
	case "openai":
		if c.AI.OpenAI.APIKey == "" {
			return fmt.Errorf("openai API key is not set (OPENAI_API_KEY)")
		}
	case "gemini":
		if c.AI.Gemini.APIKey == "" {
			return fmt.Errorf("gemini API key is not set (GEMINI_API_KEY)")
		}
	case "cohere":
		if c.AI.Cohere.APIKey == "" {
			return fmt.Errorf("cohere API key is not set (COHERE_API_KEY)")
		}
	default:
		return fmt.Errorf("unknown AI provider %q", c.AI.Provider)
	}

	return nil
}
