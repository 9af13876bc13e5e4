package ai

import (
	"context"
	"fmt"
)

// Provider is the interface every AI backend implements. The pipeline only
// ever talks to this; which backend is live is a config decision.
type Provider interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Name() string // "openai", "gemini", or "cohere"
}

// ChatRequest is a provider-agnostic chat completion request.
type ChatRequest struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
	JSONMode    bool // ask the backend for JSON-constrained output
}

// ChatResponse is a provider-agnostic chat completion response.
type ChatResponse struct {
	Content    string
	TokensUsed int
	Model      string
	Provider   string
}

// Message is a single chat message.
type Message struct {
	Role    string // "system" or "user"
	Content string
}

// ProviderConfig selects and configures one backend.
type ProviderConfig struct {
	Kind     string // "openai", "gemini", "cohere"
	APIKey   string
	Model    string
	Endpoint string // OpenAI-compatible base URL override; unused by the others
}

// NewProvider builds the backend named by cfg.Kind.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	switch cfg.Kind {
	case "", "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.Endpoint), nil
	case "gemini":
		return NewGeminiProvider(cfg.APIKey, cfg.Model), nil
	case "cohere":
		return NewCohereProvider(cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Kind)
	}
}
