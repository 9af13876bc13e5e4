package ai

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

// CohereProvider implements Provider using the Cohere Chat API via the
// official SDK.
type CohereProvider struct {
	client *cohereclient.Client
	model  string
}

func NewCohereProvider(apiKey, model string) *CohereProvider {
	if model == "" {
		model = "command-r-08-2024"
	}

	// Force HTTP/1.1: the Cohere edge intermittently resets HTTP/2 streams.
	httpClient := &http.Client{
		Timeout: 2 * time.Minute,
		Transport: &http.Transport{
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			ForceAttemptHTTP2: false,
		},
	}

	return &CohereProvider{
		client: cohereclient.NewClient(
			cohereclient.WithToken(apiKey),
			cohereclient.WithHTTPClient(httpClient),
		),
		model: model,
	}
}

func (c *CohereProvider) Name() string { return "cohere" }

func (c *CohereProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	// Cohere separates the system preamble from the user message.
	var preamble string
	var message strings.Builder
	for _, m := range req.Messages {
		if m.Role == "system" && preamble == "" {
			preamble = m.Content
			continue
		}
		if message.Len() > 0 {
			message.WriteString("\n")
		}
		message.WriteString(m.Content)
	}

	chatReq := &cohere.ChatRequest{
		Message:     message.String(),
		Model:       strPtr(c.model),
		Temperature: &req.Temperature,
	}
	if preamble != "" {
		chatReq.Preamble = &preamble
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = &req.MaxTokens
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &cohere.ResponseFormat{Type: "json_object", JsonObject: &cohere.JsonResponseFormat{}}
	}

	start := time.Now()
	resp, err := c.client.Chat(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("cohere request failed (model=%s, elapsed=%s): %w", c.model, time.Since(start), err)
	}
	if resp == nil {
		return nil, fmt.Errorf("cohere returned empty response")
	}

	tokensUsed := 0
	if resp.Meta != nil && resp.Meta.BilledUnits != nil {
		if in := resp.Meta.BilledUnits.InputTokens; in != nil {
			tokensUsed += int(*in)
		}
		if out := resp.Meta.BilledUnits.OutputTokens; out != nil {
			tokensUsed += int(*out)
		}
	}

	slog.Debug("Cohere request completed", "model", c.model, "elapsed", time.Since(start), "tokens", tokensUsed)

	return &ChatResponse{
		Content:    resp.Text,
		TokensUsed: tokensUsed,
		Model:      c.model,
		Provider:   "cohere",
	}, nil
}

func strPtr(s string) *string { return &s }
