package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1/chat/completions"

// OpenAI-compatible request/response wire types (unexported).

type oaChatRequest struct {
	Model          string      `json:"model"`
	Messages       []oaMessage `json:"messages"`
	Temperature    float64     `json:"temperature,omitempty"`
	MaxTokens      int         `json:"max_tokens,omitempty"`
	Stream         bool        `json:"stream"`
	ResponseFormat *oaRespFmt  `json:"response_format,omitempty"`
}

type oaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaRespFmt struct {
	Type string `json:"type"`
}

type oaChatResponse struct {
	Choices []oaChoice `json:"choices"`
	Usage   *oaUsage   `json:"usage,omitempty"`
	Model   string     `json:"model"`
}

type oaChoice struct {
	Message oaMessage `json:"message"`
}

type oaUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// OpenAIProvider implements Provider against the OpenAI chat completions
// API, or any endpoint speaking the same dialect.
type OpenAIProvider struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

func NewOpenAIProvider(apiKey, model, baseURL string) *OpenAIProvider {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIProvider{
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
	}
}

func (o *OpenAIProvider) Name() string { return "openai" }

func (o *OpenAIProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if strings.TrimSpace(o.apiKey) == "" {
		return nil, fmt.Errorf("openai API key not configured")
	}

	msgs := make([]oaMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = oaMessage{Role: m.Role, Content: m.Content}
	}

	body := oaChatRequest{
		Model:       o.model,
		Messages:    msgs,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      false,
	}
	if req.JSONMode {
		body.ResponseFormat = &oaRespFmt{Type: "json_object"}
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.baseURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	start := time.Now()
	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai request failed (model=%s, elapsed=%s): %w", o.model, time.Since(start), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != 200 {
		errMsg := extractAPIError(respBody)
		if errMsg == "" {
			errMsg = string(respBody)
		}
		return nil, fmt.Errorf("openai returned status %d: %s", resp.StatusCode, errMsg)
	}

	var chatResp oaChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("parse openai response: %w", err)
	}

	tokensUsed := 0
	if chatResp.Usage != nil {
		tokensUsed = chatResp.Usage.TotalTokens
	}
	content := ""
	if len(chatResp.Choices) > 0 {
		content = chatResp.Choices[0].Message.Content
	}

	slog.Debug("OpenAI request completed", "model", o.model, "elapsed", time.Since(start), "tokens", tokensUsed)

	return &ChatResponse{
		Content:    content,
		TokensUsed: tokensUsed,
		Model:      o.model,
		Provider:   "openai",
	}, nil
}

// extractAPIError pulls a human-readable message out of an OpenAI-style
// error body, which is either {"error":"msg"} or
// {"error":{"message":"msg","type":"..."}}.
func extractAPIError(body []byte) string {
	var flat struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &flat); err == nil && flat.Error != "" {
		return flat.Error
	}

	var nested struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &nested); err == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}
	return ""
}
