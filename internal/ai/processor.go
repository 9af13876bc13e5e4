package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/alvarmz/riffwire/internal/models"
)

// ErrRewriteFailed is returned by Rewrite when every attempt produced an
// unusable result. Callers skip the article rather than publish a partial
// rewrite.
var ErrRewriteFailed = errors.New("rewrite failed")

const (
	rewriteAttempts = 3
	rewriteBackoff  = 1000 * time.Millisecond

	filterTemperature  = 0.1
	filterMaxTokens    = 200
	rewriteTemperature = 0.4
	rewriteMaxTokens   = 3000

	titleMinRunes   = 10
	titleMaxRunes   = 100
	descMinRunes    = 300
	descMaxRunes    = 4500
	captionMinRunes = 5
	captionMaxRunes = 120
)

// Processor runs the two LLM stages of the pipeline: the relevance filter
// and the bilingual rewrite.
type Processor struct {
	provider Provider
	band     Band

	// sleep is swappable so tests can record backoff without waiting.
	sleep func(time.Duration)
}

func NewProcessor(provider Provider, band Band) *Processor {
	return &Processor{
		provider: provider,
		band:     band,
		sleep:    time.Sleep,
	}
}

type relevanceVerdict struct {
	IsRelevant bool   `json:"is_relevant"`
	Reason     string `json:"reason"`
}

// IsRelevant asks the provider whether an article concerns the band. Any
// provider or parse failure counts as relevant: losing a real story costs
// more than one wasted rewrite, and the rewrite stage re-reads the article
// anyway.
func (p *Processor) IsRelevant(ctx context.Context, article models.CandidateArticle) bool {
	prompt := BuildRelevancePrompt(p.band, article.Title, article.Body)

	resp, err := p.provider.Chat(ctx, ChatRequest{
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: filterTemperature,
		MaxTokens:   filterMaxTokens,
		JSONMode:    true,
	})
	if err != nil {
		slog.Warn("Relevance filter call failed, keeping article", "title", article.Title, "error", err)
		return true
	}

	var verdict relevanceVerdict
	if err := json.Unmarshal([]byte(ExtractJSON(resp.Content)), &verdict); err != nil {
		slog.Warn("Relevance filter returned unparsable reply, keeping article", "title", article.Title, "error", err)
		return true
	}

	if !verdict.IsRelevant {
		slog.Info("Article filtered out", "title", article.Title, "reason", verdict.Reason)
	}
	return verdict.IsRelevant
}

// Rewrite produces the bilingual rewrite of an accepted article. It retries
// on malformed or out-of-bounds responses with exponential backoff and
// returns ErrRewriteFailed once attempts are exhausted.
func (p *Processor) Rewrite(ctx context.Context, article models.CandidateArticle) (*models.RewrittenArticle, error) {
	prompt := BuildRewritePrompt(p.band, article.Title, article.Body, article.Link)

	var lastErr error
	for attempt := 1; attempt <= rewriteAttempts; attempt++ {
		if attempt > 1 {
			p.sleep(rewriteBackoff << (attempt - 2))
		}

		resp, err := p.provider.Chat(ctx, ChatRequest{
			Messages:    []Message{{Role: "user", Content: prompt}},
			Temperature: rewriteTemperature,
			MaxTokens:   rewriteMaxTokens,
			JSONMode:    true,
		})
		if err != nil {
			lastErr = err
			slog.Warn("Rewrite attempt failed", "title", article.Title, "attempt", attempt, "error", err)
			continue
		}

		var rewritten models.RewrittenArticle
		if err := json.Unmarshal([]byte(ExtractJSON(resp.Content)), &rewritten); err != nil {
			lastErr = fmt.Errorf("parsing rewrite response: %w", err)
			slog.Warn("Rewrite attempt returned unparsable reply", "title", article.Title, "attempt", attempt, "error", err)
			continue
		}

		if err := validateRewrite(&rewritten); err != nil {
			lastErr = err
			slog.Warn("Rewrite attempt failed validation", "title", article.Title, "attempt", attempt, "error", err)
			continue
		}

		slog.Info("Article rewritten", "title", rewritten.TitleEN, "attempt", attempt, "provider", resp.Provider, "tokens", resp.TokensUsed)
		return &rewritten, nil
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrRewriteFailed, rewriteAttempts, lastErr)
}

func validateRewrite(r *models.RewrittenArticle) error {
	fields := []struct {
		name     string
		value    string
		min, max int
	}{
		{"title_en", r.TitleEN, titleMinRunes, titleMaxRunes},
		{"title_es", r.TitleES, titleMinRunes, titleMaxRunes},
		{"description_en", r.DescriptionEN, descMinRunes, descMaxRunes},
		{"description_es", r.DescriptionES, descMinRunes, descMaxRunes},
		{"image_caption_en", r.ImageCaptionEN, captionMinRunes, captionMaxRunes},
		{"image_caption_es", r.ImageCaptionES, captionMinRunes, captionMaxRunes},
	}

	for _, f := range fields {
		n := utf8.RuneCountInString(f.value)
		if n == 0 {
			return fmt.Errorf("field %s is missing or empty", f.name)
		}
		if n < f.min || n > f.max {
			return fmt.Errorf("field %s has %d characters, want %d-%d", f.name, n, f.min, f.max)
		}
	}
	return nil
}
