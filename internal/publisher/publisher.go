package publisher

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

	"github.com/araddon/dateparse"

	"github.com/alvarmz/riffwire/internal/models"
)

const (
	requestTimeout = 30 * time.Second
	slugMaxLen     = 60
)

// Client posts finished articles to the site's content API.
type Client struct {
	endpoint   string
	apiKey     string
	defaultImg string
	httpClient *http.Client

	// now is swappable for deterministic ids and dates in tests.
	now func() time.Time
}

func NewClient(endpoint, apiKey, defaultImage string) *Client {
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		defaultImg: defaultImage,
		httpClient: &http.Client{Timeout: requestTimeout},
		now:        time.Now,
	}
}

// BuildRecord assembles the publishable record from a source candidate and
// its rewrite. The id combines a slug of the English title with a unix
// timestamp so repeated stories never collide.
func (c *Client) BuildRecord(cand models.CandidateArticle, rewritten *models.RewrittenArticle) models.PublishRecord {
	now := c.now()

	imageURL := cand.ImageURL
	if imageURL == "" {
		imageURL = c.defaultImg
	}

	return models.PublishRecord{
		ID:             fmt.Sprintf("%s-%d", slug(rewritten.TitleEN), now.Unix()),
		TitleEN:        rewritten.TitleEN,
		TitleES:        rewritten.TitleES,
		DescriptionEN:  rewritten.DescriptionEN,
		DescriptionES:  rewritten.DescriptionES,
		PublishedDate:  c.publishedDate(cand, now),
		ImageURL:       imageURL,
		ImageCaptionEN: rewritten.ImageCaptionEN,
		ImageCaptionES: rewritten.ImageCaptionES,
		SourceURL:      cand.Link,
		IsAutomated:    true,
		CommentsActive: true,
		VideoID:        cand.VideoID,
	}
}

func (c *Client) publishedDate(cand models.CandidateArticle, now time.Time) string {
	if !cand.Published.IsZero() {
		return cand.Published.Format("2006-01-02")
	}
	if cand.PublishedRaw != "" {
		if t, err := dateparse.ParseAny(cand.PublishedRaw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return now.Format("2006-01-02")
}

type apiErrorResponse struct {
	Error            string `json:"error"`
	ValidationErrors []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"validation_errors"`
}

// Publish posts the record and reports success as a bool. Failures are
// logged, never returned: one rejected article must not stop the run.
func (c *Client) Publish(ctx context.Context, rec models.PublishRecord) bool {
	body, err := json.Marshal(rec)
	if err != nil {
		slog.Error("Failed to encode publish record", "id", rec.ID, "error", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		slog.Error("Failed to build publish request", "id", rec.ID, "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Publish request failed", "id", rec.ID, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		var apiErr apiErrorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			attrs := []any{"id", rec.ID, "status", resp.StatusCode, "error", apiErr.Error}
			for _, ve := range apiErr.ValidationErrors {
				attrs = append(attrs, "field_"+ve.Field, ve.Message)
			}
			slog.Error("Publish rejected by API", attrs...)
		} else {
			slog.Error("Publish rejected by API", "id", rec.ID, "status", resp.StatusCode, "body", string(raw))
		}
		return false
	}

	slog.Info("Article published", "id", rec.ID, "title", rec.TitleEN)
	return true
}

// slug lowercases a title into a url-safe fragment, folding the Spanish
// diacritics that show up in band vocabulary.
func slug(title string) string {
	folder := strings.NewReplacer(
		"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u",
		"ü", "u", "ñ", "n",
		"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u",
		"Ü", "u", "Ñ", "n",
	)
	title = folder.Replace(strings.ToLower(title))

	var sb strings.Builder
	lastDash := true
	for _, r := range title {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			sb.WriteRune(r)
			lastDash = false
		case !lastDash:
			sb.WriteByte('-')
			lastDash = true
		}
	}

	s := strings.Trim(sb.String(), "-")
	if len(s) > slugMaxLen {
		s = strings.Trim(s[:slugMaxLen], "-")
	}
	if s == "" {
		s = "article"
	}
	return s
}
