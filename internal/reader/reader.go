package reader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/mmcdole/gofeed"

	"github.com/alvarmz/riffwire/internal/feeds"
	"github.com/alvarmz/riffwire/internal/models"
)

const (
	defaultUserAgent = "riffwire/1.0 (band news pipeline; +https://github.com/alvarmz/riffwire)"

	// maxEntries bounds how far back into a feed one run looks. Feeds are
	// newest-first by convention, so this is a recency window.
	maxEntries = 30

	scrapeTimeout = 20 * time.Second
	maxScrapeLen  = 20000
)

// Reader fetches one RSS/Atom feed and turns its recent entries into
// candidate articles.
type Reader struct {
	parser    *gofeed.Parser
	userAgent string
}

func New() *Reader {
	p := gofeed.NewParser()
	p.UserAgent = defaultUserAgent
	return &Reader{parser: p, userAgent: defaultUserAgent}
}

// Read fetches and parses src, returning up to maxEntries candidates,
// most recent first. A fetch or parse failure is returned to the caller,
// which treats the feed as empty and moves on.
func (r *Reader) Read(ctx context.Context, src feeds.Source) ([]models.CandidateArticle, error) {
	feed, err := r.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", src.Key, err)
	}

	count := len(feed.Items)
	if count > maxEntries {
		count = maxEntries
	}

	candidates := make([]models.CandidateArticle, 0, count)
	for _, item := range feed.Items[:count] {
		rawBody := rawBodyOf(item)
		body := StripHTML(rawBody)
		if body == "" && item.Link != "" {
			// Some feeds ship title-only entries. Before dropping the
			// entry, try the article page itself.
			body = r.scrapePage(item.Link)
		}

		cand := models.CandidateArticle{
			Title:        StripHTML(item.Title),
			Body:         body,
			Link:         item.Link,
			ImageURL:     extractImage(item, rawBody),
			VideoID:      ExtractVideoID(rawBody + " " + item.Link),
			PublishedRaw: item.Published,
			FeedKey:      src.Key,
		}
		if item.PublishedParsed != nil {
			cand.Published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			cand.Published = *item.UpdatedParsed
		}

		candidates = append(candidates, cand)
	}

	return candidates, nil
}

// rawBodyOf picks the entry's body HTML from the first non-empty of:
// content:encoded (gofeed folds it into Content), an explicit encoded
// content extension, the plain description, a media:description extension,
// and a bare summary field.
func rawBodyOf(item *gofeed.Item) string {
	if item.Content != "" {
		return item.Content
	}
	if v := extensionValue(item, "content", "encoded"); v != "" {
		return v
	}
	if item.Description != "" {
		return item.Description
	}
	if v := extensionValue(item, "media", "description"); v != "" {
		return v
	}
	if v := item.Custom["summary"]; v != "" {
		return v
	}
	return ""
}

func extensionValue(item *gofeed.Item, namespace, name string) string {
	ns, ok := item.Extensions[namespace]
	if !ok {
		return ""
	}
	for _, e := range ns[name] {
		if e.Value != "" {
			return e.Value
		}
	}
	return ""
}

// extractImage resolves the entry's primary image: an image enclosure wins,
// then a media:content url, then the feed-level item image, then the first
// inline <img> in the raw (unstripped) body.
func extractImage(item *gofeed.Item, rawBody string) string {
	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		if enc.Type == "" || strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}

	if media, ok := item.Extensions["media"]; ok {
		for _, e := range media["content"] {
			if url := e.Attrs["url"]; url != "" {
				return url
			}
		}
	}

	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawBody)); err == nil {
		if src, ok := doc.Find("img[src]").First().Attr("src"); ok && src != "" {
			return src
		}
	}

	return ""
}

// scrapePage fetches the article page and extracts paragraph text. Best
// effort: any failure yields "" and the entry proceeds body-less.
func (r *Reader) scrapePage(link string) string {
	c := colly.NewCollector(
		colly.UserAgent(r.userAgent),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(scrapeTimeout)

	var sb strings.Builder
	c.OnHTML("article p, main p, .entry-content p", func(e *colly.HTMLElement) {
		if sb.Len() >= maxScrapeLen {
			return
		}
		text := strings.TrimSpace(strings.Join(strings.Fields(e.Text), " "))
		if len(text) > 50 {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	})

	if err := c.Visit(link); err != nil {
		return ""
	}
	c.Wait()

	return strings.TrimSpace(sb.String())
}
