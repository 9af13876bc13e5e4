package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/alvarmz/riffwire/internal/feeds"
	"github.com/alvarmz/riffwire/internal/models"
	"github.com/alvarmz/riffwire/internal/similarity"
)

const (
	rewritePace = 8 * time.Second
	publishPace = 2 * time.Second
)

// FeedReader fetches and normalizes one feed.
type FeedReader interface {
	Read(ctx context.Context, src feeds.Source) ([]models.CandidateArticle, error)
}

// Processor runs the relevance filter and the bilingual rewrite.
type Processor interface {
	IsRelevant(ctx context.Context, article models.CandidateArticle) bool
	Rewrite(ctx context.Context, article models.CandidateArticle) (*models.RewrittenArticle, error)
}

// Publisher builds and posts finished records.
type Publisher interface {
	BuildRecord(cand models.CandidateArticle, rewritten *models.RewrittenArticle) models.PublishRecord
	Publish(ctx context.Context, rec models.PublishRecord) bool
}

// History is the cross-run ledger of already published source links.
type History interface {
	IsPublished(link string) (bool, error)
	MarkPublished(link, articleID, title string) error
}

// Deps carries everything a run needs. Interfaces keep the run loop
// testable without network or API keys.
type Deps struct {
	Reader     FeedReader
	Processor  Processor
	Publisher  Publisher
	History    History
	Similarity *similarity.Checker

	// Sleep defaults to time.Sleep; tests substitute a recorder.
	Sleep func(time.Duration)
}

type Pipeline struct {
	deps Deps
}

func New(deps Deps) *Pipeline {
	if deps.Sleep == nil {
		deps.Sleep = time.Sleep
	}
	if deps.Similarity == nil {
		deps.Similarity = similarity.New(0.6, 3)
	}
	return &Pipeline{deps: deps}
}

// Run processes the day's two feeds sequentially and returns the run
// counters. Per-feed and per-article failures are logged and skipped; only
// the caller decides what is fatal.
func (p *Pipeline) Run(ctx context.Context, day time.Weekday) models.RunStats {
	var stats models.RunStats

	sources := feeds.ForDay(day)
	slog.Info("Starting run", "weekday", day.String(), "feeds", []string{sources[0].Key, sources[1].Key})

	for _, src := range sources {
		p.runFeed(ctx, src, &stats)
	}

	slog.Info("Run finished",
		"feeds_polled", stats.FeedsPolled,
		"entries", stats.Entries,
		"relevant", stats.Relevant,
		"created", stats.Created,
		"skipped", stats.Skipped,
		"seen", stats.Seen,
		"duplicates", stats.Duplicates,
	)
	return stats
}

func (p *Pipeline) runFeed(ctx context.Context, src feeds.Source, stats *models.RunStats) {
	candidates, err := p.deps.Reader.Read(ctx, src)
	if err != nil {
		slog.Error("Feed read failed", "feed", src.Key, "error", err)
		return
	}
	stats.FeedsPolled++
	stats.Entries += len(candidates)
	slog.Info("Feed read", "feed", src.Key, "entries", len(candidates))

	rewrites := 0
	for _, cand := range candidates {
		// The pacing rule keys on LLM usage: any rewrite attempted, even
		// one that failed or whose publish was rejected, counts.
		if p.processCandidate(ctx, cand, rewrites > 0, stats) != outcomeSkipped {
			rewrites++
		}
	}
}

type outcome int

const (
	outcomeSkipped outcome = iota // no rewrite attempted
	outcomeRewriteFailed
	outcomeRejected // rewritten but refused by the publish API
	outcomePublished
)

func (p *Pipeline) processCandidate(ctx context.Context, cand models.CandidateArticle, paceRewrite bool, stats *models.RunStats) outcome {
	if seen, err := p.deps.History.IsPublished(cand.Link); err != nil {
		slog.Warn("History lookup failed, treating as new", "link", cand.Link, "error", err)
	} else if seen {
		stats.Seen++
		return outcomeSkipped
	}

	if p.deps.Similarity.TooSimilar(cand.Title) {
		slog.Info("Skipping near-duplicate headline", "title", cand.Title)
		stats.Duplicates++
		return outcomeSkipped
	}

	if !p.deps.Processor.IsRelevant(ctx, cand) {
		return outcomeSkipped
	}
	stats.Relevant++
	// Only accepted titles join the duplicate comparison set, so a story
	// can never be suppressed by one the filter rejected.
	p.deps.Similarity.Record(cand.Title)

	if paceRewrite {
		p.deps.Sleep(rewritePace)
	}

	rewritten, err := p.deps.Processor.Rewrite(ctx, cand)
	if err != nil {
		slog.Warn("Skipping article after failed rewrite", "title", cand.Title, "error", err)
		stats.Skipped++
		return outcomeRewriteFailed
	}

	rec := p.deps.Publisher.BuildRecord(cand, rewritten)
	ok := p.deps.Publisher.Publish(ctx, rec)
	p.deps.Sleep(publishPace)

	if !ok {
		stats.Skipped++
		return outcomeRejected
	}

	stats.Created++
	if err := p.deps.History.MarkPublished(cand.Link, rec.ID, rec.TitleEN); err != nil {
		slog.Warn("Failed to record published link", "link", cand.Link, "error", err)
	}
	return outcomePublished
}
