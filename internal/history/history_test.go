package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/alvarmz/riffwire/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPublishedLinkRoundTrip(t *testing.T) {
	s := openTestStore(t)
	link := "https://source.example.com/story"

	seen, err := s.IsPublished(link)
	if err != nil {
		t.Fatalf("IsPublished() error = %v", err)
	}
	if seen {
		t.Fatal("fresh link reported as published")
	}

	if err := s.MarkPublished(link, "story-123", "A Story"); err != nil {
		t.Fatalf("MarkPublished() error = %v", err)
	}

	seen, err = s.IsPublished(link)
	if err != nil {
		t.Fatalf("IsPublished() error = %v", err)
	}
	if !seen {
		t.Error("marked link not reported as published")
	}
}

func TestMarkPublishedIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	link := "https://source.example.com/story"

	if err := s.MarkPublished(link, "a", "first"); err != nil {
		t.Fatalf("MarkPublished() error = %v", err)
	}
	if err := s.MarkPublished(link, "b", "second"); err != nil {
		t.Errorf("repeated MarkPublished() error = %v", err)
	}
}

func TestRecordRun(t *testing.T) {
	s := openTestStore(t)

	stats := models.RunStats{FeedsPolled: 2, Entries: 40, Relevant: 5, Created: 4, Skipped: 1}
	if err := s.RecordRun(stats, time.Now()); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	var created int
	if err := s.conn.QueryRow(`SELECT created FROM runs`).Scan(&created); err != nil {
		t.Fatalf("querying runs: %v", err)
	}
	if created != 4 {
		t.Errorf("created = %d, want 4", created)
	}
}
