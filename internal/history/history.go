package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alvarmz/riffwire/internal/models"
)

// Store is the local ledger of everything the pipeline has published. Feeds
// re-enter the weekday rotation, so without it every run would re-filter
// and potentially re-publish the same stories.
type Store struct {
	conn *sql.DB
}

func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	conn.SetMaxOpenConns(2)

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("ping history database: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate history database: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS published_links (
			link         TEXT PRIMARY KEY,
			article_id   TEXT NOT NULL,
			title        TEXT NOT NULL DEFAULT '',
			published_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at   TEXT    NOT NULL,
			finished_at  TEXT    NOT NULL DEFAULT (datetime('now')),
			feeds_polled INTEGER NOT NULL DEFAULT 0,
			entries      INTEGER NOT NULL DEFAULT 0,
			relevant     INTEGER NOT NULL DEFAULT 0,
			created      INTEGER NOT NULL DEFAULT 0,
			skipped      INTEGER NOT NULL DEFAULT 0,
			seen         INTEGER NOT NULL DEFAULT 0,
			duplicates   INTEGER NOT NULL DEFAULT 0
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.conn.Exec(stmt); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}
	return nil
}

// IsPublished reports whether a source link was published by an earlier run.
func (s *Store) IsPublished(link string) (bool, error) {
	var one int
	err := s.conn.QueryRow(`SELECT 1 FROM published_links WHERE link = ?`, link).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying published link: %w", err)
	}
	return true, nil
}

// MarkPublished records a successfully published source link.
func (s *Store) MarkPublished(link, articleID, title string) error {
	_, err := s.conn.Exec(
		`INSERT OR IGNORE INTO published_links (link, article_id, title) VALUES (?, ?, ?)`,
		link, articleID, title,
	)
	if err != nil {
		return fmt.Errorf("recording published link: %w", err)
	}
	return nil
}

// RecordRun stores the summary counters for a completed run.
func (s *Store) RecordRun(stats models.RunStats, startedAt time.Time) error {
	_, err := s.conn.Exec(
		`INSERT INTO runs (started_at, feeds_polled, entries, relevant, created, skipped, seen, duplicates)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		startedAt.UTC().Format("2006-01-02 15:04:05"),
		stats.FeedsPolled, stats.Entries, stats.Relevant,
		stats.Created, stats.Skipped, stats.Seen, stats.Duplicates,
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}
