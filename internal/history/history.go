// Package history keeps the watch history in a SQLite database. One row is
// kept per channel; watching a channel again updates its row.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"criollotv/internal/config"
	"criollotv/internal/media"
)

const schema = `
CREATE TABLE IF NOT EXISTS history (
	channel    TEXT PRIMARY KEY,
	section    TEXT NOT NULL DEFAULT '',
	video_id   TEXT NOT NULL DEFAULT '',
	quality    TEXT NOT NULL DEFAULT '',
	watched_ms INTEGER NOT NULL DEFAULT 0,
	watched_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS history_watched_at ON history(watched_at DESC);
`

// Store is a SQLite-backed history.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the history database at path.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("creating history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// OpenDefault opens the database at config.HistoryPath.
func OpenDefault() (*Store, error) {
	path, err := config.HistoryPath()
	if err != nil {
		return nil, err
	}
	return Open(path)
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes or updates the entry for a channel. A zero WatchedAt is set
// to the current time.
func (s *Store) Save(ctx context.Context, e media.HistoryEntry) error {
	if e.Channel == "" {
		return errors.New("history entry without channel")
	}
	if e.WatchedAt.IsZero() {
		e.WatchedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (channel, section, video_id, quality, watched_ms, watched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(channel) DO UPDATE SET
			section = excluded.section,
			video_id = excluded.video_id,
			quality = excluded.quality,
			watched_ms = excluded.watched_ms,
			watched_at = excluded.watched_at`,
		e.Channel, e.Section, e.VideoID, e.Quality, e.Watched.Milliseconds(), e.WatchedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

// Load returns entries most recently watched first. A limit of 0 or less
// returns everything.
func (s *Store) Load(ctx context.Context, limit int) ([]media.HistoryEntry, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT channel, section, video_id, quality, watched_ms, watched_at
		FROM history
		ORDER BY watched_at DESC, channel ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []media.HistoryEntry
	for rows.Next() {
		var (
			e                   media.HistoryEntry
			watchedMs, atMillis int64
		)
		if err := rows.Scan(&e.Channel, &e.Section, &e.VideoID, &e.Quality, &watchedMs, &atMillis); err != nil {
			return nil, fmt.Errorf("reading history: %w", err)
		}
		e.Watched = time.Duration(watchedMs) * time.Millisecond
		e.WatchedAt = time.UnixMilli(atMillis)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return entries, nil
}

// Remove deletes a channel from the history.
func (s *Store) Remove(ctx context.Context, channel string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE channel = ?`, channel); err != nil {
		return fmt.Errorf("removing history entry: %w", err)
	}
	return nil
}

// FormatForDisplay creates display strings for fzf selection from history entries.
func FormatForDisplay(entries []media.HistoryEntry) []string {
	items := make([]string, 0, len(entries))
	for _, e := range entries {
		display := e.Channel
		if e.Section != "" {
			display += " (" + e.Section + ")"
		}
		if e.Watched > 0 {
			display += fmt.Sprintf(" [%s]", e.Watched.Round(time.Minute))
		}
		items = append(items, display)
	}
	return items
}
