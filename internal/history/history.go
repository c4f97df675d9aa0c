// Package history records download attempts in a local SQLite database so
// past requests can be listed later.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"ytgrab/internal/media"
)

const schema = `
CREATE TABLE IF NOT EXISTS downloads (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id   TEXT    NOT NULL,
	url          TEXT    NOT NULL,
	content_type TEXT    NOT NULL,
	format       TEXT    NOT NULL,
	item_limit   INTEGER NOT NULL DEFAULT 0,
	attempt      TEXT    NOT NULL,
	success      INTEGER NOT NULL,
	exit_code    INTEGER NOT NULL,
	created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS downloads_created_at ON downloads (created_at);
`

// Recorder persists download attempts.
type Recorder interface {
	Save(ctx context.Context, entry media.HistoryEntry) error
	Close() error
}

// Store is a SQLite-backed Recorder.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating history: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save appends an entry. A zero CreatedAt is replaced by the current time.
func (s *Store) Save(ctx context.Context, e media.HistoryEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO downloads (session_id, url, content_type, format, item_limit, attempt, success, exit_code, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.URL, e.Type.String(), string(e.Format), int(e.Limit),
		string(e.Attempt), e.Success, e.ExitCode, e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first. n <= 0 returns everything.
func (s *Store) Recent(ctx context.Context, n int) ([]media.HistoryEntry, error) {
	query := `SELECT id, session_id, url, content_type, format, item_limit, attempt, success, exit_code, created_at
		FROM downloads ORDER BY created_at DESC, id DESC`
	var args []any
	if n > 0 {
		query += ` LIMIT ?`
		args = append(args, n)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []media.HistoryEntry
	for rows.Next() {
		var (
			e         media.HistoryEntry
			ct        string
			format    string
			limit     int
			attempt   string
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.URL, &ct, &format, &limit, &attempt, &e.Success, &e.ExitCode, &createdAt); err != nil {
			return nil, fmt.Errorf("reading history: %w", err)
		}
		e.Type, _ = media.ParseContentType(ct)
		e.Format = media.Format(format)
		e.Limit = media.Limit(limit)
		e.Attempt = media.Attempt(attempt)
		e.CreatedAt = time.Unix(0, createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return entries, nil
}

// Clear deletes every entry and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM downloads`)
	if err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}
	return res.RowsAffected()
}

// Nop discards entries. It is used when history is disabled.
type Nop struct{}

// Save discards e.
func (Nop) Save(context.Context, media.HistoryEntry) error { return nil }

// Close does nothing.
func (Nop) Close() error { return nil }

// FormatForDisplay renders one line per entry.
func FormatForDisplay(entries []media.HistoryEntry) []string {
	items := make([]string, 0, len(entries))
	for _, e := range entries {
		status := "ok"
		if !e.Success {
			status = fmt.Sprintf("failed (exit %d)", e.ExitCode)
		}

		display := fmt.Sprintf("%s  %-8s %-6s", e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Type, e.Format)
		if e.Type.IsCollection() {
			display += fmt.Sprintf(" [%s]", e.Limit)
		}
		display += fmt.Sprintf(" %s  %s %s", e.URL, e.Attempt, status)
		items = append(items, display)
	}
	return items
}
