// Package cache provides a durable SQLite-backed store for work-item
// embeddings, keyed by work-item id and validated by content fingerprint.
//
// The cache is best-effort: the pipeline must stay correct if every call
// here fails. Reads that go wrong in any way (missing record, fingerprint
// mismatch, corrupt vector) are reported as misses, and write failures are
// logged and swallowed. The cache never decides whether an item changed;
// callers supply the current fingerprint and the cache only answers whether
// it holds an embedding for that exact content.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const schema = `
CREATE TABLE IF NOT EXISTS embeddings (
    work_item_id TEXT PRIMARY KEY,
    vector BLOB NOT NULL,
    content_hash TEXT NOT NULL,
    model TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    accessed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_embeddings_content_hash ON embeddings(content_hash);
CREATE INDEX IF NOT EXISTS idx_embeddings_model ON embeddings(model);
`

// Store is the embedding cache. Safe for concurrent use across pipeline
// invocations; upserts are last-writer-wins since staleness is
// content-addressed, not version-addressed.
type Store struct {
	db   *sql.DB
	path string
}

// Stats summarizes cache contents for diagnostics
type Stats struct {
	TotalEntries    int        `json:"total_entries"`
	ModelCount      int        `json:"model_count"`
	OldestCreatedAt *time.Time `json:"oldest_created_at,omitempty"`
	NewestCreatedAt *time.Time `json:"newest_created_at,omitempty"`
}

// Open creates or opens the embedding cache at path
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	// WAL mode for concurrent readers during pipeline fan-out
	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the cached embedding for id if one exists for exactly this
// fingerprint, or nil on any kind of miss. A hit bumps accessed_at.
func (s *Store) Get(ctx context.Context, id, fingerprint string) []float32 {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT vector FROM embeddings WHERE work_item_id = ? AND content_hash = ?",
		id, fingerprint,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		slog.Warn("embedding cache read failed", "id", id, "error", err)
		return nil
	}

	var vector []float32
	if err := json.Unmarshal(blob, &vector); err != nil {
		// Corrupt record: treat as miss so the caller regenerates and
		// overwrites it.
		slog.Warn("embedding cache record corrupt", "id", id, "error", err)
		return nil
	}
	if len(vector) == 0 {
		return nil
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE embeddings SET accessed_at = CURRENT_TIMESTAMP WHERE work_item_id = ?", id,
	); err != nil {
		slog.Debug("embedding cache accessed_at update failed", "id", id, "error", err)
	}

	return vector
}

// Set upserts the embedding for id, replacing any existing record
// unconditionally. Persist failures are logged and swallowed.
func (s *Store) Set(ctx context.Context, id string, vector []float32, model, fingerprint string) {
	if id == "" || len(vector) == 0 {
		return
	}

	blob, err := json.Marshal(vector)
	if err != nil {
		slog.Warn("embedding cache serialization failed", "id", id, "error", err)
		return
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO embeddings (work_item_id, vector, content_hash, model, created_at, accessed_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(work_item_id) DO UPDATE SET
			vector = excluded.vector,
			content_hash = excluded.content_hash,
			model = excluded.model,
			created_at = excluded.created_at,
			accessed_at = excluded.accessed_at
	`, id, blob, fingerprint, model)
	if err != nil {
		slog.Warn("embedding cache write failed", "id", id, "error", err)
	}
}

// Invalidate deletes the record for id if present; no-op otherwise
func (s *Store) Invalidate(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM embeddings WHERE work_item_id = ?", id); err != nil {
		return fmt.Errorf("failed to invalidate embedding for %s: %w", id, err)
	}
	return nil
}

// Clear deletes all records. Intended for tests and maintenance.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM embeddings"); err != nil {
		return fmt.Errorf("failed to clear embedding cache: %w", err)
	}
	return nil
}

// Stats returns cache statistics
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	var (
		total, models  int
		oldest, newest sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT model), MIN(created_at), MAX(created_at)
		FROM embeddings
	`).Scan(&total, &models, &oldest, &newest)
	if err != nil {
		return nil, fmt.Errorf("failed to query cache stats: %w", err)
	}

	stats := &Stats{TotalEntries: total, ModelCount: models}
	if t, ok := parseSQLiteTime(oldest); ok {
		stats.OldestCreatedAt = &t
	}
	if t, ok := parseSQLiteTime(newest); ok {
		stats.NewestCreatedAt = &t
	}
	return stats, nil
}

// parseSQLiteTime parses the text form CURRENT_TIMESTAMP stores
func parseSQLiteTime(v sql.NullString) (time.Time, bool) {
	if !v.Valid || v.String == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, v.String); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
