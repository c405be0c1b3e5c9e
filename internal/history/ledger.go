package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Ledger is a small sqlite index over build attempts, queryable without
// walking the build-history tree.
type Ledger struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

// OpenLedger opens (and creates) the sqlite ledger at path with the usual
// production pragmas.
func OpenLedger(path string) (*Ledger, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("ledger path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 10000;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA foreign_keys = ON;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) ensureSchema() error {
	if l == nil || l.db == nil {
		return fmt.Errorf("ledger is nil")
	}
	l.schemaOnce.Do(func() {
		_, l.schemaErr = l.db.Exec(`
CREATE TABLE IF NOT EXISTS builds (
    build_id   TEXT NOT NULL,
    project_id TEXT NOT NULL,
    passed     INTEGER NOT NULL,
    attempt    INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    PRIMARY KEY (build_id, attempt)
);
CREATE INDEX IF NOT EXISTS idx_builds_project ON builds(project_id, created_at);
`)
	})
	return l.schemaErr
}

// Insert records one build attempt.
func (l *Ledger) Insert(ctx context.Context, rec BuildRecord) error {
	if err := l.ensureSchema(); err != nil {
		return err
	}
	passed := 0
	if rec.Passed {
		passed = 1
	}
	_, err := l.db.ExecContext(ctx, `
INSERT OR REPLACE INTO builds (build_id, project_id, passed, attempt, created_at)
VALUES (?, ?, ?, ?, ?)
`, rec.BuildID, rec.ProjectID, passed, rec.Attempt, rec.CreatedAt.Format(time.RFC3339Nano))
	return err
}

// ByProject returns a project's build attempts, newest first.
func (l *Ledger) ByProject(ctx context.Context, projectID string) ([]BuildRecord, error) {
	if err := l.ensureSchema(); err != nil {
		return nil, err
	}
	rows, err := l.db.QueryContext(ctx, `
SELECT build_id, project_id, passed, attempt, created_at
FROM builds WHERE project_id = ? ORDER BY created_at DESC
`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []BuildRecord
	for rows.Next() {
		var rec BuildRecord
		var passed int
		var created string
		if err := rows.Scan(&rec.BuildID, &rec.ProjectID, &passed, &rec.Attempt, &created); err != nil {
			return nil, err
		}
		rec.Passed = passed != 0
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			rec.CreatedAt = ts
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}
