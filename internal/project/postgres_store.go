package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore keeps project states as JSON rows, with a small LRU in front
// of reads: the orchestrator re-reads state on every build and the row churn
// is low.
type PostgresStore struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error

	cache *lru.Cache[string, State]
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	cache, err := lru.New[string, State](1024)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db, cache: cache}, nil
}

func (s *PostgresStore) ensureSchema() error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS project_states (
    project_id TEXT PRIMARY KEY,
    state JSONB NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) Get(ctx context.Context, projectID string) (State, bool) {
	if s == nil || projectID == "" {
		return State{}, false
	}
	if st, ok := s.cache.Get(projectID); ok {
		return st, true
	}
	if err := s.ensureSchema(); err != nil {
		return State{}, false
	}
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT state FROM project_states WHERE project_id=$1`, projectID).Scan(&raw)
	if err != nil {
		return State{}, false
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return State{}, false
	}
	s.cache.Add(projectID, st)
	return st, true
}

func (s *PostgresStore) Put(ctx context.Context, state State) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if state.ProjectID == "" {
		return fmt.Errorf("project_id is required")
	}
	if err := s.ensureSchema(); err != nil {
		return err
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO project_states (project_id, state, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (project_id)
DO UPDATE SET state=EXCLUDED.state, updated_at=EXCLUDED.updated_at
`, state.ProjectID, raw, time.Now())
	if err != nil {
		return err
	}
	s.cache.Add(state.ProjectID, state)
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, projectID string, update func(*State)) (State, bool, error) {
	st, ok := s.Get(ctx, projectID)
	if !ok {
		return State{}, false, nil
	}
	update(&st)
	if err := s.Put(ctx, st); err != nil {
		return State{}, false, err
	}
	return st, true, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]State, error) {
	if s == nil {
		return nil, nil
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT state FROM project_states ORDER BY project_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []State
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var st State
		if err := json.Unmarshal(raw, &st); err != nil {
			continue
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, projectID string) error {
	if s == nil {
		return nil
	}
	if err := s.ensureSchema(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM project_states WHERE project_id=$1`, projectID)
	s.cache.Remove(projectID)
	return err
}

// Close releases the database handle.
func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
