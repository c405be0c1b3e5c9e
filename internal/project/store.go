package project

import (
	"context"
	"errors"
	"os"
	"strings"
)

// ErrNotFound reports an unknown project id.
var ErrNotFound = errors.New("project: not found")

// Store is the contract every project-state backend satisfies.
type Store interface {
	Get(ctx context.Context, projectID string) (State, bool)
	Put(ctx context.Context, state State) error
	Update(ctx context.Context, projectID string, update func(*State)) (State, bool, error)
	List(ctx context.Context) ([]State, error)
	Delete(ctx context.Context, projectID string) error
}

// NewFromEnv picks the backend: Postgres when PROJECT_STORE_PG_DSN is set
// and reachable, otherwise a JSON file at the given path. The fallback keeps
// local development working with no database around.
func NewFromEnv(path string) Store {
	dsn := strings.TrimSpace(os.Getenv("PROJECT_STORE_PG_DSN"))
	if dsn == "" {
		return NewFileStore(path)
	}
	s, err := NewPostgresStore(dsn)
	if err != nil {
		return NewFileStore(path)
	}
	return s
}
