// Package snapshot keeps a bounded LIFO history of file sets per project so
// a bad change can be rolled back. The stack is persisted as one JSON file
// under the project's .ai-context directory.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/artifact"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/filestore"
)

// MaxDepth caps the per-project stack; the oldest entry is discarded first.
const MaxDepth = 15

// Metadata is one saved snapshot.
type Metadata struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	Description string          `json:"description"`
	Files       artifact.Bundle `json:"files"`
}

// Store persists snapshot stacks through a file store.
type Store struct {
	files filestore.Store
}

func NewStore(files filestore.Store) *Store {
	return &Store{files: files}
}

func stackPath(projectID string) string {
	return path.Join("projects", projectID, ".ai-context", "snapshots.json")
}

// Save prepends a snapshot of the given files, dropping the oldest entry
// once the stack exceeds MaxDepth.
func (s *Store) Save(ctx context.Context, projectID, description string, files artifact.Bundle) (Metadata, error) {
	if s == nil || s.files == nil {
		return Metadata{}, fmt.Errorf("snapshot store is not configured")
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return Metadata{}, fmt.Errorf("project_id is required")
	}
	stack, err := s.load(ctx, projectID)
	if err != nil {
		return Metadata{}, err
	}
	meta := Metadata{
		ID:          fmt.Sprintf("snap-%d", time.Now().UnixNano()),
		Timestamp:   time.Now().UTC(),
		Description: strings.TrimSpace(description),
		Files:       files.Clone(),
	}
	stack = append([]Metadata{meta}, stack...)
	if len(stack) > MaxDepth {
		stack = stack[:MaxDepth]
	}
	if err := s.persist(ctx, projectID, stack); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

// Pop removes and returns the newest snapshot, restoring its files to the
// project directory. It returns nil when the stack is empty.
func (s *Store) Pop(ctx context.Context, projectID string) (*Metadata, error) {
	if s == nil || s.files == nil {
		return nil, fmt.Errorf("snapshot store is not configured")
	}
	stack, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(stack) == 0 {
		return nil, nil
	}
	top := stack[0]
	for name, content := range top.Files {
		if err := s.files.Write(ctx, path.Join("projects", projectID, name), content); err != nil {
			return nil, fmt.Errorf("restore %s: %w", name, err)
		}
	}
	if err := s.persist(ctx, projectID, stack[1:]); err != nil {
		return nil, err
	}
	return &top, nil
}

// Peek returns a snapshot by id, or the newest one when id is empty, without
// mutating the stack.
func (s *Store) Peek(ctx context.Context, projectID, snapshotID string) (*Metadata, error) {
	stack, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(stack) == 0 {
		return nil, nil
	}
	snapshotID = strings.TrimSpace(snapshotID)
	if snapshotID == "" {
		top := stack[0]
		return &top, nil
	}
	for _, meta := range stack {
		if meta.ID == snapshotID {
			return &meta, nil
		}
	}
	return nil, nil
}

// List returns the stack newest-first.
func (s *Store) List(ctx context.Context, projectID string) ([]Metadata, error) {
	return s.load(ctx, projectID)
}

func (s *Store) load(ctx context.Context, projectID string) ([]Metadata, error) {
	raw, err := s.files.Read(ctx, stackPath(projectID))
	if errors.Is(err, filestore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stack []Metadata
	if err := json.Unmarshal([]byte(raw), &stack); err != nil {
		// A corrupt stack must not wedge the project; start over.
		return nil, nil
	}
	return stack, nil
}

func (s *Store) persist(ctx context.Context, projectID string, stack []Metadata) error {
	if stack == nil {
		stack = []Metadata{}
	}
	data, err := json.MarshalIndent(stack, "", "  ")
	if err != nil {
		return err
	}
	return s.files.Write(ctx, stackPath(projectID), string(data))
}
