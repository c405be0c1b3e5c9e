// Package filestore is the persistence seam for everything the pipeline
// writes: artifacts, manifests, snapshots, histories. All records are whole
// files of structured text under a per-project directory tree; the interface
// deliberately has no partial-write operation.
package filestore

import (
	"context"
	"errors"
	"path"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound reports a path with no stored content.
var ErrNotFound = errors.New("filestore: not found")

// Store persists whole files keyed by slash-separated relative paths.
type Store interface {
	Read(ctx context.Context, path string) (string, error)
	Write(ctx context.Context, path, content string) error
	List(ctx context.Context, dir string) ([]string, error)
	Delete(ctx context.Context, path string) error
}

// MemoryStore is the in-memory origin/fallback implementation, used by tests
// and as the cache tier.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string]string)}
}

func (s *MemoryStore) Read(_ context.Context, p string) (string, error) {
	if s == nil {
		return "", ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.files[normalize(p)]
	if !ok {
		return "", ErrNotFound
	}
	return content, nil
}

func (s *MemoryStore) Write(_ context.Context, p, content string) error {
	if s == nil {
		return errors.New("filestore: store is nil")
	}
	key := normalize(p)
	if key == "" {
		return errors.New("filestore: empty path")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key] = content
	return nil
}

func (s *MemoryStore) List(_ context.Context, dir string) ([]string, error) {
	if s == nil {
		return nil, nil
	}
	prefix := normalize(dir)
	if prefix != "" {
		prefix += "/"
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for key := range s.files {
		if strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, p string) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, normalize(p))
	return nil
}

func normalize(p string) string {
	return strings.TrimPrefix(path.Clean("/"+strings.TrimSpace(p)), "/")
}
