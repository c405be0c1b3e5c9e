package project

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileStore persists every project state in a single JSON file, loaded
// lazily and rewritten whole on each mutation.
type FileStore struct {
	path string

	loadOnce sync.Once
	mu       sync.RWMutex
	byID     map[string]State
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		byID: make(map[string]State),
	}
}

func (s *FileStore) Get(_ context.Context, projectID string) (State, bool) {
	if s == nil {
		return State{}, false
	}
	s.ensureLoaded()
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.byID[projectID]
	return st, ok
}

func (s *FileStore) Put(_ context.Context, state State) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if state.ProjectID == "" {
		return fmt.Errorf("project_id is required")
	}
	s.ensureLoaded()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[state.ProjectID] = state
	return s.saveLocked()
}

func (s *FileStore) Update(_ context.Context, projectID string, update func(*State)) (State, bool, error) {
	if s == nil {
		return State{}, false, fmt.Errorf("store is nil")
	}
	s.ensureLoaded()
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.byID[projectID]
	if !ok {
		return State{}, false, nil
	}
	update(&st)
	s.byID[projectID] = st
	return st, true, s.saveLocked()
}

func (s *FileStore) List(_ context.Context) ([]State, error) {
	if s == nil {
		return nil, nil
	}
	s.ensureLoaded()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]State, 0, len(s.byID))
	for _, st := range s.byID {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectID < out[j].ProjectID })
	return out, nil
}

func (s *FileStore) Delete(_ context.Context, projectID string) error {
	if s == nil {
		return nil
	}
	s.ensureLoaded()
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, projectID)
	return s.saveLocked()
}

func (s *FileStore) ensureLoaded() {
	s.loadOnce.Do(func() {
		data, err := os.ReadFile(s.path)
		if err != nil {
			return
		}
		var states []State
		if err := json.Unmarshal(data, &states); err != nil {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, st := range states {
			if st.ProjectID != "" {
				s.byID[st.ProjectID] = st
			}
		}
	})
}

// saveLocked writes the whole state file; callers hold the write lock.
func (s *FileStore) saveLocked() error {
	states := make([]State, 0, len(s.byID))
	for _, st := range s.byID {
		states = append(states, st)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].ProjectID < states[j].ProjectID })
	data, err := json.MarshalIndent(states, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
