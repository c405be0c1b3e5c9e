package project

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is the in-memory backend used by tests and as a fallback.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]State)}
}

func (s *MemoryStore) Get(_ context.Context, projectID string) (State, bool) {
	if s == nil {
		return State{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.byID[projectID]
	return st, ok
}

func (s *MemoryStore) Put(_ context.Context, state State) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if state.ProjectID == "" {
		return fmt.Errorf("project_id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[state.ProjectID] = state
	return nil
}

func (s *MemoryStore) Update(_ context.Context, projectID string, update func(*State)) (State, bool, error) {
	if s == nil {
		return State{}, false, fmt.Errorf("store is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.byID[projectID]
	if !ok {
		return State{}, false, nil
	}
	update(&st)
	s.byID[projectID] = st
	return st, true, nil
}

func (s *MemoryStore) List(_ context.Context) ([]State, error) {
	if s == nil {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]State, 0, len(s.byID))
	for _, st := range s.byID {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectID < out[j].ProjectID })
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, projectID string) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, projectID)
	return nil
}
