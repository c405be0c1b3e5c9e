package filestore

import (
	"context"
	"errors"
	"io/fs"
	"path"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/safeio"
)

// DiskStore persists files under a root-locked directory. Writes are
// temp-file-plus-rename through safeio, so a crash never leaves a torn file.
type DiskStore struct {
	fsys *safeio.SafeFS
}

func NewDiskStore(root string) (*DiskStore, error) {
	fsys, err := safeio.NewSafeFS(root)
	if err != nil {
		return nil, err
	}
	return &DiskStore{fsys: fsys}, nil
}

// Root returns the absolute directory backing the store.
func (s *DiskStore) Root() string { return s.fsys.Root() }

func (s *DiskStore) Read(_ context.Context, p string) (string, error) {
	data, err := s.fsys.ReadFile(normalize(p))
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *DiskStore) Write(_ context.Context, p, content string) error {
	return s.fsys.WriteFile(normalize(p), []byte(content))
}

func (s *DiskStore) List(_ context.Context, dir string) ([]string, error) {
	var out []string
	var walk func(rel string) error
	walk = func(rel string) error {
		entries, err := s.fsys.ReadDir(rel)
		if err != nil {
			return err
		}
		for _, e := range entries {
			child := path.Join(rel, e.Name())
			if e.IsDir() {
				if err := walk(child); err != nil {
					return err
				}
				continue
			}
			out = append(out, child)
		}
		return nil
	}
	rel := normalize(dir)
	if rel == "" {
		rel = "."
	}
	if err := walk(rel); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

func (s *DiskStore) Delete(_ context.Context, p string) error {
	return s.fsys.Remove(normalize(p))
}
