// Package safeio confines all project file access to a fixed root directory.
// Every path the pipeline touches — generated artifacts, snapshots, build
// history — resolves through here, so a hostile file name from the generator
// cannot escape the project tree.
package safeio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// SafeFS resolves paths relative to a fixed root and refuses anything that
// escapes it after symlink resolution.
type SafeFS struct {
	absRoot string // absolute root with symlinks resolved
}

// NewSafeFS locks all future operations to the given root directory,
// creating it when absent.
func NewSafeFS(root string) (*SafeFS, error) {
	if root == "" {
		return nil, errors.New("safeio: empty root")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("safeio: root is not a directory")
	}
	return &SafeFS{absRoot: abs}, nil
}

// Root returns the absolute root directory bound to this SafeFS.
func (s *SafeFS) Root() string {
	if s == nil {
		return ""
	}
	return s.absRoot
}

// ReadFile reads a file relative to the root.
func (s *SafeFS) ReadFile(userPath string) ([]byte, error) {
	p, err := s.resolve(userPath, false)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, errors.New("safeio: path is a directory")
	}
	return os.ReadFile(p)
}

// WriteFile writes a file relative to the root, creating parent directories
// as needed. The write goes to a temp file in the same directory and is
// renamed into place, so readers never observe a half-written file.
func (s *SafeFS) WriteFile(userPath string, data []byte) error {
	p, err := s.resolve(userPath, true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, p); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// Remove deletes a file relative to the root. Missing files are not an
// error.
func (s *SafeFS) Remove(userPath string) error {
	p, err := s.resolve(userPath, true)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// ReadDir lists entries for a directory relative to the root.
func (s *SafeFS) ReadDir(userPath string) ([]fs.DirEntry, error) {
	dir, err := s.resolve(userPath, false)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("safeio: path is not a directory")
	}
	return os.ReadDir(dir)
}

// Stat returns metadata for a file or directory under the root.
func (s *SafeFS) Stat(userPath string) (fs.FileInfo, error) {
	p, err := s.resolve(userPath, false)
	if err != nil {
		return nil, err
	}
	return os.Stat(p)
}

// resolve maps a user path to an absolute path under the root. When
// forWrite is set the final element may not exist yet, so only its parent is
// symlink-resolved.
func (s *SafeFS) resolve(userPath string, forWrite bool) (string, error) {
	if s == nil {
		return "", errors.New("safeio: filesystem not configured")
	}
	if userPath == "" {
		return "", errors.New("safeio: empty path")
	}
	clean := filepath.Clean(filepath.FromSlash(userPath))
	if clean == "." {
		return s.absRoot, nil
	}
	if filepath.IsAbs(clean) || (runtime.GOOS == "windows" && filepath.VolumeName(clean) != "") {
		return "", errors.New("safeio: absolute paths not allowed")
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.New("safeio: path traversal not allowed")
	}

	joined := filepath.Join(s.absRoot, clean)
	if forWrite {
		parent, err := resolveExisting(filepath.Dir(joined))
		if err != nil {
			return "", err
		}
		if !hasPathPrefix(parent, s.absRoot) {
			return "", fmt.Errorf("safeio: resolved outside root (root=%s, path=%s)", s.absRoot, parent)
		}
		return filepath.Join(parent, filepath.Base(joined)), nil
	}

	resolved, err := filepath.EvalSymlinks(joined)
	if err != nil {
		return "", err
	}
	if !hasPathPrefix(resolved, s.absRoot) {
		return "", fmt.Errorf("safeio: resolved outside root (root=%s, path=%s)", s.absRoot, resolved)
	}
	return resolved, nil
}

// resolveExisting walks up until it finds an existing ancestor, resolves it,
// and re-joins the missing suffix.
func resolveExisting(dir string) (string, error) {
	missing := make([]string, 0, 4)
	for {
		resolved, err := filepath.EvalSymlinks(dir)
		if err == nil {
			for i := len(missing) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, missing[i])
			}
			return resolved, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		missing = append(missing, filepath.Base(dir))
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("safeio: no existing ancestor for %s", dir)
		}
		dir = parent
	}
}

func hasPathPrefix(path, root string) bool {
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	if runtime.GOOS == "windows" {
		path = strings.ToLower(path)
		root = strings.ToLower(root)
	}
	if len(root) == 0 {
		return true
	}
	if path == root {
		return true
	}
	sep := string(os.PathSeparator)
	if !strings.HasSuffix(root, sep) {
		root += sep
	}
	if !strings.HasSuffix(path, sep) {
		path += sep
	}
	return strings.HasPrefix(path, root)
}
