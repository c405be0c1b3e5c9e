package safeio

import (
	"testing"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/tester"
)

func TestWriteThenRead(t *testing.T) {
	fsys, err := NewSafeFS(t.TempDir())
	tester.NoErr(t, err)
	tester.NoErr(t, fsys.WriteFile("projects/p1/index.html", []byte("<html></html>")))
	data, err := fsys.ReadFile("projects/p1/index.html")
	tester.NoErr(t, err)
	tester.Eq(t, string(data), "<html></html>")
}

func TestWriteCreatesParents(t *testing.T) {
	fsys, err := NewSafeFS(t.TempDir())
	tester.NoErr(t, err)
	tester.NoErr(t, fsys.WriteFile("a/b/c/d.txt", []byte("x")))
	entries, err := fsys.ReadDir("a/b/c")
	tester.NoErr(t, err)
	tester.Eq(t, len(entries), 1)
}

func TestTraversalRejected(t *testing.T) {
	fsys, err := NewSafeFS(t.TempDir())
	tester.NoErr(t, err)
	_, err = fsys.ReadFile("../outside.txt")
	tester.Err(t, err)
	err = fsys.WriteFile("../outside.txt", []byte("x"))
	tester.Err(t, err)
}

func TestAbsolutePathRejected(t *testing.T) {
	fsys, err := NewSafeFS(t.TempDir())
	tester.NoErr(t, err)
	_, err = fsys.ReadFile("/etc/hosts")
	tester.Err(t, err)
}

func TestRemoveMissingIsFine(t *testing.T) {
	fsys, err := NewSafeFS(t.TempDir())
	tester.NoErr(t, err)
	tester.NoErr(t, fsys.WriteFile("x.txt", []byte("x")))
	tester.NoErr(t, fsys.Remove("x.txt"))
	tester.NoErr(t, fsys.Remove("x.txt"))
}
