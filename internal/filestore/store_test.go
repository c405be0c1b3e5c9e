package filestore

import (
	"context"
	"errors"
	"testing"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/tester"
)

func stores(t *testing.T) map[string]Store {
	disk, err := NewDiskStore(t.TempDir())
	tester.NoErr(t, err)
	return map[string]Store{"memory": NewMemoryStore(), "disk": disk}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			tester.NoErr(t, s.Write(ctx, "projects/p1/index.html", "<html></html>"))
			got, err := s.Read(ctx, "projects/p1/index.html")
			tester.NoErr(t, err)
			tester.Eq(t, got, "<html></html>")
		})
	}
}

func TestStoreReadMissing(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Read(ctx, "projects/p1/absent.html")
			tester.True(t, errors.Is(err, ErrNotFound), "want ErrNotFound, got %v", err)
		})
	}
}

func TestStoreListScopedToDir(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			tester.NoErr(t, s.Write(ctx, "projects/p1/index.html", "a"))
			tester.NoErr(t, s.Write(ctx, "projects/p1/style.css", "b"))
			tester.NoErr(t, s.Write(ctx, "projects/p2/index.html", "c"))
			got, err := s.List(ctx, "projects/p1")
			tester.NoErr(t, err)
			tester.Eq(t, got, []string{"projects/p1/index.html", "projects/p1/style.css"})
		})
	}
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			tester.NoErr(t, s.Write(ctx, "x.txt", "x"))
			tester.NoErr(t, s.Delete(ctx, "x.txt"))
			_, err := s.Read(ctx, "x.txt")
			tester.True(t, errors.Is(err, ErrNotFound))
		})
	}
}
