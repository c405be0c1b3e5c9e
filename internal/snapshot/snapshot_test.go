package snapshot

import (
	"context"
	"fmt"
	"testing"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/artifact"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/filestore"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/tester"
)

func testStore() (*Store, filestore.Store) {
	files := filestore.NewMemoryStore()
	return NewStore(files), files
}

func TestSaveAndList(t *testing.T) {
	ctx := context.Background()
	s, _ := testStore()
	_, err := s.Save(ctx, "p1", "before change", artifact.Bundle{"index.html": "<html>v1</html>"})
	tester.NoErr(t, err)
	_, err = s.Save(ctx, "p1", "before second change", artifact.Bundle{"index.html": "<html>v2</html>"})
	tester.NoErr(t, err)

	stack, err := s.List(ctx, "p1")
	tester.NoErr(t, err)
	tester.Eq(t, len(stack), 2)
	tester.Eq(t, stack[0].Description, "before second change", "newest first")
}

func TestStackNeverExceedsMaxDepth(t *testing.T) {
	ctx := context.Background()
	s, _ := testStore()
	for i := 0; i < MaxDepth+10; i++ {
		_, err := s.Save(ctx, "p1", fmt.Sprintf("change %d", i), artifact.Bundle{"index.html": fmt.Sprintf("<html>v%d</html>", i)})
		tester.NoErr(t, err)
	}
	stack, err := s.List(ctx, "p1")
	tester.NoErr(t, err)
	tester.Eq(t, len(stack), MaxDepth)
	// Oldest entries were discarded: the tail is the 10th save, not the 0th.
	tester.Eq(t, stack[len(stack)-1].Description, "change 10")
}

func TestPopRestoresFiles(t *testing.T) {
	ctx := context.Background()
	s, files := testStore()
	_, err := s.Save(ctx, "p1", "pre", artifact.Bundle{"index.html": "<html>old</html>"})
	tester.NoErr(t, err)
	tester.NoErr(t, files.Write(ctx, "projects/p1/index.html", "<html>new</html>"))

	meta, err := s.Pop(ctx, "p1")
	tester.NoErr(t, err)
	tester.True(t, meta != nil)

	restored, err := files.Read(ctx, "projects/p1/index.html")
	tester.NoErr(t, err)
	tester.Eq(t, restored, "<html>old</html>")
}

func TestPopExhaustsThenNil(t *testing.T) {
	ctx := context.Background()
	s, _ := testStore()
	const n = 3
	for i := 0; i < n; i++ {
		_, err := s.Save(ctx, "p1", "s", artifact.Bundle{"index.html": "<html></html>"})
		tester.NoErr(t, err)
	}
	for i := 0; i < n; i++ {
		meta, err := s.Pop(ctx, "p1")
		tester.NoErr(t, err)
		tester.True(t, meta != nil, "pop within depth must succeed")
	}
	meta, err := s.Pop(ctx, "p1")
	tester.NoErr(t, err)
	tester.True(t, meta == nil, "pop on empty stack returns nil")
}

func TestPeekDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	s, _ := testStore()
	saved, err := s.Save(ctx, "p1", "only", artifact.Bundle{"index.html": "<html></html>"})
	tester.NoErr(t, err)

	byID, err := s.Peek(ctx, "p1", saved.ID)
	tester.NoErr(t, err)
	tester.True(t, byID != nil)

	newest, err := s.Peek(ctx, "p1", "")
	tester.NoErr(t, err)
	tester.Eq(t, newest.ID, saved.ID)

	stack, err := s.List(ctx, "p1")
	tester.NoErr(t, err)
	tester.Eq(t, len(stack), 1, "peek must not pop")
}
