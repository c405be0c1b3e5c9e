package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/artifact"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/filestore"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/gate"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/tester"
)

func TestLogAppendAndRead(t *testing.T) {
	ctx := context.Background()
	l := NewLog(filestore.NewMemoryStore())
	tester.NoErr(t, l.Append(ctx, "p1", Record{UserPrompt: "fix typo", Mode: "REPAIR_MODE", ContextPreserved: true}))
	records, err := l.Records(ctx, "p1")
	tester.NoErr(t, err)
	tester.Eq(t, len(records), 1)
	tester.Eq(t, records[0].UserPrompt, "fix typo")
	tester.False(t, records[0].Timestamp.IsZero(), "timestamp is defaulted")
}

func TestLogCapFIFO(t *testing.T) {
	ctx := context.Background()
	l := NewLog(filestore.NewMemoryStore())
	for i := 0; i < MaxRecords+7; i++ {
		tester.NoErr(t, l.Append(ctx, "p1", Record{UserPrompt: fmt.Sprintf("req %d", i)}))
	}
	records, err := l.Records(ctx, "p1")
	tester.NoErr(t, err)
	tester.Eq(t, len(records), MaxRecords)
	tester.Eq(t, records[0].UserPrompt, "req 7", "oldest records are evicted first")
	tester.Eq(t, records[len(records)-1].UserPrompt, fmt.Sprintf("req %d", MaxRecords+6))
}

func TestArchiveSaveAndReadBack(t *testing.T) {
	ctx := context.Background()
	files := filestore.NewMemoryStore()
	a := NewArchive(files, nil, nil)

	bundle := artifact.Bundle{"index.html": "# Implementation Plan\n- nope"}
	report := gate.Run(bundle, gate.Context{})
	tester.False(t, report.OverallPass)

	tester.NoErr(t, a.SaveAttempt(ctx, "p1", "b1", 1, bundle, report))

	got, err := a.Report(ctx, "p1", "b1", 1)
	tester.NoErr(t, err)
	tester.False(t, got.OverallPass)

	raw, err := files.Read(ctx, "projects/p1/.ai-context/build-history/b1/attempt-1/index.html")
	tester.NoErr(t, err)
	tester.Contains(t, raw, "Implementation Plan")
}

func TestLedgerInsertAndQuery(t *testing.T) {
	ctx := context.Background()
	l, err := OpenLedger(filepath.Join(t.TempDir(), "builds.db"))
	tester.NoErr(t, err)
	defer l.Close()

	tester.NoErr(t, l.Insert(ctx, BuildRecord{BuildID: "b1", ProjectID: "p1", Attempt: 1}))
	tester.NoErr(t, l.Insert(ctx, BuildRecord{BuildID: "b1", ProjectID: "p1", Attempt: 2, Passed: true}))

	records, err := l.ByProject(ctx, "p1")
	tester.NoErr(t, err)
	tester.Eq(t, len(records), 2)
}
