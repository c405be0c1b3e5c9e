// Package history records what happened to a project: the capped
// interaction log of guard decisions, and the build-history forensics for
// failed generations.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/filestore"
)

// MaxRecords caps the interaction log; the oldest record is evicted first.
const MaxRecords = 50

// Record is one append-only interaction entry. The audit trail of these,
// not HTML diffs, is how a blocked edit is explained later.
type Record struct {
	Timestamp        time.Time `json:"timestamp"`
	UserPrompt       string    `json:"userPrompt"`
	Mode             string    `json:"mode"`
	WhatChanged      string    `json:"whatChanged"`
	ContextPreserved bool      `json:"contextPreserved"`
	DOMDriftPercent  int       `json:"domDriftPercent"`
}

// Log persists per-project interaction histories through a file store.
type Log struct {
	files filestore.Store
}

func NewLog(files filestore.Store) *Log {
	return &Log{files: files}
}

func logPath(projectID string) string {
	return path.Join("projects", projectID, ".ai-context", "history.json")
}

// Append adds a record, evicting from the front once MaxRecords is reached.
func (l *Log) Append(ctx context.Context, projectID string, rec Record) error {
	if l == nil || l.files == nil {
		return fmt.Errorf("history log is not configured")
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return fmt.Errorf("project_id is required")
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	records, err := l.Records(ctx, projectID)
	if err != nil {
		return err
	}
	records = append(records, rec)
	if len(records) > MaxRecords {
		records = records[len(records)-MaxRecords:]
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return l.files.Write(ctx, logPath(projectID), string(data))
}

// Records returns the log oldest-first.
func (l *Log) Records(ctx context.Context, projectID string) ([]Record, error) {
	raw, err := l.files.Read(ctx, logPath(projectID))
	if errors.Is(err, filestore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, nil
	}
	return records, nil
}
