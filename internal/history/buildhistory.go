package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/artifact"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/filestore"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/gate"
)

// BuildRecord summarizes one generation attempt for the ledger.
type BuildRecord struct {
	BuildID   string    `json:"buildId"`
	ProjectID string    `json:"projectId"`
	Passed    bool      `json:"passed"`
	Attempt   int       `json:"attempt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Archive persists failed builds for forensic inspection: the raw bundle and
// its gate report go under the project's build-history path, optionally
// mirrored to an object store and indexed in a ledger. Mirror and ledger
// failures are logged, never fatal — forensics must not break a build.
type Archive struct {
	files  filestore.Store
	mirror filestore.Store // optional, e.g. S3
	ledger *Ledger         // optional
}

func NewArchive(files filestore.Store, mirror filestore.Store, ledger *Ledger) *Archive {
	return &Archive{files: files, mirror: mirror, ledger: ledger}
}

func buildDir(projectID, buildID string) string {
	return path.Join("projects", projectID, ".ai-context", "build-history", buildID)
}

// SaveAttempt archives one generation attempt and its gate report.
func (a *Archive) SaveAttempt(ctx context.Context, projectID, buildID string, attempt int, bundle artifact.Bundle, report gate.Report) error {
	if a == nil || a.files == nil {
		return fmt.Errorf("build archive is not configured")
	}
	projectID = strings.TrimSpace(projectID)
	buildID = strings.TrimSpace(buildID)
	if projectID == "" || buildID == "" {
		return fmt.Errorf("project_id and build_id are required")
	}

	dir := buildDir(projectID, buildID)
	reportJSON, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	prefix := fmt.Sprintf("attempt-%d", attempt)
	if err := a.files.Write(ctx, path.Join(dir, prefix+"-report.json"), string(reportJSON)); err != nil {
		return err
	}
	for _, name := range bundle.Names() {
		if err := a.files.Write(ctx, path.Join(dir, prefix, name), bundle[name]); err != nil {
			return err
		}
	}

	if a.mirror != nil {
		if err := a.mirror.Write(ctx, path.Join(dir, prefix+"-report.json"), string(reportJSON)); err != nil {
			log.Printf("build archive mirror failed: %v", err)
		}
	}
	if a.ledger != nil {
		rec := BuildRecord{
			BuildID:   buildID,
			ProjectID: projectID,
			Passed:    report.OverallPass,
			Attempt:   attempt,
			CreatedAt: time.Now().UTC(),
		}
		if err := a.ledger.Insert(ctx, rec); err != nil {
			log.Printf("build ledger insert failed: %v", err)
		}
	}
	return nil
}

// Report reads an archived gate report back.
func (a *Archive) Report(ctx context.Context, projectID, buildID string, attempt int) (gate.Report, error) {
	raw, err := a.files.Read(ctx, path.Join(buildDir(projectID, buildID), fmt.Sprintf("attempt-%d-report.json", attempt)))
	if err != nil {
		return gate.Report{}, err
	}
	var report gate.Report
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return gate.Report{}, err
	}
	return report, nil
}
