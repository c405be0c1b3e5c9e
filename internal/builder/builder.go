// Package builder orchestrates the full artifact lifecycle: generation with
// gate-driven retries, patch-based modification behind the consistency
// guard, and snapshot-backed undo. It is the only package that writes live
// project files; everything below it works on private buffers.
package builder

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/artifact"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/filestore"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/gate"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/generator"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/guard"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/history"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/intent"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/patch"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/project"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/snapshot"
)

// MaxBuildAttempts bounds the generate-validate loop for full builds.
// Modifications retry once; see Modify.
const MaxBuildAttempts = 3

// Result is what both Build and Modify hand back. On a QA-failed build the
// Files hold the rejection overlay, never the broken artifact.
type Result struct {
	ProjectID      string          `json:"projectId"`
	BuildID        string          `json:"buildId"`
	Files          artifact.Bundle `json:"files"`
	QAFailed       bool            `json:"qaFailed"`
	QAReport       gate.Report     `json:"qaReport"`
	Mode           string          `json:"mode,omitempty"`
	AppliedPatches int             `json:"appliedPatches,omitempty"`
	SkippedPatches int             `json:"skippedPatches,omitempty"`
	Guard          *guard.Decision `json:"guard,omitempty"`
}

// Builder wires the pipeline stages together. One Builder serves all
// projects; writes to a single project are serialized by a per-project lock.
type Builder struct {
	gen      generator.Client
	files    filestore.Store
	projects project.Store
	snaps    *snapshot.Store
	histLog  *history.Log
	archive  *history.Archive
	events   EventSink

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(gen generator.Client, files filestore.Store, projects project.Store, snaps *snapshot.Store, histLog *history.Log, archive *history.Archive, events EventSink) *Builder {
	return &Builder{
		gen:      gen,
		files:    files,
		projects: projects,
		snaps:    snaps,
		histLog:  histLog,
		archive:  archive,
		events:   events,
		locks:    map[string]*sync.Mutex{},
	}
}

// lock serializes writes per project. Reads outside the builder are not
// coordinated; the atomic write strategy keeps them consistent.
func (b *Builder) lock(projectID string) func() {
	b.mu.Lock()
	m, ok := b.locks[projectID]
	if !ok {
		m = &sync.Mutex{}
		b.locks[projectID] = m
	}
	b.mu.Unlock()
	m.Lock()
	return m.Unlock
}

func (b *Builder) publish(projectID, buildID, stage, msg string) {
	if b.events == nil {
		return
	}
	b.events.Publish(Event{
		ProjectID: projectID,
		BuildID:   buildID,
		Stage:     stage,
		Message:   msg,
		Timestamp: time.Now().UTC(),
	})
}

func projectDir(projectID string) string {
	return path.Join("projects", projectID)
}

func newBuildID() string {
	return fmt.Sprintf("build-%d", time.Now().UnixNano())
}

// Build generates a project from scratch, or regenerates an existing one.
// Failed attempts feed their repair hints back into the next prompt; after
// MaxBuildAttempts the caller gets the rejection overlay, and the previously
// published files (if any) stay untouched.
func (b *Builder) Build(ctx context.Context, projectID, request string) (*Result, error) {
	projectID = strings.TrimSpace(projectID)
	request = strings.TrimSpace(request)
	if projectID == "" {
		return nil, fmt.Errorf("project_id is required")
	}
	if request == "" {
		return nil, fmt.Errorf("request is required")
	}
	unlock := b.lock(projectID)
	defer unlock()

	buildID := newBuildID()
	state, exists := b.projects.Get(ctx, projectID)
	if !exists {
		state = project.State{
			ProjectID: projectID,
			Manifest:  newManifest(projectID, request),
		}
	}

	prompt := buildPrompt(state.Manifest, request, nil)
	var lastBundle artifact.Bundle
	var lastReport gate.Report

	for attempt := 1; attempt <= MaxBuildAttempts; attempt++ {
		b.publish(projectID, buildID, StageGenerate, fmt.Sprintf("attempt %d/%d", attempt, MaxBuildAttempts))
		raw, err := b.gen.Generate(ctx, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			raw = ""
		}
		bundle, perr := artifact.ParseBundle(raw)
		if perr != nil {
			bundle = artifact.Stub(perr.Error())
		}

		b.publish(projectID, buildID, StageValidate, "")
		report := gate.Run(bundle, gate.Context{Request: request})
		lastBundle, lastReport = bundle, report

		if report.OverallPass {
			if err := b.commit(ctx, &state, exists, bundle, request, buildMode(exists), 0); err != nil {
				return nil, err
			}
			b.publish(projectID, buildID, StageDone, "")
			return &Result{
				ProjectID: projectID,
				BuildID:   buildID,
				Files:     bundle,
				QAReport:  report,
				Mode:      buildMode(exists),
			}, nil
		}

		if err := b.archive.SaveAttempt(ctx, projectID, buildID, attempt, bundle, report); err != nil {
			return nil, fmt.Errorf("archive attempt %d: %w", attempt, err)
		}
		prompt = buildPrompt(state.Manifest, request, append(report.RepairHints, report.Errors()...))
	}

	b.publish(projectID, buildID, StageReject, "retries exhausted")
	return &Result{
		ProjectID: projectID,
		BuildID:   buildID,
		Files:     overlayBundle(buildID, lastReport, lastBundle),
		QAFailed:  true,
		QAReport:  lastReport,
		Mode:      buildMode(exists),
	}, nil
}

func buildMode(exists bool) string {
	if exists {
		return string(intent.ModeFullRegen)
	}
	return "INITIAL_BUILD"
}

// Modify applies a targeted change to an existing project: classify the
// request, ask the generator for a patch plan, run the patch engine on a
// private buffer, then guard and gates before anything touches disk. One
// retry with the rejection reasons folded into the prompt; after that the
// typed error surfaces to the caller.
func (b *Builder) Modify(ctx context.Context, projectID, request string) (*Result, error) {
	projectID = strings.TrimSpace(projectID)
	request = strings.TrimSpace(request)
	if projectID == "" {
		return nil, fmt.Errorf("project_id is required")
	}
	if request == "" {
		return nil, fmt.Errorf("request is required")
	}
	unlock := b.lock(projectID)
	defer unlock()

	state, ok := b.projects.Get(ctx, projectID)
	if !ok {
		return nil, ErrProjectNotFound
	}

	analysis := intent.Classify(request)
	if analysis.Mode == intent.ModeFullRegen {
		return nil, &RedesignRequestedError{ProjectID: projectID, Request: request}
	}
	analysis.Constraints = append(analysis.Constraints, state.Manifest.NonNegotiables...)

	current, err := b.readBundle(ctx, projectID)
	if err != nil {
		return nil, err
	}
	currentHTML := current.HTML()
	if currentHTML == "" {
		return nil, fmt.Errorf("project %s has no index.html to modify", projectID)
	}

	buildID := newBuildID()
	stored := guard.Stored{
		DOMSignature:   state.Current.Fingerprint.DOMSignature,
		StyleSignature: state.Current.StyleSignature,
	}

	var reasons []string
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		b.publish(projectID, buildID, StageGenerate, fmt.Sprintf("patch plan, attempt %d", attempt+1))
		raw, err := b.gen.Generate(ctx, patchPrompt(currentHTML, request, analysis, reasons))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			raw = ""
		}
		set, perr := artifact.ParsePatchSet(raw)
		if perr != nil {
			lastErr = &GenerationMalformedError{Detail: perr.Error()}
			reasons = []string{fmt.Sprintf("previous response was not a valid patch plan: %v", perr)}
			continue
		}
		if set.RedesignRequested {
			return nil, &RedesignRequestedError{ProjectID: projectID, Request: request}
		}

		outcome := patch.ApplySet(currentHTML, set)
		candidate := current.Clone()
		candidate["index.html"] = outcome.Buffer

		b.publish(projectID, buildID, StageGuard, "")
		decision := guard.Evaluate(analysis.Mode, stored, outcome.Buffer, candidate.CSS())
		b.recordInteraction(ctx, projectID, request, analysis.Mode, decision, outcome)
		if !decision.Approved {
			lastErr = &GuardBlockedError{Decision: decision}
			reasons = append([]string{decision.Reason}, decision.Recommendations...)
			continue
		}

		b.publish(projectID, buildID, StageValidate, "")
		report := gate.Run(candidate, gate.Context{Request: state.Manifest.OriginalRequest + " " + request})
		if !report.OverallPass {
			if err := b.archive.SaveAttempt(ctx, projectID, buildID, attempt+1, candidate, report); err != nil {
				return nil, fmt.Errorf("archive attempt %d: %w", attempt+1, err)
			}
			lastErr = &GateFailureError{Report: report}
			reasons = append(report.RepairHints, report.Errors()...)
			continue
		}

		if err := b.commit(ctx, &state, true, candidate, request, string(analysis.Mode), decision.DOMDrift); err != nil {
			return nil, err
		}
		b.publish(projectID, buildID, StageDone, "")
		return &Result{
			ProjectID:      projectID,
			BuildID:        buildID,
			Files:          candidate,
			QAReport:       report,
			Mode:           string(analysis.Mode),
			AppliedPatches: outcome.AppliedPatches,
			SkippedPatches: outcome.SkippedPatches,
			Guard:          &decision,
		}, nil
	}

	b.publish(projectID, buildID, StageReject, "")
	if lastErr == nil {
		lastErr = &GenerationMalformedError{Detail: "no usable patch plan"}
	}
	return nil, lastErr
}

// Undo rolls the project back one snapshot. A nil result with a nil error
// means the stack was empty; that is not a failure.
func (b *Builder) Undo(ctx context.Context, projectID string) (*snapshot.Metadata, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("project_id is required")
	}
	unlock := b.lock(projectID)
	defer unlock()

	if _, ok := b.projects.Get(ctx, projectID); !ok {
		return nil, ErrProjectNotFound
	}
	meta, err := b.snaps.Pop(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, nil
	}

	// Fingerprint state must track the files actually on disk, which are
	// now the restored snapshot.
	if _, _, err := b.projects.Update(ctx, projectID, func(s *project.State) {
		s.Current = project.NewCurrentState(meta.Files.HTML(), meta.Files.CSS())
		s.UpdatedAt = time.Now().UTC()
	}); err != nil {
		return nil, err
	}
	_ = b.histLog.Append(ctx, projectID, history.Record{
		Timestamp:        time.Now().UTC(),
		UserPrompt:       "undo",
		Mode:             "UNDO",
		WhatChanged:      fmt.Sprintf("restored snapshot %s (%s)", meta.ID, meta.Description),
		ContextPreserved: true,
	})
	return meta, nil
}

// commit is the single write path: snapshot the published files when some
// exist, write the new bundle all-or-nothing, then refresh the stored
// fingerprint state and append the interaction record.
func (b *Builder) commit(ctx context.Context, state *project.State, exists bool, bundle artifact.Bundle, request, mode string, drift int) error {
	projectID := state.ProjectID
	b.publish(projectID, "", StageWrite, "")

	var prior artifact.Bundle
	if exists {
		var err error
		prior, err = b.readBundle(ctx, projectID)
		if err != nil {
			return err
		}
		if len(prior) > 0 {
			if _, err := b.snaps.Save(ctx, projectID, request, prior); err != nil {
				return fmt.Errorf("snapshot before write: %w", err)
			}
		}
	}

	if err := b.writeBundle(ctx, projectID, bundle, prior); err != nil {
		return err
	}

	state.Current = project.NewCurrentState(bundle.HTML(), bundle.CSS())
	state.UpdatedAt = time.Now().UTC()
	if err := b.projects.Put(ctx, *state); err != nil {
		return fmt.Errorf("persist project state: %w", err)
	}
	_ = b.histLog.Append(ctx, projectID, history.Record{
		Timestamp:        time.Now().UTC(),
		UserPrompt:       request,
		Mode:             mode,
		WhatChanged:      fmt.Sprintf("wrote %d file(s): %s", len(bundle), strings.Join(bundle.Names(), ", ")),
		ContextPreserved: true,
		DOMDriftPercent:  drift,
	})
	return nil
}

// writeBundle publishes a bundle with compensation: if any write fails, the
// prior files are restored and freshly added ones removed, so a partial
// artifact is never left live.
func (b *Builder) writeBundle(ctx context.Context, projectID string, bundle, prior artifact.Bundle) error {
	var written []string
	for _, name := range bundle.Names() {
		if err := b.files.Write(ctx, path.Join(projectDir(projectID), name), bundle[name]); err != nil {
			b.rollback(ctx, projectID, written, prior)
			return fmt.Errorf("write %s: %w", name, err)
		}
		written = append(written, name)
	}
	// Stale files from the previous artifact would shadow the new one.
	for _, name := range prior.Names() {
		if _, ok := bundle[name]; !ok {
			if err := b.files.Delete(ctx, path.Join(projectDir(projectID), name)); err != nil {
				return fmt.Errorf("remove stale %s: %w", name, err)
			}
		}
	}
	return nil
}

func (b *Builder) rollback(ctx context.Context, projectID string, written []string, prior artifact.Bundle) {
	for _, name := range written {
		if old, ok := prior[name]; ok {
			_ = b.files.Write(ctx, path.Join(projectDir(projectID), name), old)
		} else {
			_ = b.files.Delete(ctx, path.Join(projectDir(projectID), name))
		}
	}
}

// readBundle loads the published artifact files for a project, skipping the
// .ai-context bookkeeping tree.
func (b *Builder) readBundle(ctx context.Context, projectID string) (artifact.Bundle, error) {
	dir := projectDir(projectID)
	names, err := b.files.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("list project files: %w", err)
	}
	out := artifact.Bundle{}
	for _, name := range names {
		rel := strings.TrimPrefix(strings.TrimPrefix(name, dir), "/")
		if rel == "" || strings.HasPrefix(rel, ".ai-context") {
			continue
		}
		content, err := b.files.Read(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		out[rel] = content
	}
	return out, nil
}

func (b *Builder) recordInteraction(ctx context.Context, projectID, request string, mode intent.Mode, d guard.Decision, outcome patch.Outcome) {
	what := fmt.Sprintf("applied %d patch(es), skipped %d, invalid %d", outcome.AppliedPatches, outcome.SkippedPatches, outcome.InvalidPatches)
	if !d.Approved {
		what = "blocked: " + d.Reason
	}
	_ = b.histLog.Append(ctx, projectID, history.Record{
		Timestamp:        time.Now().UTC(),
		UserPrompt:       request,
		Mode:             string(mode),
		WhatChanged:      what,
		ContextPreserved: d.Approved,
		DOMDriftPercent:  d.DOMDrift,
	})
}

var (
	hexColorRe      = regexp.MustCompile(`#[0-9a-fA-F]{3,8}\b`)
	nonNegotiableRe = regexp.MustCompile(`(?i)\b(must|always|never|do not|don't|required)\b`)
)

// newManifest captures project inception: the original request, the clauses
// that read as hard requirements, and whatever design tokens it already names.
func newManifest(projectID, request string) project.Manifest {
	name := request
	if len(name) > 60 {
		name = name[:60]
	}
	return project.Manifest{
		ProjectID:       projectID,
		Name:            name,
		CreatedAt:       time.Now().UTC(),
		OriginalRequest: request,
		CoreIntent:      coreIntent(request),
		NonNegotiables:  nonNegotiables(request),
		DesignTokens: project.TokenHints{
			Colors: hexColorRe.FindAllString(request, 10),
		},
	}
}

// nonNegotiables keeps the sentences of the request that state hard
// requirements, so every later prompt can repeat them verbatim.
func nonNegotiables(request string) []string {
	var out []string
	for _, s := range strings.FieldsFunc(request, func(r rune) bool {
		return r == '.' || r == '!' || r == ';' || r == '\n'
	}) {
		s = strings.TrimSpace(s)
		if s != "" && nonNegotiableRe.MatchString(s) {
			out = append(out, s)
		}
	}
	return out
}

func coreIntent(request string) string {
	s := strings.TrimSpace(request)
	if i := strings.IndexAny(s, ".!\n"); i > 0 {
		s = s[:i]
	}
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}
