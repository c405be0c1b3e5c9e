package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/builder"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/gate"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/guard"
)

const buildServicePrefix = "/openqode.v1.BuildService/"

type BuildRequest struct {
	ProjectID string `json:"projectId"`
	Request   string `json:"request"`
}

type BuildResponse struct {
	ProjectID      string            `json:"projectId"`
	BuildID        string            `json:"buildId"`
	Files          map[string]string `json:"files"`
	QAFailed       bool              `json:"qaFailed"`
	QAReport       gate.Report       `json:"qaReport"`
	Mode           string            `json:"mode,omitempty"`
	AppliedPatches int               `json:"appliedPatches,omitempty"`
	SkippedPatches int               `json:"skippedPatches,omitempty"`
	Guard          *guard.Decision   `json:"guard,omitempty"`
}

type UndoRequest struct {
	ProjectID string `json:"projectId"`
}

type UndoResponse struct {
	Restored    bool              `json:"restored"`
	SnapshotID  string            `json:"snapshotId,omitempty"`
	Description string            `json:"description,omitempty"`
	Files       map[string]string `json:"files,omitempty"`
}

// BuildHandler exposes the orchestrator over the Connect protocol.
type BuildHandler struct {
	b *builder.Builder
}

func NewBuildHandler(b *builder.Builder) *BuildHandler {
	return &BuildHandler{b: b}
}

// Routes returns the handler's connect endpoints, ready for mux.Handle.
func (h *BuildHandler) Routes() map[string]http.Handler {
	return map[string]http.Handler{
		buildServicePrefix + "Build": connect.NewUnaryHandler(
			buildServicePrefix+"Build", h.Build, connect.WithCodec(jsonCodec{}),
		),
		buildServicePrefix + "Modify": connect.NewUnaryHandler(
			buildServicePrefix+"Modify", h.Modify, connect.WithCodec(jsonCodec{}),
		),
		buildServicePrefix + "Undo": connect.NewUnaryHandler(
			buildServicePrefix+"Undo", h.Undo, connect.WithCodec(jsonCodec{}),
		),
	}
}

func (h *BuildHandler) Build(ctx context.Context, req *connect.Request[BuildRequest]) (*connect.Response[BuildResponse], error) {
	projectID := strings.TrimSpace(req.Msg.ProjectID)
	request := strings.TrimSpace(req.Msg.Request)
	if projectID == "" || request == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("project_id and request are required"))
	}

	res, err := h.b.Build(ctx, projectID, request)
	if err != nil {
		return nil, buildError(err)
	}
	return connect.NewResponse(toBuildResponse(res)), nil
}

func (h *BuildHandler) Modify(ctx context.Context, req *connect.Request[BuildRequest]) (*connect.Response[BuildResponse], error) {
	projectID := strings.TrimSpace(req.Msg.ProjectID)
	request := strings.TrimSpace(req.Msg.Request)
	if projectID == "" || request == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("project_id and request are required"))
	}

	res, err := h.b.Modify(ctx, projectID, request)
	if err != nil {
		return nil, buildError(err)
	}
	return connect.NewResponse(toBuildResponse(res)), nil
}

func (h *BuildHandler) Undo(ctx context.Context, req *connect.Request[UndoRequest]) (*connect.Response[UndoResponse], error) {
	projectID := strings.TrimSpace(req.Msg.ProjectID)
	if projectID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("project_id is required"))
	}

	meta, err := h.b.Undo(ctx, projectID)
	if err != nil {
		return nil, buildError(err)
	}
	if meta == nil {
		return connect.NewResponse(&UndoResponse{Restored: false}), nil
	}
	return connect.NewResponse(&UndoResponse{
		Restored:    true,
		SnapshotID:  meta.ID,
		Description: meta.Description,
		Files:       meta.Files,
	}), nil
}

// buildError maps the orchestrator's error taxonomy onto connect codes so a
// client can branch without string matching.
func buildError(err error) error {
	var redesign *builder.RedesignRequestedError
	if errors.As(err, &redesign) {
		return connect.NewError(connect.CodeFailedPrecondition, redesign)
	}
	var blocked *builder.GuardBlockedError
	if errors.As(err, &blocked) {
		return connect.NewError(connect.CodeFailedPrecondition, blocked)
	}
	var gates *builder.GateFailureError
	if errors.As(err, &gates) {
		return connect.NewError(connect.CodeFailedPrecondition, gates)
	}
	var malformed *builder.GenerationMalformedError
	if errors.As(err, &malformed) {
		return connect.NewError(connect.CodeUnavailable, malformed)
	}
	if errors.Is(err, builder.ErrProjectNotFound) {
		return connect.NewError(connect.CodeNotFound, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return connect.NewError(connect.CodeCanceled, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

func toBuildResponse(res *builder.Result) *BuildResponse {
	return &BuildResponse{
		ProjectID:      res.ProjectID,
		BuildID:        res.BuildID,
		Files:          res.Files,
		QAFailed:       res.QAFailed,
		QAReport:       res.QAReport,
		Mode:           res.Mode,
		AppliedPatches: res.AppliedPatches,
		SkippedPatches: res.SkippedPatches,
		Guard:          res.Guard,
	}
}
