package rpc

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/history"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/project"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/snapshot"
)

const projectServicePrefix = "/openqode.v1.ProjectService/"

type ListProjectsRequest struct{}

type ProjectSummary struct {
	ProjectID string    `json:"projectId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ListProjectsResponse struct {
	Projects []ProjectSummary `json:"projects"`
}

type GetProjectRequest struct {
	ProjectID string `json:"projectId"`
}

type GetProjectResponse struct {
	State project.State `json:"state"`
}

type HistoryRequest struct {
	ProjectID string `json:"projectId"`
}

type HistoryResponse struct {
	Records []history.Record `json:"records"`
}

type SnapshotsRequest struct {
	ProjectID string `json:"projectId"`
}

type SnapshotSummary struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	FileCount   int       `json:"fileCount"`
}

type SnapshotsResponse struct {
	Snapshots []SnapshotSummary `json:"snapshots"`
}

type GetSnapshotRequest struct {
	ProjectID  string `json:"projectId"`
	SnapshotID string `json:"snapshotId,omitempty"`
}

type GetSnapshotResponse struct {
	Snapshot snapshot.Metadata `json:"snapshot"`
}

// ProjectHandler serves read-side project endpoints: state, interaction
// history, and the undo stack. Writes go through BuildHandler.
type ProjectHandler struct {
	projects project.Store
	histLog  *history.Log
	snaps    *snapshot.Store
}

func NewProjectHandler(projects project.Store, histLog *history.Log, snaps *snapshot.Store) *ProjectHandler {
	return &ProjectHandler{projects: projects, histLog: histLog, snaps: snaps}
}

func (h *ProjectHandler) Routes() map[string]http.Handler {
	return map[string]http.Handler{
		projectServicePrefix + "ListProjects": connect.NewUnaryHandler(
			projectServicePrefix+"ListProjects", h.ListProjects, connect.WithCodec(jsonCodec{}),
		),
		projectServicePrefix + "GetProject": connect.NewUnaryHandler(
			projectServicePrefix+"GetProject", h.GetProject, connect.WithCodec(jsonCodec{}),
		),
		projectServicePrefix + "History": connect.NewUnaryHandler(
			projectServicePrefix+"History", h.History, connect.WithCodec(jsonCodec{}),
		),
		projectServicePrefix + "Snapshots": connect.NewUnaryHandler(
			projectServicePrefix+"Snapshots", h.Snapshots, connect.WithCodec(jsonCodec{}),
		),
		projectServicePrefix + "GetSnapshot": connect.NewUnaryHandler(
			projectServicePrefix+"GetSnapshot", h.GetSnapshot, connect.WithCodec(jsonCodec{}),
		),
	}
}

func (h *ProjectHandler) ListProjects(ctx context.Context, _ *connect.Request[ListProjectsRequest]) (*connect.Response[ListProjectsResponse], error) {
	states, err := h.projects.List(ctx)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	out := &ListProjectsResponse{Projects: make([]ProjectSummary, 0, len(states))}
	for _, s := range states {
		out.Projects = append(out.Projects, ProjectSummary{
			ProjectID: s.ProjectID,
			Name:      s.Manifest.Name,
			CreatedAt: s.Manifest.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}
	return connect.NewResponse(out), nil
}

func (h *ProjectHandler) GetProject(ctx context.Context, req *connect.Request[GetProjectRequest]) (*connect.Response[GetProjectResponse], error) {
	projectID := strings.TrimSpace(req.Msg.ProjectID)
	if projectID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("project_id is required"))
	}
	state, ok := h.projects.Get(ctx, projectID)
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("project %s not found", projectID))
	}
	return connect.NewResponse(&GetProjectResponse{State: state}), nil
}

func (h *ProjectHandler) History(ctx context.Context, req *connect.Request[HistoryRequest]) (*connect.Response[HistoryResponse], error) {
	projectID := strings.TrimSpace(req.Msg.ProjectID)
	if projectID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("project_id is required"))
	}
	records, err := h.histLog.Records(ctx, projectID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&HistoryResponse{Records: records}), nil
}

func (h *ProjectHandler) Snapshots(ctx context.Context, req *connect.Request[SnapshotsRequest]) (*connect.Response[SnapshotsResponse], error) {
	projectID := strings.TrimSpace(req.Msg.ProjectID)
	if projectID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("project_id is required"))
	}
	metas, err := h.snaps.List(ctx, projectID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	out := &SnapshotsResponse{Snapshots: make([]SnapshotSummary, 0, len(metas))}
	for _, m := range metas {
		out.Snapshots = append(out.Snapshots, SnapshotSummary{
			ID:          m.ID,
			Timestamp:   m.Timestamp,
			Description: m.Description,
			FileCount:   len(m.Files),
		})
	}
	return connect.NewResponse(out), nil
}

// GetSnapshot is a read-only lookup: a specific snapshot by id, or the
// newest one when the id is empty. The undo stack is left untouched.
func (h *ProjectHandler) GetSnapshot(ctx context.Context, req *connect.Request[GetSnapshotRequest]) (*connect.Response[GetSnapshotResponse], error) {
	projectID := strings.TrimSpace(req.Msg.ProjectID)
	if projectID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("project_id is required"))
	}
	meta, err := h.snaps.Peek(ctx, projectID, strings.TrimSpace(req.Msg.SnapshotID))
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if meta == nil {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("no snapshot found for project %s", projectID))
	}
	return connect.NewResponse(&GetSnapshotResponse{Snapshot: *meta}), nil
}
