// Package handler holds the plain HTTP handlers that sit next to the
// Connect RPC surface: the artifact preview and health probe.
package handler

import (
	"errors"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/filestore"
)

// PreviewHandler serves a project's published artifact files so a browser
// can render them directly: GET /preview/{project_id}/{file}. A bare
// project path falls back to index.html. The .ai-context bookkeeping tree
// is never served.
type PreviewHandler struct {
	files filestore.Store
}

func NewPreviewHandler(files filestore.Store) *PreviewHandler {
	return &PreviewHandler{files: files}
}

func (h *PreviewHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/preview/")
	parts := strings.SplitN(rest, "/", 2)
	projectID := strings.TrimSpace(parts[0])
	if projectID == "" {
		http.Error(w, "project id is required", http.StatusBadRequest)
		return
	}
	file := "index.html"
	if len(parts) == 2 && strings.TrimSpace(parts[1]) != "" {
		file = parts[1]
	}
	if strings.Contains(file, "..") || strings.HasPrefix(file, ".ai-context") {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	content, err := h.files.Read(r.Context(), path.Join("projects", projectID, file))
	if errors.Is(err, filestore.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "read failed", http.StatusInternalServerError)
		return
	}

	ctype := mime.TypeByExtension(path.Ext(file))
	if ctype == "" {
		ctype = "text/plain; charset=utf-8"
	}
	w.Header().Set("Content-Type", ctype)
	_, _ = w.Write([]byte(content))
}

// HandleHealth is the liveness probe.
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
