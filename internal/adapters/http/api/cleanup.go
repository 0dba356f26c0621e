package api

import (
	"context"
	"net/http"
	"strconv"
)

// CleanupDependencies defines the interface for store maintenance.
type CleanupDependencies interface {
	Cleanup(ctx context.Context, days int) (int, error)
}

// CleanupHandler handles retention cleanup requests.
type CleanupHandler struct {
	deps CleanupDependencies
}

// NewCleanupHandler creates a new cleanup handler.
func NewCleanupHandler(deps CleanupDependencies) *CleanupHandler {
	return &CleanupHandler{deps: deps}
}

// cleanupResponse reports how many readings a trim removed.
type cleanupResponse struct {
	Deleted int `json:"deleted"`
	Days    int `json:"days"`
}

// HandleCleanup handles POST /cleanup?days=D requests.
func (h *CleanupHandler) HandleCleanup(w http.ResponseWriter, r *http.Request) {
	const op = "api.cleanup"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		days = parsed
	}

	deleted, err := h.deps.Cleanup(r.Context(), days)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cleanupResponse{Deleted: deleted, Days: days})
}
