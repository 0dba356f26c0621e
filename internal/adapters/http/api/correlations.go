package api

import (
	"context"
	"net/http"

	"github.com/envsentry/envsentry/internal/domain/correlation"
)

// CorrelationDependencies defines the interface for correlation analysis.
type CorrelationDependencies interface {
	GetCorrelations(ctx context.Context, location string) ([]correlation.Finding, error)
}

// CorrelationsHandler handles correlation analysis requests.
type CorrelationsHandler struct {
	deps CorrelationDependencies
}

// NewCorrelationsHandler creates a new correlations handler.
func NewCorrelationsHandler(deps CorrelationDependencies) *CorrelationsHandler {
	return &CorrelationsHandler{deps: deps}
}

// correlationsResponse wraps findings so an empty result stays a JSON array.
type correlationsResponse struct {
	Location string                `json:"location"`
	Findings []correlation.Finding `json:"findings"`
}

// HandleGetCorrelations handles GET /correlations/{location} requests.
func (h *CorrelationsHandler) HandleGetCorrelations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	location, ok := locationFromPath(r.URL.Path, "/correlations/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	findings, err := h.deps.GetCorrelations(r.Context(), location)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if findings == nil {
		findings = []correlation.Finding{}
	}
	writeJSON(w, http.StatusOK, correlationsResponse{Location: location, Findings: findings})
}
