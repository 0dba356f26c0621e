package api

import (
	"context"
	"net/http"

	"github.com/envsentry/envsentry/internal/domain/risk"
)

// RiskDependencies defines the interface for risk assessment.
type RiskDependencies interface {
	GetRisk(ctx context.Context, location string) (risk.Assessment, error)
}

// RiskHandler handles risk assessment requests.
type RiskHandler struct {
	deps RiskDependencies
}

// NewRiskHandler creates a new risk handler.
func NewRiskHandler(deps RiskDependencies) *RiskHandler {
	return &RiskHandler{deps: deps}
}

// HandleGetRisk handles GET /risk/{location} requests.
func (h *RiskHandler) HandleGetRisk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	location, ok := locationFromPath(r.URL.Path, "/risk/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	assessment, err := h.deps.GetRisk(r.Context(), location)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}
