package api

import (
	"context"
	"net/http"

	"github.com/envsentry/envsentry/internal/domain/analysis"
)

// defaultAnalysisHours is the pattern analysis window when none is given.
const defaultAnalysisHours = 48

// AnalysisDependencies defines the interface for pattern analysis.
type AnalysisDependencies interface {
	GetAnalysis(ctx context.Context, location string, hours int) (analysis.Report, error)
}

// AnalysisHandler handles pattern analysis requests.
type AnalysisHandler struct {
	deps AnalysisDependencies
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(deps AnalysisDependencies) *AnalysisHandler {
	return &AnalysisHandler{deps: deps}
}

// analysisResponse carries the report together with its query window.
type analysisResponse struct {
	Location string          `json:"location"`
	Hours    int             `json:"hours"`
	Report   analysis.Report `json:"analysis"`
}

// HandleGetAnalysis handles GET /analysis/{location}?hours=H requests.
func (h *AnalysisHandler) HandleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	location, ok := locationFromPath(r.URL.Path, "/analysis/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	hours, err := hoursParam(r, defaultAnalysisHours)
	if err != nil || hours < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if hours > maxQueryHours {
		hours = maxQueryHours
	}

	report, err := h.deps.GetAnalysis(r.Context(), location, hours)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysisResponse{
		Location: location,
		Hours:    hours,
		Report:   report,
	})
}
