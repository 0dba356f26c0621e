package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/envsentry/envsentry/internal/domain/trend"
)

// Default horizon parameters.
const (
	defaultHorizonHours = 1
	defaultMultiCount   = 6
)

// PredictionDependencies defines the interface for trend predictions.
type PredictionDependencies interface {
	GetPrediction(ctx context.Context, location string, horizonHours int) (trend.Prediction, error)
	GetMultiPrediction(ctx context.Context, location string, count int) ([]trend.Prediction, error)
}

// PredictionsHandler handles prediction requests.
type PredictionsHandler struct {
	deps PredictionDependencies
}

// NewPredictionsHandler creates a new predictions handler.
func NewPredictionsHandler(deps PredictionDependencies) *PredictionsHandler {
	return &PredictionsHandler{deps: deps}
}

// HandleGetPrediction handles GET /predict/{location}?hours=H and
// GET /predict/{location}/multi?hours=N requests.
func (h *PredictionsHandler) HandleGetPrediction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/predict/")
	path = strings.TrimSuffix(path, "/")

	if location, ok := strings.CutSuffix(path, "/multi"); ok {
		h.handleMulti(w, r, location)
		return
	}

	if path == "" || strings.Contains(path, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	h.handleSingle(w, r, path)
}

func (h *PredictionsHandler) handleSingle(w http.ResponseWriter, r *http.Request, location string) {
	hours, err := hoursParam(r, defaultHorizonHours)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	prediction, err := h.deps.GetPrediction(r.Context(), location, hours)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prediction)
}

func (h *PredictionsHandler) handleMulti(w http.ResponseWriter, r *http.Request, location string) {
	if location == "" || strings.Contains(location, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	hours, err := hoursParam(r, defaultMultiCount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	predictions, err := h.deps.GetMultiPrediction(r.Context(), location, hours)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, predictions)
}

func hoursParam(r *http.Request, fallback int) (int, error) {
	raw := r.URL.Query().Get("hours")
	if raw == "" {
		return fallback, nil
	}
	hours, err := strconv.Atoi(raw)
	if err != nil {
		return 0, WrapKind("api.hours_param", ErrBadRequest, err)
	}
	return hours, nil
}
