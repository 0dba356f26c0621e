package api

import (
	"context"
	"net/http"

	"github.com/envsentry/envsentry/internal/domain/model"
)

// History window parameters, in hours.
const (
	defaultHistoryHours = 24
	maxQueryHours       = 168
)

// HistoryDependencies defines the interface for historical queries.
type HistoryDependencies interface {
	GetHistory(ctx context.Context, location string, hours int) ([]model.Reading, error)
}

// HistoryHandler handles historical reading requests.
type HistoryHandler struct {
	deps HistoryDependencies
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

// historyResponse wraps readings so an empty result stays a JSON array.
type historyResponse struct {
	Location   string          `json:"location"`
	Hours      int             `json:"hours"`
	DataPoints int             `json:"data_points"`
	Data       []model.Reading `json:"data"`
}

// HandleGetHistory handles GET /historical/{location}?hours=N requests.
func (h *HistoryHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	location, ok := locationFromPath(r.URL.Path, "/historical/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	hours, err := hoursParam(r, defaultHistoryHours)
	if err != nil || hours < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if hours > maxQueryHours {
		hours = maxQueryHours
	}

	readings, err := h.deps.GetHistory(r.Context(), location, hours)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if readings == nil {
		readings = []model.Reading{}
	}
	writeJSON(w, http.StatusOK, historyResponse{
		Location:   location,
		Hours:      hours,
		DataPoints: len(readings),
		Data:       readings,
	})
}
