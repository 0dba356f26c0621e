package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/envsentry/envsentry/internal/domain/model"
)

// ReadingDependencies defines the interface for reading ingestion.
type ReadingDependencies interface {
	Ingest(ctx context.Context, r model.Reading) error
}

// ReadingsHandler handles reading submissions.
type ReadingsHandler struct {
	deps ReadingDependencies
}

// NewReadingsHandler creates a new readings handler.
func NewReadingsHandler(deps ReadingDependencies) *ReadingsHandler {
	return &ReadingsHandler{deps: deps}
}

// HandlePostReading handles POST /readings requests.
func (h *ReadingsHandler) HandlePostReading(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_reading"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var reading model.Reading
	if err := json.NewDecoder(r.Body).Decode(&reading); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	if err := h.deps.Ingest(r.Context(), reading); err != nil {
		writeDomainError(w, err)
		return
	}

	// Duplicates are absorbed upstream; the ack shape stays uniform.
	writeJSON(w, http.StatusAccepted, ackResponse{
		Status:    "accepted",
		RequestID: uuid.NewString(),
	})
}
