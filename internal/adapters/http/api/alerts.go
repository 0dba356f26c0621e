package api

import (
	"context"
	"net/http"

	"github.com/envsentry/envsentry/internal/domain/alert"
)

// AlertDependencies defines the interface for contextual alerts.
type AlertDependencies interface {
	GetAlerts(ctx context.Context, location string) ([]alert.ContextualAlert, error)
}

// AlertsHandler handles contextual alert requests.
type AlertsHandler struct {
	deps AlertDependencies
}

// NewAlertsHandler creates a new alerts handler.
func NewAlertsHandler(deps AlertDependencies) *AlertsHandler {
	return &AlertsHandler{deps: deps}
}

// alertsResponse wraps alerts so an empty result stays a JSON array.
type alertsResponse struct {
	Location string                  `json:"location"`
	Alerts   []alert.ContextualAlert `json:"alerts"`
}

// HandleGetAlerts handles GET /alerts/{location} requests.
func (h *AlertsHandler) HandleGetAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	location, ok := locationFromPath(r.URL.Path, "/alerts/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	alerts, err := h.deps.GetAlerts(r.Context(), location)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if alerts == nil {
		alerts = []alert.ContextualAlert{}
	}
	writeJSON(w, http.StatusOK, alertsResponse{Location: location, Alerts: alerts})
}
