// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	repository "github.com/envsentry/envsentry/internal/adapters/repository"
	service "github.com/envsentry/envsentry/internal/app"
	"github.com/envsentry/envsentry/internal/domain/alert"
	"github.com/envsentry/envsentry/internal/domain/analysis"
	"github.com/envsentry/envsentry/internal/domain/correlation"
	"github.com/envsentry/envsentry/internal/domain/model"
	"github.com/envsentry/envsentry/internal/domain/risk"
	"github.com/envsentry/envsentry/internal/domain/trend"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Ingest submits a reading for async persistence.
	Ingest(ctx context.Context, r model.Reading) error

	// Read operations expose the analytics surface.
	GetRisk(ctx context.Context, location string) (risk.Assessment, error)
	GetCorrelations(ctx context.Context, location string) ([]correlation.Finding, error)
	GetPrediction(ctx context.Context, location string, horizonHours int) (trend.Prediction, error)
	GetMultiPrediction(ctx context.Context, location string, count int) ([]trend.Prediction, error)
	GetAlerts(ctx context.Context, location string) ([]alert.ContextualAlert, error)
	GetHistory(ctx context.Context, location string, hours int) ([]model.Reading, error)
	GetAnalysis(ctx context.Context, location string, hours int) (analysis.Report, error)

	// Maintenance operations.
	Cleanup(ctx context.Context, days int) (int, error)
	Stats(ctx context.Context) map[string]interface{}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	readingsHandler     *ReadingsHandler
	riskHandler         *RiskHandler
	correlationsHandler *CorrelationsHandler
	predictionsHandler  *PredictionsHandler
	alertsHandler       *AlertsHandler
	historyHandler      *HistoryHandler
	analysisHandler     *AnalysisHandler
	cleanupHandler      *CleanupHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(deps),
		readingsHandler:     NewReadingsHandler(deps),
		riskHandler:         NewRiskHandler(deps),
		correlationsHandler: NewCorrelationsHandler(deps),
		predictionsHandler:  NewPredictionsHandler(deps),
		alertsHandler:       NewAlertsHandler(deps),
		historyHandler:      NewHistoryHandler(deps),
		analysisHandler:     NewAnalysisHandler(deps),
		cleanupHandler:      NewCleanupHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/readings", MetricsMiddleware(s.readingsHandler.HandlePostReading, "readings"))
	mux.HandleFunc("/risk/", MetricsMiddleware(s.riskHandler.HandleGetRisk, "risk"))
	mux.HandleFunc("/correlations/", MetricsMiddleware(s.correlationsHandler.HandleGetCorrelations, "correlations"))
	mux.HandleFunc("/predict/", MetricsMiddleware(s.predictionsHandler.HandleGetPrediction, "predict"))
	mux.HandleFunc("/alerts/", MetricsMiddleware(s.alertsHandler.HandleGetAlerts, "alerts"))
	mux.HandleFunc("/historical/", MetricsMiddleware(s.historyHandler.HandleGetHistory, "historical"))
	mux.HandleFunc("/analysis/", MetricsMiddleware(s.analysisHandler.HandleGetAnalysis, "analysis"))
	mux.HandleFunc("/cleanup", MetricsMiddleware(s.cleanupHandler.HandleCleanup, "cleanup"))
}

type ackResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates sentinel errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidReading):
		writeError(w, http.StatusBadRequest, "invalid_reading", err)
	case errors.Is(err, trend.ErrInvalidHorizon):
		writeError(w, http.StatusBadRequest, "invalid_horizon", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "location_not_found", err)
	case errors.Is(err, trend.ErrInsufficientData):
		writeError(w, http.StatusUnprocessableEntity, "waiting_for_data", err)
	case errors.Is(err, analysis.ErrInsufficientData):
		writeError(w, http.StatusUnprocessableEntity, "waiting_for_data", err)
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// locationFromPath extracts the single path parameter after prefix.
func locationFromPath(path, prefix string) (string, bool) {
	loc := strings.TrimPrefix(path, prefix)
	loc = strings.TrimSuffix(loc, "/")
	if loc == "" || strings.Contains(loc, "/") {
		return "", false
	}
	return loc, true
}
