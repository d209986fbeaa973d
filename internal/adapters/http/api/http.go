// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/callrecon/internal/adapters/mq/queue"
	"github.com/okian/callrecon/internal/adapters/repository"
	service "github.com/okian/callrecon/internal/app"
)

// DefaultMaxUploadBytes bounds one POST /reconciliations request.
const DefaultMaxUploadBytes int64 = 64 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Submit stores and enqueues a run. Fails with service.ErrBackpressure
	// when the queue is full.
	Submit(ctx context.Context, a, b queue.Upload, delta int) (repository.Run, error)

	Get(ctx context.Context, id string) (repository.Run, error)
	List(ctx context.Context, limit int) ([]repository.Run, error)

	// Workbook renders the report of a succeeded run.
	Workbook(ctx context.Context, id string, w io.Writer) error

	// DefaultDelta is used when a request carries no delta.
	DefaultDelta() int
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler          *HealthHandler
	statsHandler           *StatsHandler
	reconciliationsHandler *ReconciliationsHandler
}

// Option configures a Server.
type Option func(*Server)

// WithMaxUploadBytes bounds the size of one upload request.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.reconciliationsHandler.maxUpload = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:          NewHealthHandler(),
		statsHandler:           NewStatsHandler(statsProvider),
		reconciliationsHandler: NewReconciliationsHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	h := s.reconciliationsHandler
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /reconciliations", MetricsMiddleware(h.HandleCreate, "reconciliations"))
	mux.HandleFunc("GET /reconciliations", MetricsMiddleware(h.HandleList, "reconciliations"))
	mux.HandleFunc("GET /reconciliations/{id}", MetricsMiddleware(h.HandleGet, "reconciliation"))
	mux.HandleFunc("GET /reconciliations/{id}/report.xlsx", MetricsMiddleware(h.HandleReport, "report"))
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

// classify maps an upstream error to a status code and a stable error code.
func classify(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, ErrBadRequest), errors.Is(err, repository.ErrInvalidLimit), service.IsBadInput(err):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrNoResult):
		return http.StatusConflict, "not_ready"
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, queue.ErrClosed):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func fail(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}
