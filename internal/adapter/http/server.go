// Package http serves the operational surface of a conversion run:
// liveness, readiness with the completed run's summary, and Prometheus
// metrics. Schedulers gate downstream jobs on /readyz, which stays 503
// until the batch has written all of its sinks.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/riverbed-labs/flood-source-etl/internal/pipeline"
)

// RunReporter exposes the state of the current conversion run.
type RunReporter interface {
	// RunStatus returns the completed run's summary, or an error while the
	// run is still in progress.
	RunStatus(ctx context.Context) (pipeline.RunStatus, error)
}

// statusResponse is the body of /healthz and /readyz. Run is only populated
// once the batch has finished.
type statusResponse struct {
	Status string              `json:"status"`
	Error  string              `json:"error,omitempty"`
	Run    *pipeline.RunStatus `json:"run,omitempty"`
}

// Server exposes the operational HTTP endpoints for a pipeline run.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// NewServer wires /healthz, /readyz, and /metrics. The batch serves few,
// small responses, so only header reads are bounded; there is no idle
// tuning worth doing for a process that exits after one run.
func NewServer(addr string, reporter RunReporter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(reporter))
	mux.Handle("GET /metrics", promhttp.Handler())

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
		},
		logger: logger,
	}
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying mux, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.srv.Handler.ServeHTTP(w, r)
}

// handleHealth reports process liveness only; a healthy process may still be
// mid-run and not ready.
func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, http.StatusOK, statusResponse{Status: "healthy"})
}

func handleReady(reporter RunReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		run, err := reporter.RunStatus(ctx)
		if err != nil {
			writeStatus(w, http.StatusServiceUnavailable, statusResponse{
				Status: "not ready",
				Error:  err.Error(),
			})
			return
		}
		writeStatus(w, http.StatusOK, statusResponse{
			Status: "ready",
			Run:    &run,
		})
	}
}

func writeStatus(w http.ResponseWriter, code int, body statusResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body) //nolint:errcheck // best-effort status response
}
