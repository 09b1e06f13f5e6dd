package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"screenflow/internal/models"
)

// Workflow is the slice of the orchestrator the status server reads from.
type Workflow interface {
	Stats() models.WorkflowStats
	Records() []models.ScreeningRecord
	Keywords() []string
	Threshold() int
	TrackerCounts(ctx context.Context) (matched, rejected int, ok bool)
}

// Server exposes the workflow's status over HTTP.
type Server struct {
	workflow Workflow
	logger   *zap.Logger
}

// NewServer creates a status server for the running workflow.
func NewServer(workflow Workflow, logger *zap.Logger) *Server {
	return &Server{workflow: workflow, logger: logger}
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /report", s.handleReport)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /", s.handleRoot)

	return s.loggingMiddleware(mux)
}

// handleRoot provides API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "screenflow",
		"endpoints": map[string]string{
			"GET /status":  "Workflow statistics and screening configuration",
			"GET /report":  "Screening records from this process",
			"GET /metrics": "Prometheus metrics",
			"GET /health":  "Health check",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	payload := map[string]interface{}{
		"stats":     s.workflow.Stats(),
		"keywords":  s.workflow.Keywords(),
		"threshold": s.workflow.Threshold(),
	}
	if matched, rejected, ok := s.workflow.TrackerCounts(r.Context()); ok {
		payload["sheet_rows"] = map[string]int{
			"matched":  matched,
			"rejected": rejected,
		}
	}

	s.respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	records := s.workflow.Records()
	if len(records) == 0 {
		s.respondError(w, http.StatusNotFound, "no screening records yet")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr))
		next.ServeHTTP(w, r)
	})
}
