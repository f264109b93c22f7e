package kernel

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/proflock/browserd/internal/core/domain"
	"github.com/proflock/browserd/internal/core/services"
)

// Server exposes the job control surface: create, poll, cancel, stream.
type Server struct {
	logger       *slog.Logger
	registry     *services.Registry
	runner       *services.Runner
	events       *services.EventLog
	defaultModel string
}

func NewServer(
	logger *slog.Logger,
	registry *services.Registry,
	runner *services.Runner,
	events *services.EventLog,
	defaultModel string,
) *Server {
	return &Server{
		logger:       logger,
		registry:     registry,
		runner:       runner,
		events:       events,
		defaultModel: defaultModel,
	}
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.handleRoot)
	r.Post("/jobs", s.handleStartJob)
	r.Get("/jobs/{id}", s.handleJobStatus)
	r.Post("/jobs/{id}/cancel", s.handleCancelJob)
	r.Get("/jobs/{id}/events", s.handleJobEvents)

	return r
}

// handleRoot is the liveness probe.
// GET /
func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "browserd",
		"status":  "ok",
	})
}

// handleStartJob registers a job and spawns its runner as a detached task.
// The response is the immediate pending snapshot; it never waits on the job.
// POST /jobs
func (s *Server) handleStartJob(w http.ResponseWriter, r *http.Request) {
	var req domain.JobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Task == "" {
		writeError(w, http.StatusBadRequest, "task is required")
		return
	}
	if req.MaxSteps == 0 {
		req.MaxSteps = 20
	}
	if req.Model == "" {
		req.Model = s.defaultModel
	}

	job := s.registry.Create(req)

	// Snapshot before the runner can race us to a terminal state: the
	// creation response is always the pending record.
	snap := job.Snapshot()

	// Detached from the request context: the job must outlive this request.
	go s.runner.Run(context.Background(), job)

	writeJSON(w, http.StatusOK, snap)
}

// handleJobStatus returns a point-in-time snapshot.
// GET /jobs/{id}
func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := s.resolveJob(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// handleCancelJob requests cooperative cancellation and finalizes the job.
// Idempotent for jobs already in a terminal state.
// POST /jobs/{id}/cancel
func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	job, ok := s.resolveJob(w, r)
	if !ok {
		return
	}
	s.runner.Cancel(job)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) resolveJob(w http.ResponseWriter, r *http.Request) (*domain.Job, bool) {
	id := chi.URLParam(r, "id")
	job, err := s.registry.Get(domain.JobID(id))
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "Job not found")
		} else {
			s.logger.Error("failed to resolve job", "job_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return nil, false
	}
	return job, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
