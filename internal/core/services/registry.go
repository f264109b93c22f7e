package services

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/proflock/browserd/internal/core/domain"
)

// Registry is the process-wide map of job id to job record. Records are never
// removed; they live for the process lifetime.
type Registry struct {
	logger *slog.Logger
	mu     sync.RWMutex
	jobs   map[domain.JobID]*domain.Job
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger: logger,
		jobs:   make(map[domain.JobID]*domain.Job),
	}
}

// Create allocates a fresh id, registers a pending job and returns it.
func (r *Registry) Create(req domain.JobRequest) *domain.Job {
	job := domain.NewJob(domain.JobID(uuid.New().String()), req)

	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()

	r.logger.Info("job created", "job_id", job.ID, "task", req.Task)
	return job
}

// Get returns the job for id, or domain.ErrJobNotFound.
func (r *Registry) Get(id domain.JobID) (*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return job, nil
}
