package domain

import (
	"errors"
	"sync"
	"time"
)

type JobID string

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusError     JobStatus = "error"
	JobStatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether no further status transitions can occur.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusError || s == JobStatusCancelled
}

var ErrJobNotFound = errors.New("job not found")

// JobRequest is the client-submitted task description. Immutable after creation.
type JobRequest struct {
	Task     string   `json:"task"`
	Domains  []string `json:"domains,omitempty"`
	MaxSteps int      `json:"max_steps,omitempty"`
	Model    string   `json:"model,omitempty"`
}

// JobResult is the structured outcome of a job, written exactly once when the
// job reaches a terminal status.
type JobResult struct {
	Summary string   `json:"summary"`
	Links   []string `json:"links"`
}

// JobSnapshot is a point-in-time read of a job's public fields.
type JobSnapshot struct {
	ID          JobID      `json:"id"`
	Status      JobStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Result      *JobResult `json:"result,omitempty"`
}

// Job is the mutable state container for one unit of work. The runner and the
// cancel handler may race on the terminal transition; Finish arbitrates so
// that only the first writer out of pending/running wins.
type Job struct {
	ID      JobID
	Request JobRequest

	mu              sync.Mutex
	status          JobStatus
	startedAt       time.Time
	completedAt     *time.Time
	result          *JobResult
	cancelRequested bool
}

func NewJob(id JobID, req JobRequest) *Job {
	return &Job{
		ID:        id,
		Request:   req,
		status:    JobStatusPending,
		startedAt: time.Now().UTC(),
	}
}

// Begin moves the job from pending to running. Returns false if the job has
// already left the pending state.
func (j *Job) Begin() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != JobStatusPending {
		return false
	}
	j.status = JobStatusRunning
	return true
}

// Finish moves the job into the given terminal status, stamps completed_at
// and records the result. Only the first caller to move the job out of a
// non-terminal state succeeds; later callers get false and must not emit
// terminal events.
func (j *Job) Finish(status JobStatus, result *JobResult) bool {
	if !status.Terminal() {
		return false
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.Terminal() {
		return false
	}
	now := time.Now().UTC()
	j.status = status
	j.completedAt = &now
	j.result = result
	return true
}

// RequestCancel raises the cooperative cancellation flag. One-way: the flag
// never resets.
func (j *Job) RequestCancel() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cancelRequested = true
}

func (j *Job) CancelRequested() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cancelRequested
}

func (j *Job) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Snapshot returns a consistent read of the job's public fields.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobSnapshot{
		ID:          j.ID,
		Status:      j.status,
		StartedAt:   j.startedAt,
		CompletedAt: j.completedAt,
		Result:      j.result,
	}
}
