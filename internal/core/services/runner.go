package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/proflock/browserd/internal/core/domain"
	"github.com/proflock/browserd/internal/core/ports"
)

// AgentUnavailableMessage is the fixed diagnostic recorded when no agent
// provider is configured. Jobs still get created; they degrade straight to
// an error status.
const AgentUnavailableMessage = "agent provider not configured on server"

const defaultHeartbeatInterval = 2 * time.Second

// Runner drives one job from pending to a terminal state: it bridges the
// agent provider's blocking execution with the job's event stream and runs a
// periodic heartbeat alongside the main call. Agent and store may be nil when
// the corresponding backend is not configured.
type Runner struct {
	logger   *slog.Logger
	events   *EventLog
	agent    ports.AgentProvider
	store    ports.ObjectStore
	renderer ports.FrameRenderer
	interval time.Duration
}

func NewRunner(
	logger *slog.Logger,
	events *EventLog,
	agent ports.AgentProvider,
	store ports.ObjectStore,
	renderer ports.FrameRenderer,
	heartbeatInterval time.Duration,
) *Runner {
	if heartbeatInterval <= 0 {
		heartbeatInterval = defaultHeartbeatInterval
	}
	return &Runner{
		logger:   logger,
		events:   events,
		agent:    agent,
		store:    store,
		renderer: renderer,
		interval: heartbeatInterval,
	}
}

// Run executes the job to a terminal state. Blocks until done; callers spawn
// it as a detached goroutine. The in-flight agent call is never interrupted
// by cancellation — if an external cancel wins the terminal transition, the
// runner's own result is dropped and its terminal events suppressed.
func (r *Runner) Run(ctx context.Context, job *domain.Job) {
	if !job.Begin() {
		// A cancel can finalize the job while it is still pending, before
		// this goroutine is scheduled. The finalizer already emitted the
		// terminal pair; starting now would push events after done and burn
		// an agent call whose result gets dropped.
		r.logger.Info("job already finalized, not starting", "job_id", job.ID)
		return
	}
	r.emit(job, domain.EventBrowserStarted, map[string]any{
		"jobId": string(job.ID),
		"task":  job.Request.Task,
	})

	if r.agent == nil {
		result := &domain.JobResult{Summary: AgentUnavailableMessage, Links: []string{}}
		if job.Finish(domain.JobStatusError, result) {
			r.emit(job, domain.EventBrowserError, map[string]any{"message": AgentUnavailableMessage})
			r.emit(job, domain.EventBrowserDone, map[string]any{"result": result})
		}
		return
	}

	// Heartbeat runs concurrently with the agent call. It is cancelled and
	// awaited before any terminal event so no heartbeat frame or action can
	// trail the browser_done.
	hbCtx, stopHeartbeat := context.WithCancel(ctx)
	hbDone := make(chan struct{})
	go func() {
		defer close(hbDone)
		r.heartbeat(hbCtx, job)
	}()

	output, err := r.agent.Run(ctx, buildTask(job.Request), job.Request.Model)

	stopHeartbeat()
	<-hbDone

	if err != nil {
		r.logger.Error("agent run failed", "job_id", job.ID, "error", err)
		result := &domain.JobResult{Summary: "Error: " + err.Error(), Links: []string{}}
		if job.Finish(domain.JobStatusError, result) {
			r.emit(job, domain.EventBrowserError, map[string]any{"message": err.Error()})
			r.emit(job, domain.EventBrowserDone, map[string]any{"result": result})
		} else {
			r.logger.Info("job already finalized, dropping error result", "job_id", job.ID)
		}
		return
	}

	result := &domain.JobResult{Summary: output, Links: ExtractLinks(output)}
	if !job.Finish(domain.JobStatusCompleted, result) {
		r.logger.Info("job already finalized, dropping completed result", "job_id", job.ID)
		return
	}
	r.uploadFrame(ctx, job, "Completed", "completed.png")
	r.logger.Info("job completed", "job_id", job.ID, "links", len(result.Links))
	r.emit(job, domain.EventBrowserDone, map[string]any{"result": result})
}

// Cancel raises the cooperative flag and finalizes the job. The agent call,
// once started, runs to completion on its own; the runner then loses the
// terminal transition and stays silent. Cancelling an already-terminal job is
// a no-op.
//
// The heartbeat is not awaited here: a ping that has passed its status check
// can land a browser_action/browser_frame behind the done event. Accepted —
// the stream gateway stops delivering at done, so stragglers on the log are
// never observed by a client.
func (r *Runner) Cancel(job *domain.Job) {
	job.RequestCancel()

	result := &domain.JobResult{Summary: "Cancelled", Links: []string{}}
	if job.Finish(domain.JobStatusCancelled, result) {
		r.logger.Info("job cancelled", "job_id", job.ID)
		r.emit(job, domain.EventBrowserError, map[string]any{"message": "Cancelled by user"})
		r.emit(job, domain.EventBrowserDone, map[string]any{"result": result})
	}
}

// heartbeat emits a progress ping every interval while the job is running and
// not cancel-requested, with a best-effort placeholder frame per ping.
func (r *Runner) heartbeat(ctx context.Context, job *domain.Job) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	step := 0
	for {
		if job.Status() != domain.JobStatusRunning || job.CancelRequested() {
			return
		}
		step++
		r.emit(job, domain.EventBrowserAction, map[string]any{
			"text": fmt.Sprintf("Working... step %d", step),
		})
		r.uploadFrame(ctx, job, fmt.Sprintf("Step %d", step), fmt.Sprintf("step_%d.png", step))

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// uploadFrame renders a placeholder frame, uploads it and emits a
// browser_frame event carrying the signed URL. Render and upload failures are
// dropped: frames are decorative and never fail the job.
func (r *Runner) uploadFrame(ctx context.Context, job *domain.Job, label, name string) {
	if r.store == nil || r.renderer == nil {
		return
	}

	data, err := r.renderer.Render(label)
	if err != nil || len(data) == 0 {
		return
	}

	url, err := r.store.Upload(ctx, data, fmt.Sprintf("jobs/%s/%s", job.ID, name))
	if err != nil || url == "" {
		if err != nil {
			r.logger.Debug("frame upload failed", "job_id", job.ID, "error", err)
		}
		return
	}
	r.emit(job, domain.EventBrowserFrame, map[string]any{"url": url})
}

func (r *Runner) emit(job *domain.Job, t domain.EventType, fields map[string]any) {
	r.events.Push(job.ID, domain.NewEvent(t, fields))
}

// buildTask folds the optional domain allowlist and step budget into the
// task text handed to the provider.
func buildTask(req domain.JobRequest) string {
	var b strings.Builder
	b.WriteString(req.Task)
	if len(req.Domains) > 0 {
		fmt.Fprintf(&b, "\n\nFocus on these domains: %s.", strings.Join(req.Domains, ", "))
	}
	if req.MaxSteps > 0 {
		fmt.Fprintf(&b, "\nComplete the task in at most %d steps.", req.MaxSteps)
	}
	return b.String()
}
