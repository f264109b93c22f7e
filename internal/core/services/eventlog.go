package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/proflock/browserd/internal/core/domain"
)

// EventLog carries per-job progress events from the runner and its heartbeat
// to the streaming consumer. Each job gets an unbounded FIFO queue: Push
// never blocks or drops, Pop suspends until an event arrives or the caller's
// context is cancelled. One logical consumer per job (the SSE connection
// currently attached, if any); with no consumer, events accumulate for the
// job's process-scoped lifetime.
type EventLog struct {
	logger *slog.Logger
	mu     sync.Mutex
	queues map[domain.JobID]*eventQueue
}

func NewEventLog(logger *slog.Logger) *EventLog {
	return &EventLog{
		logger: logger,
		queues: make(map[domain.JobID]*eventQueue),
	}
}

// Push appends an event to the tail of the job's queue, preserving the
// submission order of each emitter.
func (l *EventLog) Push(jobID domain.JobID, e domain.Event) {
	l.queue(jobID).push(e)
}

// Pop removes and returns the head event for the job, blocking until one is
// available. Returns the context error if ctx is cancelled while waiting.
func (l *EventLog) Pop(ctx context.Context, jobID domain.JobID) (domain.Event, error) {
	return l.queue(jobID).pop(ctx)
}

func (l *EventLog) queue(jobID domain.JobID) *eventQueue {
	l.mu.Lock()
	defer l.mu.Unlock()
	q, ok := l.queues[jobID]
	if !ok {
		q = &eventQueue{wake: make(chan struct{}, 1)}
		l.queues[jobID] = q
	}
	return q
}

type eventQueue struct {
	mu     sync.Mutex
	events []domain.Event
	wake   chan struct{}
}

func (q *eventQueue) push(e domain.Event) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *eventQueue) pop(ctx context.Context) (domain.Event, error) {
	for {
		q.mu.Lock()
		if len(q.events) > 0 {
			e := q.events[0]
			q.events = q.events[1:]
			q.mu.Unlock()
			return e, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return domain.Event{}, ctx.Err()
		case <-q.wake:
		}
	}
}
