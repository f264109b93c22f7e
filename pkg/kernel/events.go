package kernel

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/proflock/browserd/internal/core/domain"
)

// handleJobEvents streams a job's events over SSE until the terminal
// browser_done event, then closes normally. A client disconnect cancels the
// request context, which aborts the blocking pop without leaking the waiter.
// GET /jobs/{id}/events
func (s *Server) handleJobEvents(w http.ResponseWriter, r *http.Request) {
	job, ok := s.resolveJob(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	for {
		evt, err := s.events.Pop(ctx, job.ID)
		if err != nil {
			// Client went away while we were waiting.
			return
		}

		data, err := json.Marshal(evt)
		if err != nil {
			s.logger.Error("failed to marshal event", "job_id", job.ID, "error", err)
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()

		if evt.Type == domain.EventBrowserDone {
			return
		}
	}
}
