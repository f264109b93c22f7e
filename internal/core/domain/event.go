package domain

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventBrowserStarted EventType = "browser_started"
	EventBrowserAction  EventType = "browser_action"
	EventBrowserFrame   EventType = "browser_frame"
	EventBrowserError   EventType = "browser_error"
	EventBrowserDone    EventType = "browser_done"
)

// Event is one immutable progress notification on a job's stream.
type Event struct {
	Type      EventType
	Fields    map[string]any
	Timestamp time.Time
}

func NewEvent(t EventType, fields map[string]any) Event {
	return Event{
		Type:      t,
		Fields:    fields,
		Timestamp: time.Now().UTC(),
	}
}

// MarshalJSON flattens Fields alongside type and ts, the wire shape streaming
// clients consume: {"type": "...", <kind-specific fields>, "ts": "..."}.
func (e Event) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(e.Fields)+2)
	for k, v := range e.Fields {
		m[k] = v
	}
	m["type"] = string(e.Type)
	m["ts"] = e.Timestamp.Format(time.RFC3339Nano)
	return json.Marshal(m)
}
