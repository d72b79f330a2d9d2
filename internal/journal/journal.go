package journal

import (
	"context"
	"time"
)

// EventType defines the kind of supervisor event.
type EventType string

const (
	EventState     EventType = "state"
	EventProbe     EventType = "probe"
	EventProcStart EventType = "proc_start"
	EventProcStop  EventType = "proc_stop"
)

// Event is one supervisor journal entry. Fields are populated per type:
// state transitions carry State/FromState, probe attempts carry
// Target/Attempt/Detail, process events carry Role/PID/ExitCode.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	State      string    `json:"state,omitempty"`
	FromState  string    `json:"from_state,omitempty"`
	Target     string    `json:"target,omitempty"`
	Attempt    int       `json:"attempt,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	Role       string    `json:"role,omitempty"`
	PID        int       `json:"pid,omitempty"`
	ExitCode   int       `json:"exit_code,omitempty"`
}

// Sink is a destination for journal events (analytics/statistics systems).
// Implementations must be safe for concurrent use. Journal delivery is
// best-effort; a failing sink never affects supervision.
type Sink interface {
	Send(ctx context.Context, e Event) error
}

// StateEvent records a supervisor state transition.
func StateEvent(from, to string) Event {
	return Event{Type: EventState, OccurredAt: time.Now(), FromState: from, State: to}
}

// ProbeEvent records one probe attempt; err may be nil for a success.
func ProbeEvent(target string, attempt int, err error) Event {
	e := Event{Type: EventProbe, OccurredAt: time.Now(), Target: target, Attempt: attempt}
	if err != nil {
		e.Detail = err.Error()
	}
	return e
}

// ProcessEvent records a child start or stop.
func ProcessEvent(t EventType, role string, pid, exitCode int, detail string) Event {
	return Event{Type: t, OccurredAt: time.Now(), Role: role, PID: pid, ExitCode: exitCode, Detail: detail}
}
