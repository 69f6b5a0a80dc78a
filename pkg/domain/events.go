package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStep       EventType = "step"
	EventDiagram    EventType = "diagram"
	EventCycleStart EventType = "cycle_start"
	EventCycleEnd   EventType = "cycle_end"
)

// Diagram outcomes.
const (
	OutcomeWritten = "written"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// StepEvent is a human readable progress message of a running build.
type StepEvent struct {
	EventBase
	Message string `json:"message"`
}

// DiagramEvent reports what happened to one page of the mesh.
type DiagramEvent struct {
	EventBase
	Title   string `json:"title"`
	Outcome string `json:"outcome"`
	Err     error  `json:"-"`
	Error   string `json:"error,omitempty"`
}

// CycleEvent marks the start or end of a build cycle.
// Duration, Err and Error are only set on the end event.
type CycleEvent struct {
	EventBase
	Site     string        `json:"site"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
}

// LifecycleHooks defines callbacks for build observability.
// Nil hooks are skipped.
type LifecycleHooks struct {
	OnStep       func(context.Context, *StepEvent)
	OnDiagram    func(context.Context, *DiagramEvent)
	OnCycleStart func(context.Context, *CycleEvent)
	OnCycleEnd   func(context.Context, *CycleEvent)
}

// ChainHooks returns hooks calling each of hooks in order.
func ChainHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStep: func(ctx context.Context, e *StepEvent) {
			for _, h := range hooks {
				if h.OnStep != nil {
					h.OnStep(ctx, e)
				}
			}
		},
		OnDiagram: func(ctx context.Context, e *DiagramEvent) {
			for _, h := range hooks {
				if h.OnDiagram != nil {
					h.OnDiagram(ctx, e)
				}
			}
		},
		OnCycleStart: func(ctx context.Context, e *CycleEvent) {
			for _, h := range hooks {
				if h.OnCycleStart != nil {
					h.OnCycleStart(ctx, e)
				}
			}
		},
		OnCycleEnd: func(ctx context.Context, e *CycleEvent) {
			for _, h := range hooks {
				if h.OnCycleEnd != nil {
					h.OnCycleEnd(ctx, e)
				}
			}
		},
	}
}
