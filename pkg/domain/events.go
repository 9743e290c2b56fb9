package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventPrintStart    EventType = "print_start"
	EventPrintComplete EventType = "print_complete"
	EventPrintError    EventType = "print_error"
	EventCleanup       EventType = "cleanup"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// PrintEvent describes a step in the life of a single print operation.
type PrintEvent struct {
	EventBase
	OutputID int64         `json:"output_id"`
	Kind     TemplateKind  `json:"kind"`
	Template int64         `json:"template"`
	Plugin   string        `json:"plugin,omitempty"`
	Items    int           `json:"items"`
	Output   string        `json:"output,omitempty"`
	Bytes    int           `json:"bytes,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// CleanupEvent reports a pass of the output janitor.
type CleanupEvent struct {
	EventBase
	Removed int       `json:"removed"`
	Before  time.Time `json:"before"`
}

// LifecycleHooks defines callbacks for print observability.
type LifecycleHooks struct {
	OnPrintStart    func(context.Context, *PrintEvent)
	OnPrintComplete func(context.Context, *PrintEvent)
	OnPrintError    func(context.Context, *PrintEvent)
	OnCleanup       func(context.Context, *CleanupEvent)
}

// Chain returns hooks that call h first and then next for every event.
func (h LifecycleHooks) Chain(next LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnPrintStart:    chainPrint(h.OnPrintStart, next.OnPrintStart),
		OnPrintComplete: chainPrint(h.OnPrintComplete, next.OnPrintComplete),
		OnPrintError:    chainPrint(h.OnPrintError, next.OnPrintError),
		OnCleanup: func(ctx context.Context, e *CleanupEvent) {
			if h.OnCleanup != nil {
				h.OnCleanup(ctx, e)
			}
			if next.OnCleanup != nil {
				next.OnCleanup(ctx, e)
			}
		},
	}
}

func chainPrint(a, b func(context.Context, *PrintEvent)) func(context.Context, *PrintEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *PrintEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
