// Package notify hands expanded reminder occurrences to the desktop
// tray agent, which owns actual OS notification delivery. Scheduling is
// fire-and-forget: the core never receives delivery confirmation.
package notify

import (
	"time"
)

// Request is one reminder occurrence for the tray agent to deliver.
type Request struct {
	OccurrenceID string    `json:"occurrence_id"`
	TriggerAt    time.Time `json:"trigger_at"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Category     string    `json:"category"`
}

// Scheduler is the reminder-delivery collaborator. Implementations must
// dedupe by occurrence id, not trigger time: recurring expansions
// re-submit today's already-passed slot on every sweep.
type Scheduler interface {
	Schedule(requests []Request) error
	Cancel(occurrenceID string) error
}

// NopScheduler discards all requests. Used when notifications are
// disabled in settings.
type NopScheduler struct{}

func (NopScheduler) Schedule([]Request) error { return nil }
func (NopScheduler) Cancel(string) error      { return nil }
