package events

import (
	"time"
)

// Event is one concrete dated occurrence of a descriptor: what
// calendars render, feeds export, and registrations point at.
// Produced by expanding descriptors, never persisted.
type Event struct {
	Key        Key
	Descriptor Descriptor

	// Start and End are this occurrence's dates in the configured
	// local timezone. Either may be zero when the underlying
	// descriptor has no parseable date.
	Start time.Time
	End   time.Time
}

// Summary returns the descriptor's summary, or "" without a
// descriptor.
func (e *Event) Summary() string {
	if e.Descriptor == nil {
		return ""
	}
	return e.Descriptor.Summary()
}

// Label is the event's display label: summary plus occurrence date.
// Free-text search in Filter matches against this.
func (e *Event) Label() string {
	label := e.Summary()
	if !e.Start.IsZero() {
		if label != "" {
			label += " "
		}
		label += e.Start.Format("Mon Jan 2, 2006")
	}
	return label
}

// Status resolves this occurrence's status, honoring the
// descriptor's per-date cancellations.
func (e *Event) Status() Status {
	if e.Descriptor == nil {
		return StatusConfirmed
	}
	if e.Start.IsZero() {
		return e.Descriptor.Status()
	}
	return e.Descriptor.StatusOnDate(e.Start)
}

// Class returns the descriptor's class, defaulting to PUBLIC.
func (e *Event) Class() Class {
	if e.Descriptor == nil {
		return ClassPublic
	}
	return e.Descriptor.Class()
}

// CategoryNames returns the descriptor's category names, nil without
// a descriptor.
func (e *Event) CategoryNames() []string {
	if e.Descriptor == nil {
		return nil
	}
	return e.Descriptor.CategoryNames()
}

// AuthorID returns the descriptor's author, "" without one.
func (e *Event) AuthorID() string {
	if e.Descriptor == nil {
		return ""
	}
	return e.Descriptor.AuthorID()
}

// IsRecurrenceInstance reports whether this event came out of a
// recurring series.
func (e *Event) IsRecurrenceInstance() bool {
	return e.Descriptor != nil && e.Descriptor.IsRecurring()
}
