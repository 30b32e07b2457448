package events

import (
	"strings"
	"time"

	"github.com/stokes-dk/reg-man-rc-sub001/internal/recurrence"
)

// Status is an event's confirmation state, per RFC 5545 STATUS.
type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusTentative Status = "TENTATIVE"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus maps free text onto a Status, defaulting to CONFIRMED.
func ParseStatus(s string) Status {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusTentative:
		return StatusTentative
	case StatusCancelled:
		return StatusCancelled
	default:
		return StatusConfirmed
	}
}

// Class is an event's visibility classification, per RFC 5545 CLASS.
type Class string

const (
	ClassPublic       Class = "PUBLIC"
	ClassPrivate      Class = "PRIVATE"
	ClassConfidential Class = "CONFIDENTIAL"
)

// ParseClass maps free text onto a Class, defaulting to PUBLIC.
func ParseClass(s string) Class {
	switch Class(strings.ToUpper(strings.TrimSpace(s))) {
	case ClassPrivate:
		return ClassPrivate
	case ClassConfidential:
		return ClassConfidential
	default:
		return ClassPublic
	}
}

// AllStatuses and AllClasses enumerate the valid values, in display
// order.
var (
	AllStatuses = []Status{StatusConfirmed, StatusTentative, StatusCancelled}
	AllClasses  = []Class{ClassPublic, ClassPrivate, ClassConfidential}
)

// Category is an event category (taxonomy term). External providers
// may know a category under different names, so a category carries
// alternate names alongside its canonical one.
type Category struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	AlternateNames []string `json:"alternate_names,omitempty"`
}

// Matches reports whether name refers to this category, comparing
// case-insensitively against the canonical and alternate names.
func (c Category) Matches(name string) bool {
	if strings.EqualFold(name, c.Name) {
		return true
	}
	for _, alt := range c.AlternateNames {
		if strings.EqualFold(name, alt) {
			return true
		}
	}
	return false
}

// Descriptor is the read interface over heterogeneous event sources.
// A descriptor describes either a single event or the template for a
// recurring series; it is not itself a dated occurrence.
//
// Three implementations exist: the internal store-backed descriptor,
// the external raw-record descriptor, and the placeholder substituted
// when a lookup fails. All three are total: every method answers with
// an empty or neutral value rather than panicking, so consumers never
// need nil checks beyond the interface value itself.
type Descriptor interface {
	// EventUID is globally unique across providers.
	EventUID() string
	// ProviderID identifies the source system.
	ProviderID() string
	// DescriptorID is unique within the provider's namespace.
	DescriptorID() string

	Summary() string
	Description() string
	AuthorID() string

	// StartDateTime and EndDateTime are the event's dates in the
	// configured local timezone; for a recurring descriptor they are
	// the first occurrence's dates. Zero when unknown.
	StartDateTime() time.Time
	EndDateTime() time.Time

	// IsRecurring reports whether this descriptor is a series
	// template. A non-recurring descriptor has a nil RecurrenceRule.
	IsRecurring() bool
	RecurrenceRule() *recurrence.Rule

	// CancellationDates are occurrence calendar days whose status is
	// CANCELLED regardless of the descriptor status.
	CancellationDates() []time.Time

	// Status is the descriptor-level status. StatusOnDate resolves
	// the status of one occurrence: the descriptor status unless a
	// cancellation date falls on the same calendar day.
	Status() Status
	StatusOnDate(t time.Time) Status

	Class() Class
	CategoryNames() []string
	FixerStations() []string
	IsNonRepair() bool

	// Venue is the resolved venue record, when the provider knows
	// one. Location is free text; Geo is nil when no position is
	// known.
	Venue() *Venue
	Location() string
	Geo() *Geo

	PageURL() string
	EditURL() string
}

// StatusOnDate implements the shared cancellation-date rule used by
// every Descriptor implementation.
func StatusOnDate(d Descriptor, t time.Time) Status {
	for _, c := range d.CancellationDates() {
		if sameCalendarDay(c, t) {
			return StatusCancelled
		}
	}
	return d.Status()
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
