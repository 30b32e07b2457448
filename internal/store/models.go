package store

import "time"

// EventDescriptor is the persisted form of an internally managed
// event: a single event or the template of a recurring series.
type EventDescriptor struct {
	ID          int64
	UID         string
	Summary     string
	Description string
	AuthorID    string

	VenueID   *int64
	Location  string
	Latitude  *float64
	Longitude *float64

	// StartTime/EndTime are the event's dates; for a recurring
	// descriptor, the first occurrence's dates.
	StartTime time.Time
	EndTime   time.Time

	Recurring         bool
	RecurrenceRule    string
	InclusionDates    []time.Time
	ExclusionDates    []time.Time
	CancellationDates []time.Time

	Status string
	Class  string

	// Categories holds canonical category names. The categories
	// table carries alternate names for external-name resolution.
	Categories    []string
	FixerStations []string
	NonRepair     bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Venue is a place events are held at.
type Venue struct {
	ID          int64
	Name        string
	Location    string
	Latitude    *float64
	Longitude   *float64
	Description string
	CreatedAt   time.Time
}

// Category is an event category term. AlternateNames lets category
// names supplied by external providers resolve to the same term.
type Category struct {
	ID             int64
	Name           string
	AlternateNames []string
}

// ItemRegistration records an item brought to an event for repair.
// EventKey embeds the serialized event key string.
type ItemRegistration struct {
	ID              int64
	EventKey        string
	ItemDescription string
	ItemType        string
	FixerStation    string
	Outcome         string
	CreatedAt       time.Time
}

// Item registration outcomes.
const (
	OutcomeRegistered = "REGISTERED"
	OutcomeFixed      = "FIXED"
	OutcomeRepairable = "REPAIRABLE"
	OutcomeEndOfLife  = "END_OF_LIFE"
)

// VolunteerRegistration records a volunteer signed up for one event
// occurrence, again via the serialized event key.
type VolunteerRegistration struct {
	ID             int64
	EventKey       string
	VolunteerName  string
	VolunteerEmail string
	FixerStation   string
	Apprentice     bool
	Roles          []string
	CreatedAt      time.Time
}
