package events

import (
	"fmt"
	"time"

	"github.com/stokes-dk/reg-man-rc-sub001/internal/recurrence"
)

// placeholderDescriptor stands in when a lookup by (provider id,
// descriptor id) finds nothing. It carries only the two ids and a
// synthetic summary; every other accessor answers an empty or
// neutral value. It must never be mistaken for persisted data, hence
// the explicit "not found" summary.
type placeholderDescriptor struct {
	providerID   string
	descriptorID string
}

// NewPlaceholderDescriptor builds the stand-in descriptor for a
// failed lookup. The summary names the provider only when it is not
// the internal one, so internal "not found" messages stay short.
func NewPlaceholderDescriptor(providerID, descriptorID string) Descriptor {
	return &placeholderDescriptor{
		providerID:   normalizeProvider(providerID),
		descriptorID: descriptorID,
	}
}

// IsPlaceholder reports whether d is a "not found" stand-in rather
// than real provider data.
func IsPlaceholder(d Descriptor) bool {
	_, ok := d.(*placeholderDescriptor)
	return ok
}

func (p *placeholderDescriptor) EventUID() string     { return "" }
func (p *placeholderDescriptor) ProviderID() string   { return p.providerID }
func (p *placeholderDescriptor) DescriptorID() string { return p.descriptorID }

func (p *placeholderDescriptor) Summary() string {
	if p.providerID == InternalProviderID {
		return fmt.Sprintf("Event not found: %s", p.descriptorID)
	}
	return fmt.Sprintf("Event not found: %s (provider %s)", p.descriptorID, p.providerID)
}

func (p *placeholderDescriptor) Description() string { return "" }
func (p *placeholderDescriptor) AuthorID() string    { return "" }

func (p *placeholderDescriptor) StartDateTime() time.Time { return time.Time{} }
func (p *placeholderDescriptor) EndDateTime() time.Time   { return time.Time{} }

func (p *placeholderDescriptor) IsRecurring() bool                { return false }
func (p *placeholderDescriptor) RecurrenceRule() *recurrence.Rule { return nil }
func (p *placeholderDescriptor) CancellationDates() []time.Time   { return nil }

func (p *placeholderDescriptor) Status() Status                    { return StatusConfirmed }
func (p *placeholderDescriptor) StatusOnDate(t time.Time) Status   { return StatusConfirmed }
func (p *placeholderDescriptor) Class() Class                      { return ClassPublic }
func (p *placeholderDescriptor) CategoryNames() []string           { return nil }
func (p *placeholderDescriptor) FixerStations() []string           { return nil }
func (p *placeholderDescriptor) IsNonRepair() bool                 { return false }

func (p *placeholderDescriptor) Venue() *Venue    { return nil }
func (p *placeholderDescriptor) Location() string { return "" }
func (p *placeholderDescriptor) Geo() *Geo        { return nil }

func (p *placeholderDescriptor) PageURL() string { return "" }
func (p *placeholderDescriptor) EditURL() string { return "" }
