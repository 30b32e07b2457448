package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stokes-dk/reg-man-rc-sub001/internal/events"
	"github.com/stokes-dk/reg-man-rc-sub001/internal/recurrence"
	"github.com/stokes-dk/reg-man-rc-sub001/internal/store"
)

// RawEvent is the primitive-field record an external source supplies
// for one of its events. Dates travel as strings and are parsed at
// materialization; malformed values degrade to "unknown" rather than
// failing the whole collection.
type RawEvent struct {
	DescriptorID string
	UID          string

	Summary     string
	Description string
	AuthorID    string

	StartDateTime string
	EndDateTime   string

	Recurring         bool
	RecurrenceRule    string
	InclusionDates    []string
	ExclusionDates    []string
	CancellationDates []string

	Status string
	Class  string

	Categories    []string
	FixerStations []string
	NonRepair     bool

	Location string
	// Geo is "lat,lng"; empty when the source knows no position.
	Geo string

	PageURL string
	EditURL string
}

// ExternalSource describes one external event provider: its identity
// plus the two pull callbacks supplying event data. Descriptors are
// rebuilt from these callbacks on every request, never cached.
type ExternalSource struct {
	ProviderID   string
	ProviderName string

	// FetchAll returns every event the source currently exposes.
	FetchAll func(ctx context.Context) ([]RawEvent, error)
	// FetchByID returns one event by descriptor id, or nil when the
	// source has no such event.
	FetchByID func(ctx context.Context, descriptorID string) (*RawEvent, error)
}

// externalProvider adapts an ExternalSource to the Provider
// interface.
type externalProvider struct {
	src ExternalSource
	loc *time.Location
}

// NewExternalProvider validates and wraps an external source.
func NewExternalProvider(src ExternalSource, loc *time.Location) (Provider, error) {
	if src.ProviderID == "" {
		return nil, fmt.Errorf("external source has empty provider id")
	}
	if src.ProviderID == events.InternalProviderID {
		return nil, fmt.Errorf("provider id %q is reserved for the internal provider", src.ProviderID)
	}
	if src.FetchAll == nil || src.FetchByID == nil {
		return nil, fmt.Errorf("external source %q is missing fetch callbacks", src.ProviderID)
	}
	if loc == nil {
		loc = time.Local
	}
	return &externalProvider{src: src, loc: loc}, nil
}

func (p *externalProvider) ID() string   { return p.src.ProviderID }
func (p *externalProvider) Name() string { return p.src.ProviderName }

func (p *externalProvider) AllDescriptors(ctx context.Context) ([]events.Descriptor, error) {
	raws, err := p.src.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("external provider %s: %w", p.src.ProviderID, err)
	}
	out := make([]events.Descriptor, 0, len(raws))
	for _, raw := range raws {
		out = append(out, p.newDescriptor(raw))
	}
	return out, nil
}

func (p *externalProvider) DescriptorByID(ctx context.Context, descriptorID string) (events.Descriptor, error) {
	raw, err := p.src.FetchByID(ctx, descriptorID)
	if err != nil {
		return nil, fmt.Errorf("external provider %s: %w", p.src.ProviderID, err)
	}
	if raw == nil {
		return nil, store.ErrNotFound
	}
	return p.newDescriptor(*raw), nil
}

func (p *externalProvider) newDescriptor(raw RawEvent) events.Descriptor {
	d := &externalDescriptor{
		raw:        raw,
		providerID: p.src.ProviderID,
		loc:        p.loc,
	}
	d.start = p.parseTime(raw.StartDateTime, raw.DescriptorID)
	d.end = p.parseTime(raw.EndDateTime, raw.DescriptorID)
	if raw.Recurring && raw.RecurrenceRule != "" && !d.start.IsZero() {
		rule, err := recurrence.New(
			raw.RecurrenceRule,
			d.start,
			d.end,
			p.parseTimes(raw.InclusionDates, raw.DescriptorID),
			p.parseTimes(raw.ExclusionDates, raw.DescriptorID),
		)
		if err != nil {
			log.Error().Err(err).
				Str("provider", p.src.ProviderID).
				Str("descriptor_id", raw.DescriptorID).
				Msg("malformed recurrence rule from external provider")
		} else {
			d.rule = rule
		}
	}
	return d
}

// externalDateLayouts are the accepted date-time forms in external
// raw records.
var externalDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
	"20060102T150405",
	"20060102",
}

func (p *externalProvider) parseTime(s, descriptorID string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range externalDateLayouts {
		if t, err := time.ParseInLocation(layout, s, p.loc); err == nil {
			return t.In(p.loc)
		}
	}
	log.Warn().
		Str("provider", p.src.ProviderID).
		Str("descriptor_id", descriptorID).
		Str("value", s).
		Msg("unparseable date from external provider")
	return time.Time{}
}

func (p *externalProvider) parseTimes(values []string, descriptorID string) []time.Time {
	var out []time.Time
	for _, v := range values {
		if t := p.parseTime(v, descriptorID); !t.IsZero() {
			out = append(out, t)
		}
	}
	return out
}

// externalDescriptor adapts a RawEvent to the Descriptor interface.
type externalDescriptor struct {
	raw        RawEvent
	providerID string
	loc        *time.Location

	start time.Time
	end   time.Time
	rule  *recurrence.Rule
}

func (d *externalDescriptor) EventUID() string {
	if d.raw.UID != "" {
		return d.raw.UID
	}
	return d.providerID + ":" + d.raw.DescriptorID
}

func (d *externalDescriptor) ProviderID() string   { return d.providerID }
func (d *externalDescriptor) DescriptorID() string { return d.raw.DescriptorID }

func (d *externalDescriptor) Summary() string     { return d.raw.Summary }
func (d *externalDescriptor) Description() string { return d.raw.Description }
func (d *externalDescriptor) AuthorID() string    { return d.raw.AuthorID }

func (d *externalDescriptor) StartDateTime() time.Time { return d.start }
func (d *externalDescriptor) EndDateTime() time.Time   { return d.end }

func (d *externalDescriptor) IsRecurring() bool                { return d.raw.Recurring && d.rule != nil }
func (d *externalDescriptor) RecurrenceRule() *recurrence.Rule { return d.rule }

func (d *externalDescriptor) CancellationDates() []time.Time {
	var out []time.Time
	for _, v := range d.raw.CancellationDates {
		for _, layout := range externalDateLayouts {
			if t, err := time.ParseInLocation(layout, strings.TrimSpace(v), d.loc); err == nil {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

func (d *externalDescriptor) Status() events.Status { return events.ParseStatus(d.raw.Status) }

func (d *externalDescriptor) StatusOnDate(t time.Time) events.Status {
	return events.StatusOnDate(d, t)
}

func (d *externalDescriptor) Class() events.Class { return events.ParseClass(d.raw.Class) }

func (d *externalDescriptor) CategoryNames() []string { return d.raw.Categories }
func (d *externalDescriptor) FixerStations() []string { return d.raw.FixerStations }
func (d *externalDescriptor) IsNonRepair() bool       { return d.raw.NonRepair }

// Venue is always nil for external descriptors; external sources
// supply a location string and optionally a position instead.
func (d *externalDescriptor) Venue() *events.Venue { return nil }
func (d *externalDescriptor) Location() string     { return d.raw.Location }

func (d *externalDescriptor) Geo() *events.Geo {
	if g, ok := events.ParseGeo(d.raw.Geo); ok {
		return &g
	}
	return nil
}

func (d *externalDescriptor) PageURL() string { return d.raw.PageURL }
func (d *externalDescriptor) EditURL() string { return d.raw.EditURL }
