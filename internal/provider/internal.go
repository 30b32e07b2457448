package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stokes-dk/reg-man-rc-sub001/internal/events"
	"github.com/stokes-dk/reg-man-rc-sub001/internal/recurrence"
	"github.com/stokes-dk/reg-man-rc-sub001/internal/store"
)

// InternalProviderName is the display name of the store-backed
// provider.
const InternalProviderName = "Repair Café Registration Manager"

// InternalProvider serves descriptors from this application's own
// store. Its descriptor ids are the store row ids rendered as
// strings.
type InternalProvider struct {
	store   *store.Store
	loc     *time.Location
	baseURL string
}

// NewInternalProvider wires the internal provider. loc is the
// configured local timezone all descriptor times are expressed in.
func NewInternalProvider(st *store.Store, loc *time.Location, baseURL string) *InternalProvider {
	if loc == nil {
		loc = time.Local
	}
	return &InternalProvider{store: st, loc: loc, baseURL: baseURL}
}

func (p *InternalProvider) ID() string   { return events.InternalProviderID }
func (p *InternalProvider) Name() string { return InternalProviderName }

func (p *InternalProvider) AllDescriptors(ctx context.Context) ([]events.Descriptor, error) {
	rows, err := p.store.EventDescriptors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("internal provider: %w", err)
	}
	return p.materialize(ctx, rows)
}

// DescriptorsInCategory filters at the source: the store query only
// returns rows whose category list contains the given name.
func (p *InternalProvider) DescriptorsInCategory(ctx context.Context, categoryName string) ([]events.Descriptor, error) {
	rows, err := p.store.EventDescriptors.ListByCategory(ctx, categoryName)
	if err != nil {
		return nil, fmt.Errorf("internal provider: %w", err)
	}
	return p.materialize(ctx, rows)
}

// DescriptorsForVenue filters at the source by venue id.
func (p *InternalProvider) DescriptorsForVenue(ctx context.Context, venueID int64) ([]events.Descriptor, error) {
	rows, err := p.store.EventDescriptors.ListByVenue(ctx, venueID)
	if err != nil {
		return nil, fmt.Errorf("internal provider: %w", err)
	}
	return p.materialize(ctx, rows)
}

func (p *InternalProvider) DescriptorByID(ctx context.Context, descriptorID string) (events.Descriptor, error) {
	id, err := strconv.ParseInt(descriptorID, 10, 64)
	if err != nil {
		return nil, store.ErrNotFound
	}
	row, err := p.store.EventDescriptors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var venue *events.Venue
	if row.VenueID != nil {
		venue = p.fetchVenue(ctx, *row.VenueID)
	}
	return p.newDescriptor(*row, venue), nil
}

func (p *InternalProvider) materialize(ctx context.Context, rows []store.EventDescriptor) ([]events.Descriptor, error) {
	venues := p.venueTable(ctx, rows)
	out := make([]events.Descriptor, 0, len(rows))
	for _, row := range rows {
		var venue *events.Venue
		if row.VenueID != nil {
			venue = venues[*row.VenueID]
		}
		out = append(out, p.newDescriptor(row, venue))
	}
	return out, nil
}

// venueTable resolves the venues referenced by rows in one pass.
func (p *InternalProvider) venueTable(ctx context.Context, rows []store.EventDescriptor) map[int64]*events.Venue {
	needed := false
	for _, row := range rows {
		if row.VenueID != nil {
			needed = true
			break
		}
	}
	if !needed {
		return nil
	}
	all, err := p.store.Venues.List(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("venue lookup failed; descriptors materialized without venues")
		return nil
	}
	table := make(map[int64]*events.Venue, len(all))
	for _, v := range all {
		table[v.ID] = venueFromRow(v)
	}
	return table
}

func (p *InternalProvider) fetchVenue(ctx context.Context, id int64) *events.Venue {
	v, err := p.store.Venues.GetByID(ctx, id)
	if err != nil {
		log.Warn().Err(err).Int64("venue_id", id).Msg("venue lookup failed")
		return nil
	}
	return venueFromRow(*v)
}

func venueFromRow(v store.Venue) *events.Venue {
	out := &events.Venue{
		ID:          v.ID,
		Name:        v.Name,
		Location:    v.Location,
		Description: v.Description,
	}
	if v.Latitude != nil && v.Longitude != nil {
		out.Geo = &events.Geo{Latitude: *v.Latitude, Longitude: *v.Longitude}
	}
	return out
}

func (p *InternalProvider) newDescriptor(row store.EventDescriptor, venue *events.Venue) events.Descriptor {
	d := &internalDescriptor{
		row:     row,
		venue:   venue,
		loc:     p.loc,
		baseURL: p.baseURL,
	}
	if row.Recurring && row.RecurrenceRule != "" {
		rule, err := recurrence.New(
			row.RecurrenceRule,
			row.StartTime.In(p.loc),
			row.EndTime.In(p.loc),
			timesIn(row.InclusionDates, p.loc),
			timesIn(row.ExclusionDates, p.loc),
		)
		if err != nil {
			// Malformed rule: log and treat the descriptor as a
			// single event rather than aborting the calling flow.
			log.Error().Err(err).Int64("descriptor_id", row.ID).Msg("malformed recurrence rule")
		} else {
			d.rule = rule
		}
	}
	return d
}

func timesIn(ts []time.Time, loc *time.Location) []time.Time {
	if len(ts) == 0 {
		return nil
	}
	out := make([]time.Time, len(ts))
	for i, t := range ts {
		out[i] = t.In(loc)
	}
	return out
}

// internalDescriptor adapts a store row to the Descriptor interface.
type internalDescriptor struct {
	row     store.EventDescriptor
	venue   *events.Venue
	rule    *recurrence.Rule
	loc     *time.Location
	baseURL string
}

func (d *internalDescriptor) EventUID() string     { return d.row.UID }
func (d *internalDescriptor) ProviderID() string   { return events.InternalProviderID }
func (d *internalDescriptor) DescriptorID() string { return strconv.FormatInt(d.row.ID, 10) }

func (d *internalDescriptor) Summary() string     { return d.row.Summary }
func (d *internalDescriptor) Description() string { return d.row.Description }
func (d *internalDescriptor) AuthorID() string    { return d.row.AuthorID }

func (d *internalDescriptor) StartDateTime() time.Time { return d.row.StartTime.In(d.loc) }
func (d *internalDescriptor) EndDateTime() time.Time   { return d.row.EndTime.In(d.loc) }

// IsRecurring is false when the stored rule failed to parse, keeping
// the invariant that a recurring descriptor always has a rule.
func (d *internalDescriptor) IsRecurring() bool                { return d.row.Recurring && d.rule != nil }
func (d *internalDescriptor) RecurrenceRule() *recurrence.Rule { return d.rule }

func (d *internalDescriptor) CancellationDates() []time.Time {
	return timesIn(d.row.CancellationDates, d.loc)
}

func (d *internalDescriptor) Status() events.Status { return events.ParseStatus(d.row.Status) }

func (d *internalDescriptor) StatusOnDate(t time.Time) events.Status {
	return events.StatusOnDate(d, t)
}

func (d *internalDescriptor) Class() events.Class { return events.ParseClass(d.row.Class) }

func (d *internalDescriptor) CategoryNames() []string { return d.row.Categories }
func (d *internalDescriptor) FixerStations() []string { return d.row.FixerStations }
func (d *internalDescriptor) IsNonRepair() bool       { return d.row.NonRepair }

func (d *internalDescriptor) Venue() *events.Venue { return d.venue }

func (d *internalDescriptor) Location() string {
	if d.row.Location != "" {
		return d.row.Location
	}
	if d.venue != nil {
		return d.venue.Location
	}
	return ""
}

func (d *internalDescriptor) Geo() *events.Geo {
	if d.row.Latitude != nil && d.row.Longitude != nil {
		return &events.Geo{Latitude: *d.row.Latitude, Longitude: *d.row.Longitude}
	}
	if d.venue != nil {
		return d.venue.Geo
	}
	return nil
}

func (d *internalDescriptor) PageURL() string {
	if d.baseURL == "" {
		return ""
	}
	return d.baseURL + "/events/" + d.DescriptorID()
}

func (d *internalDescriptor) EditURL() string {
	if d.baseURL == "" {
		return ""
	}
	return d.baseURL + "/admin/events/" + d.DescriptorID()
}
