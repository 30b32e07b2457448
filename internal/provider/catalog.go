package provider

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stokes-dk/reg-man-rc-sub001/internal/events"
	"github.com/stokes-dk/reg-man-rc-sub001/internal/store"
)

// Catalog merges descriptors across every provider in a registry and
// materializes them into dated event instances. All methods are pure
// reads; nothing is cached between calls.
type Catalog struct {
	registry     *Registry
	loc          *time.Location
	geoPrecision int
}

// NewCatalog builds a catalog over the given registry. loc is the
// configured local timezone; geoPrecision is the decimal precision
// used for venue geo matching (see events.Geo.EqualAt).
func NewCatalog(registry *Registry, loc *time.Location, geoPrecision int) *Catalog {
	if loc == nil {
		loc = time.Local
	}
	if geoPrecision <= 0 {
		geoPrecision = events.DefaultGeoPrecision
	}
	return &Catalog{registry: registry, loc: loc, geoPrecision: geoPrecision}
}

// Registry returns the catalog's provider registry.
func (c *Catalog) Registry() *Registry { return c.registry }

// AllEventDescriptors returns the union of every descriptor each
// provider currently exposes. A failing external source is logged
// and skipped; an internal store failure is returned.
func (c *Catalog) AllEventDescriptors(ctx context.Context) ([]events.Descriptor, error) {
	out, err := c.registry.Internal().AllDescriptors(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range c.registry.Externals() {
		descs, err := p.AllDescriptors(ctx)
		if err != nil {
			log.Error().Err(err).Str("provider", p.ID()).Msg("external provider fetch failed; skipping")
			continue
		}
		out = append(out, descs...)
	}
	return out, nil
}

// EventDescriptorsInCategory returns every descriptor belonging to
// the category. Internal descriptors are filtered at the source;
// external descriptors cannot be, so each fetched descriptor is kept
// when any of its raw category names resolves to cat by canonical or
// alternate name.
func (c *Catalog) EventDescriptorsInCategory(ctx context.Context, cat events.Category) ([]events.Descriptor, error) {
	out, err := c.registry.Internal().DescriptorsInCategory(ctx, cat.Name)
	if err != nil {
		return nil, err
	}
	for _, p := range c.registry.Externals() {
		descs, err := p.AllDescriptors(ctx)
		if err != nil {
			log.Error().Err(err).Str("provider", p.ID()).Msg("external provider fetch failed; skipping")
			continue
		}
		for _, d := range descs {
			if anyNameMatches(cat, d.CategoryNames()) {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

func anyNameMatches(cat events.Category, names []string) bool {
	for _, name := range names {
		if cat.Matches(name) {
			return true
		}
	}
	return false
}

// EventDescriptorsForVenue returns every descriptor held at the
// venue. Internal descriptors are filtered at the source by venue
// id; an external descriptor is kept when its location string equals
// the venue's case-insensitively, or its geo position coincides with
// the venue's at the configured precision.
func (c *Catalog) EventDescriptorsForVenue(ctx context.Context, venue *events.Venue) ([]events.Descriptor, error) {
	out, err := c.registry.Internal().DescriptorsForVenue(ctx, venue.ID)
	if err != nil {
		return nil, err
	}
	for _, p := range c.registry.Externals() {
		descs, err := p.AllDescriptors(ctx)
		if err != nil {
			log.Error().Err(err).Str("provider", p.ID()).Msg("external provider fetch failed; skipping")
			continue
		}
		for _, d := range descs {
			if c.matchesVenue(d, venue) {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

func (c *Catalog) matchesVenue(d events.Descriptor, venue *events.Venue) bool {
	if venue.Location != "" && strings.EqualFold(d.Location(), venue.Location) {
		return true
	}
	if venue.Geo != nil {
		if geo := d.Geo(); geo != nil && geo.EqualAt(*venue.Geo, c.geoPrecision) {
			return true
		}
	}
	return false
}

// EventDescriptorByKey looks up the descriptor a key points at. A
// miss of any kind (unknown provider, unknown descriptor id, source
// failure) substitutes a placeholder descriptor carrying just the
// two ids and a "not found" summary, so calendar and listing code
// never deals with a hard failure here.
func (c *Catalog) EventDescriptorByKey(ctx context.Context, key events.Key) events.Descriptor {
	p, ok := c.registry.Provider(key.ProviderID)
	if !ok {
		return events.NewPlaceholderDescriptor(key.ProviderID, key.DescriptorID)
	}
	d, err := p.DescriptorByID(ctx, key.DescriptorID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error().Err(err).
				Str("provider", key.ProviderID).
				Str("descriptor_id", key.DescriptorID).
				Msg("descriptor lookup failed")
		}
		return events.NewPlaceholderDescriptor(key.ProviderID, key.DescriptorID)
	}
	return d
}

// ResolveKey builds an event key from a free-form date input. When
// the date cannot be parsed, the descriptor is looked up by id to
// recover its start date, but only for non-recurring descriptors: a
// recurring descriptor's date is occurrence-specific and unknowable
// without a date already in hand.
func (c *Catalog) ResolveKey(ctx context.Context, dateInput, descriptorID, providerID string) events.Key {
	key := events.NewKeyFromDateString(dateInput, descriptorID, providerID, c.loc)
	if key.HasDate() {
		return key
	}

	p, ok := c.registry.Provider(key.ProviderID)
	if !ok {
		return key
	}
	d, err := p.DescriptorByID(ctx, descriptorID)
	if err != nil || d.IsRecurring() {
		return key
	}
	return events.NewKey(d.StartDateTime(), descriptorID, key.ProviderID, c.loc)
}

// ExpandEvents materializes descriptors into dated event instances,
// optionally clipped to [rangeMin, rangeMax]. Recurring descriptors
// contribute one instance per occurrence; the range test is always
// boundary-spanning-inclusive, matching the recurrence API.
func (c *Catalog) ExpandEvents(descs []events.Descriptor, rangeMin, rangeMax *time.Time) []*events.Event {
	var out []*events.Event
	for _, d := range descs {
		if d.IsRecurring() {
			rule := d.RecurrenceRule()
			if rule == nil {
				continue
			}
			for _, occ := range rule.RecurringEventDates(rangeMin, rangeMax) {
				out = append(out, &events.Event{
					Key:        events.NewKey(occ.Start, d.DescriptorID(), d.ProviderID(), c.loc),
					Descriptor: d,
					Start:      occ.Start,
					End:        occ.End,
				})
			}
			continue
		}

		start, end := d.StartDateTime(), d.EndDateTime()
		if rangeMin != nil && !end.IsZero() && end.Before(*rangeMin) {
			continue
		}
		if rangeMax != nil && !start.IsZero() && start.After(*rangeMax) {
			continue
		}
		out = append(out, &events.Event{
			Key:        events.NewKey(start, d.DescriptorID(), d.ProviderID(), c.loc),
			Descriptor: d,
			Start:      start,
			End:        end,
		})
	}
	return out
}

// EventByKey materializes the single event a key points at. The
// descriptor comes from EventDescriptorByKey (placeholder on miss);
// the occurrence dates come from the key's date combined with the
// descriptor's time of day, falling back to the descriptor's own
// dates when the key has no date.
func (c *Catalog) EventByKey(ctx context.Context, key events.Key) *events.Event {
	d := c.EventDescriptorByKey(ctx, key)

	start, end := d.StartDateTime(), d.EndDateTime()
	if day, ok := key.Date(c.loc); ok && d.IsRecurring() {
		// Pick the occurrence on the key's calendar day.
		min := day
		max := day.AddDate(0, 0, 1)
		if rule := d.RecurrenceRule(); rule != nil {
			for _, occ := range rule.RecurringEventDates(&min, &max) {
				if occ.Start.Year() == day.Year() && occ.Start.YearDay() == day.YearDay() {
					start, end = occ.Start, occ.End
					break
				}
			}
		}
	}

	return &events.Event{Key: key, Descriptor: d, Start: start, End: end}
}
