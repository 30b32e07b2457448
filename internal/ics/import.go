package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/stokes-dk/reg-man-rc-sub001/internal/events"
	"github.com/stokes-dk/reg-man-rc-sub001/internal/store"
)

// ImportEvents parses an iCalendar payload into internal event
// descriptor rows ready for store insertion. A VEVENT that cannot be
// parsed is logged and skipped; parsing others continues.
func ImportEvents(body []byte, loc *time.Location) ([]store.EventDescriptor, error) {
	if len(body) == 0 {
		return nil, errors.New("empty iCalendar body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var out []store.EventDescriptor
	for _, ve := range cal.Events() {
		d, err := importVEvent(ve, loc)
		if err != nil {
			log.Warn().Err(err).Msg("skipping unparseable VEVENT on import")
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func importVEvent(ve *ical.VEvent, loc *time.Location) (store.EventDescriptor, error) {
	var d store.EventDescriptor

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil && p.Value != "" {
		d.UID = p.Value
	} else {
		d.UID = uuid.NewString() + "@reg-man-rc"
	}

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		d.Summary = p.Value
	}
	if d.Summary == "" {
		return d, errors.New("missing SUMMARY")
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		d.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		d.Location = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return d, errors.New("missing or malformed DTSTART")
	}
	d.StartTime = start.In(loc)

	if end, err := ve.GetEndAt(); err == nil {
		d.EndTime = end.In(loc)
	} else {
		d.EndTime = d.StartTime
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil && p.Value != "" {
		d.Recurring = true
		d.RecurrenceRule = p.Value
	}
	d.ExclusionDates = dateListProperties(ve, ical.ComponentPropertyExdate, loc)
	d.InclusionDates = dateListProperties(ve, ical.ComponentProperty("RDATE"), loc)

	d.Status = string(events.ParseStatus(propertyValue(ve, "STATUS")))
	d.Class = string(events.ParseClass(propertyValue(ve, "CLASS")))

	if cats := propertyValue(ve, "CATEGORIES"); cats != "" {
		for _, c := range strings.Split(cats, ",") {
			if c = strings.TrimSpace(c); c != "" {
				d.Categories = append(d.Categories, c)
			}
		}
	}

	if geoVal := propertyValue(ve, "GEO"); geoVal != "" {
		if g, ok := events.ParseGeo(geoVal); ok {
			lat, lng := g.Latitude, g.Longitude
			d.Latitude, d.Longitude = &lat, &lng
		}
	}

	return d, nil
}

func propertyValue(ve *ical.VEvent, name string) string {
	if p := ve.GetProperty(ical.ComponentProperty(name)); p != nil {
		return p.Value
	}
	return ""
}

// dateListProperties gathers all values of a date-list property
// (EXDATE/RDATE), each of which may itself be comma-separated.
func dateListProperties(ve *ical.VEvent, prop ical.ComponentProperty, loc *time.Location) []time.Time {
	var out []time.Time
	for _, p := range ve.GetProperties(prop) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, ok := parseICSTime(part, loc); ok {
				out = append(out, t)
			}
		}
	}
	return out
}

func parseICSTime(v string, loc *time.Location) (time.Time, bool) {
	if strings.HasSuffix(v, "Z") {
		if t, err := time.Parse(utcLayout, v); err == nil {
			return t, true
		}
		return time.Time{}, false
	}
	if strings.Contains(v, "T") {
		if t, err := time.ParseInLocation("20060102T150405", v, loc); err == nil {
			return t, true
		}
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation("20060102", v, loc); err == nil {
		return t, true
	}
	return time.Time{}, false
}
