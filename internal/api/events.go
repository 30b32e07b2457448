package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/stokes-dk/reg-man-rc-sub001/internal/events"
	httperrors "github.com/stokes-dk/reg-man-rc-sub001/internal/http/errors"
	"github.com/stokes-dk/reg-man-rc-sub001/internal/ics"
	"github.com/stokes-dk/reg-man-rc-sub001/internal/metrics"
	"github.com/stokes-dk/reg-man-rc-sub001/internal/store"
)

// ListEvents returns the expanded, filtered event collection.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	evs, ok := h.collectEvents(w, r)
	if !ok {
		return
	}
	out := make([]eventJSON, 0, len(evs))
	for _, ev := range evs {
		out = append(out, toEventJSON(ev))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetEvent returns the single event instance a key points at. A
// missing descriptor yields a placeholder-backed event, not a 404:
// the key itself is the resource being dereferenced.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	key, ok := keyFromRequest(r)
	if !ok {
		http.Error(w, "rc-date and rc-evt query arguments are required", http.StatusBadRequest)
		return
	}
	ev := h.catalog.EventByKey(r.Context(), key)
	writeJSON(w, http.StatusOK, toEventJSON(ev))
}

// CalendarFeed renders the expanded, filtered events as iCalendar.
func (h *Handler) CalendarFeed(w http.ResponseWriter, r *http.Request) {
	evs, ok := h.collectEvents(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="events.ics"`)
	if err := ics.WriteFeed(w, evs, h.cfg.CalendarName, time.Now()); err != nil {
		httperrors.LogError(r, "writing calendar feed", err)
	}
}

// collectEvents runs the shared list pipeline: parse the filter,
// gather descriptors, expand, filter. Responds with the error itself
// on failure and reports ok=false.
func (h *Handler) collectEvents(w http.ResponseWriter, r *http.Request) ([]*events.Event, bool) {
	filter, rangeMin, rangeMax, err := h.filterFromQuery(r)
	if err != nil {
		httperrors.BadRequestError(w, r, err, err.Error())
		return nil, false
	}

	descs, err := h.descriptorsForRequest(r)
	if err != nil {
		httperrors.InternalError(w, r, err, "collecting event descriptors")
		return nil, false
	}

	expanded := h.catalog.ExpandEvents(descs, rangeMin, rangeMax)
	metrics.CountExpandedEvents(len(expanded))
	return filter.ApplyFilter(expanded), true
}

// descriptorsForRequest honors the optional venue_id / category_id
// scoping parameters, falling back to the full union.
func (h *Handler) descriptorsForRequest(r *http.Request) ([]events.Descriptor, error) {
	ctx := r.Context()
	q := r.URL.Query()

	if v := q.Get("venue_id"); v != "" {
		venue, err := h.venueByParam(r, v)
		if err != nil {
			return nil, err
		}
		return h.catalog.EventDescriptorsForVenue(ctx, venue)
	}
	if v := q.Get("category_id"); v != "" {
		cat, err := h.categoryByParam(r, v)
		if err != nil {
			return nil, err
		}
		return h.catalog.EventDescriptorsInCategory(ctx, cat)
	}
	return h.catalog.AllEventDescriptors(ctx)
}

// eventDescriptorPayload is the create/update body for internal
// descriptors.
type eventDescriptorPayload struct {
	Summary     string `json:"summary"`
	Description string `json:"description"`
	AuthorID    string `json:"author_id"`

	VenueID  *int64      `json:"venue_id"`
	Location string      `json:"location"`
	Geo      *events.Geo `json:"geo"`

	Start string `json:"start"`
	End   string `json:"end"`

	Recurring         bool     `json:"recurring"`
	RecurrenceRule    string   `json:"recurrence_rule"`
	InclusionDates    []string `json:"inclusion_dates"`
	ExclusionDates    []string `json:"exclusion_dates"`
	CancellationDates []string `json:"cancellation_dates"`

	Status        string   `json:"status"`
	Class         string   `json:"class"`
	Categories    []string `json:"categories"`
	FixerStations []string `json:"fixer_stations"`
	NonRepair     bool     `json:"non_repair"`
}

func (h *Handler) descriptorFromPayload(p eventDescriptorPayload) (store.EventDescriptor, error) {
	var d store.EventDescriptor
	d.Summary = p.Summary
	d.Description = p.Description
	d.AuthorID = p.AuthorID
	d.VenueID = p.VenueID
	d.Location = p.Location
	if p.Geo != nil {
		lat, lng := p.Geo.Latitude, p.Geo.Longitude
		d.Latitude, d.Longitude = &lat, &lng
	}

	start, err := h.parseQueryTime(p.Start)
	if err != nil {
		return d, err
	}
	d.StartTime = start
	if p.End != "" {
		end, err := h.parseQueryTime(p.End)
		if err != nil {
			return d, err
		}
		d.EndTime = end
	} else {
		d.EndTime = start
	}

	d.Recurring = p.Recurring
	d.RecurrenceRule = p.RecurrenceRule
	if d.InclusionDates, err = h.parseTimeList(p.InclusionDates); err != nil {
		return d, err
	}
	if d.ExclusionDates, err = h.parseTimeList(p.ExclusionDates); err != nil {
		return d, err
	}
	if d.CancellationDates, err = h.parseTimeList(p.CancellationDates); err != nil {
		return d, err
	}

	d.Status = string(events.ParseStatus(p.Status))
	d.Class = string(events.ParseClass(p.Class))
	d.Categories = p.Categories
	d.FixerStations = p.FixerStations
	d.NonRepair = p.NonRepair
	return d, nil
}

func (h *Handler) parseTimeList(values []string) ([]time.Time, error) {
	var out []time.Time
	for _, v := range values {
		t, err := h.parseQueryTime(v)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// CreateEvent creates an internal event descriptor.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var p eventDescriptorPayload
	if err := decodeJSON(r, &p); err != nil {
		httperrors.BadRequestError(w, r, err, "malformed request body")
		return
	}
	if p.Summary == "" || p.Start == "" {
		http.Error(w, "summary and start are required", http.StatusBadRequest)
		return
	}

	d, err := h.descriptorFromPayload(p)
	if err != nil {
		httperrors.BadRequestError(w, r, err, err.Error())
		return
	}
	d.UID = uuid.NewString() + "@reg-man-rc"

	created, err := h.store.EventDescriptors.Create(r.Context(), d)
	if err != nil {
		httperrors.InternalError(w, r, err, "creating event descriptor")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": created.ID, "uid": created.UID})
}

// UpdateEvent replaces an internal event descriptor's fields.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}
	var p eventDescriptorPayload
	if err := decodeJSON(r, &p); err != nil {
		httperrors.BadRequestError(w, r, err, "malformed request body")
		return
	}
	d, err := h.descriptorFromPayload(p)
	if err != nil {
		httperrors.BadRequestError(w, r, err, err.Error())
		return
	}
	d.ID = id

	if err := h.store.EventDescriptors.Update(r.Context(), d); err != nil {
		if err == store.ErrNotFound {
			httperrors.NotFoundError(w, "event not found")
			return
		}
		httperrors.InternalError(w, r, err, "updating event descriptor")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteEvent removes an internal event descriptor.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}
	if err := h.store.EventDescriptors.Delete(r.Context(), id); err != nil {
		if err == store.ErrNotFound {
			httperrors.NotFoundError(w, "event not found")
			return
		}
		httperrors.InternalError(w, r, err, "deleting event descriptor")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportCalendar creates internal descriptors from an uploaded
// iCalendar payload.
func (h *Handler) ImportCalendar(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, 5<<20)
	data, err := readAll(body)
	if err != nil {
		httperrors.BadRequestError(w, r, err, "unreadable request body")
		return
	}

	descs, err := ics.ImportEvents(data, h.cfg.Timezone)
	if err != nil {
		httperrors.BadRequestError(w, r, err, "malformed iCalendar payload")
		return
	}

	imported := 0
	for _, d := range descs {
		if _, err := h.store.EventDescriptors.Create(r.Context(), d); err != nil {
			httperrors.LogError(r, "importing event", err)
			continue
		}
		imported++
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": imported, "skipped": len(descs) - imported})
}
