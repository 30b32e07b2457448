package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/stokes-dk/reg-man-rc-sub001/internal/events"
	httperrors "github.com/stokes-dk/reg-man-rc-sub001/internal/http/errors"
	"github.com/stokes-dk/reg-man-rc-sub001/internal/store"
)

// venueByParam resolves the venue_id query/path parameter into a
// venue entity.
func (h *Handler) venueByParam(r *http.Request, raw string) (*events.Venue, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	v, err := h.store.Venues.GetByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	out := &events.Venue{ID: v.ID, Name: v.Name, Location: v.Location, Description: v.Description}
	if v.Latitude != nil && v.Longitude != nil {
		out.Geo = &events.Geo{Latitude: *v.Latitude, Longitude: *v.Longitude}
	}
	return out, nil
}

// categoryByParam resolves the category_id query parameter into a
// category term.
func (h *Handler) categoryByParam(r *http.Request, raw string) (events.Category, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return events.Category{}, err
	}
	c, err := h.store.Categories.GetByID(r.Context(), id)
	if err != nil {
		return events.Category{}, err
	}
	return events.Category{ID: c.ID, Name: c.Name, AlternateNames: c.AlternateNames}, nil
}

type venuePayload struct {
	Name        string      `json:"name"`
	Location    string      `json:"location"`
	Geo         *events.Geo `json:"geo"`
	Description string      `json:"description"`
}

type venueJSON struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Location    string      `json:"location"`
	Geo         *events.Geo `json:"geo,omitempty"`
	Description string      `json:"description,omitempty"`
}

func toVenueJSON(v store.Venue) venueJSON {
	out := venueJSON{ID: v.ID, Name: v.Name, Location: v.Location, Description: v.Description}
	if v.Latitude != nil && v.Longitude != nil {
		out.Geo = &events.Geo{Latitude: *v.Latitude, Longitude: *v.Longitude}
	}
	return out
}

// ListVenues returns all venues.
func (h *Handler) ListVenues(w http.ResponseWriter, r *http.Request) {
	vs, err := h.store.Venues.List(r.Context())
	if err != nil {
		httperrors.InternalError(w, r, err, "listing venues")
		return
	}
	out := make([]venueJSON, 0, len(vs))
	for _, v := range vs {
		out = append(out, toVenueJSON(v))
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateVenue creates a venue.
func (h *Handler) CreateVenue(w http.ResponseWriter, r *http.Request) {
	var p venuePayload
	if err := decodeJSON(r, &p); err != nil {
		httperrors.BadRequestError(w, r, err, "malformed request body")
		return
	}
	if p.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	v := store.Venue{Name: p.Name, Location: p.Location, Description: p.Description}
	if p.Geo != nil {
		lat, lng := p.Geo.Latitude, p.Geo.Longitude
		v.Latitude, v.Longitude = &lat, &lng
	}
	created, err := h.store.Venues.Create(r.Context(), v)
	if err != nil {
		httperrors.InternalError(w, r, err, "creating venue")
		return
	}
	writeJSON(w, http.StatusCreated, toVenueJSON(*created))
}

// GetVenue returns one venue.
func (h *Handler) GetVenue(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid venue id", http.StatusBadRequest)
		return
	}
	v, err := h.store.Venues.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httperrors.NotFoundError(w, "venue not found")
			return
		}
		httperrors.InternalError(w, r, err, "fetching venue")
		return
	}
	writeJSON(w, http.StatusOK, toVenueJSON(*v))
}

type categoryPayload struct {
	Name           string   `json:"name"`
	AlternateNames []string `json:"alternate_names"`
}

// ListCategories returns all category terms.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cs, err := h.store.Categories.List(r.Context())
	if err != nil {
		httperrors.InternalError(w, r, err, "listing categories")
		return
	}
	out := make([]events.Category, 0, len(cs))
	for _, c := range cs {
		out = append(out, events.Category{ID: c.ID, Name: c.Name, AlternateNames: c.AlternateNames})
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateCategory creates a category term.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var p categoryPayload
	if err := decodeJSON(r, &p); err != nil {
		httperrors.BadRequestError(w, r, err, "malformed request body")
		return
	}
	if p.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	created, err := h.store.Categories.Create(r.Context(), store.Category{Name: p.Name, AlternateNames: p.AlternateNames})
	if err != nil {
		httperrors.InternalError(w, r, err, "creating category")
		return
	}
	writeJSON(w, http.StatusCreated, events.Category{ID: created.ID, Name: created.Name, AlternateNames: created.AlternateNames})
}

type itemRegistrationPayload struct {
	EventKey        string `json:"event_key"`
	ItemDescription string `json:"item_description"`
	ItemType        string `json:"item_type"`
	FixerStation    string `json:"fixer_station"`
}

// CreateItemRegistration registers an item brought for repair at the
// event the key points at.
func (h *Handler) CreateItemRegistration(w http.ResponseWriter, r *http.Request) {
	var p itemRegistrationPayload
	if err := decodeJSON(r, &p); err != nil {
		httperrors.BadRequestError(w, r, err, "malformed request body")
		return
	}
	key, ok := events.ParseKeyString(p.EventKey)
	if !ok || p.ItemDescription == "" {
		http.Error(w, "event_key and item_description are required", http.StatusBadRequest)
		return
	}

	created, err := h.store.ItemRegistrations.Create(r.Context(), store.ItemRegistration{
		EventKey:        key.String(),
		ItemDescription: p.ItemDescription,
		ItemType:        p.ItemType,
		FixerStation:    p.FixerStation,
		Outcome:         store.OutcomeRegistered,
	})
	if err != nil {
		httperrors.InternalError(w, r, err, "creating item registration")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListItemRegistrations lists the items registered for the event the
// rc-date/rc-evt query args point at.
func (h *Handler) ListItemRegistrations(w http.ResponseWriter, r *http.Request) {
	key, ok := keyFromRequest(r)
	if !ok {
		http.Error(w, "rc-date and rc-evt query arguments are required", http.StatusBadRequest)
		return
	}
	regs, err := h.store.ItemRegistrations.ListByEventKey(r.Context(), key.String())
	if err != nil {
		httperrors.InternalError(w, r, err, "listing item registrations")
		return
	}
	writeJSON(w, http.StatusOK, regs)
}

// UpdateItemOutcome records the repair outcome for one registered
// item.
func (h *Handler) UpdateItemOutcome(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}
	var p struct {
		Outcome string `json:"outcome"`
	}
	if err := decodeJSON(r, &p); err != nil {
		httperrors.BadRequestError(w, r, err, "malformed request body")
		return
	}
	switch p.Outcome {
	case store.OutcomeRegistered, store.OutcomeFixed, store.OutcomeRepairable, store.OutcomeEndOfLife:
	default:
		http.Error(w, "invalid outcome", http.StatusBadRequest)
		return
	}
	if err := h.store.ItemRegistrations.UpdateOutcome(r.Context(), id, p.Outcome); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httperrors.NotFoundError(w, "item registration not found")
			return
		}
		httperrors.InternalError(w, r, err, "updating item outcome")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type volunteerRegistrationPayload struct {
	EventKey       string   `json:"event_key"`
	VolunteerName  string   `json:"volunteer_name"`
	VolunteerEmail string   `json:"volunteer_email"`
	FixerStation   string   `json:"fixer_station"`
	Apprentice     bool     `json:"apprentice"`
	Roles          []string `json:"roles"`
}

// CreateVolunteerRegistration signs a volunteer up for an event
// occurrence.
func (h *Handler) CreateVolunteerRegistration(w http.ResponseWriter, r *http.Request) {
	var p volunteerRegistrationPayload
	if err := decodeJSON(r, &p); err != nil {
		httperrors.BadRequestError(w, r, err, "malformed request body")
		return
	}
	key, ok := events.ParseKeyString(p.EventKey)
	if !ok || p.VolunteerName == "" {
		http.Error(w, "event_key and volunteer_name are required", http.StatusBadRequest)
		return
	}

	created, err := h.store.VolunteerRegistrations.Create(r.Context(), store.VolunteerRegistration{
		EventKey:       key.String(),
		VolunteerName:  p.VolunteerName,
		VolunteerEmail: p.VolunteerEmail,
		FixerStation:   p.FixerStation,
		Apprentice:     p.Apprentice,
		Roles:          p.Roles,
	})
	if err != nil {
		httperrors.InternalError(w, r, err, "creating volunteer registration")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListVolunteerRegistrations lists the volunteers signed up for the
// event the rc-date/rc-evt query args point at.
func (h *Handler) ListVolunteerRegistrations(w http.ResponseWriter, r *http.Request) {
	key, ok := keyFromRequest(r)
	if !ok {
		http.Error(w, "rc-date and rc-evt query arguments are required", http.StatusBadRequest)
		return
	}
	regs, err := h.store.VolunteerRegistrations.ListByEventKey(r.Context(), key.String())
	if err != nil {
		httperrors.InternalError(w, r, err, "listing volunteer registrations")
		return
	}
	writeJSON(w, http.StatusOK, regs)
}
