package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/stokes-dk/reg-man-rc-sub001/internal/config"
	"github.com/stokes-dk/reg-man-rc-sub001/internal/provider"
	"github.com/stokes-dk/reg-man-rc-sub001/internal/store"
)

// In-memory repositories backing handler tests.

type memEventDescriptorRepo struct {
	rows   []store.EventDescriptor
	nextID int64
}

func (r *memEventDescriptorRepo) Create(ctx context.Context, d store.EventDescriptor) (*store.EventDescriptor, error) {
	r.nextID++
	d.ID = r.nextID
	r.rows = append(r.rows, d)
	return &d, nil
}

func (r *memEventDescriptorRepo) GetByID(ctx context.Context, id int64) (*store.EventDescriptor, error) {
	for i := range r.rows {
		if r.rows[i].ID == id {
			row := r.rows[i]
			return &row, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *memEventDescriptorRepo) List(ctx context.Context) ([]store.EventDescriptor, error) {
	return r.rows, nil
}

func (r *memEventDescriptorRepo) ListByCategory(ctx context.Context, name string) ([]store.EventDescriptor, error) {
	var out []store.EventDescriptor
	for _, row := range r.rows {
		for _, c := range row.Categories {
			if c == name {
				out = append(out, row)
				break
			}
		}
	}
	return out, nil
}

func (r *memEventDescriptorRepo) ListByVenue(ctx context.Context, venueID int64) ([]store.EventDescriptor, error) {
	var out []store.EventDescriptor
	for _, row := range r.rows {
		if row.VenueID != nil && *row.VenueID == venueID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *memEventDescriptorRepo) Update(ctx context.Context, d store.EventDescriptor) error {
	for i := range r.rows {
		if r.rows[i].ID == d.ID {
			r.rows[i] = d
			return nil
		}
	}
	return store.ErrNotFound
}

func (r *memEventDescriptorRepo) Delete(ctx context.Context, id int64) error {
	for i := range r.rows {
		if r.rows[i].ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type memVenueRepo struct {
	rows []store.Venue
}

func (r *memVenueRepo) Create(ctx context.Context, v store.Venue) (*store.Venue, error) {
	v.ID = int64(len(r.rows) + 1)
	r.rows = append(r.rows, v)
	return &v, nil
}

func (r *memVenueRepo) GetByID(ctx context.Context, id int64) (*store.Venue, error) {
	for i := range r.rows {
		if r.rows[i].ID == id {
			row := r.rows[i]
			return &row, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *memVenueRepo) List(ctx context.Context) ([]store.Venue, error) { return r.rows, nil }

func (r *memVenueRepo) Update(ctx context.Context, v store.Venue) error {
	return errors.New("not implemented")
}

func (r *memVenueRepo) Delete(ctx context.Context, id int64) error {
	return errors.New("not implemented")
}

type memCategoryRepo struct {
	rows []store.Category
}

func (r *memCategoryRepo) Create(ctx context.Context, c store.Category) (*store.Category, error) {
	c.ID = int64(len(r.rows) + 1)
	r.rows = append(r.rows, c)
	return &c, nil
}

func (r *memCategoryRepo) GetByID(ctx context.Context, id int64) (*store.Category, error) {
	for i := range r.rows {
		if r.rows[i].ID == id {
			row := r.rows[i]
			return &row, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *memCategoryRepo) GetByName(ctx context.Context, name string) (*store.Category, error) {
	for i := range r.rows {
		if r.rows[i].Name == name {
			row := r.rows[i]
			return &row, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *memCategoryRepo) List(ctx context.Context) ([]store.Category, error) { return r.rows, nil }

func (r *memCategoryRepo) Delete(ctx context.Context, id int64) error {
	return errors.New("not implemented")
}

type memItemRegistrationRepo struct {
	rows []store.ItemRegistration
}

func (r *memItemRegistrationRepo) Create(ctx context.Context, reg store.ItemRegistration) (*store.ItemRegistration, error) {
	reg.ID = int64(len(r.rows) + 1)
	r.rows = append(r.rows, reg)
	return &reg, nil
}

func (r *memItemRegistrationRepo) GetByID(ctx context.Context, id int64) (*store.ItemRegistration, error) {
	for i := range r.rows {
		if r.rows[i].ID == id {
			row := r.rows[i]
			return &row, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *memItemRegistrationRepo) ListByEventKey(ctx context.Context, eventKey string) ([]store.ItemRegistration, error) {
	var out []store.ItemRegistration
	for _, row := range r.rows {
		if row.EventKey == eventKey {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *memItemRegistrationRepo) UpdateOutcome(ctx context.Context, id int64, outcome string) error {
	for i := range r.rows {
		if r.rows[i].ID == id {
			r.rows[i].Outcome = outcome
			return nil
		}
	}
	return store.ErrNotFound
}

func (r *memItemRegistrationRepo) Delete(ctx context.Context, id int64) error {
	return errors.New("not implemented")
}

type memVolunteerRegistrationRepo struct {
	rows []store.VolunteerRegistration
}

func (r *memVolunteerRegistrationRepo) Create(ctx context.Context, reg store.VolunteerRegistration) (*store.VolunteerRegistration, error) {
	reg.ID = int64(len(r.rows) + 1)
	r.rows = append(r.rows, reg)
	return &reg, nil
}

func (r *memVolunteerRegistrationRepo) ListByEventKey(ctx context.Context, eventKey string) ([]store.VolunteerRegistration, error) {
	var out []store.VolunteerRegistration
	for _, row := range r.rows {
		if row.EventKey == eventKey {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *memVolunteerRegistrationRepo) Delete(ctx context.Context, id int64) error {
	return errors.New("not implemented")
}

type testEnv struct {
	handler     *Handler
	descriptors *memEventDescriptorRepo
	venues      *memVenueRepo
	categories  *memCategoryRepo
	items       *memItemRegistrationRepo
	volunteers  *memVolunteerRegistrationRepo
}

func newTestEnv() *testEnv {
	env := &testEnv{
		descriptors: &memEventDescriptorRepo{},
		venues:      &memVenueRepo{},
		categories:  &memCategoryRepo{},
		items:       &memItemRegistrationRepo{},
		volunteers:  &memVolunteerRegistrationRepo{},
	}
	st := &store.Store{
		EventDescriptors:       env.descriptors,
		Venues:                 env.venues,
		Categories:             env.categories,
		ItemRegistrations:      env.items,
		VolunteerRegistrations: env.volunteers,
	}
	cfg := &config.Config{
		BaseURL:      "http://repair.test",
		Timezone:     time.UTC,
		GeoPrecision: 4,
		CalendarName: "Repair Café Events",
	}
	internal := provider.NewInternalProvider(st, cfg.Timezone, cfg.BaseURL)
	catalog := provider.NewCatalog(provider.NewRegistry(internal), cfg.Timezone, cfg.GeoPrecision)
	env.handler = NewHandler(cfg, st, catalog)
	return env
}

func (env *testEnv) seedEvent(summary string, start time.Time, categories ...string) int64 {
	created, _ := env.descriptors.Create(context.Background(), store.EventDescriptor{
		UID:        "uid-" + summary,
		Summary:    summary,
		StartTime:  start,
		EndTime:    start.Add(4 * time.Hour),
		Status:     "CONFIRMED",
		Class:      "PUBLIC",
		Categories: categories,
	})
	return created.ID
}

func doRequest(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, r)
	return w
}
