package provider

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stokes-dk/reg-man-rc-sub001/internal/events"
	"github.com/stokes-dk/reg-man-rc-sub001/internal/store"
)

// fakeEventDescriptorRepo serves a fixed row set.
type fakeEventDescriptorRepo struct {
	rows []store.EventDescriptor
	err  error
}

func (r *fakeEventDescriptorRepo) Create(ctx context.Context, d store.EventDescriptor) (*store.EventDescriptor, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeEventDescriptorRepo) GetByID(ctx context.Context, id int64) (*store.EventDescriptor, error) {
	if r.err != nil {
		return nil, r.err
	}
	for i := range r.rows {
		if r.rows[i].ID == id {
			row := r.rows[i]
			return &row, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *fakeEventDescriptorRepo) List(ctx context.Context) ([]store.EventDescriptor, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.rows, nil
}

func (r *fakeEventDescriptorRepo) ListByCategory(ctx context.Context, name string) ([]store.EventDescriptor, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []store.EventDescriptor
	for _, row := range r.rows {
		for _, c := range row.Categories {
			if strings.EqualFold(c, name) {
				out = append(out, row)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeEventDescriptorRepo) ListByVenue(ctx context.Context, venueID int64) ([]store.EventDescriptor, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []store.EventDescriptor
	for _, row := range r.rows {
		if row.VenueID != nil && *row.VenueID == venueID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeEventDescriptorRepo) Update(ctx context.Context, d store.EventDescriptor) error {
	return errors.New("not implemented")
}

func (r *fakeEventDescriptorRepo) Delete(ctx context.Context, id int64) error {
	return errors.New("not implemented")
}

// fakeVenueRepo serves a fixed venue set.
type fakeVenueRepo struct {
	rows []store.Venue
}

func (r *fakeVenueRepo) Create(ctx context.Context, v store.Venue) (*store.Venue, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeVenueRepo) GetByID(ctx context.Context, id int64) (*store.Venue, error) {
	for i := range r.rows {
		if r.rows[i].ID == id {
			row := r.rows[i]
			return &row, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *fakeVenueRepo) List(ctx context.Context) ([]store.Venue, error) { return r.rows, nil }

func (r *fakeVenueRepo) Update(ctx context.Context, v store.Venue) error {
	return errors.New("not implemented")
}

func (r *fakeVenueRepo) Delete(ctx context.Context, id int64) error {
	return errors.New("not implemented")
}

func testStore(descRepo *fakeEventDescriptorRepo, venueRepo *fakeVenueRepo) *store.Store {
	if venueRepo == nil {
		venueRepo = &fakeVenueRepo{}
	}
	return &store.Store{
		EventDescriptors: descRepo,
		Venues:           venueRepo,
	}
}

func testInternalProvider(descRepo *fakeEventDescriptorRepo, venueRepo *fakeVenueRepo) *InternalProvider {
	return NewInternalProvider(testStore(descRepo, venueRepo), time.UTC, "http://repair.test")
}

func TestRegistry_RejectsDuplicateProviders(t *testing.T) {
	internal := testInternalProvider(&fakeEventDescriptorRepo{}, nil)
	registry := NewRegistry(internal)

	ext := staticSource("ecwd", nil)
	p, err := NewExternalProvider(ext, time.UTC)
	if err != nil {
		t.Fatalf("failed to build external provider: %v", err)
	}
	if err := registry.Register(p); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if err := registry.Register(p); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestRegistry_ProviderLookup(t *testing.T) {
	internal := testInternalProvider(&fakeEventDescriptorRepo{}, nil)
	registry := NewRegistry(internal)

	// Empty id resolves to the internal provider.
	p, ok := registry.Provider("")
	if !ok || p.ID() != events.InternalProviderID {
		t.Errorf("empty id lookup: got %v %v", p, ok)
	}

	if _, ok := registry.Provider("nope"); ok {
		t.Error("expected lookup of an unknown provider to fail")
	}
}

func TestRegistry_ProviderNames(t *testing.T) {
	internal := testInternalProvider(&fakeEventDescriptorRepo{}, nil)
	registry := NewRegistry(internal)

	ext, err := NewExternalProvider(staticSource("ecwd", nil), time.UTC)
	if err != nil {
		t.Fatalf("failed to build external provider: %v", err)
	}
	if err := registry.Register(ext); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	names := registry.ProviderNames()
	if names[events.InternalProviderID] != InternalProviderName {
		t.Errorf("missing internal provider name: %v", names)
	}
	if names["ecwd"] != "Event Calendar WD" {
		t.Errorf("missing external provider name: %v", names)
	}
}

func TestNewExternalProvider_Validation(t *testing.T) {
	fetchAll := func(ctx context.Context) ([]RawEvent, error) { return nil, nil }
	fetchByID := func(ctx context.Context, id string) (*RawEvent, error) { return nil, nil }

	tests := []struct {
		name string
		src  ExternalSource
	}{
		{"empty id", ExternalSource{FetchAll: fetchAll, FetchByID: fetchByID}},
		{"reserved id", ExternalSource{ProviderID: events.InternalProviderID, FetchAll: fetchAll, FetchByID: fetchByID}},
		{"missing fetch all", ExternalSource{ProviderID: "x", FetchByID: fetchByID}},
		{"missing fetch by id", ExternalSource{ProviderID: "x", FetchAll: fetchAll}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewExternalProvider(tc.src, time.UTC); err == nil {
				t.Error("expected validation to fail")
			}
		})
	}
}

// staticSource builds an external source named "Event Calendar WD"
// serving a fixed raw event list.
func staticSource(id string, raws []RawEvent) ExternalSource {
	return ExternalSource{
		ProviderID:   id,
		ProviderName: "Event Calendar WD",
		FetchAll: func(ctx context.Context) ([]RawEvent, error) {
			return raws, nil
		},
		FetchByID: func(ctx context.Context, descriptorID string) (*RawEvent, error) {
			for i := range raws {
				if raws[i].DescriptorID == descriptorID {
					return &raws[i], nil
				}
			}
			return nil, nil
		},
	}
}

func failingSource(id string) ExternalSource {
	boom := errors.New("upstream down")
	return ExternalSource{
		ProviderID:   id,
		ProviderName: "Broken",
		FetchAll: func(ctx context.Context) ([]RawEvent, error) {
			return nil, boom
		},
		FetchByID: func(ctx context.Context, descriptorID string) (*RawEvent, error) {
			return nil, boom
		},
	}
}

func TestExternalProvider_DescriptorByIDMiss(t *testing.T) {
	p, err := NewExternalProvider(staticSource("ecwd", nil), time.UTC)
	if err != nil {
		t.Fatalf("failed to build external provider: %v", err)
	}

	_, err = p.DescriptorByID(context.Background(), "nope")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for a miss, got %v", err)
	}
}

func TestExternalDescriptor_FieldMapping(t *testing.T) {
	raw := RawEvent{
		DescriptorID:  "ev-9",
		Summary:       "Repair Café Scarborough",
		StartDateTime: "2026-07-04 10:00:00",
		EndDateTime:   "2026-07-04 14:00:00",
		Status:        "tentative",
		Class:         "private",
		Categories:    []string{"Repair Café"},
		Location:      "Scarborough Civic Centre",
		Geo:           "43.7731,-79.2578",
	}
	p, err := NewExternalProvider(staticSource("ecwd", []RawEvent{raw}), time.UTC)
	if err != nil {
		t.Fatalf("failed to build external provider: %v", err)
	}

	d, err := p.DescriptorByID(context.Background(), "ev-9")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}

	if d.ProviderID() != "ecwd" || d.DescriptorID() != "ev-9" {
		t.Errorf("unexpected ids: %q %q", d.ProviderID(), d.DescriptorID())
	}
	// No UID in the raw record: synthesized from the two ids.
	if d.EventUID() != "ecwd:ev-9" {
		t.Errorf("unexpected uid %q", d.EventUID())
	}
	wantStart := time.Date(2026, 7, 4, 10, 0, 0, 0, time.UTC)
	if !d.StartDateTime().Equal(wantStart) {
		t.Errorf("unexpected start %v", d.StartDateTime())
	}
	if d.Status() != events.StatusTentative {
		t.Errorf("unexpected status %q", d.Status())
	}
	if d.Class() != events.ClassPrivate {
		t.Errorf("unexpected class %q", d.Class())
	}
	geo := d.Geo()
	if geo == nil || geo.Latitude != 43.7731 || geo.Longitude != -79.2578 {
		t.Errorf("unexpected geo %v", geo)
	}
	if d.Venue() != nil {
		t.Error("external descriptors never resolve venues")
	}
}

func TestExternalDescriptor_MalformedDatesDegrade(t *testing.T) {
	raw := RawEvent{
		DescriptorID:  "ev-1",
		Summary:       "Mystery",
		StartDateTime: "whenever",
		EndDateTime:   "",
	}
	p, err := NewExternalProvider(staticSource("ecwd", []RawEvent{raw}), time.UTC)
	if err != nil {
		t.Fatalf("failed to build external provider: %v", err)
	}

	d, err := p.DescriptorByID(context.Background(), "ev-1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if !d.StartDateTime().IsZero() || !d.EndDateTime().IsZero() {
		t.Error("malformed dates should degrade to zero times")
	}
}

func TestExternalDescriptor_RecurrenceRule(t *testing.T) {
	raw := RawEvent{
		DescriptorID:   "ev-2",
		Summary:        "Monthly Repair Café",
		StartDateTime:  "2026-07-04 10:00:00",
		EndDateTime:    "2026-07-04 14:00:00",
		Recurring:      true,
		RecurrenceRule: "FREQ=WEEKLY;COUNT=3",
	}
	p, err := NewExternalProvider(staticSource("ecwd", []RawEvent{raw}), time.UTC)
	if err != nil {
		t.Fatalf("failed to build external provider: %v", err)
	}

	d, err := p.DescriptorByID(context.Background(), "ev-2")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if !d.IsRecurring() || d.RecurrenceRule() == nil {
		t.Fatal("expected a recurring descriptor with a rule")
	}
	if occs := d.RecurrenceRule().RecurringEventDates(nil, nil); len(occs) != 3 {
		t.Errorf("expected 3 occurrences, got %d", len(occs))
	}
}

func TestExternalDescriptor_MalformedRuleFallsBackToSingleEvent(t *testing.T) {
	raw := RawEvent{
		DescriptorID:   "ev-3",
		Summary:        "Broken rule",
		StartDateTime:  "2026-07-04 10:00:00",
		EndDateTime:    "2026-07-04 14:00:00",
		Recurring:      true,
		RecurrenceRule: "FREQ=BOGUS",
	}
	p, err := NewExternalProvider(staticSource("ecwd", []RawEvent{raw}), time.UTC)
	if err != nil {
		t.Fatalf("failed to build external provider: %v", err)
	}

	d, err := p.DescriptorByID(context.Background(), "ev-3")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if d.IsRecurring() {
		t.Error("a descriptor with an unparseable rule must not report recurring")
	}
	if d.RecurrenceRule() != nil {
		t.Error("expected no rule after a parse failure")
	}
}
