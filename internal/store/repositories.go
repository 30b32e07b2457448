package store

import "context"

// EventDescriptorRepository persists internally managed event
// descriptors.
type EventDescriptorRepository interface {
	Create(ctx context.Context, d EventDescriptor) (*EventDescriptor, error)
	GetByID(ctx context.Context, id int64) (*EventDescriptor, error)
	List(ctx context.Context) ([]EventDescriptor, error)
	// ListByCategory filters at the source: only descriptors whose
	// category list contains name (case-insensitive).
	ListByCategory(ctx context.Context, name string) ([]EventDescriptor, error)
	// ListByVenue filters at the source by venue id.
	ListByVenue(ctx context.Context, venueID int64) ([]EventDescriptor, error)
	Update(ctx context.Context, d EventDescriptor) error
	Delete(ctx context.Context, id int64) error
}

// VenueRepository manages venues.
type VenueRepository interface {
	Create(ctx context.Context, v Venue) (*Venue, error)
	GetByID(ctx context.Context, id int64) (*Venue, error)
	List(ctx context.Context) ([]Venue, error)
	Update(ctx context.Context, v Venue) error
	Delete(ctx context.Context, id int64) error
}

// CategoryRepository manages event category terms.
type CategoryRepository interface {
	Create(ctx context.Context, c Category) (*Category, error)
	GetByID(ctx context.Context, id int64) (*Category, error)
	// GetByName resolves a category by canonical or alternate name,
	// case-insensitively.
	GetByName(ctx context.Context, name string) (*Category, error)
	List(ctx context.Context) ([]Category, error)
	Delete(ctx context.Context, id int64) error
}

// ItemRegistrationRepository persists items brought for repair.
type ItemRegistrationRepository interface {
	Create(ctx context.Context, reg ItemRegistration) (*ItemRegistration, error)
	GetByID(ctx context.Context, id int64) (*ItemRegistration, error)
	ListByEventKey(ctx context.Context, eventKey string) ([]ItemRegistration, error)
	UpdateOutcome(ctx context.Context, id int64, outcome string) error
	Delete(ctx context.Context, id int64) error
}

// VolunteerRegistrationRepository persists volunteer signups.
type VolunteerRegistrationRepository interface {
	Create(ctx context.Context, reg VolunteerRegistration) (*VolunteerRegistration, error)
	ListByEventKey(ctx context.Context, eventKey string) ([]VolunteerRegistration, error)
	Delete(ctx context.Context, id int64) error
}
