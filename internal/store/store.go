package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store aggregates repositories backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool

	EventDescriptors       EventDescriptorRepository
	Venues                 VenueRepository
	Categories             CategoryRepository
	ItemRegistrations      ItemRegistrationRepository
	VolunteerRegistrations VolunteerRegistrationRepository
}

// New wires concrete repository implementations with a shared
// connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:                   pool,
		EventDescriptors:       &eventDescriptorRepo{pool: pool},
		Venues:                 &venueRepo{pool: pool},
		Categories:             &categoryRepo{pool: pool},
		ItemRegistrations:      &itemRegistrationRepo{pool: pool},
		VolunteerRegistrations: &volunteerRegistrationRepo{pool: pool},
	}
}

// HealthCheck verifies that the underlying database is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	defer observeDB(ctx, "db.healthcheck")()
	return s.pool.Ping(ctx)
}
