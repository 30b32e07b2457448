package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventDescriptorColumns = `id, uid, summary, description, author_id,
	venue_id, location, latitude, longitude,
	start_time, end_time,
	recurring, recurrence_rule, inclusion_dates, exclusion_dates, cancellation_dates,
	status, class, categories, fixer_stations, non_repair,
	created_at, updated_at`

// eventDescriptorRepo implements EventDescriptorRepository.
type eventDescriptorRepo struct {
	pool *pgxpool.Pool
}

func scanEventDescriptor(row pgx.Row) (*EventDescriptor, error) {
	var d EventDescriptor
	err := row.Scan(
		&d.ID, &d.UID, &d.Summary, &d.Description, &d.AuthorID,
		&d.VenueID, &d.Location, &d.Latitude, &d.Longitude,
		&d.StartTime, &d.EndTime,
		&d.Recurring, &d.RecurrenceRule, &d.InclusionDates, &d.ExclusionDates, &d.CancellationDates,
		&d.Status, &d.Class, &d.Categories, &d.FixerStations, &d.NonRepair,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *eventDescriptorRepo) Create(ctx context.Context, d EventDescriptor) (*EventDescriptor, error) {
	defer observeDB(ctx, "db.event_descriptors.create")()
	const q = `INSERT INTO event_descriptors (
		uid, summary, description, author_id,
		venue_id, location, latitude, longitude,
		start_time, end_time,
		recurring, recurrence_rule, inclusion_dates, exclusion_dates, cancellation_dates,
		status, class, categories, fixer_stations, non_repair
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
	RETURNING ` + eventDescriptorColumns
	row := r.pool.QueryRow(ctx, q,
		d.UID, d.Summary, d.Description, d.AuthorID,
		d.VenueID, d.Location, d.Latitude, d.Longitude,
		d.StartTime, d.EndTime,
		d.Recurring, d.RecurrenceRule, d.InclusionDates, d.ExclusionDates, d.CancellationDates,
		d.Status, d.Class, d.Categories, d.FixerStations, d.NonRepair,
	)
	created, err := scanEventDescriptor(row)
	if err != nil {
		return nil, fmt.Errorf("create event descriptor: %w", err)
	}
	return created, nil
}

func (r *eventDescriptorRepo) GetByID(ctx context.Context, id int64) (*EventDescriptor, error) {
	defer observeDB(ctx, "db.event_descriptors.get_by_id")()
	const q = `SELECT ` + eventDescriptorColumns + ` FROM event_descriptors WHERE id=$1`
	return scanEventDescriptor(r.pool.QueryRow(ctx, q, id))
}

func (r *eventDescriptorRepo) List(ctx context.Context) ([]EventDescriptor, error) {
	defer observeDB(ctx, "db.event_descriptors.list")()
	const q = `SELECT ` + eventDescriptorColumns + ` FROM event_descriptors ORDER BY start_time`
	return r.queryMany(ctx, q)
}

func (r *eventDescriptorRepo) ListByCategory(ctx context.Context, name string) ([]EventDescriptor, error) {
	defer observeDB(ctx, "db.event_descriptors.list_by_category")()
	const q = `SELECT ` + eventDescriptorColumns + ` FROM event_descriptors
		WHERE EXISTS (SELECT 1 FROM unnest(categories) c WHERE lower(c) = lower($1))
		ORDER BY start_time`
	return r.queryMany(ctx, q, name)
}

func (r *eventDescriptorRepo) ListByVenue(ctx context.Context, venueID int64) ([]EventDescriptor, error) {
	defer observeDB(ctx, "db.event_descriptors.list_by_venue")()
	const q = `SELECT ` + eventDescriptorColumns + ` FROM event_descriptors
		WHERE venue_id=$1 ORDER BY start_time`
	return r.queryMany(ctx, q, venueID)
}

func (r *eventDescriptorRepo) queryMany(ctx context.Context, q string, args ...any) ([]EventDescriptor, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query event descriptors: %w", err)
	}
	defer rows.Close()

	var out []EventDescriptor
	for rows.Next() {
		d, err := scanEventDescriptor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (r *eventDescriptorRepo) Update(ctx context.Context, d EventDescriptor) error {
	defer observeDB(ctx, "db.event_descriptors.update")()
	const q = `UPDATE event_descriptors SET
		summary=$2, description=$3, author_id=$4,
		venue_id=$5, location=$6, latitude=$7, longitude=$8,
		start_time=$9, end_time=$10,
		recurring=$11, recurrence_rule=$12, inclusion_dates=$13, exclusion_dates=$14, cancellation_dates=$15,
		status=$16, class=$17, categories=$18, fixer_stations=$19, non_repair=$20,
		updated_at=NOW()
	WHERE id=$1`
	tag, err := r.pool.Exec(ctx, q,
		d.ID, d.Summary, d.Description, d.AuthorID,
		d.VenueID, d.Location, d.Latitude, d.Longitude,
		d.StartTime, d.EndTime,
		d.Recurring, d.RecurrenceRule, d.InclusionDates, d.ExclusionDates, d.CancellationDates,
		d.Status, d.Class, d.Categories, d.FixerStations, d.NonRepair,
	)
	if err != nil {
		return fmt.Errorf("update event descriptor %d: %w", d.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *eventDescriptorRepo) Delete(ctx context.Context, id int64) error {
	defer observeDB(ctx, "db.event_descriptors.delete")()
	tag, err := r.pool.Exec(ctx, `DELETE FROM event_descriptors WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete event descriptor %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// venueRepo implements VenueRepository.
type venueRepo struct {
	pool *pgxpool.Pool
}

const venueColumns = `id, name, location, latitude, longitude, description, created_at`

func scanVenue(row pgx.Row) (*Venue, error) {
	var v Venue
	err := row.Scan(&v.ID, &v.Name, &v.Location, &v.Latitude, &v.Longitude, &v.Description, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *venueRepo) Create(ctx context.Context, v Venue) (*Venue, error) {
	defer observeDB(ctx, "db.venues.create")()
	const q = `INSERT INTO venues (name, location, latitude, longitude, description)
		VALUES ($1,$2,$3,$4,$5) RETURNING ` + venueColumns
	created, err := scanVenue(r.pool.QueryRow(ctx, q, v.Name, v.Location, v.Latitude, v.Longitude, v.Description))
	if err != nil {
		return nil, fmt.Errorf("create venue: %w", err)
	}
	return created, nil
}

func (r *venueRepo) GetByID(ctx context.Context, id int64) (*Venue, error) {
	defer observeDB(ctx, "db.venues.get_by_id")()
	return scanVenue(r.pool.QueryRow(ctx, `SELECT `+venueColumns+` FROM venues WHERE id=$1`, id))
}

func (r *venueRepo) List(ctx context.Context) ([]Venue, error) {
	defer observeDB(ctx, "db.venues.list")()
	rows, err := r.pool.Query(ctx, `SELECT `+venueColumns+` FROM venues ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	defer rows.Close()

	var out []Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func (r *venueRepo) Update(ctx context.Context, v Venue) error {
	defer observeDB(ctx, "db.venues.update")()
	const q = `UPDATE venues SET name=$2, location=$3, latitude=$4, longitude=$5, description=$6 WHERE id=$1`
	tag, err := r.pool.Exec(ctx, q, v.ID, v.Name, v.Location, v.Latitude, v.Longitude, v.Description)
	if err != nil {
		return fmt.Errorf("update venue %d: %w", v.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *venueRepo) Delete(ctx context.Context, id int64) error {
	defer observeDB(ctx, "db.venues.delete")()
	tag, err := r.pool.Exec(ctx, `DELETE FROM venues WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete venue %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// categoryRepo implements CategoryRepository.
type categoryRepo struct {
	pool *pgxpool.Pool
}

func scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.AlternateNames)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) Create(ctx context.Context, c Category) (*Category, error) {
	defer observeDB(ctx, "db.categories.create")()
	const q = `INSERT INTO categories (name, alternate_names) VALUES ($1,$2)
		RETURNING id, name, alternate_names`
	created, err := scanCategory(r.pool.QueryRow(ctx, q, c.Name, c.AlternateNames))
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

func (r *categoryRepo) GetByID(ctx context.Context, id int64) (*Category, error) {
	defer observeDB(ctx, "db.categories.get_by_id")()
	return scanCategory(r.pool.QueryRow(ctx,
		`SELECT id, name, alternate_names FROM categories WHERE id=$1`, id))
}

func (r *categoryRepo) GetByName(ctx context.Context, name string) (*Category, error) {
	defer observeDB(ctx, "db.categories.get_by_name")()
	const q = `SELECT id, name, alternate_names FROM categories
		WHERE lower(name) = lower($1)
		   OR EXISTS (SELECT 1 FROM unnest(alternate_names) a WHERE lower(a) = lower($1))`
	return scanCategory(r.pool.QueryRow(ctx, q, name))
}

func (r *categoryRepo) List(ctx context.Context) ([]Category, error) {
	defer observeDB(ctx, "db.categories.list")()
	rows, err := r.pool.Query(ctx, `SELECT id, name, alternate_names FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *categoryRepo) Delete(ctx context.Context, id int64) error {
	defer observeDB(ctx, "db.categories.delete")()
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// itemRegistrationRepo implements ItemRegistrationRepository.
type itemRegistrationRepo struct {
	pool *pgxpool.Pool
}

const itemRegColumns = `id, event_key, item_description, item_type, fixer_station, outcome, created_at`

func scanItemRegistration(row pgx.Row) (*ItemRegistration, error) {
	var reg ItemRegistration
	err := row.Scan(&reg.ID, &reg.EventKey, &reg.ItemDescription, &reg.ItemType,
		&reg.FixerStation, &reg.Outcome, &reg.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &reg, nil
}

func (r *itemRegistrationRepo) Create(ctx context.Context, reg ItemRegistration) (*ItemRegistration, error) {
	defer observeDB(ctx, "db.item_registrations.create")()
	const q = `INSERT INTO item_registrations (event_key, item_description, item_type, fixer_station, outcome)
		VALUES ($1,$2,$3,$4,$5) RETURNING ` + itemRegColumns
	created, err := scanItemRegistration(r.pool.QueryRow(ctx, q,
		reg.EventKey, reg.ItemDescription, reg.ItemType, reg.FixerStation, reg.Outcome))
	if err != nil {
		return nil, fmt.Errorf("create item registration: %w", err)
	}
	return created, nil
}

func (r *itemRegistrationRepo) GetByID(ctx context.Context, id int64) (*ItemRegistration, error) {
	defer observeDB(ctx, "db.item_registrations.get_by_id")()
	return scanItemRegistration(r.pool.QueryRow(ctx,
		`SELECT `+itemRegColumns+` FROM item_registrations WHERE id=$1`, id))
}

func (r *itemRegistrationRepo) ListByEventKey(ctx context.Context, eventKey string) ([]ItemRegistration, error) {
	defer observeDB(ctx, "db.item_registrations.list_by_event")()
	rows, err := r.pool.Query(ctx,
		`SELECT `+itemRegColumns+` FROM item_registrations WHERE event_key=$1 ORDER BY id`, eventKey)
	if err != nil {
		return nil, fmt.Errorf("list item registrations: %w", err)
	}
	defer rows.Close()

	var out []ItemRegistration
	for rows.Next() {
		reg, err := scanItemRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *reg)
	}
	return out, rows.Err()
}

func (r *itemRegistrationRepo) UpdateOutcome(ctx context.Context, id int64, outcome string) error {
	defer observeDB(ctx, "db.item_registrations.update_outcome")()
	tag, err := r.pool.Exec(ctx, `UPDATE item_registrations SET outcome=$2 WHERE id=$1`, id, outcome)
	if err != nil {
		return fmt.Errorf("update item registration %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *itemRegistrationRepo) Delete(ctx context.Context, id int64) error {
	defer observeDB(ctx, "db.item_registrations.delete")()
	tag, err := r.pool.Exec(ctx, `DELETE FROM item_registrations WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete item registration %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// volunteerRegistrationRepo implements VolunteerRegistrationRepository.
type volunteerRegistrationRepo struct {
	pool *pgxpool.Pool
}

const volunteerRegColumns = `id, event_key, volunteer_name, volunteer_email, fixer_station, apprentice, roles, created_at`

func scanVolunteerRegistration(row pgx.Row) (*VolunteerRegistration, error) {
	var reg VolunteerRegistration
	err := row.Scan(&reg.ID, &reg.EventKey, &reg.VolunteerName, &reg.VolunteerEmail,
		&reg.FixerStation, &reg.Apprentice, &reg.Roles, &reg.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &reg, nil
}

func (r *volunteerRegistrationRepo) Create(ctx context.Context, reg VolunteerRegistration) (*VolunteerRegistration, error) {
	defer observeDB(ctx, "db.volunteer_registrations.create")()
	const q = `INSERT INTO volunteer_registrations (event_key, volunteer_name, volunteer_email, fixer_station, apprentice, roles)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING ` + volunteerRegColumns
	created, err := scanVolunteerRegistration(r.pool.QueryRow(ctx, q,
		reg.EventKey, reg.VolunteerName, reg.VolunteerEmail, reg.FixerStation, reg.Apprentice, reg.Roles))
	if err != nil {
		return nil, fmt.Errorf("create volunteer registration: %w", err)
	}
	return created, nil
}

func (r *volunteerRegistrationRepo) ListByEventKey(ctx context.Context, eventKey string) ([]VolunteerRegistration, error) {
	defer observeDB(ctx, "db.volunteer_registrations.list_by_event")()
	rows, err := r.pool.Query(ctx,
		`SELECT `+volunteerRegColumns+` FROM volunteer_registrations WHERE event_key=$1 ORDER BY id`, eventKey)
	if err != nil {
		return nil, fmt.Errorf("list volunteer registrations: %w", err)
	}
	defer rows.Close()

	var out []VolunteerRegistration
	for rows.Next() {
		reg, err := scanVolunteerRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *reg)
	}
	return out, rows.Err()
}

func (r *volunteerRegistrationRepo) Delete(ctx context.Context, id int64) error {
	defer observeDB(ctx, "db.volunteer_registrations.delete")()
	tag, err := r.pool.Exec(ctx, `DELETE FROM volunteer_registrations WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete volunteer registration %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
