package events

import (
	"sort"
	"strings"
	"time"
)

// SortOrder selects how a filtered collection is ordered.
type SortOrder int

const (
	SortNone SortOrder = iota
	SortByDateAscending
	SortByDateDescending
)

// Filter is a set of optional predicates plus an optional sort order
// applied over materialized event collections. The zero distinction
// between nil and empty slices is meaningful: a nil accept list means
// "accept any", an explicitly empty one means "accept none".
//
// A Filter with nothing set is the identity: it accepts everything
// and performs no sort.
type Filter struct {
	acceptClasses       []Class
	acceptStatuses      []Status
	acceptCategoryNames []string

	acceptMinDateTime *time.Time
	acceptMaxDateTime *time.Time

	// acceptBoundarySpanning controls whether events straddling a
	// date bound are kept. On by default.
	acceptBoundarySpanning bool

	searchString   string
	acceptAuthorID string

	sortOrder SortOrder
}

// NewFilter returns the identity filter.
func NewFilter() *Filter {
	return &Filter{acceptBoundarySpanning: true}
}

// SetAcceptClasses restricts accepted classes. nil accepts any class;
// an empty non-nil slice accepts none.
func (f *Filter) SetAcceptClasses(classes []Class) { f.acceptClasses = classes }

// SetAcceptStatuses restricts accepted statuses, with the same
// nil/empty semantics as SetAcceptClasses.
func (f *Filter) SetAcceptStatuses(statuses []Status) { f.acceptStatuses = statuses }

// SetAcceptCategoryNames restricts accepted category names
// (case-insensitive). While any category restriction is active,
// events with zero categories are rejected.
func (f *Filter) SetAcceptCategoryNames(names []string) { f.acceptCategoryNames = names }

// SetAcceptMinDateTime sets the lower date bound; nil clears it.
func (f *Filter) SetAcceptMinDateTime(t *time.Time) { f.acceptMinDateTime = t }

// SetAcceptMaxDateTime sets the upper date bound; nil clears it.
func (f *Filter) SetAcceptMaxDateTime(t *time.Time) { f.acceptMaxDateTime = t }

// SetAcceptBoundarySpanningEvents toggles whether events straddling
// a date bound are kept (default true).
func (f *Filter) SetAcceptBoundarySpanningEvents(accept bool) { f.acceptBoundarySpanning = accept }

// SetSearchString sets a case-insensitive substring match against
// each event's display label. Empty clears the predicate.
func (f *Filter) SetSearchString(s string) { f.searchString = s }

// SetAcceptEventAuthorID sets an exact author-id match. Empty clears
// the predicate.
func (f *Filter) SetAcceptEventAuthorID(id string) { f.acceptAuthorID = id }

// SetSortOrder sets the post-filter ordering.
func (f *Filter) SetSortOrder(order SortOrder) { f.sortOrder = order }

// ApplyFilter returns a new collection holding the events accepted
// by every active predicate, ordered per the configured sort. The
// input slice is never mutated.
func (f *Filter) ApplyFilter(evs []*Event) []*Event {
	// An explicitly empty accept set in any dimension means "accept
	// nothing": short-circuit before touching the collection.
	if (f.acceptClasses != nil && len(f.acceptClasses) == 0) ||
		(f.acceptStatuses != nil && len(f.acceptStatuses) == 0) ||
		(f.acceptCategoryNames != nil && len(f.acceptCategoryNames) == 0) {
		return []*Event{}
	}

	result := make([]*Event, 0, len(evs))
	for _, ev := range evs {
		if f.accepts(ev) {
			result = append(result, ev)
		}
	}

	switch f.sortOrder {
	case SortByDateAscending:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Start.Before(result[j].Start)
		})
	case SortByDateDescending:
		sort.SliceStable(result, func(i, j int) bool {
			return result[j].Start.Before(result[i].Start)
		})
	}
	return result
}

func (f *Filter) accepts(ev *Event) bool {
	if f.acceptClasses != nil && !containsClass(f.acceptClasses, ev.Class()) {
		return false
	}
	if f.acceptStatuses != nil && !containsStatus(f.acceptStatuses, ev.Status()) {
		return false
	}
	if f.acceptCategoryNames != nil && !f.categoryOverlap(ev) {
		return false
	}
	if !f.acceptsDateRange(ev) {
		return false
	}
	if f.searchString != "" &&
		!strings.Contains(strings.ToLower(ev.Label()), strings.ToLower(f.searchString)) {
		return false
	}
	if f.acceptAuthorID != "" && ev.AuthorID() != f.acceptAuthorID {
		return false
	}
	return true
}

// categoryOverlap requires a non-empty intersection between the
// event's categories and the accepted set. An event with zero
// categories fails whenever a category restriction is active.
func (f *Filter) categoryOverlap(ev *Event) bool {
	names := ev.CategoryNames()
	if len(names) == 0 {
		return false
	}
	for _, name := range names {
		for _, accepted := range f.acceptCategoryNames {
			if strings.EqualFold(name, accepted) {
				return true
			}
		}
	}
	return false
}

// acceptsDateRange applies the min/max bounds. With boundary
// spanning on (the default) an event is kept when its end is at or
// after min and its start at or before max, so events straddling a
// bound survive. With spanning off both the start and end must sit
// inside the bounds. An event missing the date an active bound needs
// is rejected, never defaulted to "pass".
func (f *Filter) acceptsDateRange(ev *Event) bool {
	if f.acceptMinDateTime != nil {
		cmp := ev.End
		if !f.acceptBoundarySpanning {
			cmp = ev.Start
		}
		if cmp.IsZero() || cmp.Before(*f.acceptMinDateTime) {
			return false
		}
	}
	if f.acceptMaxDateTime != nil {
		cmp := ev.Start
		if !f.acceptBoundarySpanning {
			cmp = ev.End
		}
		if cmp.IsZero() || cmp.After(*f.acceptMaxDateTime) {
			return false
		}
	}
	return true
}

func containsClass(list []Class, c Class) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}

func containsStatus(list []Status, s Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
