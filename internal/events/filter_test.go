package events

import (
	"testing"
	"time"
)

func testEvent(summary string, start, end time.Time, mut func(*fakeDescriptor)) *Event {
	d := &fakeDescriptor{
		summary: summary,
		status:  StatusConfirmed,
		class:   ClassPublic,
		start:   start,
		end:     end,
	}
	if mut != nil {
		mut(d)
	}
	return &Event{
		Key:        NewKey(start, summary, InternalProviderID, time.UTC),
		Descriptor: d,
		Start:      start,
		End:        end,
	}
}

func day(d int) time.Time {
	return time.Date(2026, 7, d, 18, 0, 0, 0, time.UTC)
}

func TestFilter_IdentityAcceptsEverything(t *testing.T) {
	evs := []*Event{
		testEvent("a", day(1), day(1).Add(3*time.Hour), nil),
		testEvent("b", day(2), day(2).Add(3*time.Hour), func(d *fakeDescriptor) { d.class = ClassPrivate }),
		testEvent("c", time.Time{}, time.Time{}, nil),
	}

	got := NewFilter().ApplyFilter(evs)
	if len(got) != len(evs) {
		t.Fatalf("identity filter dropped events: got %d of %d", len(got), len(evs))
	}
}

func TestFilter_NilVersusEmptyAcceptSets(t *testing.T) {
	evs := []*Event{testEvent("a", day(1), day(1).Add(time.Hour), nil)}

	f := NewFilter()
	f.SetAcceptClasses(nil)
	if got := f.ApplyFilter(evs); len(got) != 1 {
		t.Errorf("nil class set should accept any class, got %d events", len(got))
	}

	f = NewFilter()
	f.SetAcceptClasses([]Class{})
	if got := f.ApplyFilter(evs); len(got) != 0 {
		t.Errorf("empty class set should accept nothing, got %d events", len(got))
	}

	f = NewFilter()
	f.SetAcceptStatuses([]Status{})
	if got := f.ApplyFilter(evs); len(got) != 0 {
		t.Errorf("empty status set should accept nothing, got %d events", len(got))
	}

	f = NewFilter()
	f.SetAcceptCategoryNames([]string{})
	if got := f.ApplyFilter(evs); len(got) != 0 {
		t.Errorf("empty category set should accept nothing, got %d events", len(got))
	}
}

func TestFilter_ClassAndStatus(t *testing.T) {
	evs := []*Event{
		testEvent("public", day(1), day(1).Add(time.Hour), nil),
		testEvent("private", day(2), day(2).Add(time.Hour), func(d *fakeDescriptor) { d.class = ClassPrivate }),
		testEvent("tentative", day(3), day(3).Add(time.Hour), func(d *fakeDescriptor) { d.status = StatusTentative }),
	}

	f := NewFilter()
	f.SetAcceptClasses([]Class{ClassPrivate})
	got := f.ApplyFilter(evs)
	if len(got) != 1 || got[0].Summary() != "private" {
		t.Errorf("class filter: expected only the private event, got %d", len(got))
	}

	f = NewFilter()
	f.SetAcceptStatuses([]Status{StatusConfirmed})
	got = f.ApplyFilter(evs)
	if len(got) != 2 {
		t.Errorf("status filter: expected 2 confirmed events, got %d", len(got))
	}
}

func TestFilter_StatusUsesOccurrenceDate(t *testing.T) {
	start := day(10)
	ev := testEvent("cancelled day", start, start.Add(time.Hour), func(d *fakeDescriptor) {
		d.cancellation = []time.Time{time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)}
	})

	f := NewFilter()
	f.SetAcceptStatuses([]Status{StatusConfirmed})
	if got := f.ApplyFilter([]*Event{ev}); len(got) != 0 {
		t.Error("an occurrence on a cancellation day should not pass a CONFIRMED-only filter")
	}

	f = NewFilter()
	f.SetAcceptStatuses([]Status{StatusCancelled})
	if got := f.ApplyFilter([]*Event{ev}); len(got) != 1 {
		t.Error("an occurrence on a cancellation day should pass a CANCELLED-only filter")
	}
}

func TestFilter_CategoryOverlap(t *testing.T) {
	evs := []*Event{
		testEvent("repair", day(1), day(1).Add(time.Hour), func(d *fakeDescriptor) {
			d.categories = []string{"Repair Café"}
		}),
		testEvent("both", day(2), day(2).Add(time.Hour), func(d *fakeDescriptor) {
			d.categories = []string{"Repair Café", "Mini Event"}
		}),
		testEvent("uncategorized", day(3), day(3).Add(time.Hour), nil),
	}

	f := NewFilter()
	f.SetAcceptCategoryNames([]string{"mini event"})
	got := f.ApplyFilter(evs)
	if len(got) != 1 || got[0].Summary() != "both" {
		t.Fatalf("expected only the Mini Event match, got %d", len(got))
	}

	// An event with no categories never passes an active category
	// restriction, even a broad one.
	f = NewFilter()
	f.SetAcceptCategoryNames([]string{"Repair Café", "Mini Event", "Volunteer Appreciation"})
	for _, ev := range f.ApplyFilter(evs) {
		if ev.Summary() == "uncategorized" {
			t.Error("uncategorized event passed a category-restricted filter")
		}
	}
}

func TestFilter_DateRangeBoundarySpanning(t *testing.T) {
	// Event runs July 4 18:00 to July 5 02:00.
	spanning := testEvent("overnight", day(4), day(4).Add(8*time.Hour), nil)
	min := time.Date(2026, 7, 5, 0, 0, 0, 0, time.UTC)

	f := NewFilter()
	f.SetAcceptMinDateTime(&min)
	if got := f.ApplyFilter([]*Event{spanning}); len(got) != 1 {
		t.Error("spanning on: an event ending after min should be kept")
	}

	f.SetAcceptBoundarySpanningEvents(false)
	if got := f.ApplyFilter([]*Event{spanning}); len(got) != 0 {
		t.Error("spanning off: an event starting before min should be dropped")
	}

	max := time.Date(2026, 7, 4, 20, 0, 0, 0, time.UTC)
	f = NewFilter()
	f.SetAcceptMaxDateTime(&max)
	if got := f.ApplyFilter([]*Event{spanning}); len(got) != 1 {
		t.Error("spanning on: an event starting before max should be kept")
	}

	f.SetAcceptBoundarySpanningEvents(false)
	if got := f.ApplyFilter([]*Event{spanning}); len(got) != 0 {
		t.Error("spanning off: an event ending after max should be dropped")
	}
}

func TestFilter_DateBoundsRejectDatelessEvents(t *testing.T) {
	dateless := testEvent("dateless", time.Time{}, time.Time{}, nil)
	min := day(1)

	f := NewFilter()
	f.SetAcceptMinDateTime(&min)
	if got := f.ApplyFilter([]*Event{dateless}); len(got) != 0 {
		t.Error("an event without dates must not pass an active date bound")
	}
}

func TestFilter_Search(t *testing.T) {
	evs := []*Event{
		testEvent("Repair Café Toronto", day(1), day(1).Add(time.Hour), nil),
		testEvent("Mini Event", day(2), day(2).Add(time.Hour), nil),
	}

	f := NewFilter()
	f.SetSearchString("toronto")
	got := f.ApplyFilter(evs)
	if len(got) != 1 || got[0].Summary() != "Repair Café Toronto" {
		t.Errorf("search: expected the Toronto event, got %d", len(got))
	}

	// The label includes the formatted date, so date text is
	// searchable too.
	f = NewFilter()
	f.SetSearchString("jul 2, 2026")
	got = f.ApplyFilter(evs)
	if len(got) != 1 || got[0].Summary() != "Mini Event" {
		t.Errorf("date search: expected the July 2 event, got %d", len(got))
	}
}

func TestFilter_Author(t *testing.T) {
	evs := []*Event{
		testEvent("mine", day(1), day(1).Add(time.Hour), func(d *fakeDescriptor) { d.authorID = "7" }),
		testEvent("theirs", day(2), day(2).Add(time.Hour), func(d *fakeDescriptor) { d.authorID = "8" }),
	}

	f := NewFilter()
	f.SetAcceptEventAuthorID("7")
	got := f.ApplyFilter(evs)
	if len(got) != 1 || got[0].Summary() != "mine" {
		t.Errorf("author filter: expected 1 event by author 7, got %d", len(got))
	}
}

func TestFilter_SortStability(t *testing.T) {
	// b and c share a start; their input order must survive the sort.
	a := testEvent("a", day(3), day(3).Add(time.Hour), nil)
	b := testEvent("b", day(1), day(1).Add(time.Hour), nil)
	c := testEvent("c", day(1), day(1).Add(2*time.Hour), nil)

	f := NewFilter()
	f.SetSortOrder(SortByDateAscending)
	got := f.ApplyFilter([]*Event{a, b, c})
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	if got[0].Summary() != "b" || got[1].Summary() != "c" || got[2].Summary() != "a" {
		t.Errorf("ascending sort: got %s %s %s", got[0].Summary(), got[1].Summary(), got[2].Summary())
	}

	f.SetSortOrder(SortByDateDescending)
	got = f.ApplyFilter([]*Event{a, b, c})
	if got[0].Summary() != "a" || got[1].Summary() != "b" || got[2].Summary() != "c" {
		t.Errorf("descending sort: got %s %s %s", got[0].Summary(), got[1].Summary(), got[2].Summary())
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	a := testEvent("a", day(2), day(2).Add(time.Hour), nil)
	b := testEvent("b", day(1), day(1).Add(time.Hour), nil)
	in := []*Event{a, b}

	f := NewFilter()
	f.SetSortOrder(SortByDateAscending)
	f.ApplyFilter(in)

	if in[0] != a || in[1] != b {
		t.Error("ApplyFilter reordered its input slice")
	}
}
