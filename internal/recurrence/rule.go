// Package recurrence wraps the RFC 5545 recurrence engine behind the
// narrow interface the rest of the application needs: a rule plus
// inclusion/exclusion dates in, a finite sorted list of concrete
// (start, end) occurrence pairs out.
package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// maxOccurrences caps expansion of unbounded rules so a rule with no
// UNTIL/COUNT and no caller-supplied range cannot expand forever.
const maxOccurrences = 5000

// Occurrence is one concrete instance of a recurring series.
type Occurrence struct {
	Start time.Time
	End   time.Time
}

// Rule is a recurrence rule anchored at a defining first occurrence.
// The defining instance's start fixes the series phase and timezone;
// its end fixes the duration of every occurrence.
type Rule struct {
	rule  *rrule.RRule
	start time.Time
	end   time.Time

	inclusions []time.Time
	exclusions []time.Time
}

// New parses an RFC 5545 rule string (the RRULE value, e.g.
// "FREQ=WEEKLY;INTERVAL=2;BYDAY=SA") anchored at the defining
// occurrence [start, end]. Inclusion dates (RDATE) add occurrences;
// exclusion dates (EXDATE) remove them.
func New(text string, start, end time.Time, inclusions, exclusions []time.Time) (*Rule, error) {
	r, err := rrule.StrToRRule(text)
	if err != nil {
		return nil, fmt.Errorf("parse recurrence rule %q: %w", text, err)
	}
	r.DTStart(start)
	return &Rule{
		rule:       r,
		start:      start,
		end:        end,
		inclusions: inclusions,
		exclusions: exclusions,
	}, nil
}

// StartDateTime returns the defining occurrence's start.
func (r *Rule) StartDateTime() time.Time { return r.start }

// EndDateTime returns the defining occurrence's end.
func (r *Rule) EndDateTime() time.Time { return r.end }

// InclusionDates returns the RDATE list.
func (r *Rule) InclusionDates() []time.Time { return r.inclusions }

// ExclusionDates returns the EXDATE list.
func (r *Rule) ExclusionDates() []time.Time { return r.exclusions }

// Duration is the length of every generated occurrence: the defining
// end minus the defining start, floored at zero.
func (r *Rule) Duration() time.Duration {
	d := r.end.Sub(r.start)
	if d < 0 {
		return 0
	}
	return d
}

// RecurringEventDates expands the rule into its concrete occurrence
// pairs, sorted ascending by start and deduplicated. When rangeMin
// or rangeMax is supplied the result is clipped with
// boundary-spanning-inclusive semantics: an occurrence is kept when
// its end is at or after rangeMin and its start at or before
// rangeMax, so occurrences straddling a boundary always survive.
func (r *Rule) RecurringEventDates(rangeMin, rangeMax *time.Time) []Occurrence {
	set := rrule.Set{}
	set.RRule(r.rule)
	for _, in := range r.inclusions {
		set.RDate(in.In(r.start.Location()))
	}
	for _, ex := range r.exclusions {
		set.ExDate(ex.In(r.start.Location()))
	}

	dur := r.Duration()
	out := make([]Occurrence, 0)

	iter := set.Iterator()
	for {
		start, ok := iter()
		if !ok {
			break
		}
		if rangeMax != nil && start.After(*rangeMax) {
			// The iterator yields ascending starts; nothing later
			// can satisfy the upper bound.
			break
		}

		// Every occurrence inherits the defining duration, so an
		// RDATE entry can never yield an end before its start.
		end := start.Add(dur)

		if rangeMin != nil && end.Before(*rangeMin) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Start.Equal(start) {
			continue
		}

		out = append(out, Occurrence{Start: start, End: end})
		if len(out) >= maxOccurrences {
			break
		}
	}
	return out
}

// String renders the rule in its RRULE text form, without the
// DTSTART prefix the engine's full serialization carries. A DTEND
// token, which some producers leak into stored rule text, is
// stripped as well.
func (r *Rule) String() string {
	parts := strings.Split(r.rule.OrigOptions.RRuleString(), ";")
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.HasPrefix(strings.ToUpper(part), "DTEND") {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, ";")
}
