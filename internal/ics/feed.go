// Package ics renders the iCalendar feed and imports uploaded
// iCalendar payloads into internal event descriptors.
package ics

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/stokes-dk/reg-man-rc-sub001/internal/events"
)

const (
	prodID = "-//reg-man-rc//Repair Cafe Events//EN"

	// utcLayout is the iCalendar UTC date-time form.
	utcLayout = "20060102T150405Z"

	// foldLimit is the maximum line length in octets before folding.
	foldLimit = 75
)

// WriteFeed renders the events as a VCALENDAR with one VEVENT per
// event instance. now is the DTSTAMP applied to every component.
func WriteFeed(w io.Writer, evs []*events.Event, calendarName string, now time.Time) error {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + prodID,
		"CALSCALE:GREGORIAN",
	}
	if calendarName != "" {
		lines = append(lines, "X-WR-CALNAME:"+EscapeText(calendarName))
	}

	for _, ev := range evs {
		lines = append(lines, eventComponent(ev, now)...)
	}
	lines = append(lines, "END:VCALENDAR")

	for _, line := range lines {
		if _, err := io.WriteString(w, FoldLine(line)+"\r\n"); err != nil {
			return err
		}
	}
	return nil
}

func eventComponent(ev *events.Event, now time.Time) []string {
	lines := []string{"BEGIN:VEVENT"}

	uid := ""
	if ev.Descriptor != nil {
		uid = ev.Descriptor.EventUID()
	}
	if uid == "" {
		uid = ev.Key.String()
	}
	lines = append(lines, "UID:"+EscapeText(uid))
	lines = append(lines, "DTSTAMP:"+now.UTC().Format(utcLayout))

	if !ev.Start.IsZero() {
		lines = append(lines, "DTSTART:"+ev.Start.UTC().Format(utcLayout))
	}
	if !ev.End.IsZero() {
		lines = append(lines, "DTEND:"+ev.End.UTC().Format(utcLayout))
	}

	// One VEVENT per expanded occurrence: recurring instances are
	// distinguished by RECURRENCE-ID rather than carrying the RRULE.
	if ev.IsRecurrenceInstance() && !ev.Start.IsZero() {
		lines = append(lines, "RECURRENCE-ID:"+ev.Start.UTC().Format(utcLayout))
	}

	lines = append(lines, "TRANSP:OPAQUE")
	lines = append(lines, "SUMMARY:"+EscapeText(ev.Summary()))
	lines = append(lines, "CLASS:"+string(ev.Class()))
	lines = append(lines, "STATUS:"+string(ev.Status()))

	if ev.Descriptor != nil {
		if loc := ev.Descriptor.Location(); loc != "" {
			lines = append(lines, "LOCATION:"+EscapeText(loc))
		}
		if desc := ev.Descriptor.Description(); desc != "" {
			lines = append(lines, "DESCRIPTION:"+EscapeText(desc))
		}
		if geo := ev.Descriptor.Geo(); geo != nil {
			lines = append(lines, fmt.Sprintf("GEO:%g;%g", geo.Latitude, geo.Longitude))
		}
		if cats := ev.Descriptor.CategoryNames(); len(cats) > 0 {
			escaped := make([]string, len(cats))
			for i, c := range cats {
				escaped[i] = EscapeText(c)
			}
			lines = append(lines, "CATEGORIES:"+strings.Join(escaped, ","))
		}
		if u := ev.Descriptor.PageURL(); u != "" {
			lines = append(lines, "URL:"+u)
		}
	}

	lines = append(lines, "END:VEVENT")
	return lines
}

// EscapeText escapes a text property value: backslash, semicolon and
// comma are backslash-escaped, line breaks become a literal \n.
func EscapeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// FoldLine folds a content line at 75 octets, breaking on a
// character boundary so a multi-byte rune is never split.
// Continuation lines begin with a single space that counts toward
// their own 75-octet budget.
func FoldLine(line string) string {
	if len(line) <= foldLimit {
		return line
	}
	var b strings.Builder
	count := 0
	for _, r := range line {
		size := utf8.RuneLen(r)
		if count+size > foldLimit {
			b.WriteString("\r\n ")
			count = 1
		}
		b.WriteRune(r)
		count += size
	}
	return b.String()
}
