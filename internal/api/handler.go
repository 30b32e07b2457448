// Package api implements the HTTP JSON API and the iCalendar feed.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stokes-dk/reg-man-rc-sub001/internal/config"
	"github.com/stokes-dk/reg-man-rc-sub001/internal/events"
	"github.com/stokes-dk/reg-man-rc-sub001/internal/provider"
	"github.com/stokes-dk/reg-man-rc-sub001/internal/store"
)

// Handler serves the API routes.
type Handler struct {
	cfg     *config.Config
	store   *store.Store
	catalog *provider.Catalog
}

// NewHandler wires the API handler.
func NewHandler(cfg *config.Config, st *store.Store, catalog *provider.Catalog) *Handler {
	return &Handler{cfg: cfg, store: st, catalog: catalog}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readAll(r io.Reader) ([]byte, error) {
	return io.ReadAll(r)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// keyFromRequest rebuilds an event key from the request's query
// arguments (rc-date, rc-evt, optional rc-prv).
func keyFromRequest(r *http.Request) (events.Key, bool) {
	q := r.URL.Query()
	args := map[string]string{}
	for _, name := range []string{events.QueryArgEventDate, events.QueryArgEventID, events.QueryArgEventProvider} {
		if v := q.Get(name); v != "" {
			args[name] = v
		}
	}
	return events.KeyFromQueryArgs(args)
}

// eventJSON is the wire form of one event instance.
type eventJSON struct {
	Key         events.Key  `json:"key"`
	Summary     string      `json:"summary"`
	Start       string      `json:"start,omitempty"`
	End         string      `json:"end,omitempty"`
	Status      string      `json:"status"`
	Class       string      `json:"class"`
	Categories  []string    `json:"categories,omitempty"`
	Location    string      `json:"location,omitempty"`
	Geo         *events.Geo `json:"geo,omitempty"`
	Provider    string      `json:"provider"`
	IsRecurring bool        `json:"is_recurring"`
	IsNotFound  bool        `json:"is_not_found,omitempty"`
	URL         string      `json:"url,omitempty"`
}

func toEventJSON(ev *events.Event) eventJSON {
	out := eventJSON{
		Key:      ev.Key,
		Summary:  ev.Summary(),
		Status:   string(ev.Status()),
		Class:    string(ev.Class()),
		Provider: ev.Key.ProviderID,
	}
	if !ev.Start.IsZero() {
		out.Start = ev.Start.Format(time.RFC3339)
	}
	if !ev.End.IsZero() {
		out.End = ev.End.Format(time.RFC3339)
	}
	if d := ev.Descriptor; d != nil {
		out.Categories = d.CategoryNames()
		out.Location = d.Location()
		out.Geo = d.Geo()
		out.IsRecurring = d.IsRecurring()
		out.IsNotFound = events.IsPlaceholder(d)
		out.URL = d.PageURL()
	}
	return out
}

// filterFromQuery translates list query parameters into an event
// filter plus an expansion range. An explicitly empty multi-value
// parameter (e.g. "class=") means "accept none" in that dimension,
// matching the filter's empty-set semantics.
func (h *Handler) filterFromQuery(r *http.Request) (*events.Filter, *time.Time, *time.Time, error) {
	q := r.URL.Query()
	f := events.NewFilter()

	if raw, ok := queryList(q["class"]); ok {
		classes := make([]events.Class, 0, len(raw))
		for _, v := range raw {
			classes = append(classes, events.ParseClass(v))
		}
		f.SetAcceptClasses(classes)
	}
	if raw, ok := queryList(q["status"]); ok {
		statuses := make([]events.Status, 0, len(raw))
		for _, v := range raw {
			statuses = append(statuses, events.ParseStatus(v))
		}
		f.SetAcceptStatuses(statuses)
	}
	if raw, ok := queryList(q["category"]); ok {
		f.SetAcceptCategoryNames(raw)
	}

	var rangeMin, rangeMax *time.Time
	if v := q.Get("from"); v != "" {
		t, err := h.parseQueryTime(v)
		if err != nil {
			return nil, nil, nil, err
		}
		rangeMin = &t
		f.SetAcceptMinDateTime(&t)
	}
	if v := q.Get("to"); v != "" {
		t, err := h.parseQueryTime(v)
		if err != nil {
			return nil, nil, nil, err
		}
		rangeMax = &t
		f.SetAcceptMaxDateTime(&t)
	}
	if v := q.Get("spanning"); v != "" {
		f.SetAcceptBoundarySpanningEvents(v != "false" && v != "0")
	}
	f.SetSearchString(q.Get("q"))
	f.SetAcceptEventAuthorID(q.Get("author"))

	switch q.Get("sort") {
	case "", "asc":
		f.SetSortOrder(events.SortByDateAscending)
	case "desc":
		f.SetSortOrder(events.SortByDateDescending)
	case "none":
		f.SetSortOrder(events.SortNone)
	}

	return f, rangeMin, rangeMax, nil
}

// queryList reports (values, true) when the parameter is present.
// Repeated parameters merge, and each occurrence may itself be a
// comma-separated list. A present-but-empty parameter yields an
// empty, non-nil list.
func queryList(values []string) ([]string, bool) {
	if len(values) == 0 {
		return nil, false
	}
	out := []string{}
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out, true
}

func (h *Handler) parseQueryTime(v string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, v, h.cfg.Timezone); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &badQueryTimeError{value: v}
}

type badQueryTimeError struct{ value string }

func (e *badQueryTimeError) Error() string { return "unparseable date " + strconv.Quote(e.value) }
