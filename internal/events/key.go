package events

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// InternalProviderID identifies the event provider backed by this
// application's own store. Keys referencing it omit the provider
// segment when serialized, which keeps existing registration records
// and bookmarked URLs valid.
const InternalProviderID = "rmrc"

// KeyDateLayout is the calendar-day component of a key: local date,
// no time of day.
const KeyDateLayout = "20060102"

// Query argument names used when a key travels as URL query args.
const (
	QueryArgEventDate     = "rc-date"
	QueryArgEventID       = "rc-evt"
	QueryArgEventProvider = "rc-prv"
)

// Key identifies one concrete occurrence of an event descriptor.
// It is a value type: two keys are equal iff all three fields are
// equal as strings. Keys are never persisted on their own; they are
// embedded as strings inside other records (item and volunteer
// registrations) and in URLs.
type Key struct {
	// DateString is the occurrence's calendar day in the configured
	// local timezone, formatted as YYYYMMDD. Empty when the date is
	// unknown (unparseable input); callers must treat an empty date
	// as "proceed only if the descriptor can supply its own start".
	DateString string

	// DescriptorID is unique within the owning provider's namespace.
	DescriptorID string

	// ProviderID identifies the source system. Never empty after
	// construction through this package; defaults to
	// InternalProviderID.
	ProviderID string
}

// NewKey builds a key for the occurrence of descriptorID on the
// calendar day of start, interpreted in loc. A zero start leaves the
// date component empty.
func NewKey(start time.Time, descriptorID, providerID string, loc *time.Location) Key {
	k := Key{DescriptorID: descriptorID, ProviderID: normalizeProvider(providerID)}
	if !start.IsZero() {
		if loc == nil {
			loc = time.Local
		}
		k.DateString = start.In(loc).Format(KeyDateLayout)
	}
	return k
}

// NewKeyFromDateString builds a key from a free-form date string.
// An unparseable date leaves the date component empty rather than
// failing; see Key.DateString.
func NewKeyFromDateString(date, descriptorID, providerID string, loc *time.Location) Key {
	k := Key{DescriptorID: descriptorID, ProviderID: normalizeProvider(providerID)}
	if t, ok := parseKeyDate(date, loc); ok {
		if loc == nil {
			loc = time.Local
		}
		k.DateString = t.In(loc).Format(KeyDateLayout)
	}
	return k
}

// ParseKeyString parses the space-joined serialized form:
// "<YYYYMMDD> <descriptor_id>" or "<YYYYMMDD> <descriptor_id> <provider_id>".
// A missing provider segment means the internal provider. The date
// token may be empty (a dateless key serializes with a leading
// space), so the input is split as-is, never trimmed. Reports
// ok=false when no descriptor id token is present.
func ParseKeyString(s string) (Key, bool) {
	parts := strings.SplitN(s, " ", 3)
	if len(parts) < 2 || parts[1] == "" {
		return Key{}, false
	}
	k := Key{DateString: parts[0], DescriptorID: parts[1], ProviderID: InternalProviderID}
	if len(parts) == 3 {
		k.ProviderID = normalizeProvider(parts[2])
	}
	return k, true
}

// KeyFromQueryArgs rebuilds a key from URL query arguments. Unlike
// the string form, partial data is invalid: both rc-date and rc-evt
// must be present or no key is returned. rc-prv is optional and
// defaults to the internal provider.
func KeyFromQueryArgs(args map[string]string) (Key, bool) {
	date, okDate := args[QueryArgEventDate]
	id, okID := args[QueryArgEventID]
	if !okDate || !okID || date == "" || id == "" {
		return Key{}, false
	}
	return Key{
		DateString:   date,
		DescriptorID: id,
		ProviderID:   normalizeProvider(args[QueryArgEventProvider]),
	}, true
}

// String renders the canonical serialized form. The provider segment
// is omitted for the internal provider.
func (k Key) String() string {
	if k.ProviderID == "" || k.ProviderID == InternalProviderID {
		return fmt.Sprintf("%s %s", k.DateString, k.DescriptorID)
	}
	return fmt.Sprintf("%s %s %s", k.DateString, k.DescriptorID, k.ProviderID)
}

// QueryArgs renders the key as URL query arguments. rc-prv is
// included only for non-internal providers.
func (k Key) QueryArgs() map[string]string {
	args := map[string]string{
		QueryArgEventDate: k.DateString,
		QueryArgEventID:   k.DescriptorID,
	}
	if k.ProviderID != "" && k.ProviderID != InternalProviderID {
		args[QueryArgEventProvider] = k.ProviderID
	}
	return args
}

// Date reports the key's calendar day in loc, or ok=false when the
// date component is empty or malformed.
func (k Key) Date(loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(KeyDateLayout, k.DateString, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// HasDate reports whether the key carries a date component.
func (k Key) HasDate() bool {
	return k.DateString != ""
}

// MarshalJSON serializes the key as its string form, not as an
// object.
func (k Key) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON parses the string form produced by MarshalJSON.
func (k *Key) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseKeyString(s)
	if !ok {
		return fmt.Errorf("malformed event key %q", s)
	}
	*k = parsed
	return nil
}

func normalizeProvider(providerID string) string {
	if providerID == "" {
		return InternalProviderID
	}
	return providerID
}

// keyDateLayouts are the accepted free-form date inputs, tried in
// order. Time-of-day is discarded after conversion to local time.
var keyDateLayouts = []string{
	KeyDateLayout,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"20060102T150405Z",
	"20060102T150405",
}

func parseKeyDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range keyDateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
