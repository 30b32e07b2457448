package events

import (
	"math"
	"strconv"
	"strings"
)

// DefaultGeoPrecision is the number of decimal digits two
// coordinates may share before they are considered the same place.
// 4 digits is roughly 10 meters at the equator.
const DefaultGeoPrecision = 4

// Geo is a latitude/longitude pair in decimal degrees.
type Geo struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// EqualAt reports whether two positions coincide at the given
// decimal precision. Both latitude and longitude must differ by no
// more than 10^-precision. The comparison is a bounded difference,
// deliberately not round-then-compare: rounding each value first
// produces artifacts for coordinates sitting near a .5 digit
// boundary.
func (g Geo) EqualAt(other Geo, precision int) bool {
	scale := math.Pow10(precision)
	if math.Abs(g.Latitude-other.Latitude)*scale > 1 {
		return false
	}
	return math.Abs(g.Longitude-other.Longitude)*scale <= 1
}

// ParseGeo parses "lat,lng" (or "lat;lng") into a position.
func ParseGeo(s string) (Geo, bool) {
	sep := ","
	if strings.Contains(s, ";") {
		sep = ";"
	}
	parts := strings.SplitN(strings.TrimSpace(s), sep, 2)
	if len(parts) != 2 {
		return Geo{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Geo{}, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Geo{}, false
	}
	return Geo{Latitude: lat, Longitude: lng}, true
}
