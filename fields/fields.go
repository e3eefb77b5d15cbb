// Package fields resolves values out of heterogeneous source records using ordered lists
// of candidate paths. Each source declares its own tables; the first path yielding a
// usable value wins.
package fields

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Paths is an ordered list of gjson paths.
type Paths []string

// Result returns the first non-empty result for 'p' in 'r'.
func (p Paths) Result(r gjson.Result) (gjson.Result, bool) {

	for _, path := range p {

		rsp := r.Get(path)

		if !rsp.Exists() || rsp.Type == gjson.Null {
			continue
		}

		if rsp.Type == gjson.String && strings.TrimSpace(rsp.String()) == "" {
			continue
		}

		return rsp, true
	}

	return gjson.Result{}, false
}

// String returns the first non-empty string value for 'p' in 'r'. Objects carrying a
// "name" property, as some sources use for localized values, resolve to that name.
func (p Paths) String(r gjson.Result) (string, bool) {

	rsp, ok := p.Result(r)

	if !ok {
		return "", false
	}

	if rsp.IsObject() {

		name := rsp.Get("name")

		if name.Type != gjson.String || strings.TrimSpace(name.String()) == "" {
			return "", false
		}

		return strings.TrimSpace(name.String()), true
	}

	return strings.TrimSpace(rsp.String()), true
}

// StringOr returns the first non-empty string value for 'p' in 'r' or 'fallback'.
func (p Paths) StringOr(r gjson.Result, fallback string) string {

	v, ok := p.String(r)

	if !ok {
		return fallback
	}

	return v
}

// Float returns the first numeric value for 'p' in 'r'. Numeric strings, including those
// using a comma as decimal separator, are accepted.
func (p Paths) Float(r gjson.Result) (float64, bool) {

	for _, path := range p {

		v, ok := Float(r.Get(path))

		if ok {
			return v, true
		}
	}

	return 0, false
}

// Float parses a single gjson value as a float.
func Float(rsp gjson.Result) (float64, bool) {

	switch rsp.Type {
	case gjson.Number:
		return rsp.Float(), true
	case gjson.String:

		s := strings.TrimSpace(strings.ReplaceAll(rsp.String(), ",", "."))

		if s == "" {
			return 0, false
		}

		v, err := strconv.ParseFloat(s, 64)

		if err != nil {
			return 0, false
		}

		return v, true
	}

	return 0, false
}

// Pair names the latitude and longitude paths of one coordinate representation.
type Pair struct {
	Lat string
	Lng string
}

// Coordinates is an ordered coordinate resolution table: explicit pairs are tried first,
// then the first point of each sequence path. Sequence points may be objects (resolved
// with Pairs) or [lat, lng] arrays, unless LngLat is set in which case arrays are read
// as [lng, lat].
type Coordinates struct {
	Pairs     []Pair
	Sequences Paths
	LngLat    bool
}

// DefaultPairs are the explicit coordinate pairs most sources use.
var DefaultPairs = []Pair{
	{Lat: "lat", Lng: "lng"},
	{Lat: "lat", Lng: "lon"},
	{Lat: "latitude", Lng: "longitude"},
	{Lat: "location._latitude", Lng: "location._longitude"},
	{Lat: "location.latitude", Lng: "location.longitude"},
	{Lat: "location.lat", Lng: "location.lng"},
}

// Resolve returns the first usable latitude and longitude in 'r'.
func (c *Coordinates) Resolve(r gjson.Result) (float64, float64, bool) {

	lat, lng, ok := resolvePairs(r, c.Pairs)

	if ok {
		return lat, lng, true
	}

	for _, path := range c.Sequences {

		seq := r.Get(path)

		if !seq.IsArray() {
			continue
		}

		points := seq.Array()

		if len(points) == 0 {
			continue
		}

		first := points[0]

		if first.IsArray() {

			pt := first.Array()

			if len(pt) < 2 {
				continue
			}

			a, ok_a := Float(pt[0])
			b, ok_b := Float(pt[1])

			if !ok_a || !ok_b {
				continue
			}

			if c.LngLat {
				return b, a, true
			}

			return a, b, true
		}

		lat, lng, ok := resolvePairs(first, DefaultPairs)

		if ok {
			return lat, lng, true
		}
	}

	return 0, 0, false
}

func resolvePairs(r gjson.Result, pairs []Pair) (float64, float64, bool) {

	for _, p := range pairs {

		lat, ok_lat := Float(r.Get(p.Lat))
		lng, ok_lng := Float(r.Get(p.Lng))

		if ok_lat && ok_lng {
			return lat, lng, true
		}
	}

	return 0, 0, false
}
