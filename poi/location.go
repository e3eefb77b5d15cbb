package poi

import (
	"encoding/json"

	"github.com/paulmach/orb"
	"github.com/tidwall/gjson"
)

// Location is a WGS84 position, serialized with the underscore-prefixed keys used by
// document database exports.
type Location struct {
	Latitude  float64
	Longitude float64
}

func (l Location) Point() orb.Point {
	return orb.Point{l.Longitude, l.Latitude}
}

func (l Location) MarshalJSON() ([]byte, error) {

	m := map[string]float64{
		"_latitude":  l.Latitude,
		"_longitude": l.Longitude,
	}

	return json.Marshal(m)
}

func (l *Location) UnmarshalJSON(body []byte) error {

	r := gjson.ParseBytes(body)

	lat := r.Get("_latitude")

	if !lat.Exists() {
		lat = r.Get("latitude")
	}

	lng := r.Get("_longitude")

	if !lng.Exists() {
		lng = r.Get("longitude")
	}

	l.Latitude = lat.Float()
	l.Longitude = lng.Float()

	return nil
}
