package fields

import (
	"testing"

	"github.com/tidwall/gjson"
)

func TestPathsString(t *testing.T) {

	names := Paths{"tags.name:fr", "tags.name", "tags.operator"}

	r := gjson.Parse(`{"tags": {"name:fr": "  ", "name": "Le Louvre", "operator": "RMN"}}`)

	v, ok := names.String(r)

	if !ok || v != "Le Louvre" {
		t.Fatalf("Unexpected name '%s'", v)
	}

	if names.StringOr(gjson.Parse(`{}`), "POI sans nom") != "POI sans nom" {
		t.Fatalf("Expected fallback value")
	}

	city := Paths{"city"}

	v, ok = city.String(gjson.Parse(`{"city": {"name": "Annecy"}}`))

	if !ok || v != "Annecy" {
		t.Fatalf("Expected object name to be used, got '%s'", v)
	}
}

func TestPathsFloat(t *testing.T) {

	lat := Paths{"latitude", "lat"}

	v, ok := lat.Float(gjson.Parse(`{"latitude": "48,8566"}`))

	if !ok || v != 48.8566 {
		t.Fatalf("Failed to parse comma decimal, %f", v)
	}

	_, ok = lat.Float(gjson.Parse(`{"latitude": "n/a"}`))

	if ok {
		t.Fatalf("Expected invalid number to be rejected")
	}
}

func TestCoordinatesResolve(t *testing.T) {

	c := &Coordinates{
		Pairs: []Pair{
			{Lat: "lat", Lng: "lng"},
			{Lat: "start_point.lat", Lng: "start_point.lng"},
		},
		Sequences: Paths{"coordinates", "points"},
	}

	tests := map[string][2]float64{
		`{"lat": 45.1, "lng": 6.2}`:                             {45.1, 6.2},
		`{"start_point": {"lat": 45.2, "lng": 6.3}}`:            {45.2, 6.3},
		`{"coordinates": [[45.3, 6.4], [45.4, 6.5]]}`:           {45.3, 6.4},
		`{"points": [{"latitude": 45.5, "longitude": 6.6}]}`:    {45.5, 6.6},
		`{"lat": 45.6, "coordinates": [[1, 2]], "lng": "6.7"}`:  {45.6, 6.7},
	}

	for input, expected := range tests {

		lat, lng, ok := c.Resolve(gjson.Parse(input))

		if !ok {
			t.Fatalf("Failed to resolve coordinates for %s", input)
		}

		if lat != expected[0] || lng != expected[1] {
			t.Fatalf("Unexpected coordinates for %s: %f, %f", input, lat, lng)
		}
	}

	_, _, ok := c.Resolve(gjson.Parse(`{"name": "nowhere"}`))

	if ok {
		t.Fatalf("Expected missing coordinates to be reported")
	}

	geojson := &Coordinates{
		Sequences: Paths{"geometry.coordinates"},
		LngLat:    true,
	}

	lat, lng, ok := geojson.Resolve(gjson.Parse(`{"geometry": {"coordinates": [[2.35, 48.85]]}}`))

	if !ok || lat != 48.85 || lng != 2.35 {
		t.Fatalf("Unexpected lng/lat resolution %f, %f", lat, lng)
	}
}
