package poi

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/geometry"
	"github.com/tidwall/gjson"
)

func TestMarshalRoundTripWithExtras(t *testing.T) {

	p := New("Musée Carnavalet", 48.8575, 2.3627, category.Culture, "datagouv_musees")
	p.CategoryItem = "Musée"
	p.SetExtra("museum_type", "Histoire")
	p.SetExtra("collection", "Paris")

	body, err := json.Marshal(p)

	if err != nil {
		t.Fatalf("Failed to marshal POI, %v", err)
	}

	if gjson.GetBytes(body, "museum_type").String() != "Histoire" {
		t.Fatalf("Expected extras to be serialized as top-level properties, %s", string(body))
	}

	if gjson.GetBytes(body, "location._latitude").Float() != 48.8575 {
		t.Fatalf("Unexpected location, %s", string(body))
	}

	if !gjson.GetBytes(body, "images").IsArray() {
		t.Fatalf("Expected images to always be an array")
	}

	var p2 POI

	err = json.Unmarshal(body, &p2)

	if err != nil {
		t.Fatalf("Failed to unmarshal POI, %v", err)
	}

	if p2.Name != p.Name || p2.Category != category.Culture || p2.City != DefaultCity {
		t.Fatalf("Unexpected POI after unmarshaling, %+v", p2)
	}

	if p2.Extras["collection"] != "Paris" {
		t.Fatalf("Expected extras to be preserved, %v", p2.Extras)
	}

	if _, exists := p2.Extras["name"]; exists {
		t.Fatalf("Known properties must not be copied to extras")
	}
}

func TestValidate(t *testing.T) {

	p := New("Somewhere", 48.85, 2.35, category.Nature, "test")

	err := p.Validate(&geometry.MetropolitanFrance)

	if err != nil {
		t.Fatalf("Expected valid location, %v", err)
	}

	p.Location.Latitude = 95

	err = p.Validate(nil)

	if !errors.Is(err, ErrInvalidLocation) {
		t.Fatalf("Expected ErrInvalidLocation, got %v", err)
	}

	p.Location = Location{Latitude: -21.1, Longitude: 55.5}

	err = p.Validate(&geometry.MetropolitanFrance)

	if !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("Expected ErrOutOfBounds, got %v", err)
	}
}

func TestTruncate(t *testing.T) {

	if Truncate("  Été  ", 2) != "Ét" {
		t.Fatalf("Expected rune-aware truncation")
	}

	if Truncate("abc", 10) != "abc" {
		t.Fatalf("Unexpected truncation of short string")
	}
}

func TestParseTimestamp(t *testing.T) {

	epoch := gjson.Parse(`{"_seconds": 1700000000, "_nanoseconds": 500}`)

	v, ok := ParseTimestamp(epoch)

	if !ok || v.Unix() != 1700000000 || v.Nanosecond() != 500 {
		t.Fatalf("Failed to parse epoch timestamp, %v", v)
	}

	iso := gjson.Parse(`"2024-03-01T10:00:00Z"`)

	v, ok = ParseTimestamp(iso)

	if !ok || !v.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("Failed to parse ISO timestamp, %v", v)
	}

	naive := gjson.Parse(`"2024-03-01T10:00:00"`)

	v, ok = ParseTimestamp(naive)

	if !ok || v.Location() != time.UTC || v.Hour() != 10 {
		t.Fatalf("Failed to parse naive timestamp, %v", v)
	}

	_, ok = ParseTimestamp(gjson.Parse(`"yesterday"`))

	if ok {
		t.Fatalf("Expected unparsable timestamp to be rejected")
	}

	var ts Timestamp

	err := json.Unmarshal([]byte(`"not a date"`), &ts)

	if err != nil {
		t.Fatalf("Failed to unmarshal timestamp, %v", err)
	}

	if !ts.IsServerAssigned() {
		t.Fatalf("Expected unparsable timestamp to fall back to server time")
	}
}
