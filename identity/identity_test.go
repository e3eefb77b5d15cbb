package identity

import (
	"strings"
	"testing"

	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/poi"
)

func TestKeyNative(t *testing.T) {

	p := poi.New("Musée du Louvre", 48.8606, 2.3376, category.Culture, SourceOpenStreetMap)
	p.OSMId = 123456

	if KeyForPOI(p) != "osm_123456" {
		t.Fatalf("Unexpected key %s", KeyForPOI(p))
	}

	g := poi.New("Musée du Louvre", 48.8606, 2.3376, category.Culture, SourceGooglePlaces)
	g.PlaceId = "ChIJD3uTd9hx5kcR1IQvGfr8dbk"

	if KeyForPOI(g) != "gplaces_chijd3utd9hx5kcr1iqvgfr8dbk" {
		t.Fatalf("Unexpected key %s", KeyForPOI(g))
	}

	// An OSM id on a record from another source is not authoritative
	o := poi.New("Somewhere", 45.0, 5.0, category.Nature, "datagouv_monuments")
	o.OSMId = 42

	if strings.HasPrefix(KeyForPOI(o), "osm_") {
		t.Fatalf("Expected content key for non-OSM source, got %s", KeyForPOI(o))
	}
}

func TestKeyDeterministic(t *testing.T) {

	f := &KeyFields{
		Source:   "datagouv_monuments",
		Category: "histoire",
		Name:     "Château de Vincennes",
		Lat:      48.842778,
		Lng:      2.435833,
	}

	k1 := Key(f)
	k2 := Key(f)

	if k1 != k2 {
		t.Fatalf("Expected identical keys, %s != %s", k1, k2)
	}

	expected := "datagouv_monuments_histoire_chateau_de_vincennes_48.842778_2.435833"

	if k1 != expected {
		t.Fatalf("Unexpected key %s", k1)
	}

	f2 := *f
	f2.Source = "decathlon_outdoor"

	if Key(&f2) == k1 {
		t.Fatalf("Expected keys to differ when only the source differs")
	}
}

func TestKeyDefaultsAndLength(t *testing.T) {

	k := Key(&KeyFields{Lat: 1, Lng: 2})

	if k != "unknown_other_spot_1.000000_2.000000" {
		t.Fatalf("Unexpected default key %s", k)
	}

	blank := Key(&KeyFields{Source: "manual", Category: "culture", Name: "  ", Lat: 45, Lng: 6})

	if blank != "manual_culture__45.000000_6.000000" {
		t.Fatalf("Expected whitespace name to produce an empty segment, got %s", blank)
	}

	blank_cat := Key(&KeyFields{Source: "manual", Category: " ", CategoryGroup: "nature", Name: "Lac", Lat: 45, Lng: 6})

	if blank_cat != "manual__lac_45.000000_6.000000" {
		t.Fatalf("Expected whitespace category to be kept over categoryGroup, got %s", blank_cat)
	}

	long := &KeyFields{
		Source: "gpx",
		Name:   strings.Repeat("tres long nom ", 20),
		Lat:    45,
		Lng:    6,
	}

	if len(Key(long)) != MaxKeyLength {
		t.Fatalf("Expected key to be truncated to %d characters, got %d", MaxKeyLength, len(Key(long)))
	}
}

func TestMatchKey(t *testing.T) {

	a := poi.New("Tour Eiffel", 48.858370, 2.294481, category.Culture, SourceOpenStreetMap)
	b := poi.New("TOUR EIFFEL", 48.858372, 2.294479, category.Histoire, SourceGooglePlaces)

	if MatchKey(a) != MatchKey(b) {
		t.Fatalf("Expected match keys to be equal, %s != %s", MatchKey(a), MatchKey(b))
	}
}
