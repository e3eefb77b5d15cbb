package identity

import (
	"bytes"
	"strings"
	"testing"

	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/poi"
)

func TestMergerSourcePriority(t *testing.T) {

	osm := poi.New("Tour Eiffel", 48.8584, 2.2945, category.Culture, SourceOpenStreetMap)
	osm.OSMId = 5013364

	places := poi.New("Tour Eiffel", 48.8584, 2.2945, category.Culture, SourceGooglePlaces)
	places.PlaceId = "ChIJLU7jZClu5kcR4PcOOO6p3I0"
	places.AddImages("https://example.com/1.jpg", "https://example.com/2.jpg")

	other := poi.New("Jardin du Luxembourg", 48.8462, 2.3372, category.Nature, SourceOpenStreetMap)
	other.OSMId = 1

	// Places is processed first, OSM second: Places must still win
	m := NewMerger()
	m.Add(places, other)
	m.Add(osm)

	records := m.Records()

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	if records[0].Source != SourceGooglePlaces {
		t.Fatalf("Expected google_places record to win, got %s", records[0].Source)
	}

	stats := m.Stats()

	if stats.Collisions != 1 || stats.NativeResolved != 1 || stats.Output != 2 || stats.Input != 3 {
		t.Fatalf("Unexpected stats %+v", stats)
	}
}

func TestMergerNativeBeatsHeuristic(t *testing.T) {

	osm := poi.New("Arc de Triomphe", 48.8738, 2.2950, category.Histoire, SourceOpenStreetMap)
	osm.OSMId = 42

	gouv := poi.New("Arc de Triomphe", 48.8738, 2.2950, category.Histoire, "datagouv_monuments")

	m := NewMerger()
	m.Add(osm, gouv)

	if m.Records()[0].Source != SourceOpenStreetMap {
		t.Fatalf("Expected record with a native id to be kept")
	}
}

func TestMergerLaterWinsOnTie(t *testing.T) {

	a := poi.New("Parc", 45.0, 5.0, category.Nature, "datagouv_equipements")
	a.Description = "first"

	b := poi.New("parc", 45.0, 5.0, category.Nature, "datagouv_monuments")
	b.Description = "second"

	m := NewMerger()
	m.Add(a, b)

	records := m.Records()

	if len(records) != 1 || records[0].Description != "second" {
		t.Fatalf("Expected later record to win on a tie")
	}

	if m.Stats().HeuristicResolved != 1 {
		t.Fatalf("Expected collision to be counted as heuristic")
	}
}

func TestPriorityPrefix(t *testing.T) {

	m := NewMerger()

	if m.Priority("datagouv_musees") != 10 {
		t.Fatalf("Expected prefix priority for datagouv datasets")
	}

	if m.Priority("hiking_gpx") != 0 {
		t.Fatalf("Expected unknown sources to rank 0")
	}
}

func TestMergeStatsSummary(t *testing.T) {

	osm := poi.New("Arc de Triomphe", 48.8738, 2.2950, category.Histoire, SourceOpenStreetMap)
	osm.OSMId = 42

	gouv := poi.New("Arc de Triomphe", 48.8738, 2.2950, category.Histoire, "datagouv_monuments")

	a := poi.New("Parc", 45.0, 5.0, category.Nature, "datagouv_equipements")
	b := poi.New("parc", 45.0, 5.0, category.Nature, "datagouv_monuments")

	m := NewMerger()
	m.Add(osm, gouv, a, b)

	var buf bytes.Buffer
	m.Stats().Summary(&buf)

	out := buf.String()

	for _, expected := range []string{
		"Input records  : 4",
		"Merged records : 2",
		"Collisions     : 2 (1 by native id, 1 by name and coordinates, best effort)",
		HeuristicNote,
	} {

		if !strings.Contains(out, expected) {
			t.Fatalf("Expected summary to contain '%s', got %s", expected, out)
		}
	}
}
