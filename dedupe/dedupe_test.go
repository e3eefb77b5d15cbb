package dedupe

import (
	"context"
	"testing"
	"time"

	"github.com/allspots/go-poi-import/store"
	"github.com/tidwall/gjson"
	"gocloud.dev/blob/memblob"
)

var spots = map[string]map[string]any{
	// Two records of the same OSM node. b is more complete.
	"a": {"name": "Lac Blanc", "source": "openstreetmap", "osmId": float64(5013364)},
	"b": {"name": "Lac Blanc", "source": "openstreetmap", "osmId": "5013364", "description": "Lac d'altitude face au massif du Mont-Blanc", "imageUrls": []any{"1.jpg", "2.jpg", "3.jpg"}},
	// Same content, same score: the most recent wins.
	"c": {"name": "Fontaine", "category": "culture", "lat": 45.9, "lng": 6.12, "updatedAt": "2024-01-01T00:00:00Z"},
	"d": {"name": "fontaine", "category": "culture", "lat": 45.9, "lng": 6.12, "updatedAt": "2024-06-01T00:00:00Z"},
	"e": {"name": "Seul"},
}

func TestKey(t *testing.T) {

	a := Key(&store.Document{Id: "a", Fields: spots["a"]})
	b := Key(&store.Document{Id: "b", Fields: spots["b"]})

	if a != b {
		t.Fatalf("Expected numeric and string OSM ids to share a key, got %s and %s", a, b)
	}

	if Key(&store.Document{Id: "e", Fields: spots["e"]}) != "doc_e" {
		t.Fatalf("Expected id based key for a record without coordinates")
	}

	recorded := &store.Document{Id: "x", Fields: map[string]any{"dedupeKey": " osm_1 ", "osmId": "2"}}

	if Key(recorded) != "osm_1" {
		t.Fatalf("Expected recorded key, got %s", Key(recorded))
	}

	lat, lng, ok := Coordinates(map[string]any{"location": map[string]any{"_latitude": 1.5, "_longitude": 2.5}})

	if !ok || lat != 1.5 || lng != 2.5 {
		t.Fatalf("Failed to read location coordinates")
	}
}

func TestQualityScore(t *testing.T) {

	if QualityScore(spots["a"]) != 0 {
		t.Fatalf("Expected empty record to score 0, got %d", QualityScore(spots["a"]))
	}

	if QualityScore(spots["b"]) != 6 {
		t.Fatalf("Expected 6, got %d", QualityScore(spots["b"]))
	}

	full := map[string]any{
		"description":   "Une courte description",
		"images":        []any{"x"},
		"website":       "https://example.com",
		"categoryGroup": "nature",
		"isValidated":   true,
	}

	if QualityScore(full) != 7 {
		t.Fatalf("Expected 7, got %d", QualityScore(full))
	}
}

func TestPickKeeper(t *testing.T) {

	docs := []*store.Document{
		{Id: "z", Fields: map[string]any{"updatedAt": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}},
		{Id: "y", Fields: map[string]any{"updatedAt": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}},
		{Id: "x", Fields: map[string]any{}},
	}

	if PickKeeper(docs).Id != "y" {
		t.Fatalf("Expected y, got %s", PickKeeper(docs).Id)
	}
}

func TestRun(t *testing.T) {

	ctx := context.Background()

	s, err := store.NewStore(ctx, "mem://dedupe_run/id")

	if err != nil {
		t.Fatalf("Failed to create store, %v", err)
	}

	defer s.Close()

	mutations := make([]*store.Mutation, 0)

	for id, fields := range spots {
		mutations = append(mutations, &store.Mutation{Type: store.Upsert, Id: id, Fields: fields})
	}

	err = s.Commit(ctx, mutations)

	if err != nil {
		t.Fatalf("Failed to seed store, %v", err)
	}

	plan, err := Run(ctx, s, nil)

	if err != nil {
		t.Fatalf("Failed to plan, %v", err)
	}

	if plan.Mode != "dry-run" || plan.Scanned != 5 || len(plan.Groups) != 2 || plan.Duplicates != 2 || plan.Deleted != 0 {
		t.Fatalf("Unexpected plan %+v", plan)
	}

	b := memblob.OpenBucket(nil)
	defer b.Close()

	report, err := Run(ctx, s, &Options{
		Apply:        true,
		BatchSize:    1,
		BackupBucket: b,
		BackupURI:    "dedupe.json",
	})

	if err != nil {
		t.Fatalf("Failed to apply, %v", err)
	}

	if report.Deleted != 2 || report.UpdatedKeepers != 2 {
		t.Fatalf("Unexpected report %+v", report)
	}

	docs, err := s.Scan(ctx, nil)

	if err != nil {
		t.Fatalf("Failed to scan store, %v", err)
	}

	remaining := make(map[string]*store.Document)

	for _, d := range docs {
		remaining[d.Id] = d
	}

	if len(remaining) != 3 || remaining["b"] == nil || remaining["d"] == nil || remaining["e"] == nil {
		t.Fatalf("Unexpected remaining documents %v", remaining)
	}

	if remaining["b"].Fields["dedupeKey"] == nil || remaining["b"].Fields["name"] != "Lac Blanc" {
		t.Fatalf("Expected keeper to be tagged and preserved, %v", remaining["b"].Fields)
	}

	body, err := b.ReadAll(ctx, "dedupe.json")

	if err != nil {
		t.Fatalf("Failed to read backup, %v", err)
	}

	if gjson.GetBytes(body, "changes.#").Int() != 2 || gjson.GetBytes(body, `changes.#(keeperId=="b").duplicates.0.id`).String() != "a" {
		t.Fatalf("Unexpected backup %s", body)
	}

	again, err := Run(ctx, s, nil)

	if err != nil {
		t.Fatalf("Failed to plan, %v", err)
	}

	if len(again.Groups) != 0 {
		t.Fatalf("Expected no duplicates left, got %d groups", len(again.Groups))
	}
}
