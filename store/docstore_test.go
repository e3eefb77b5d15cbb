package store

import (
	"context"
	"testing"
	"time"
)

func TestDocstoreStore(t *testing.T) {

	ctx := context.Background()

	s, err := NewStore(ctx, "mem://spots_test/id")

	if err != nil {
		t.Fatalf("Failed to create store, %v", err)
	}

	defer s.Close()

	mutations := []*Mutation{
		{
			Type: Upsert,
			Id:   "osm_1",
			Fields: map[string]any{
				"name":       "Tour Eiffel",
				"location":   GeoPoint{Latitude: 48.8584, Longitude: 2.2945},
				"source":     "openstreetmap",
				"importedAt": ServerTimestamp,
			},
		},
		{
			Type: Upsert,
			Id:   "osm_2",
			Fields: map[string]any{
				"name":   "Sans nom",
				"source": "openstreetmap",
			},
		},
	}

	err = s.Commit(ctx, mutations)

	if err != nil {
		t.Fatalf("Failed to commit mutations, %v", err)
	}

	// Merge: fields not mentioned are kept

	err = s.Commit(ctx, []*Mutation{
		{Type: Upsert, Id: "osm_1", Fields: map[string]any{"city": "Paris"}},
		{Type: Update, Id: "osm_2", Fields: map[string]any{"name": "Point de vue"}},
	})

	if err != nil {
		t.Fatalf("Failed to commit second batch, %v", err)
	}

	docs, err := s.Scan(ctx, &ScanOptions{Filter: &Filter{Field: "city", Value: "Paris"}})

	if err != nil {
		t.Fatalf("Failed to scan store, %v", err)
	}

	if len(docs) != 1 || docs[0].Id != "osm_1" {
		t.Fatalf("Unexpected scan results, %v", docs)
	}

	fields := docs[0].Fields

	if fields["name"] != "Tour Eiffel" {
		t.Fatalf("Expected upsert to merge fields, got %v", fields)
	}

	pt, ok := fields["location"].(GeoPoint)

	if !ok || pt.Latitude != 48.8584 {
		t.Fatalf("Unexpected location %v", fields["location"])
	}

	if _, ok := fields["importedAt"].(time.Time); !ok {
		t.Fatalf("Expected server timestamp to be resolved, got %T", fields["importedAt"])
	}

	renamed, err := s.Scan(ctx, &ScanOptions{Filter: &Filter{Field: "name", Value: "Point de vue"}})

	if err != nil {
		t.Fatalf("Failed to scan store, %v", err)
	}

	if len(renamed) != 1 || renamed[0].Id != "osm_2" {
		t.Fatalf("Expected update to be applied")
	}

	err = s.Commit(ctx, []*Mutation{{Type: Delete, Id: "osm_2"}})

	if err != nil {
		t.Fatalf("Failed to delete document, %v", err)
	}

	all, err := s.Scan(ctx, &ScanOptions{})

	if err != nil {
		t.Fatalf("Failed to scan store, %v", err)
	}

	if len(all) != 1 {
		t.Fatalf("Expected 1 document after delete, got %d", len(all))
	}
}

func TestDocstoreStoreBatchLimit(t *testing.T) {

	ctx := context.Background()

	s, err := NewStore(ctx, "mem://spots_limit/id")

	if err != nil {
		t.Fatalf("Failed to create store, %v", err)
	}

	defer s.Close()

	mutations := make([]*Mutation, s.MaxBatchSize()+1)

	for i := range mutations {
		mutations[i] = &Mutation{Type: Delete, Id: "x"}
	}

	err = s.Commit(ctx, mutations)

	if err == nil {
		t.Fatalf("Expected oversized batch to be rejected")
	}
}

func TestNewStoreUnknownScheme(t *testing.T) {

	_, err := NewStore(context.Background(), "bogus://spots")

	if err == nil {
		t.Fatalf("Expected unknown scheme to fail")
	}
}
