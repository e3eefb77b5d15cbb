package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/allspots/go-poi-import/store"
	"github.com/tidwall/gjson"
)

type fakeFinder struct {
	places map[string]string
	photos map[string][]string
	finds  int
}

func (f *fakeFinder) FindPlace(ctx context.Context, name string, lat float64, lng float64, radius int) (string, bool, error) {

	f.finds += 1

	if name == "broken" {
		return "", false, errors.New("boom")
	}

	id, ok := f.places[name]
	return id, ok, nil
}

func (f *fakeFinder) Photos(ctx context.Context, place_id string, max int, max_width int) ([]string, error) {

	urls := f.photos[place_id]

	if len(urls) > max {
		urls = urls[:max]
	}

	return urls, nil
}

func newFinder() *fakeFinder {

	return &fakeFinder{
		places: map[string]string{
			"Louvre": "p_louvre",
			"Orsay":  "p_orsay",
		},
		photos: map[string][]string{
			"p_louvre": {"https://example.com/1.jpg", "https://example.com/2.jpg", "https://example.com/3.jpg", "https://example.com/4.jpg"},
		},
	}
}

func TestRecord(t *testing.T) {

	ctx := context.Background()

	e, err := NewEnricher(&Options{Finder: newFinder()})

	if err != nil {
		t.Fatalf("Failed to create enricher, %v", err)
	}

	body, ok, err := e.Record(ctx, gjson.Parse(`{"name": "Louvre", "lat": 48.8606, "lng": 2.3376, "images": []}`))

	if err != nil || !ok {
		t.Fatalf("Expected record to be enriched, %v", err)
	}

	if gjson.GetBytes(body, "imageUrls.#").Int() != DefaultMaxPhotos || gjson.GetBytes(body, "googlePlaceId").String() != "p_louvre" {
		t.Fatalf("Unexpected record %s", body)
	}

	_, ok, _ = e.Record(ctx, gjson.Parse(`{"name": "Full", "lat": 48.0, "lng": 2.0, "images": ["a", "b"]}`))

	if ok {
		t.Fatalf("Did not expect a record with images to be enriched")
	}

	_, ok, _ = e.Record(ctx, gjson.Parse(`{"name": "Orsay", "lat": 48.86, "lng": 2.32}`))

	if ok {
		t.Fatalf("Did not expect a place without photos to be enriched")
	}

	_, ok, _ = e.Record(ctx, gjson.Parse(`{"name": "broken", "lat": 48.86, "lng": 2.32}`))

	if ok {
		t.Fatalf("Did not expect a failed lookup to enrich")
	}

	r := e.Report()

	if r.Scanned != 4 || r.Candidates != 3 || r.Enriched != 1 || r.NoPhotos != 1 || r.Errors != 1 {
		t.Fatalf("Unexpected report %+v", r)
	}
}

func TestStore(t *testing.T) {

	ctx := context.Background()

	s, err := store.NewStore(ctx, "mem://enrich_test/id")

	if err != nil {
		t.Fatalf("Failed to create store, %v", err)
	}

	defer s.Close()

	seed := []*store.Mutation{
		{Type: store.Upsert, Id: "a", Fields: map[string]any{"name": "Louvre", "lat": 48.8606, "lng": 2.3376, "departmentCode": "75"}},
		{Type: store.Upsert, Id: "b", Fields: map[string]any{"name": "Nowhere", "lat": 48.1, "lng": 2.1, "departmentCode": "75"}},
		{Type: store.Upsert, Id: "c", Fields: map[string]any{"name": "Louvre", "lat": 43.3, "lng": 5.4, "departmentCode": "13"}},
	}

	err = s.Commit(ctx, seed)

	if err != nil {
		t.Fatalf("Failed to seed store, %v", err)
	}

	finder := newFinder()

	e, _ := NewEnricher(&Options{Finder: finder})

	report, err := e.Store(ctx, s, &store.Filter{Field: "departmentCode", Value: "75"})

	if err != nil {
		t.Fatalf("Failed to plan enrichment, %v", err)
	}

	if report.Scanned != 2 || report.Enriched != 1 || report.NotFound != 1 || report.Written != 0 {
		t.Fatalf("Unexpected plan %+v", report)
	}

	e, _ = NewEnricher(&Options{Finder: finder, Apply: true, Limit: 1})

	report, err = e.Store(ctx, s, &store.Filter{Field: "departmentCode", Value: "13"})

	if err != nil {
		t.Fatalf("Failed to enrich store, %v", err)
	}

	if report.Scanned != 1 || report.Candidates != 1 || report.Written != 1 {
		t.Fatalf("Unexpected report %+v", report)
	}

	docs, _ := s.Scan(ctx, nil)
	enriched := 0

	for _, d := range docs {

		if d.Fields["googlePlaceId"] == "p_louvre" {
			enriched += 1
		}
	}

	if enriched != 1 {
		t.Fatalf("Expected 1 enriched document, got %d", enriched)
	}
}
