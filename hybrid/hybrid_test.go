package hybrid

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/identity"
	"github.com/allspots/go-poi-import/poi"
	"github.com/allspots/go-poi-import/sources"
	"gocloud.dev/blob/memblob"
)

type fakeSource struct {
	name         string
	per_category bool
	enabled      func(*City) bool
	fn           func(*City, category.Category) ([]*poi.POI, error)
	calls        int
}

func (s *fakeSource) Name() string {
	return s.name
}

func (s *fakeSource) PerCategory() bool {
	return s.per_category
}

func (s *fakeSource) Enabled(city *City) bool {
	return s.enabled == nil || s.enabled(city)
}

func (s *fakeSource) Import(ctx context.Context, city *City, c category.Category) ([]*poi.POI, *sources.Stats, error) {

	s.calls += 1

	records, err := s.fn(city, c)

	stats := &sources.Stats{
		Fetched:   len(records),
		Converted: len(records),
		Requests:  1,
	}

	return records, stats, err
}

func spot(city *City, c category.Category, source string) *poi.POI {

	p := poi.New(fmt.Sprintf("Spot %s %s", city.Name, c), city.Lat, city.Lng+0.01*float64(len(c)), c, source)

	switch source {
	case identity.SourceOpenStreetMap:
		p.OSMId = int64(len(city.Name)*100 + len(c))
	case identity.SourceGooglePlaces:
		p.PlaceId = fmt.Sprintf("%s_%s", city.Name, c)
	}

	return p
}

func TestSelect(t *testing.T) {

	cities, err := SelectCities([]string{"Lille", "paris"})

	if err != nil {
		t.Fatalf("Failed to select cities, %v", err)
	}

	if len(cities) != 2 || cities[0].Name != "paris" || cities[1].Name != "lille" {
		t.Fatalf("Unexpected cities %v", cities)
	}

	_, err = SelectCities([]string{"brest"})

	if !errors.Is(err, ErrUnknownCity) {
		t.Fatalf("Expected ErrUnknownCity, got %v", err)
	}

	all, _ := SelectCities([]string{All})

	if len(all) != len(MajorCities) {
		t.Fatalf("Expected every city")
	}

	categories, err := SelectCategories([]string{"nature", "Nature", "histoire"})

	if err != nil || len(categories) != 2 {
		t.Fatalf("Unexpected categories %v %v", categories, err)
	}

	_, err = SelectCategories([]string{"shopping"})

	if !errors.Is(err, category.ErrUnknownCategory) {
		t.Fatalf("Expected ErrUnknownCategory, got %v", err)
	}
}

func TestRun(t *testing.T) {

	ctx := context.Background()

	osm := &fakeSource{
		name:         SourceOSM,
		per_category: true,
		fn: func(city *City, c category.Category) ([]*poi.POI, error) {
			return []*poi.POI{spot(city, c, identity.SourceOpenStreetMap)}, nil
		},
	}

	google := &fakeSource{
		name:         SourcePlaces,
		per_category: true,
		enabled:      func(city *City) bool { return city.UsePlaces },
		fn: func(city *City, c category.Category) ([]*poi.POI, error) {
			return []*poi.POI{spot(city, c, identity.SourceGooglePlaces)}, nil
		},
	}

	opendata := &fakeSource{
		name: SourceDatagouv,
		fn: func(city *City, c category.Category) ([]*poi.POI, error) {
			return nil, fmt.Errorf("dataset unavailable")
		},
	}

	cities, _ := SelectCities([]string{"paris", "nantes"})

	sleeps := make([]time.Duration, 0)

	b := memblob.OpenBucket(nil)
	defer b.Close()

	report, err := Run(ctx, &Options{
		Cities:     cities,
		Categories: []category.Category{category.Culture, category.Nature},
		Sources:    []Source{osm, google, opendata},
		Pause:      DefaultPause,
		Cooldown:   DefaultCooldown,
		Sleep: func(ctx context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)
			return nil
		},
		Bucket: b,
	})

	if err != nil {
		t.Fatalf("Failed to run hybrid import, %v", err)
	}

	if osm.calls != 4 || google.calls != 2 || opendata.calls != 2 {
		t.Fatalf("Unexpected calls osm=%d google=%d datagouv=%d", osm.calls, google.calls, opendata.calls)
	}

	// 4 osm + 2 google pauses, one cooldown between the two cities
	if len(sleeps) != 7 || sleeps[4] != DefaultCooldown {
		t.Fatalf("Unexpected sleeps %v", sleeps)
	}

	if len(report.Records) != 4 || report.Merge.Collisions != 2 || report.Merge.Replaced != 2 {
		t.Fatalf("Unexpected merge %+v", report.Merge)
	}

	shares := report.Shares()

	if shares[identity.SourceGooglePlaces] != 2 || shares[identity.SourceOpenStreetMap] != 2 {
		t.Fatalf("Unexpected shares %v", shares)
	}

	if report.Errors == nil || len(report.Errors.Errors) != 2 {
		t.Fatalf("Expected 2 provider errors, got %v", report.Errors)
	}

	if report.PlacesRequests() != 2 || report.EstimatedCost() != 2*0.017 {
		t.Fatalf("Unexpected cost %d %f", report.PlacesRequests(), report.EstimatedCost())
	}

	if len(report.Files) != 6 {
		t.Fatalf("Expected 6 intermediate files, got %v", report.Files)
	}

	ok, err := b.Exists(ctx, "pois_paris_culture_google.json")

	if err != nil || !ok {
		t.Fatalf("Expected intermediate file to exist, %v", err)
	}

	var buf bytes.Buffer
	report.Summary(&buf)

	if !strings.Contains(buf.String(), "2 provider call(s) failed") {
		t.Fatalf("Unexpected summary %s", buf.String())
	}

	if !strings.Contains(buf.String(), "Collisions     : 2 (2 by native id, 0 by name and coordinates, best effort)") {
		t.Fatalf("Expected summary to separate native and heuristic collisions, got %s", buf.String())
	}

	if !strings.Contains(buf.String(), identity.HeuristicNote) {
		t.Fatalf("Expected summary to describe the name and coordinates heuristic as best effort")
	}
}

func TestRunCancelled(t *testing.T) {

	ctx, cancel := context.WithCancel(context.Background())

	osm := &fakeSource{
		name:         SourceOSM,
		per_category: true,
		fn: func(city *City, c category.Category) ([]*poi.POI, error) {
			cancel()
			return nil, context.Canceled
		},
	}

	_, err := Run(ctx, &Options{
		Cities:     MajorCities,
		Categories: category.All,
		Sources:    []Source{osm},
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected cancellation, got %v", err)
	}

	if osm.calls != 1 {
		t.Fatalf("Expected the run to stop after the first call, got %d calls", osm.calls)
	}
}
