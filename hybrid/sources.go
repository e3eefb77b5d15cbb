package hybrid

import (
	"context"
	"time"

	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/geometry"
	"github.com/allspots/go-poi-import/poi"
	"github.com/allspots/go-poi-import/sources"
	"github.com/allspots/go-poi-import/sources/datagouv"
	"github.com/allspots/go-poi-import/sources/overpass"
	"github.com/allspots/go-poi-import/sources/places"
)

const (
	SourceOSM      = "osm"
	SourcePlaces   = "google"
	SourceDatagouv = "datagouv"
)

// Source is one provider queried by the orchestrator.
type Source interface {
	Name() string
	// PerCategory reports whether Import is called once per category, or once per city
	// with an empty category.
	PerCategory() bool
	Enabled(city *City) bool
	Import(ctx context.Context, city *City, c category.Category) ([]*poi.POI, *sources.Stats, error)
}

type overpassSource struct {
	client *overpass.Client
}

// NewOverpassSource queries OpenStreetMap around each city, keeping the nodes inside
// metropolitan France.
func NewOverpassSource(client *overpass.Client) Source {
	return &overpassSource{client: client}
}

func (s *overpassSource) Name() string {
	return SourceOSM
}

func (s *overpassSource) PerCategory() bool {
	return true
}

func (s *overpassSource) Enabled(city *City) bool {
	return true
}

func (s *overpassSource) Import(ctx context.Context, city *City, c category.Category) ([]*poi.POI, *sources.Stats, error) {

	opts := &overpass.ImportOptions{
		Lat:      city.Lat,
		Lng:      city.Lng,
		Radius:   city.Radius,
		Category: c,
		Bounds:   &geometry.MetropolitanFrance,
		Now:      time.Now(),
	}

	return s.client.Import(ctx, opts)
}

type placesSource struct {
	client *places.Client
}

// NewPlacesSource searches Google Places in the cities that enable it.
func NewPlacesSource(client *places.Client) Source {
	return &placesSource{client: client}
}

func (s *placesSource) Name() string {
	return SourcePlaces
}

func (s *placesSource) PerCategory() bool {
	return true
}

func (s *placesSource) Enabled(city *City) bool {
	return city.UsePlaces && city.PlacesLimit > 0
}

func (s *placesSource) Import(ctx context.Context, city *City, c category.Category) ([]*poi.POI, *sources.Stats, error) {

	opts := &places.ImportOptions{
		Lat:      city.Lat,
		Lng:      city.Lng,
		Radius:   city.Radius,
		Category: c,
		City:     city.Label(),
		Limit:    city.PlacesLimit,
		Now:      time.Now(),
	}

	return s.client.Import(ctx, opts)
}

type datagouvSource struct {
	client   *sources.Client
	datasets []*datagouv.Dataset
}

// NewDatagouvSource fetches the open-data datasets once per city, filtered on the city's
// department.
func NewDatagouvSource(client *sources.Client, datasets []*datagouv.Dataset) Source {
	return &datagouvSource{client: client, datasets: datasets}
}

func (s *datagouvSource) Name() string {
	return SourceDatagouv
}

func (s *datagouvSource) PerCategory() bool {
	return false
}

func (s *datagouvSource) Enabled(city *City) bool {
	return city.Department != ""
}

func (s *datagouvSource) Import(ctx context.Context, city *City, c category.Category) ([]*poi.POI, *sources.Stats, error) {
	return datagouv.Import(ctx, s.client, s.datasets, city.Department, time.Now())
}
