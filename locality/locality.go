// Package locality resolves the city of a coordinate by point-in-polygon lookups against
// a Who's On First spatial database.
package locality

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/tidwall/sjson"
	"github.com/whosonfirst/go-reader"
	"github.com/whosonfirst/go-whosonfirst-iterate/v2/iterator"
	"github.com/whosonfirst/go-whosonfirst-spatial/database"
	spatial_filter "github.com/whosonfirst/go-whosonfirst-spatial/filter"
	"github.com/whosonfirst/go-whosonfirst-spatial/hierarchy"
	hierarchy_filter "github.com/whosonfirst/go-whosonfirst-spatial/hierarchy/filter"
)

// DefaultPlacetype is the placetype assigned to the lookup feature. The first common
// ancestor of a neighbourhood is its locality.
const DefaultPlacetype = "neighbourhood"

// DefaultAccept lists the placetypes whose name is used as a city.
var DefaultAccept = []string{"locality", "localadmin", "borough"}

// CityResolver returns the city name of a coordinate.
type CityResolver interface {
	City(context.Context, float64, float64) (string, bool, error)
	Close(context.Context) error
}

type ResolverOptions struct {
	// SpatialDatabaseURI is a go-whosonfirst-spatial database URI, for example
	// "sqlite://?dsn=modernc:///usr/local/data/fr.db" or a pmtiles:// URI.
	SpatialDatabaseURI string
	// IteratorURI and IteratorSources, when set, index records into the database before
	// the first lookup.
	IteratorURI     string
	IteratorSources []string
	Placetype       string
	Accept          []string
}

// Locality is the place a coordinate falls into.
type Locality struct {
	Id        string
	Name      string
	Placetype string
	Country   string
	Repo      string
}

// Resolver is a CityResolver backed by a point-in-polygon hierarchy resolver.
type Resolver struct {
	db        database.SpatialDatabase
	resolver  *hierarchy.PointInPolygonHierarchyResolver
	inputs    *spatial_filter.SPRInputs
	reader    reader.Reader
	placetype string
	accept    []string
}

func NewResolver(ctx context.Context, opts *ResolverOptions) (*Resolver, error) {

	spatial_db, err := database.NewSpatialDatabase(ctx, opts.SpatialDatabaseURI)

	if err != nil {
		return nil, fmt.Errorf("Failed to create spatial database, %w", err)
	}

	if opts.IteratorURI != "" && len(opts.IteratorSources) > 0 {

		err := Index(ctx, spatial_db, opts.IteratorURI, opts.IteratorSources...)

		if err != nil {
			return nil, err
		}
	}

	resolver_opts := &hierarchy.PointInPolygonHierarchyResolverOptions{
		Database: spatial_db,
		Roles: []string{
			"common",
		},
	}

	resolver, err := hierarchy.NewPointInPolygonHierarchyResolver(ctx, resolver_opts)

	if err != nil {
		return nil, fmt.Errorf("Failed to create new PIP resolver, %w", err)
	}

	rdr, err := reader.NewReader(ctx, "null://")

	if err != nil {
		return nil, fmt.Errorf("Failed to create null reader, %w", err)
	}

	placetype := opts.Placetype

	if placetype == "" {
		placetype = DefaultPlacetype
	}

	accept := opts.Accept

	if len(accept) == 0 {
		accept = DefaultAccept
	}

	r := &Resolver{
		db:       spatial_db,
		resolver: resolver,
		inputs: &spatial_filter.SPRInputs{
			IsCurrent: []int64{1},
		},
		reader:    rdr,
		placetype: placetype,
		accept:    accept,
	}

	return r, nil
}

// Index adds every record emitted by 'iterator_uri' for 'sources' to 'spatial_db'.
func Index(ctx context.Context, spatial_db database.SpatialDatabase, iterator_uri string, sources ...string) error {

	iter_cb := func(ctx context.Context, path string, r io.ReadSeeker, args ...interface{}) error {

		body, err := io.ReadAll(r)

		if err != nil {
			return fmt.Errorf("Failed to read body for %s, %w", path, err)
		}

		err = spatial_db.IndexFeature(ctx, body)

		if err != nil {
			return fmt.Errorf("Failed to index %s, %w", path, err)
		}

		return nil
	}

	iter, err := iterator.NewIterator(ctx, iterator_uri, iter_cb)

	if err != nil {
		return fmt.Errorf("Failed to create new iterator, %w", err)
	}

	err = iter.IterateURIs(ctx, sources...)

	if err != nil {
		return fmt.Errorf("Failed to iterate sources, %w", err)
	}

	return nil
}

// Body returns the GeoJSON feature used to query the hierarchy resolver for a coordinate.
func Body(lat float64, lng float64, placetype string) ([]byte, error) {

	f := geojson.NewFeature(orb.Point{lng, lat})
	f.Properties["wof:id"] = -1
	f.Properties["wof:name"] = "allspots lookup"

	body, err := f.MarshalJSON()

	if err != nil {
		return nil, fmt.Errorf("Failed to marshal feature, %w", err)
	}

	body, err = sjson.SetBytes(body, "properties.wof:placetype", placetype)

	if err != nil {
		return nil, fmt.Errorf("Failed to assign placetype, %w", err)
	}

	return body, nil
}

// Locate returns the first place containing the coordinate, if any.
func (r *Resolver) Locate(ctx context.Context, lat float64, lng float64) (*Locality, bool, error) {

	body, err := Body(lat, lng, r.placetype)

	if err != nil {
		return nil, false, err
	}

	possible, err := r.resolver.PointInPolygon(ctx, r.inputs, body)

	if err != nil {
		return nil, false, fmt.Errorf("Failed to perform point in polygon lookup, %w", err)
	}

	parent_spr, err := hierarchy_filter.FirstButForgivingSPRResultsFunc(ctx, r.reader, body, possible)

	if err != nil {
		return nil, false, fmt.Errorf("Failed to select parent, %w", err)
	}

	if parent_spr == nil {
		return nil, false, nil
	}

	l := &Locality{
		Id:        parent_spr.Id(),
		Name:      parent_spr.Name(),
		Placetype: parent_spr.Placetype(),
		Country:   parent_spr.Country(),
		Repo:      parent_spr.Repo(),
	}

	return l, true, nil
}

// City returns the name of the accepted place containing the coordinate.
func (r *Resolver) City(ctx context.Context, lat float64, lng float64) (string, bool, error) {

	l, ok, err := r.Locate(ctx, lat, lng)

	if err != nil || !ok {
		return "", false, err
	}

	if !r.Accepts(l) {
		slog.Debug("Ignore parent placetype", "id", l.Id, "placetype", l.Placetype)
		return "", false, nil
	}

	return l.Name, true, nil
}

// Accepts reports whether 'l' is a place whose name can be used as a city.
func (r *Resolver) Accepts(l *Locality) bool {
	return l.Name != "" && slices.Contains(r.accept, l.Placetype)
}

func (r *Resolver) Close(ctx context.Context) error {
	return r.db.Disconnect(ctx)
}
