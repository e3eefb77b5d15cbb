// Package importer turns the records of a canonical export file into the documents
// written to the spots collection.
package importer

import (
	"errors"

	"github.com/allspots/go-poi-import/fields"
	"github.com/allspots/go-poi-import/geometry"
	"github.com/allspots/go-poi-import/identity"
	"github.com/allspots/go-poi-import/poi"
	"github.com/allspots/go-poi-import/store"
	"github.com/paulmach/orb"
	"github.com/tidwall/gjson"
)

var ErrNotAnObject = errors.New("Record is not an object")

// Coordinates is the coordinate resolution table for export records.
var Coordinates = &fields.Coordinates{
	Pairs: []fields.Pair{
		{Lat: "lat", Lng: "lng"},
		{Lat: "location._latitude", Lng: "location._longitude"},
		{Lat: "location.latitude", Lng: "location.longitude"},
	},
}

type Prepared struct {
	Mutations []*store.Mutation
	// Skipped counts records that were not objects or had no usable, in range coordinates.
	Skipped int
	// Duplicates counts records whose identifier was already prepared.
	Duplicates int
}

// Prepare converts 'records' into upsert mutations keyed by identity key. The first record
// wins when two records share an identifier.
func Prepare(records []gjson.Result) *Prepared {

	p := &Prepared{
		Mutations: make([]*store.Mutation, 0, len(records)),
	}

	seen := make(map[string]bool)

	for _, r := range records {

		id, doc, err := PrepareRecord(r)

		if err != nil {
			p.Skipped += 1
			continue
		}

		if seen[id] {
			p.Duplicates += 1
			continue
		}

		seen[id] = true

		m := &store.Mutation{
			Type:   store.Upsert,
			Id:     id,
			Fields: doc,
		}

		p.Mutations = append(p.Mutations, m)
	}

	return p
}

// PrepareRecord returns the identifier and document fields for one export record. All of
// the record's properties are kept; location, lat, lng, images, imageUrls, isPublic,
// isValidated, createdAt, updatedAt, dedupeKey and importedAt are (re)assigned.
func PrepareRecord(r gjson.Result) (string, map[string]any, error) {

	if !r.IsObject() {
		return "", nil, ErrNotAnObject
	}

	lat, lng, ok := Coordinates.Resolve(r)

	if !ok || !geometry.IsValid(orb.Point{lng, lat}) {
		return "", nil, poi.ErrInvalidLocation
	}

	key_fields := &identity.KeyFields{
		Source:        r.Get("source").String(),
		PlaceId:       r.Get("place_id").String(),
		Category:      r.Get("category").String(),
		CategoryGroup: r.Get("categoryGroup").String(),
		Name:          r.Get("name").String(),
		Lat:           lat,
		Lng:           lng,
	}

	osm_id := r.Get("osmId")

	if osm_id.Exists() && osm_id.Type != gjson.Null {
		key_fields.OSMId = osm_id.String()
	}

	id := identity.Key(key_fields)

	doc, ok := r.Value().(map[string]any)

	if !ok {
		return "", nil, ErrNotAnObject
	}

	images := poi.CollectImages(poi.ImageCandidates(r), poi.MaxImages)

	doc["location"] = store.GeoPoint{Latitude: lat, Longitude: lng}
	doc["lat"] = lat
	doc["lng"] = lng
	doc["imageUrls"] = images
	doc["images"] = images
	doc["isPublic"] = flag(r.Get("isPublic"), true)
	doc["isValidated"] = flag(r.Get("isValidated"), true)
	doc["createdAt"] = timestamp(r.Get("createdAt"))
	doc["updatedAt"] = timestamp(r.Get("updatedAt"))
	doc["dedupeKey"] = id
	doc["importedAt"] = store.ServerTimestamp

	return id, doc, nil
}

func flag(r gjson.Result, fallback bool) bool {

	if !r.Exists() {
		return fallback
	}

	return r.Bool()
}

func timestamp(r gjson.Result) any {

	t, ok := poi.ParseTimestamp(r)

	if !ok {
		return store.ServerTimestamp
	}

	return t
}
