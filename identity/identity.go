// Package identity derives deterministic document identifiers for POI records and merges
// records describing the same place across sources.
package identity

import (
	"fmt"
	"math"
	"strings"

	"github.com/allspots/go-poi-import/normalize"
	"github.com/allspots/go-poi-import/poi"
)

const MaxKeyLength = 140

const (
	SourceOpenStreetMap = "openstreetmap"
	SourceGooglePlaces  = "google_places"
	SourceUnesco        = "unesco"
)

// KeyFields are the record properties an identity key is derived from.
type KeyFields struct {
	Source        string
	OSMId         string
	PlaceId       string
	Category      string
	CategoryGroup string
	Name          string
	Lat           float64
	Lng           float64
}

// FieldsFromPOI returns the KeyFields of 'p'.
func FieldsFromPOI(p *poi.POI) *KeyFields {

	f := &KeyFields{
		Source:        p.Source,
		PlaceId:       p.PlaceId,
		Category:      p.Category.String(),
		CategoryGroup: p.CategoryGroup,
		Name:          p.Name,
		Lat:           p.Location.Latitude,
		Lng:           p.Location.Longitude,
	}

	if p.OSMId != 0 {
		f.OSMId = fmt.Sprintf("%d", p.OSMId)
	}

	return f
}

// Key returns the document identifier for 'f'. Native identifiers are used when present:
// "osm_<id>" for OpenStreetMap records, "gplaces_<place id>" for Places records.
// Otherwise the key is built from source, category, name and coordinates at six decimals,
// truncated to MaxKeyLength.
func Key(f *KeyFields) string {

	if f.Source == SourceOpenStreetMap && f.OSMId != "" {
		return fmt.Sprintf("osm_%s", f.OSMId)
	}

	if f.PlaceId != "" {
		return fmt.Sprintf("gplaces_%s", normalize.Slug(f.PlaceId))
	}

	source := normalize.Slug(firstNonEmpty(f.Source, "unknown"))
	cat := normalize.Slug(firstNonEmpty(f.Category, f.CategoryGroup, "other"))
	name := normalize.Slug(firstNonEmpty(f.Name, "spot"))

	key := fmt.Sprintf("%s_%s_%s_%.6f_%.6f", source, cat, name, f.Lat, f.Lng)

	if len(key) > MaxKeyLength {
		key = key[:MaxKeyLength]
	}

	return key
}

// KeyForPOI is shorthand for Key(FieldsFromPOI(p)).
func KeyForPOI(p *poi.POI) string {
	return Key(FieldsFromPOI(p))
}

// IsNative reports whether 'key' was derived from a source-native identifier.
func IsNative(key string) bool {
	return strings.HasPrefix(key, "osm_") || strings.HasPrefix(key, "gplaces_")
}

// MatchKey returns the cross-source geographic identity of 'p': its normalized name and
// its coordinates rounded to four decimals (about 11 metres).
func MatchKey(p *poi.POI) string {

	lat := math.Round(p.Location.Latitude*1e4) / 1e4
	lng := math.Round(p.Location.Longitude*1e4) / 1e4

	return fmt.Sprintf("%s_%.4f_%.4f", normalize.Text(p.Name), lat, lng)
}

// firstNonEmpty returns the first value that is not the empty string. Whitespace-only
// values count as set.
func firstNonEmpty(values ...string) string {

	for _, v := range values {

		if v != "" {
			return v
		}
	}

	return ""
}
