// Package poi defines the canonical point-of-interest record shared by every importer,
// together with the value types (locations, timestamps, image URLs) it is built from.
package poi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/geometry"
	"github.com/paulmach/orb"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	DefaultCity     = "Non spécifiée"
	PlaceholderName = "POI sans nom"
	MaxImages       = 5
	MaxNameLength   = 100
	MaxDescLength   = 500
)

var ErrInvalidLocation = errors.New("Invalid location")

var ErrOutOfBounds = errors.New("Location outside territory")

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Waypoint struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	Elevation   *float64 `json:"elevation,omitempty"`
}

// POI is the canonical record written to export files and to the spots collection.
// Source specific attributes without a dedicated field are kept in Extras and
// marshalled as top-level properties.
type POI struct {
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Location         Location          `json:"location"`
	Category         category.Category `json:"category"`
	CategoryGroup    string            `json:"categoryGroup,omitempty"`
	CategoryItem     string            `json:"categoryItem,omitempty"`
	City             string            `json:"city"`
	Country          string            `json:"country,omitempty"`
	Address          string            `json:"address,omitempty"`
	Images           []string          `json:"images"`
	Website          string            `json:"website,omitempty"`
	Phone            string            `json:"phone,omitempty"`
	Rating           float64           `json:"rating,omitempty"`
	Types            []string          `json:"types,omitempty"`
	OpeningHours     []string          `json:"opening_hours,omitempty"`
	Source           string            `json:"source"`
	OSMId            int64             `json:"osmId,omitempty"`
	PlaceId          string            `json:"place_id,omitempty"`
	UnescoId         string            `json:"unescoId,omitempty"`
	UnescoCategory   string            `json:"unescoCategory,omitempty"`
	PMRAccessible    *bool             `json:"pmrAccessible,omitempty"`
	Difficulty       string            `json:"difficulty,omitempty"`
	IsPublic         bool              `json:"isPublic"`
	IsValidated      bool              `json:"isValidated"`
	CreatedAt        *Timestamp        `json:"createdAt,omitempty"`
	UpdatedAt        *Timestamp        `json:"updatedAt,omitempty"`
	DistanceKm       *float64          `json:"distance_km,omitempty"`
	ElevationGain    *float64          `json:"elevation_gain_m,omitempty"`
	ElevationLoss    *float64          `json:"elevation_loss_m,omitempty"`
	DurationHours    *float64          `json:"duration_hours,omitempty"`
	RouteCoordinates []Coordinate      `json:"route_coordinates,omitempty"`
	Waypoints        []Waypoint        `json:"waypoints,omitempty"`
	Extras           map[string]any    `json:"-"`
}

type poiAlias POI

var known_properties map[string]bool

func init() {

	known_properties = make(map[string]bool)

	t := reflect.TypeOf(poiAlias{})

	for i := 0; i < t.NumField(); i++ {

		tag := t.Field(i).Tag.Get("json")
		name := strings.Split(tag, ",")[0]

		if name != "" && name != "-" {
			known_properties[name] = true
		}
	}
}

// New returns a POI with the defaults every importer starts from.
func New(name string, lat float64, lng float64, c category.Category, source string) *POI {

	p := &POI{
		Name:          Truncate(name, MaxNameLength),
		Location:      Location{Latitude: lat, Longitude: lng},
		Category:      c,
		CategoryGroup: c.String(),
		City:          DefaultCity,
		Images:        make([]string, 0),
		Source:        source,
		IsPublic:      true,
		IsValidated:   true,
	}

	return p
}

// Point returns the location of 'p' as a [longitude, latitude] point.
func (p *POI) Point() orb.Point {
	return p.Location.Point()
}

// Validate checks that 'p' has a valid location and, if 'bounds' is not nil, that it
// falls inside it.
func (p *POI) Validate(bounds *orb.Bound) error {

	pt := p.Point()

	if !geometry.IsValid(pt) {
		return fmt.Errorf("%w (%f, %f)", ErrInvalidLocation, p.Location.Latitude, p.Location.Longitude)
	}

	if bounds != nil && !bounds.Contains(pt) {
		return fmt.Errorf("%w (%f, %f)", ErrOutOfBounds, p.Location.Latitude, p.Location.Longitude)
	}

	return nil
}

// SetExtra assigns a source specific property.
func (p *POI) SetExtra(key string, value any) {

	if p.Extras == nil {
		p.Extras = make(map[string]any)
	}

	p.Extras[key] = value
}

// AddImages appends normalized image URLs to 'p', skipping duplicates and stopping at MaxImages.
func (p *POI) AddImages(candidates ...string) {
	p.Images = CollectImages(append(p.Images, candidates...), MaxImages)
}

func (p POI) MarshalJSON() ([]byte, error) {

	if p.Images == nil {
		p.Images = make([]string, 0)
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	err := enc.Encode(poiAlias(p))

	if err != nil {
		return nil, err
	}

	body := bytes.TrimRight(buf.Bytes(), "\n")

	keys := make([]string, 0, len(p.Extras))

	for k := range p.Extras {

		if known_properties[k] {
			continue
		}

		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {

		body, err = sjson.SetBytes(body, escapePath(k), p.Extras[k])

		if err != nil {
			return nil, fmt.Errorf("Failed to assign %s, %w", k, err)
		}
	}

	return body, nil
}

func (p *POI) UnmarshalJSON(body []byte) error {

	var a poiAlias

	err := json.Unmarshal(body, &a)

	if err != nil {
		return err
	}

	gjson.ParseBytes(body).ForEach(func(k gjson.Result, v gjson.Result) bool {

		if known_properties[k.String()] {
			return true
		}

		if a.Extras == nil {
			a.Extras = make(map[string]any)
		}

		a.Extras[k.String()] = v.Value()
		return true
	})

	*p = POI(a)
	return nil
}

// Truncate shortens 's' to at most 'max' runes.
func Truncate(s string, max int) string {

	s = strings.TrimSpace(s)
	r := []rune(s)

	if len(r) <= max {
		return s
	}

	return string(r[:max])
}

func escapePath(k string) string {

	for _, c := range []string{".", "*", "?", "|", "#", "@"} {
		k = strings.ReplaceAll(k, c, `\`+c)
	}

	return k
}
