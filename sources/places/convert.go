package places

import (
	"time"

	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/fields"
	"github.com/allspots/go-poi-import/identity"
	"github.com/allspots/go-poi-import/poi"
	"github.com/tidwall/gjson"
)

const DefaultPhotoWidth = 800

const DefaultName = "Sans nom"

var Coordinates = &fields.Coordinates{
	Pairs: []fields.Pair{
		{Lat: "geometry.location.lat", Lng: "geometry.location.lng"},
	},
}

type ConvertOptions struct {
	Category category.Category
	City     string
	Now      time.Time
}

// Convert turns a place, and its details when available, into a POI. The details take
// precedence; the search result is the fallback.
func (c *Client) Convert(place gjson.Result, details gjson.Result, opts *ConvertOptions) (*poi.POI, error) {

	r := place

	if details.IsObject() {
		r = details
	}

	lat, lng, ok := Coordinates.Resolve(r)

	if !ok || lat == 0 || lng == 0 {
		return nil, poi.ErrInvalidLocation
	}

	name := fields.Paths{"name"}.StringOr(r, DefaultName)

	p := poi.New(name, lat, lng, opts.Category, identity.SourceGooglePlaces)

	err := p.Validate(nil)

	if err != nil {
		return nil, err
	}

	p.Description = poi.Truncate(r.Get("formatted_address").String(), poi.MaxDescLength)
	p.Address = r.Get("formatted_address").String()
	p.PlaceId = place.Get("place_id").String()
	p.Rating = r.Get("rating").Float()
	p.Website = r.Get("website").String()
	p.Phone = r.Get("formatted_phone_number").String()

	if opts.City != "" {
		p.City = opts.City
	}

	p.AddImages(c.photoURLs(r, poi.MaxImages, DefaultPhotoWidth)...)

	for _, t := range r.Get("types").Array() {
		p.Types = append(p.Types, t.String())
	}

	if len(p.Types) > 0 {
		p.CategoryItem = p.Types[0]
	}

	for _, h := range r.Get("opening_hours.weekday_text").Array() {
		p.OpeningHours = append(p.OpeningHours, h.String())
	}

	now := opts.Now

	if now.IsZero() {
		now = time.Now()
	}

	p.CreatedAt = poi.NewTimestamp(now)

	return p, nil
}
