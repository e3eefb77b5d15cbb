package overpass

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/fields"
	"github.com/allspots/go-poi-import/identity"
	"github.com/allspots/go-poi-import/poi"
	"github.com/paulmach/orb"
	"github.com/tidwall/gjson"
)

// ErrNoTags is returned for elements without tags, such as the skeleton nodes of
// "out skel" responses.
var ErrNoTags = errors.New("Element has no tags")

var NamePaths = fields.Paths{
	`tags.name\:fr`,
	"tags.name",
	"tags.operator",
}

var DescriptionPaths = fields.Paths{
	"tags.description",
	"tags.note",
}

var ImagePaths = fields.Paths{
	"tags.image",
	"tags.wikimedia_commons",
}

var WebsitePaths = fields.Paths{
	"tags.website",
	`tags.contact\:website`,
}

var PhonePaths = fields.Paths{
	"tags.phone",
	`tags.contact\:phone`,
}

var CityPaths = fields.Paths{
	`tags.addr\:city`,
}

// ItemPaths resolve the categoryItem of an element.
var ItemPaths = fields.Paths{
	"tags.tourism",
	"tags.amenity",
	"tags.historic",
	"tags.leisure",
	"tags.natural",
	"tags.shop",
}

// Coordinates resolves nodes (lat/lon) and ways or relations returned with "out center".
var Coordinates = &fields.Coordinates{
	Pairs: []fields.Pair{
		{Lat: "lat", Lng: "lon"},
		{Lat: "center.lat", Lng: "center.lon"},
	},
}

type ConvertOptions struct {
	// Category is assigned to every record. When empty the category is derived from
	// the element's tags with Classify.
	Category category.Category
	// Bounds, when set, rejects elements outside it.
	Bounds *orb.Bound
	// Now is the updatedAt timestamp; zero means time.Now().
	Now time.Time
}

// Convert turns an Overpass element into a POI.
func Convert(el gjson.Result, opts *ConvertOptions) (*poi.POI, error) {

	if opts == nil {
		opts = &ConvertOptions{}
	}

	tags := el.Get("tags")

	if !tags.IsObject() {
		return nil, fmt.Errorf("%w (%d)", ErrNoTags, el.Get("id").Int())
	}

	lat, lng, ok := Coordinates.Resolve(el)

	if !ok {
		return nil, fmt.Errorf("%w: element %d has no coordinates", poi.ErrInvalidLocation, el.Get("id").Int())
	}

	c := opts.Category

	if c == "" {

		classified, ok := Classify(tags)

		if !ok {
			classified = category.Culture
		}

		c = classified
	}

	name := NamePaths.StringOr(el, poi.PlaceholderName)

	p := poi.New(name, lat, lng, c, identity.SourceOpenStreetMap)
	p.OSMId = el.Get("id").Int()

	err := p.Validate(opts.Bounds)

	if err != nil {
		return nil, err
	}

	description := DescriptionPaths.StringOr(el, fmt.Sprintf("Point d'intérêt: %s", p.Name))
	p.Description = poi.Truncate(description, poi.MaxDescLength)

	p.CategoryItem = ItemPaths.StringOr(el, "other")

	if img, ok := ImagePaths.String(el); ok {
		p.AddImages(img)
	}

	p.Website = WebsitePaths.StringOr(el, "")
	p.Phone = PhonePaths.StringOr(el, "")
	p.City = CityPaths.StringOr(el, poi.DefaultCity)
	p.Address = address(tags)

	switch tags.Get("wheelchair").String() {
	case "yes":
		v := true
		p.PMRAccessible = &v
	case "no":
		v := false
		p.PMRAccessible = &v
	}

	if hours := tags.Get("opening_hours").String(); hours != "" {
		p.OpeningHours = []string{hours}
	}

	now := opts.Now

	if now.IsZero() {
		now = time.Now()
	}

	p.UpdatedAt = poi.NewTimestamp(now)

	return p, nil
}

func address(tags gjson.Result) string {

	parts := make([]string, 0)

	for _, k := range []string{`addr\:housenumber`, `addr\:street`, `addr\:postcode`, `addr\:city`} {

		v := strings.TrimSpace(tags.Get(k).String())

		if v != "" {
			parts = append(parts, v)
		}
	}

	return strings.Join(parts, " ")
}
