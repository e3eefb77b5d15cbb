package datagouv

import (
	"time"

	"github.com/allspots/go-poi-import/fields"
	"github.com/allspots/go-poi-import/geometry"
	"github.com/allspots/go-poi-import/poi"
	"github.com/tidwall/gjson"
)

const DefaultName = "Sans nom"

var ImagePaths = fields.Paths{
	"image",
	"illustration",
}

var WebsitePaths = fields.Paths{
	"url",
	"site_internet",
}

var PhonePaths = fields.Paths{
	"telephone",
}

// Convert turns a dataset row into a POI. Rows outside metropolitan France are rejected.
func Convert(row gjson.Result, d *Dataset, now time.Time) (*poi.POI, error) {

	lat, lng, ok := d.Coordinates.Resolve(row)

	if !ok || lat == 0 || lng == 0 {
		return nil, poi.ErrInvalidLocation
	}

	name := d.NamePaths.StringOr(row, DefaultName)

	p := poi.New(name, lat, lng, d.Category, d.Source())

	err := p.Validate(&geometry.MetropolitanFrance)

	if err != nil {
		return nil, err
	}

	p.Description = poi.Truncate(d.DescriptionPaths.StringOr(row, ""), poi.MaxDescLength)
	p.City = d.CityPaths.StringOr(row, poi.DefaultCity)
	p.Website = WebsitePaths.StringOr(row, "")
	p.Phone = PhonePaths.StringOr(row, "")

	if img, ok := ImagePaths.String(row); ok && img != "None" {
		p.AddImages(img)
	}

	for k, path := range d.Extras {
		p.SetExtra(k, fields.Paths{path}.StringOr(row, ""))
	}

	if now.IsZero() {
		now = time.Now()
	}

	p.CreatedAt = poi.NewTimestamp(now)

	return p, nil
}
