package unesco

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/fields"
	"github.com/allspots/go-poi-import/identity"
	"github.com/allspots/go-poi-import/poi"
	"github.com/tidwall/gjson"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const DefaultCity = "France"

const DefaultDescription = "Site UNESCO"

const website_template = "https://whc.unesco.org/en/list/%s"

var NamePaths = fields.Paths{"name_en", "name_fr", "name", "site", "property", "title"}

var DescriptionPaths = fields.Paths{"short_description", "short_description_en", "short_description_fr", "description", "desc", "summary"}

var CityPaths = fields.Paths{"city", "region", "province", "location"}

var IdPaths = fields.Paths{"id", "unesco_id", "unique_number", "wh_id"}

var CategoryPaths = fields.Paths{"category", "category_en", "category_short", "type"}

var StatePaths = fields.Paths{"states_name_en", "states_name_fr", "states_name", "states", "country", "country_en", "country_fr"}

var Coordinates = &fields.Coordinates{
	Pairs: []fields.Pair{
		{Lat: "latitude", Lng: "longitude"},
		{Lat: "lat", Lng: "lng"},
		{Lat: "lat", Lng: "lon"},
	},
}

type ConvertOptions struct {
	// Countries restricts UNESCO list records to sites whose states include one of
	// these names (case insensitive). Empty means no restriction.
	Countries []string
	// Category keeps only the sites mapped to this category. Empty means all.
	Category category.Category
	// Limit caps the number of records returned. Zero means no limit.
	Limit int
	Now   time.Time
}

// ConvertList converts the records of a UNESCO list document. Sites are deduplicated by
// UNESCO id.
func ConvertList(data gjson.Result, opts *ConvertOptions) []*poi.POI {

	pois := make([]*poi.POI, 0)
	seen := make(map[string]bool)

	for _, item := range Records(data) {

		props := item.Get("properties")

		if !props.IsObject() {
			props = item.Get("fields")
		}

		if !props.IsObject() {
			props = item
		}

		geom := item.Get("geometry")

		if !geom.Exists() {
			geom = props.Get("geometry")
		}

		states := States(props)

		if len(opts.Countries) > 0 && !matchesCountries(states, opts.Countries) {
			continue
		}

		lat, lng, ok := coordinates(props, geom)

		if !ok {
			continue
		}

		name, ok := NamePaths.String(props)

		if !ok {
			continue
		}

		heritage := "cultural"

		if raw, ok := CategoryPaths.String(props); ok {
			heritage = CategoryFromText(raw)
		}

		id, _ := IdPaths.String(props)

		if id != "" {

			if seen[id] {
				continue
			}

			seen[id] = true
		}

		p, ok := newSite(name, lat, lng, heritage, id, opts)

		if !ok {
			continue
		}

		p.Description = poi.Truncate(DescriptionPaths.StringOr(props, ""), poi.MaxDescLength)
		p.City = CityPaths.StringOr(props, DefaultCity)
		p.Country = country(states)

		pois = append(pois, p)

		if opts.Limit > 0 && len(pois) >= opts.Limit {
			break
		}
	}

	return pois
}

// ConvertWikidata converts SPARQL bindings of WikidataQuery. Bindings without a label or
// a parsable coordinate are skipped.
func ConvertWikidata(bindings []gjson.Result, opts *ConvertOptions) []*poi.POI {

	pois := make([]*poi.POI, 0)
	seen := make(map[string]bool)

	for _, b := range bindings {

		name := strings.TrimSpace(b.Get("itemLabel.value").String())

		lat, lng, ok := ParsePoint(b.Get("coord.value").String())

		if name == "" || !ok {
			continue
		}

		label := strings.TrimSpace(b.Get("heritageLabel.value").String())
		heritage := CategoryFromText(label)

		id := strings.TrimSpace(b.Get("unescoId.value").String())

		if id != "" {

			if seen[id] {
				continue
			}

			seen[id] = true
		}

		p, ok := newSite(name, lat, lng, heritage, id, opts)

		if !ok {
			continue
		}

		p.Description = label

		if p.Description == "" {
			p.Description = DefaultDescription
		}

		p.City = DefaultCity
		p.Country = "France"
		p.SetExtra("provider", ProviderWikidata)

		pois = append(pois, p)

		if opts.Limit > 0 && len(pois) >= opts.Limit {
			break
		}
	}

	return pois
}

func newSite(name string, lat float64, lng float64, heritage string, id string, opts *ConvertOptions) (*poi.POI, bool) {

	c := category.Heritage.Map(heritage)

	if opts.Category != "" && c != opts.Category {
		return nil, false
	}

	p := poi.New(name, lat, lng, c, identity.SourceUnesco)

	if p.Validate(nil) != nil {
		return nil, false
	}

	p.UnescoId = id
	p.UnescoCategory = heritage

	if id != "" {
		p.Website = fmt.Sprintf(website_template, id)
	}

	now := opts.Now

	if now.IsZero() {
		now = time.Now()
	}

	p.CreatedAt = poi.NewTimestamp(now)

	return p, true
}

// ParsePoint parses a WKT "Point(<lng> <lat>)" literal.
func ParsePoint(v string) (float64, float64, bool) {

	v = strings.TrimSpace(v)

	if !strings.HasPrefix(v, "Point(") || !strings.HasSuffix(v, ")") {
		return 0, 0, false
	}

	parts := strings.Fields(v[len("Point(") : len(v)-1])

	if len(parts) != 2 {
		return 0, 0, false
	}

	lng, err_lng := strconv.ParseFloat(strings.ReplaceAll(parts[0], ",", "."), 64)
	lat, err_lat := strconv.ParseFloat(strings.ReplaceAll(parts[1], ",", "."), 64)

	if err_lng != nil || err_lat != nil {
		return 0, 0, false
	}

	return lat, lng, true
}

// States returns the lower-cased state names of a site record. Values may be lists or
// strings separated by commas, slashes or ampersands.
func States(props gjson.Result) []string {

	raw, ok := StatePaths.Result(props)

	if !ok {
		return nil
	}

	values := []gjson.Result{raw}

	if raw.IsArray() {
		values = raw.Array()
	}

	states := make([]string, 0)

	replacer := strings.NewReplacer("/", ",", "&", ",")

	for _, v := range values {

		text := replacer.Replace(strings.TrimSpace(v.String()))

		for _, part := range strings.Split(text, ",") {

			cleaned := strings.ToLower(strings.TrimSpace(part))

			if cleaned != "" {
				states = append(states, cleaned)
			}
		}
	}

	return states
}

func matchesCountries(states []string, countries []string) bool {

	for _, s := range states {

		for _, c := range countries {

			if strings.EqualFold(s, strings.TrimSpace(c)) {
				return true
			}
		}
	}

	return false
}

func country(states []string) string {

	title := cases.Title(language.Und)
	seen := make(map[string]bool)
	names := make([]string, 0)

	for _, s := range states {

		t := title.String(s)

		if seen[t] {
			continue
		}

		seen[t] = true
		names = append(names, t)
	}

	sort.Strings(names)
	return strings.Join(names, ", ")
}

func coordinates(props gjson.Result, geom gjson.Result) (float64, float64, bool) {

	pt := geom.Get("coordinates").Array()

	if len(pt) >= 2 {

		lng, ok_lng := fields.Float(pt[0])
		lat, ok_lat := fields.Float(pt[1])

		if ok_lng && ok_lat {
			return lat, lng, true
		}
	}

	return Coordinates.Resolve(props)
}
