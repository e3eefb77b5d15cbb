package outdoor

import (
	"fmt"
	"strings"
	"time"

	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/fields"
	"github.com/allspots/go-poi-import/geometry"
	"github.com/allspots/go-poi-import/poi"
	"github.com/paulmach/orb"
	"github.com/tidwall/gjson"
)

const DefaultSource = "decathlon"

const DefaultName = "Sans nom"

const DefaultDescription = "Itinéraire outdoor"

// ImageOrigin prefixes the relative image paths found in exports.
const ImageOrigin = "https://www.decathlon-outdoor.com"

var NamePaths = fields.Paths{"name", "title", "nom"}

var DescriptionPaths = fields.Paths{"description", "summary"}

var CityPaths = fields.Paths{"city", "commune", "location"}

var ActivityPaths = fields.Paths{"activity", "type"}

var WebsitePaths = fields.Paths{"url", "link"}

var RatingPaths = fields.Paths{"rating", "note"}

var DistancePaths = fields.Paths{"distance", "length"}

var ElevationGainPaths = fields.Paths{"elevation_gain", "denivele"}

var DurationPaths = fields.Paths{"duration", "duree"}

// SequencePaths are the properties holding the route geometry.
var SequencePaths = fields.Paths{"coordinates", "points"}

var ElevationPaths = fields.Paths{"ele", "elevation", "alt", "altitude"}

var Coordinates = &fields.Coordinates{
	Pairs: []fields.Pair{
		{Lat: "lat", Lng: "lng"},
		{Lat: "latitude", Lng: "longitude"},
		{Lat: "start_point.lat", Lng: "start_point.lng"},
		{Lat: "start_point.latitude", Lng: "start_point.longitude"},
		{Lat: "depart.lat", Lng: "depart.lng"},
		{Lat: "depart.latitude", Lng: "depart.longitude"},
		{Lat: "start.lat", Lng: "start.lng"},
		{Lat: "start.latitude", Lng: "start.longitude"},
	},
	Sequences: SequencePaths,
}

type ConvertOptions struct {
	// Source is the provider prefix; records are tagged "<Source>_outdoor".
	Source string
	Now    time.Time
}

// Track is the geometry of a route: its points and, when every point carries one, the
// aligned elevation samples.
type Track struct {
	Points     []orb.Point
	Elevations []float64
}

// Convert turns a route into a POI located at its start point. Distance, elevation and
// duration are derived from the route geometry when the route carries one and copied
// from the route statistics otherwise.
func Convert(route gjson.Result, opts *ConvertOptions) (*poi.POI, error) {

	if opts == nil {
		opts = &ConvertOptions{}
	}

	lat, lng, ok := Coordinates.Resolve(route)

	if !ok || lat == 0 || lng == 0 {
		return nil, poi.ErrInvalidLocation
	}

	activity := strings.ToLower(ActivityPaths.StringOr(route, DefaultActivity))
	c := category.Activities.Map(activity)

	source := opts.Source

	if source == "" {
		source = DefaultSource
	}

	name := NamePaths.StringOr(route, DefaultName)

	p := poi.New(name, lat, lng, c, fmt.Sprintf("%s_outdoor", source))

	err := p.Validate(nil)

	if err != nil {
		return nil, err
	}

	p.CategoryItem = activity
	p.City = CityPaths.StringOr(route, poi.DefaultCity)
	p.Website = WebsitePaths.StringOr(route, "")
	p.Difficulty = fields.Paths{"difficulty"}.StringOr(route, "")

	if rating, ok := RatingPaths.Float(route); ok {
		p.Rating = rating
	}

	p.AddImages(Images(route)...)

	track := ReadTrack(route)

	if len(track.Points) >= 2 {
		ApplyTrack(p, track)
	} else {
		applyStatistics(p, route)
	}

	p.Description = poi.Truncate(DescriptionPaths.StringOr(route, describe(p)), poi.MaxDescLength)

	now := opts.Now

	if now.IsZero() {
		now = time.Now()
	}

	p.CreatedAt = poi.NewTimestamp(now)

	return p, nil
}

// ApplyTrack assigns the derived distance, elevation, duration and simplified route of
// 'track' to 'p'.
func ApplyTrack(p *poi.POI, track *Track) {

	distance_km := geometry.PathLength(track.Points) / 1000
	gain, loss := geometry.ElevationChange(track.Elevations)

	distance := geometry.Round(distance_km, 2)
	duration := geometry.Round(geometry.EstimateDuration(distance_km, gain), 2)

	p.DistanceKm = &distance
	p.DurationHours = &duration

	if len(track.Elevations) >= 2 {

		gain = geometry.Round(gain, 1)
		loss = geometry.Round(loss, 1)

		p.ElevationGain = &gain
		p.ElevationLoss = &loss
	}

	simplified := geometry.Downsample(track.Points, geometry.MaxRoutePoints)
	p.RouteCoordinates = make([]poi.Coordinate, len(simplified))

	for i, pt := range simplified {
		p.RouteCoordinates[i] = poi.Coordinate{Lat: pt.Lat(), Lng: pt.Lon()}
	}
}

// ReadTrack returns the points of the first route geometry property. Points may be
// objects or [lat, lng(, elevation)] arrays; unusable points are skipped.
func ReadTrack(route gjson.Result) *Track {

	track := &Track{
		Points:     make([]orb.Point, 0),
		Elevations: make([]float64, 0),
	}

	seq, ok := SequencePaths.Result(route)

	if !ok || !seq.IsArray() {
		return track
	}

	complete := true

	for _, pt := range seq.Array() {

		var lat, lng, ele float64
		var ok, has_ele bool

		if pt.IsArray() {

			values := pt.Array()

			if len(values) < 2 {
				continue
			}

			var ok_lat, ok_lng bool
			lat, ok_lat = fields.Float(values[0])
			lng, ok_lng = fields.Float(values[1])
			ok = ok_lat && ok_lng

			if len(values) > 2 {
				ele, has_ele = fields.Float(values[2])
			}

		} else {
			lat, lng, ok = (&fields.Coordinates{Pairs: fields.DefaultPairs}).Resolve(pt)
			ele, has_ele = ElevationPaths.Float(pt)
		}

		if !ok || !geometry.IsValid(orb.Point{lng, lat}) {
			continue
		}

		track.Points = append(track.Points, orb.Point{lng, lat})

		if has_ele {
			track.Elevations = append(track.Elevations, ele)
		} else {
			complete = false
		}
	}

	if !complete {
		track.Elevations = make([]float64, 0)
	}

	return track
}

// Images returns the image references of a route, relative paths resolved against
// ImageOrigin.
func Images(route gjson.Result) []string {

	candidates := make([]string, 0)

	for _, path := range []string{"image", "cover_image"} {

		v := route.Get(path)

		if v.Type == gjson.String {
			candidates = append(candidates, v.String())
		}
	}

	list, ok := fields.Paths{"images", "photos"}.Result(route)

	if ok {

		switch {
		case list.IsArray():

			for i, v := range list.Array() {

				if i >= poi.MaxImages {
					break
				}

				candidates = append(candidates, v.String())
			}

		case list.Type == gjson.String:
			candidates = append(candidates, list.String())
		}
	}

	images := make([]string, 0, len(candidates))

	for _, c := range candidates {

		c = strings.TrimSpace(c)

		if c == "" {
			continue
		}

		if !strings.HasPrefix(c, "http") && !strings.HasPrefix(c, "//") {
			c = ImageOrigin + "/" + strings.TrimLeft(c, "/")
		}

		images = append(images, c)
	}

	return images
}

func applyStatistics(p *poi.POI, route gjson.Result) {

	if d, ok := DistancePaths.Float(route); ok && d > 0 {
		distance := geometry.Round(d/1000, 2)
		p.DistanceKm = &distance
	}

	if g, ok := ElevationGainPaths.Float(route); ok && g > 0 {
		p.ElevationGain = &g
	}

	if d, ok := DurationPaths.Float(route); ok && d > 0 {
		hours := geometry.Round(d/3600, 2)
		p.DurationHours = &hours
		return
	}

	if p.DistanceKm != nil {

		gain := 0.0

		if p.ElevationGain != nil {
			gain = *p.ElevationGain
		}

		duration := geometry.Round(geometry.EstimateDuration(*p.DistanceKm, gain), 2)
		p.DurationHours = &duration
	}
}

// describe builds a "12.5 km • D+ 450m • 4.2h" summary from the route statistics.
func describe(p *poi.POI) string {

	parts := make([]string, 0)

	if p.DistanceKm != nil && *p.DistanceKm > 0 {
		parts = append(parts, fmt.Sprintf("%.1f km", *p.DistanceKm))
	}

	if p.ElevationGain != nil && *p.ElevationGain > 0 {
		parts = append(parts, fmt.Sprintf("D+ %.0fm", *p.ElevationGain))
	}

	if p.DurationHours != nil && *p.DurationHours > 0 {
		parts = append(parts, fmt.Sprintf("%.1fh", *p.DurationHours))
	}

	if len(parts) == 0 {
		return DefaultDescription
	}

	return strings.Join(parts, " • ")
}
