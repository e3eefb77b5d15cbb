package gpx

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/geometry"
	"github.com/allspots/go-poi-import/poi"
	"github.com/dustin/go-humanize"
	"github.com/paulmach/orb"
)

const DefaultSource = "gpx"

const DefaultName = "Itinéraire sans nom"

type ConvertOptions struct {
	Category category.Category
	// Source is the provider prefix; records are tagged "<Source>_gpx".
	Source string
	City   string
	Now    time.Time
}

// Convert turns a trace into a POI located at its first point, with distance, elevation,
// duration and a simplified route derived from its points.
func Convert(t *Trace, opts *ConvertOptions) (*poi.POI, error) {

	if opts == nil {
		opts = &ConvertOptions{}
	}

	if len(t.Points) == 0 {
		return nil, ErrNoPoints
	}

	c := opts.Category

	if c == "" {
		c = category.Nature
	}

	source := opts.Source

	if source == "" {
		source = DefaultSource
	}

	name := t.Name

	if name == "" {
		name = DefaultName
	}

	start := t.Points[0]

	p := poi.New(name, start.Lat, start.Lon, c, fmt.Sprintf("%s_gpx", source))

	err := p.Validate(nil)

	if err != nil {
		return nil, err
	}

	points := make([]orb.Point, len(t.Points))

	for i, pt := range t.Points {
		points[i] = orb.Point{pt.Lon, pt.Lat}
	}

	distance_km := geometry.PathLength(points) / 1000
	gain, loss := geometry.ElevationChange(t.Elevations)
	duration := geometry.EstimateDuration(distance_km, gain)

	distance := geometry.Round(distance_km, 2)
	gain = geometry.Round(gain, 0)
	loss = geometry.Round(loss, 0)
	duration = geometry.Round(duration, 2)

	p.DistanceKm = &distance
	p.ElevationGain = &gain
	p.ElevationLoss = &loss
	p.DurationHours = &duration

	simplified := geometry.Downsample(points, geometry.MaxRoutePoints)
	p.RouteCoordinates = make([]poi.Coordinate, len(simplified))

	for i, pt := range simplified {
		p.RouteCoordinates[i] = poi.Coordinate{Lat: pt.Lat(), Lng: pt.Lon()}
	}

	for _, wpt := range t.Waypoints {

		w := poi.Waypoint{
			Name:        wpt.Name,
			Description: wpt.Desc,
			Lat:         wpt.Lat,
			Lng:         wpt.Lon,
			Elevation:   wpt.Elevation,
		}

		p.Waypoints = append(p.Waypoints, w)
	}

	p.Description = t.Description

	if p.Description == "" {

		parts := []string{
			fmt.Sprintf("%.1f km", distance_km),
		}

		if gain > 0 {
			parts = append(parts, fmt.Sprintf("D+ %.0fm", gain))
		}

		if duration > 0 {
			parts = append(parts, fmt.Sprintf("%.1fh", duration))
		}

		p.Description = strings.Join(parts, " • ")
	}

	p.Description = poi.Truncate(p.Description, poi.MaxDescLength)
	p.Website = t.URL

	if opts.City != "" {
		p.City = opts.City
	}

	now := opts.Now

	if now.IsZero() {
		now = time.Now()
	}

	p.CreatedAt = poi.NewTimestamp(now)

	return p, nil
}

// Totals accumulates the statistics of converted routes.
type Totals struct {
	Routes        int
	DistanceKm    float64
	ElevationGain float64
}

func (t *Totals) Add(p *poi.POI) {

	t.Routes += 1

	if p.DistanceKm != nil {
		t.DistanceKm += *p.DistanceKm
	}

	if p.ElevationGain != nil {
		t.ElevationGain += *p.ElevationGain
	}
}

func (t *Totals) Summary(wr io.Writer) {

	fmt.Fprintf(wr, "Routes:            %s\n", humanize.Comma(int64(t.Routes)))
	fmt.Fprintf(wr, "Distance:          %.1f km\n", t.DistanceKm)
	fmt.Fprintf(wr, "Elevation gain:    %.0f m\n", t.ElevationGain)

	if t.Routes > 0 {
		fmt.Fprintf(wr, "Average distance:  %.1f km/route\n", t.DistanceKm/float64(t.Routes))
	}
}
