package overpass

import (
	"context"
	"log/slog"
	"time"

	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/poi"
	"github.com/allspots/go-poi-import/sources"
	"github.com/paulmach/orb"
)

type ImportOptions struct {
	Lat      float64
	Lng      float64
	Radius   int
	Category category.Category
	Bounds   *orb.Bound
	Now      time.Time
}

// Import queries the nodes of 'opts.Category' around (opts.Lat, opts.Lng) and converts
// them. Elements that cannot be converted are counted in the returned Stats.
func (c *Client) Import(ctx context.Context, opts *ImportOptions) ([]*poi.POI, *sources.Stats, error) {

	tags, err := TagsForCategory(opts.Category)

	if err != nil {
		return nil, nil, err
	}

	radius := opts.Radius

	if radius <= 0 {
		radius = DefaultRadius
	}

	elements, err := c.Query(ctx, opts.Lat, opts.Lng, radius, tags)

	if err != nil {
		return nil, nil, err
	}

	stats := &sources.Stats{
		Fetched:  len(elements),
		Requests: 1,
	}

	convert_opts := &ConvertOptions{
		Category: opts.Category,
		Bounds:   opts.Bounds,
		Now:      opts.Now,
	}

	records := make([]*poi.POI, 0)

	for _, el := range elements {

		p, err := Convert(el, convert_opts)

		if err != nil {
			slog.Debug("Skip element", "id", el.Get("id").Int(), "error", err)
			stats.Reject(err)
			continue
		}

		records = append(records, p)
	}

	stats.Converted = len(records)
	return records, stats, nil
}
