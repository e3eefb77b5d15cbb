package places

import (
	"context"
	"log/slog"
	"time"

	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/poi"
	"github.com/allspots/go-poi-import/sources"
)

const DefaultLimit = 50

const DefaultRadius = 10000

// MaxRadius is the largest search radius accepted by the service.
const MaxRadius = 50000

type ImportOptions struct {
	Lat      float64
	Lng      float64
	Radius   int
	Category category.Category
	City     string
	// Limit caps the number of places for which details are requested.
	Limit int
	Now   time.Time
}

// Import searches the places of 'opts.Category', keeps the first opts.Limit of them and
// converts each one using its details, or the search result when details are unavailable.
func (c *Client) Import(ctx context.Context, opts *ImportOptions) ([]*poi.POI, *sources.Stats, error) {

	radius := min(opts.Radius, MaxRadius)

	if radius <= 0 {
		radius = DefaultRadius
	}

	limit := opts.Limit

	if limit <= 0 {
		limit = DefaultLimit
	}

	requests := c.Requests()

	results, err := c.Search(ctx, opts.Lat, opts.Lng, radius, opts.Category)

	if err != nil {
		return nil, nil, err
	}

	stats := &sources.Stats{
		Fetched: len(results),
	}

	if len(results) > limit {
		results = results[:limit]
	}

	convert_opts := &ConvertOptions{
		Category: opts.Category,
		City:     opts.City,
		Now:      opts.Now,
	}

	records := make([]*poi.POI, 0, len(results))

	for _, place := range results {

		place_id := place.Get("place_id").String()
		details, _, err := c.Details(ctx, place_id, DetailsFields)

		if err != nil {

			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}

			slog.Warn("Failed to fetch place details, using search result", "place_id", place_id, "error", err)
		}

		p, err := c.Convert(place, details, convert_opts)

		if err != nil {
			stats.Reject(err)
			continue
		}

		records = append(records, p)
	}

	stats.Converted = len(records)
	stats.Requests = c.Requests() - requests

	return records, stats, nil
}
