package datagouv

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/allspots/go-poi-import/poi"
	"github.com/allspots/go-poi-import/sources"
	"github.com/hashicorp/go-multierror"
)

// Import fetches and converts every dataset in 'datasets', keeping the rows of
// 'department' when it is not empty. A dataset that cannot be fetched does not stop the
// others: the records converted so far are returned along with the accumulated errors.
func Import(ctx context.Context, client *sources.Client, datasets []*Dataset, department string, now time.Time) ([]*poi.POI, *sources.Stats, error) {

	var result error

	stats := &sources.Stats{}
	records := make([]*poi.POI, 0)

	for _, d := range datasets {

		logger := slog.Default().With("dataset", d.Name)

		stats.Requests += 1
		rows, err := Fetch(ctx, client, d, department)

		if err != nil {

			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}

			logger.Warn("Dataset unavailable", "error", err)
			result = multierror.Append(result, err)
			continue
		}

		rows = FilterByDepartment(rows, department)
		stats.Fetched += len(rows)

		converted := 0

		for _, r := range rows {

			p, err := Convert(r, d, now)

			if err != nil {
				stats.Reject(err)
				continue
			}

			records = append(records, p)
			converted += 1
		}

		logger.Debug("Converted dataset", "rows", len(rows), "records", converted)
	}

	stats.Converted = len(records)

	if result != nil {
		return records, stats, fmt.Errorf("Failed to fetch some datasets, %w", result)
	}

	return records, stats, nil
}
