// Package importosm implements the poi-import-osm tool.
package importosm

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/aaronland/gocloud-blob/bucket"
	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/geometry"
	"github.com/allspots/go-poi-import/poifile"
	"github.com/allspots/go-poi-import/regions"
	"github.com/allspots/go-poi-import/sources/overpass"
	"github.com/paulmach/orb"
)

func Run(ctx context.Context) error {
	fs := DefaultFlagSet(ctx)
	return RunWithFlagSet(ctx, fs)
}

func RunWithFlagSet(ctx context.Context, fs *flag.FlagSet) error {

	opts, err := RunOptionsFromFlagSet(ctx, fs)

	if err != nil {
		return err
	}

	return RunWithOptions(ctx, opts)
}

func RunWithOptions(ctx context.Context, opts *RunOptions) error {

	if opts.Verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
		slog.Debug("Verbose logging enabled")
	}

	if opts.Department == "" {
		return fmt.Errorf("Missing -department flag")
	}

	c, err := category.Parse(opts.Category)

	if err != nil {
		return err
	}

	table, err := regions.Open(ctx, opts.DepartmentsURI)

	if err != nil {
		return err
	}

	dept, err := table.Lookup(opts.Department)

	if err != nil {
		return err
	}

	target_bucket, err := bucket.OpenBucket(ctx, opts.TargetBucketURI)

	if err != nil {
		return fmt.Errorf("Failed to open target bucket, %w", err)
	}

	defer target_bucket.Close()

	logger := slog.Default().With("department", dept.Code, "category", c)
	logger.Info("Import OpenStreetMap POIs", "name", dept.Name, "radius", opts.Radius)

	var bounds *orb.Bound

	if dept.IsMetropolitan() {
		bounds = &geometry.MetropolitanFrance
	}

	cl := overpass.NewClient(&overpass.ClientOptions{
		Endpoint: opts.Endpoint,
	})

	import_opts := &overpass.ImportOptions{
		Lat:      dept.Lat,
		Lng:      dept.Lng,
		Radius:   opts.Radius,
		Category: c,
		Bounds:   bounds,
	}

	records, stats, err := cl.Import(ctx, import_opts)

	if err != nil {
		return fmt.Errorf("Failed to import POIs, %w", err)
	}

	stats.Summary(os.Stdout, fmt.Sprintf("OpenStreetMap %s (%s) / %s", dept.Name, dept.Code, c))

	if len(records) == 0 {
		logger.Warn("No POIs found")
		return nil
	}

	err = poifile.Write(ctx, target_bucket, opts.Output, records)

	if err != nil {
		return fmt.Errorf("Failed to write export, %w", err)
	}

	logger.Info("Wrote export", "output", opts.Output, "count", len(records))
	return nil
}
