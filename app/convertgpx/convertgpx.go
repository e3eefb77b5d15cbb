// Package convertgpx implements the poi-convert-gpx tool.
package convertgpx

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aaronland/gocloud-blob/bucket"
	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/poi"
	"github.com/allspots/go-poi-import/poifile"
	"github.com/allspots/go-poi-import/sources/gpx"
	"github.com/hashicorp/go-multierror"
	"gocloud.dev/blob"
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

	c, err := category.Parse(opts.Category)

	if err != nil {
		return err
	}

	source_bucket, err := bucket.OpenBucket(ctx, opts.SourceBucketURI)

	if err != nil {
		return fmt.Errorf("Failed to open source bucket, %w", err)
	}

	defer source_bucket.Close()

	target_bucket, err := bucket.OpenBucket(ctx, opts.TargetBucketURI)

	if err != nil {
		return fmt.Errorf("Failed to open target bucket, %w", err)
	}

	defer target_bucket.Close()

	convert_opts := &gpx.ConvertOptions{
		Category: c,
		City:     opts.City,
		Now:      time.Now(),
	}

	records, totals, err := Convert(ctx, source_bucket, opts.Prefix, opts.Recursive, convert_opts)

	if err != nil {

		if len(records) == 0 {
			return err
		}

		slog.Warn("Some GPX files could not be converted", "error", err)
	}

	totals.Summary(os.Stdout)

	if len(records) == 0 {
		slog.Warn("No GPX files converted", "prefix", opts.Prefix)
		return nil
	}

	err = poifile.Write(ctx, target_bucket, opts.Output, records)

	if err != nil {
		return fmt.Errorf("Failed to write export, %w", err)
	}

	slog.Info("Wrote export", "output", opts.Output, "count", len(records))
	return nil
}

// Convert reads and converts every GPX file under 'prefix'. Files which fail are
// skipped and reported in the returned error alongside the converted records.
func Convert(ctx context.Context, source_bucket *blob.Bucket, prefix string, recursive bool, opts *gpx.ConvertOptions) ([]*poi.POI, *gpx.Totals, error) {

	keys, err := gpx.Find(ctx, source_bucket, prefix, recursive)

	if err != nil {
		return nil, nil, err
	}

	totals := &gpx.Totals{}
	records := make([]*poi.POI, 0, len(keys))

	var result error

	for _, k := range keys {

		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}

		t, err := gpx.Read(ctx, source_bucket, k)

		if err != nil {
			result = multierror.Append(result, err)
			continue
		}

		p, err := gpx.Convert(t, opts)

		if err != nil {
			result = multierror.Append(result, fmt.Errorf("Failed to convert %s, %w", k, err))
			continue
		}

		slog.Debug("Converted GPX file", "path", k, "name", p.Name)

		totals.Add(p)
		records = append(records, p)
	}

	return records, totals, result
}
