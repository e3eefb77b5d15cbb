// Package merge implements the poi-merge tool.
package merge

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/aaronland/gocloud-blob/bucket"
	"github.com/allspots/go-poi-import/identity"
	"github.com/allspots/go-poi-import/poi"
	"github.com/allspots/go-poi-import/poifile"
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

	if len(opts.Inputs) == 0 {
		return fmt.Errorf("No export files to merge")
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

	records, stats, err := Merge(ctx, source_bucket, opts.Inputs...)

	if err != nil {
		return err
	}

	stats.Summary(os.Stdout)

	err = poifile.Write(ctx, target_bucket, opts.Output, records)

	if err != nil {
		return fmt.Errorf("Failed to write merged export, %w", err)
	}

	slog.Info("Wrote merged export", "output", opts.Output, "count", len(records))
	return nil
}

// Merge reads the export files 'uris' in order and merges their records.
func Merge(ctx context.Context, source_bucket *blob.Bucket, uris ...string) ([]*poi.POI, identity.MergeStats, error) {

	m := identity.NewMerger()

	for _, uri := range uris {

		records, skipped, err := poifile.ReadPOIs(ctx, source_bucket, uri)

		if err != nil {
			return nil, identity.MergeStats{}, err
		}

		if skipped > 0 {
			slog.Warn("Skipped invalid records", "uri", uri, "count", skipped)
		}

		replaced := m.Add(records...)
		slog.Debug("Merged export", "uri", uri, "records", len(records), "replaced", replaced)
	}

	return m.Records(), m.Stats(), nil
}
