// Package importdatagouv implements the poi-import-datagouv tool.
package importdatagouv

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aaronland/gocloud-blob/bucket"
	"github.com/allspots/go-poi-import/poifile"
	"github.com/allspots/go-poi-import/retry"
	"github.com/allspots/go-poi-import/sources"
	"github.com/allspots/go-poi-import/sources/datagouv"
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

	datasets, err := datagouv.Select(opts.Dataset)

	if err != nil {
		return err
	}

	target_bucket, err := bucket.OpenBucket(ctx, opts.TargetBucketURI)

	if err != nil {
		return fmt.Errorf("Failed to open target bucket, %w", err)
	}

	defer target_bucket.Close()

	cl := sources.NewClient(&sources.ClientOptions{
		Interval: time.Second,
		Policy:   retry.DefaultPolicy(),
	})

	records, stats, err := datagouv.Import(ctx, cl, datasets, opts.Department, time.Now())

	if err != nil {

		if ctx.Err() != nil {
			return err
		}

		slog.Warn("Some datasets could not be imported", "error", err)
	}

	stats.Summary(os.Stdout, fmt.Sprintf("data.gouv.fr %s", opts.Dataset))

	if len(records) == 0 {
		slog.Warn("No POIs imported")
		return nil
	}

	err = poifile.Write(ctx, target_bucket, opts.Output, records)

	if err != nil {
		return fmt.Errorf("Failed to write export, %w", err)
	}

	slog.Info("Wrote export", "output", opts.Output, "count", len(records))
	return nil
}
