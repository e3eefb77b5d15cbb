// Package importunesco implements the poi-import-unesco tool.
package importunesco

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaronland/gocloud-blob/bucket"
	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/poifile"
	"github.com/allspots/go-poi-import/retry"
	"github.com/allspots/go-poi-import/sources"
	"github.com/allspots/go-poi-import/sources/unesco"
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

	convert_opts := &unesco.ConvertOptions{
		Countries: opts.Countries,
		Limit:     opts.Limit,
		Now:       time.Now(),
	}

	if opts.Category != "" {

		c, err := category.Parse(opts.Category)

		if err != nil {
			return err
		}

		convert_opts.Category = c
	}

	target_bucket, err := bucket.OpenBucket(ctx, opts.TargetBucketURI)

	if err != nil {
		return fmt.Errorf("Failed to open target bucket, %w", err)
	}

	defer target_bucket.Close()

	cl := unesco.NewClient(&unesco.ClientOptions{
		Client: sources.NewClient(&sources.ClientOptions{
			Interval: time.Second,
			Policy:   retry.DefaultPolicy(),
		}),
	})

	records, provider, err := cl.Fetch(ctx, convert_opts)

	if err != nil {
		return fmt.Errorf("Failed to fetch sites, %w", err)
	}

	slog.Info("Converted sites", "provider", provider, "count", len(records))

	if len(records) == 0 {
		slog.Warn("No sites found")
		return nil
	}

	err = poifile.Write(ctx, target_bucket, opts.Output, records)

	if err != nil {
		return fmt.Errorf("Failed to write export, %w", err)
	}

	slog.Info("Wrote export", "output", opts.Output, "count", len(records))
	return nil
}
