// Package departments implements the poi-departments tool.
package departments

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaronland/gocloud-blob/bucket"
	"github.com/allspots/go-poi-import/poifile"
	"github.com/allspots/go-poi-import/regions"
	"github.com/allspots/go-poi-import/retry"
	"github.com/allspots/go-poi-import/sources"
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

	target_bucket, err := bucket.OpenBucket(ctx, opts.TargetBucketURI)

	if err != nil {
		return fmt.Errorf("Failed to open target bucket, %w", err)
	}

	defer target_bucket.Close()

	cl := sources.NewClient(&sources.ClientOptions{
		Interval: 100 * time.Millisecond,
		Policy:   retry.DefaultPolicy(),
	})

	t, err := regions.Generate(ctx, cl, opts.Endpoint)

	if err != nil {
		return err
	}

	err = poifile.Write(ctx, target_bucket, opts.Output, t)

	if err != nil {
		return fmt.Errorf("Failed to write department table, %w", err)
	}

	slog.Info("Wrote department table", "output", opts.Output, "count", len(t))
	return nil
}
