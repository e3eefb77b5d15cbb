// Package dedupe implements the poi-dedupe tool.
package dedupe

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/aaronland/gocloud-blob/bucket"
	"github.com/allspots/go-poi-import/dedupe"
	"github.com/allspots/go-poi-import/store"
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

	st, err := store.NewStore(ctx, opts.StoreURI)

	if err != nil {
		return fmt.Errorf("Failed to create store, %w", err)
	}

	defer st.Close()

	dedupe_opts := &dedupe.Options{
		Apply:     opts.Apply,
		BatchSize: opts.BatchSize,
	}

	if opts.BackupURI != "" {

		backup_bucket, err := bucket.OpenBucket(ctx, opts.BackupBucketURI)

		if err != nil {
			return fmt.Errorf("Failed to open backup bucket, %w", err)
		}

		defer backup_bucket.Close()

		dedupe_opts.BackupBucket = backup_bucket
		dedupe_opts.BackupURI = opts.BackupURI

	} else if opts.Apply {
		slog.Warn("Deleting duplicates without a backup")
	}

	report, err := dedupe.Run(ctx, st, dedupe_opts)

	if report != nil {
		report.Summary(os.Stdout, opts.Examples)
	}

	if err != nil {
		return fmt.Errorf("Failed to deduplicate collection, %w", err)
	}

	return nil
}
