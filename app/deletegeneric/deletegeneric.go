// Package deletegeneric implements the poi-delete-generic tool.
package deletegeneric

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/aaronland/gocloud-blob/bucket"
	"github.com/allspots/go-poi-import/cleanup"
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

	cleanup_opts := &cleanup.Options{
		Apply:     opts.Apply,
		Limit:     opts.Limit,
		BatchSize: opts.BatchSize,
	}

	if opts.BackupURI != "" {

		backup_bucket, err := bucket.OpenBucket(ctx, opts.BackupBucketURI)

		if err != nil {
			return fmt.Errorf("Failed to open backup bucket, %w", err)
		}

		defer backup_bucket.Close()

		cleanup_opts.BackupBucket = backup_bucket
		cleanup_opts.BackupURI = opts.BackupURI
	}

	report, err := cleanup.DeleteGeneric(ctx, st, cleanup_opts)

	if report != nil {
		report.Summary(os.Stdout)
	}

	if err != nil {
		return fmt.Errorf("Failed to delete generic spots, %w", err)
	}

	return nil
}
