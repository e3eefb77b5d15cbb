// Package upload implements the poi-upload tool.
package upload

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aaronland/gocloud-blob/bucket"
	"github.com/allspots/go-poi-import/checkpoint"
	"github.com/allspots/go-poi-import/importer"
	"github.com/allspots/go-poi-import/poifile"
	"github.com/allspots/go-poi-import/retry"
	"github.com/allspots/go-poi-import/store"
	"github.com/allspots/go-poi-import/writer"
	"github.com/dustin/go-humanize"
	"github.com/sfomuseum/go-timings"
	"gocloud.dev/blob"
)

// Summary describes the upload of one export file.
type Summary struct {
	URI        string
	Records    int
	Skipped    int
	Duplicates int
	Result     *writer.Result
}

func (s *Summary) Write(wr io.Writer) {

	fmt.Fprintf(wr, "\n=== %s ===\n", s.URI)
	fmt.Fprintf(wr, "Records    : %s\n", humanize.Comma(int64(s.Records)))
	fmt.Fprintf(wr, "Skipped    : %s\n", humanize.Comma(int64(s.Skipped)))
	fmt.Fprintf(wr, "Duplicates : %s\n", humanize.Comma(int64(s.Duplicates)))

	if s.Result == nil {
		fmt.Fprintf(wr, "\nNothing was written (dry run).\n")
		return
	}

	fmt.Fprintf(wr, "Resumed    : %s\n", humanize.Comma(int64(s.Result.Resumed)))
	fmt.Fprintf(wr, "Written    : %s in %d batches\n", humanize.Comma(int64(s.Result.Written)), s.Result.Batches)
}

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
		return fmt.Errorf("No export files to upload")
	}

	source_bucket, err := bucket.OpenBucket(ctx, opts.SourceBucketURI)

	if err != nil {
		return fmt.Errorf("Failed to open source bucket, %w", err)
	}

	defer source_bucket.Close()

	if opts.DryRun {

		for _, uri := range opts.Inputs {

			s, err := Upload(ctx, source_bucket, nil, uri)

			if err != nil {
				return err
			}

			s.Write(os.Stdout)
		}

		return nil
	}

	st, err := store.NewStore(ctx, opts.StoreURI)

	if err != nil {
		return fmt.Errorf("Failed to create store, %w", err)
	}

	defer st.Close()

	writer_opts := &writer.Options{
		BatchSize: opts.BatchSize,
		Sleep:     opts.BatchSleep,
		Policy:    retry.DefaultPolicy(),
	}

	if opts.CheckpointURI != "" {

		cp, err := checkpoint.NewCheckpointer(ctx, opts.CheckpointURI)

		if err != nil {
			return fmt.Errorf("Failed to create checkpointer, %w", err)
		}

		defer cp.Close()

		writer_opts.Checkpointer = cp
	}

	monitor, err := timings.NewMonitor(ctx, opts.MonitorURI)

	if err != nil {
		return fmt.Errorf("Failed to create new monitor, %w", err)
	}

	monitor.Start(ctx, os.Stdout)
	defer monitor.Stop(ctx)

	writer_opts.Monitor = monitor

	wr := writer.NewWriter(st, writer_opts)

	for _, uri := range opts.Inputs {

		s, err := Upload(ctx, source_bucket, wr, uri)

		if s != nil {
			s.Write(os.Stdout)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// Upload reads the export file 'uri', prepares its records and, unless 'wr' is nil, writes
// them using a checkpoint key derived from 'uri'.
func Upload(ctx context.Context, source_bucket *blob.Bucket, wr *writer.Writer, uri string) (*Summary, error) {

	records, err := poifile.ReadRecords(ctx, source_bucket, uri)

	if err != nil {
		return nil, err
	}

	prepared := importer.Prepare(records)

	s := &Summary{
		URI:        uri,
		Records:    len(records),
		Skipped:    prepared.Skipped,
		Duplicates: prepared.Duplicates,
	}

	slog.Info("Prepared documents", "uri", uri, "documents", len(prepared.Mutations), "skipped", prepared.Skipped, "duplicates", prepared.Duplicates)

	if wr == nil {
		return s, nil
	}

	result, err := wr.Write(ctx, checkpoint.KeyFromPath(uri), prepared.Mutations)

	s.Result = result

	if err != nil {
		return s, fmt.Errorf("Failed to upload %s, %w", uri, err)
	}

	return s, nil
}
