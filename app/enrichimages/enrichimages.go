// Package enrichimages implements the poi-enrich-images tool.
package enrichimages

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aaronland/gocloud-blob/bucket"
	"github.com/allspots/go-poi-import/cleanup"
	"github.com/allspots/go-poi-import/enrich"
	"github.com/allspots/go-poi-import/poifile"
	"github.com/allspots/go-poi-import/retry"
	"github.com/allspots/go-poi-import/sources"
	"github.com/allspots/go-poi-import/sources/places"
	"github.com/allspots/go-poi-import/store"
	"github.com/sfomuseum/go-timings"
	"github.com/tidwall/gjson"
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

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.Verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
		slog.Debug("Verbose logging enabled")
	}

	cl, err := places.NewClient(&places.ClientOptions{
		APIKey: opts.APIKey,
		Client: sources.NewClient(&sources.ClientOptions{
			Interval: 100 * time.Millisecond,
			Policy:   retry.DefaultPolicy(),
		}),
	})

	if err != nil {
		return err
	}

	e, err := enrich.NewEnricher(&enrich.Options{
		Finder:    cl,
		Radius:    opts.Radius,
		MaxPhotos: opts.MaxPhotos,
		Pause:     opts.Pause,
		Limit:     opts.Limit,
		Apply:     opts.Apply,
	})

	if err != nil {
		return err
	}

	switch opts.Mode {
	case ModeFiles:
		err = runFiles(ctx, opts, e)
	case ModeStore:
		err = runStore(ctx, opts, e)
	default:
		err = fmt.Errorf("Invalid -mode '%s'", opts.Mode)
	}

	e.Report().Summary(os.Stdout)
	fmt.Fprintf(os.Stdout, "Estimated cost: $%.2f for %d requests (monthly credit $%.0f)\n", cl.EstimatedCost(), cl.Requests(), places.MonthlyCredit)

	return err
}

func runStore(ctx context.Context, opts *RunOptions, e *enrich.Enricher) error {

	st, err := store.NewStore(ctx, opts.StoreURI)

	if err != nil {
		return fmt.Errorf("Failed to create store, %w", err)
	}

	defer st.Close()

	filters := make([]*store.Filter, 0)

	for _, code := range opts.Departments {

		for _, field := range cleanup.DepartmentFieldValues {
			filters = append(filters, &store.Filter{Field: field, Value: code})
		}
	}

	_, err = e.Store(ctx, st, filters...)

	if err != nil {
		return fmt.Errorf("Failed to enrich store, %w", err)
	}

	if !opts.Apply {
		fmt.Fprintf(os.Stdout, "\nNothing was written. Run again with -apply to update the database.\n")
	}

	return nil
}

func runFiles(ctx context.Context, opts *RunOptions, e *enrich.Enricher) error {

	if len(opts.Inputs) == 0 {
		return fmt.Errorf("No export files to enrich")
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

	monitor, err := timings.NewMonitor(ctx, "counter://PT60S")

	if err != nil {
		return fmt.Errorf("Failed to create new monitor, %w", err)
	}

	monitor.Start(ctx, os.Stdout)
	defer monitor.Stop(ctx)

	return EnrichFiles(ctx, e, source_bucket, target_bucket, monitor, opts.Inputs...)
}

// EnrichFiles enriches the records of 'uris' and writes every record, enriched or not, to
// a JSONL file of the same base name in 'target_bucket'.
func EnrichFiles(ctx context.Context, e *enrich.Enricher, source_bucket *blob.Bucket, target_bucket *blob.Bucket, monitor timings.Monitor, uris ...string) error {

	writers := make(map[string]io.WriteCloser)

	mu := new(sync.RWMutex)

	walk_cb := func(ctx context.Context, uri string, r *poifile.Record) error {

		if monitor != nil {
			defer func() {
				go monitor.Signal(ctx)
			}()
		}

		body, _, err := e.Record(ctx, r.Body)

		if err != nil {
			return err
		}

		line, err := poifile.MarshalLine(gjson.ParseBytes(body))

		if err != nil {
			return err
		}

		fname := poifile.OutputName(uri)

		mu.Lock()
		defer mu.Unlock()

		wr, exists := writers[fname]

		if !exists {

			new_wr, err := target_bucket.NewWriter(ctx, fname, nil)

			if err != nil {
				return fmt.Errorf("Failed to create new writer for %s, %w", fname, err)
			}

			wr = new_wr
			writers[fname] = wr
		}

		_, err = wr.Write(line)

		if err != nil {
			return fmt.Errorf("Failed to write record to %s, %w", fname, err)
		}

		return nil
	}

	walk_opts := &poifile.WalkOptions{
		SourceBucket: source_bucket,
		Callback:     walk_cb,
	}

	walk_err := poifile.Walk(ctx, walk_opts, uris...)

	for fname, wr := range writers {

		err := wr.Close()

		if err != nil && walk_err == nil {
			walk_err = fmt.Errorf("Failed to close writer for %s, %w", fname, err)
		}
	}

	return walk_err
}
