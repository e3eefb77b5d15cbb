// Package split implements the poi-split tool.
package split

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/aaronland/gocloud-blob/bucket"
	"github.com/allspots/go-poi-import/normalize"
	"github.com/allspots/go-poi-import/poifile"
	"github.com/dustin/go-humanize"
	"gocloud.dev/blob"
)

// UnknownGroup names the file of records without a value for the group-by property.
const UnknownGroup = "unknown"

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

	if len(opts.Inputs) == 0 {
		return fmt.Errorf("No export files to split")
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

	if opts.GroupBy != "" {

		counts, err := GroupBy(ctx, source_bucket, target_bucket, opts, opts.Inputs...)

		if err != nil {
			return err
		}

		names := make([]string, 0, len(counts))

		for fname := range counts {
			names = append(names, fname)
		}

		sort.Strings(names)

		for _, fname := range names {
			fmt.Fprintf(os.Stdout, "%s\t%s records\n", fname, humanize.Comma(int64(counts[fname])))
		}

		return nil
	}

	for _, uri := range opts.Inputs {

		split_opts := &poifile.SplitOptions{
			SourceBucket: source_bucket,
			TargetBucket: target_bucket,
			Prefix:       opts.Prefix,
			Size:         opts.Size,
			Directory:    opts.Directory,
			Callback: func(ctx context.Context, c *poifile.Chunk) error {
				slog.Info("Wrote chunk", "uri", c.URI, "records", c.Size())
				return nil
			},
		}

		chunks, err := poifile.Split(ctx, split_opts, uri)

		if err != nil {
			return fmt.Errorf("Failed to split %s, %w", uri, err)
		}

		fmt.Fprintf(os.Stdout, "%s: %d chunks\n", uri, len(chunks))
	}

	return nil
}

// GroupBy writes the records of 'uris' to one JSONL file per value of the opts.GroupBy
// property, named <prefix>-<value>.jsonl. It returns the number of records per file.
func GroupBy(ctx context.Context, source_bucket *blob.Bucket, target_bucket *blob.Bucket, opts *RunOptions, uris ...string) (map[string]int, error) {

	writers := make(map[string]io.WriteCloser)
	counts := make(map[string]int)

	mu := new(sync.RWMutex)

	walk_cb := func(ctx context.Context, uri string, r *poifile.Record) error {

		if !r.Body.IsObject() {
			slog.Debug("Skip record that is not an object", "path", r.Path, "index", r.Index)
			return nil
		}

		group := normalize.Slug(r.Body.Get(opts.GroupBy).String())

		if group == "" {
			group = UnknownGroup
		}

		fname := fmt.Sprintf("%s-%s.jsonl", opts.Prefix, group)

		if opts.Directory != "" {
			fname = filepath.Join(opts.Directory, fname)
		}

		mu.Lock()
		defer mu.Unlock()

		wr, exists := writers[fname]

		if !exists {

			group_wr, err := target_bucket.NewWriter(ctx, fname, nil)

			if err != nil {
				return fmt.Errorf("Failed to create writer for %s, %w", fname, err)
			}

			writers[fname] = group_wr
			wr = group_wr
		}

		body, err := poifile.MarshalLine(r.Body)

		if err != nil {
			return err
		}

		_, err = wr.Write(body)

		if err != nil {
			return fmt.Errorf("Failed to write record for %s, %w", fname, err)
		}

		counts[fname] += 1
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

	if walk_err != nil {
		return nil, walk_err
	}

	return counts, nil
}
