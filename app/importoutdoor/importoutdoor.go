// Package importoutdoor implements the poi-import-outdoor tool.
package importoutdoor

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aaronland/gocloud-blob/bucket"
	"github.com/allspots/go-poi-import/poi"
	"github.com/allspots/go-poi-import/poifile"
	"github.com/allspots/go-poi-import/retry"
	"github.com/allspots/go-poi-import/sources"
	"github.com/allspots/go-poi-import/sources/outdoor"
	"github.com/tidwall/gjson"
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

	activity, err := outdoor.ParseActivity(opts.Activity)

	if err != nil {
		return err
	}

	routes, err := fetchRoutes(ctx, opts, activity)

	if err != nil {
		return err
	}

	target_bucket, err := bucket.OpenBucket(ctx, opts.TargetBucketURI)

	if err != nil {
		return fmt.Errorf("Failed to open target bucket, %w", err)
	}

	defer target_bucket.Close()

	stats := &sources.Stats{
		Fetched: len(routes),
	}

	convert_opts := &outdoor.ConvertOptions{
		Now: time.Now(),
	}

	records := make([]*poi.POI, 0, len(routes))

	for _, r := range routes {

		p, err := outdoor.Convert(r, convert_opts)

		if err != nil {
			slog.Debug("Skip route", "error", err)
			stats.Reject(err)
			continue
		}

		records = append(records, p)
	}

	stats.Converted = len(records)
	stats.Summary(os.Stdout, fmt.Sprintf("Outdoor routes (%s, %s)", opts.Method, activity))

	if len(records) == 0 {
		slog.Warn("No routes converted")
		return nil
	}

	err = poifile.Write(ctx, target_bucket, opts.Output, records)

	if err != nil {
		return fmt.Errorf("Failed to write export, %w", err)
	}

	slog.Info("Wrote export", "output", opts.Output, "count", len(records))
	return nil
}

func fetchRoutes(ctx context.Context, opts *RunOptions, activity string) ([]gjson.Result, error) {

	switch opts.Method {
	case outdoor.MethodManual:

		if opts.Input == "" {
			return nil, fmt.Errorf("Missing -input flag")
		}

		source_bucket, err := bucket.OpenBucket(ctx, opts.SourceBucketURI)

		if err != nil {
			return nil, fmt.Errorf("Failed to open source bucket, %w", err)
		}

		defer source_bucket.Close()

		body, err := source_bucket.ReadAll(ctx, opts.Input)

		if err != nil {
			return nil, fmt.Errorf("Failed to read %s, %w", opts.Input, err)
		}

		if !gjson.ValidBytes(body) {
			return nil, fmt.Errorf("%s is not valid JSON", opts.Input)
		}

		return outdoor.Routes(gjson.ParseBytes(body)), nil

	case outdoor.MethodAPI, outdoor.MethodRegion:

		cl := outdoor.NewClient(&outdoor.ClientOptions{
			Endpoint: opts.Endpoint,
			Client: sources.NewClient(&sources.ClientOptions{
				Interval: time.Second,
				Policy:   retry.DefaultPolicy(),
			}),
		})

		if opts.Method == outdoor.MethodRegion {

			if opts.Region == "" {
				return nil, fmt.Errorf("Missing -region flag")
			}

			return cl.SearchRegion(ctx, opts.Region, activity)
		}

		if opts.Latitude == 0 || opts.Longitude == 0 {
			return nil, fmt.Errorf("Missing -latitude or -longitude flag")
		}

		return cl.SearchRoutes(ctx, opts.Latitude, opts.Longitude, opts.Radius, activity)

	default:
		return nil, fmt.Errorf("%w '%s'", outdoor.ErrUnknownMethod, opts.Method)
	}
}
