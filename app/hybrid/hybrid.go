// Package hybrid implements the poi-import-hybrid tool.
package hybrid

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aaronland/gocloud-blob/bucket"
	"github.com/allspots/go-poi-import/config"
	"github.com/allspots/go-poi-import/hybrid"
	"github.com/allspots/go-poi-import/poifile"
	"github.com/allspots/go-poi-import/retry"
	"github.com/allspots/go-poi-import/sources"
	"github.com/allspots/go-poi-import/sources/datagouv"
	"github.com/allspots/go-poi-import/sources/overpass"
	"github.com/allspots/go-poi-import/sources/places"
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

	selected_cities, err := hybrid.SelectCities(opts.Cities)

	if err != nil {
		return err
	}

	selected_categories, err := hybrid.SelectCategories(opts.Categories)

	if err != nil {
		return err
	}

	srcs, err := newSources(ctx, opts)

	if err != nil {
		return err
	}

	if len(srcs) == 0 {
		return fmt.Errorf("Every source is disabled")
	}

	target_bucket, err := bucket.OpenBucket(ctx, opts.TargetBucketURI)

	if err != nil {
		return fmt.Errorf("Failed to open target bucket, %w", err)
	}

	defer target_bucket.Close()

	hybrid_opts := &hybrid.Options{
		Cities:     selected_cities,
		Categories: selected_categories,
		Sources:    srcs,
		Pause:      opts.Pause,
		Cooldown:   opts.Cooldown,
	}

	if opts.KeepIntermediate {
		hybrid_opts.Bucket = target_bucket
	}

	report, err := hybrid.Run(ctx, hybrid_opts)

	if err != nil {
		return fmt.Errorf("Failed to run hybrid import, %w", err)
	}

	report.Summary(os.Stdout)

	if len(report.Records) == 0 {
		slog.Warn("No POIs imported")
		return report.Errors.ErrorOrNil()
	}

	err = poifile.Write(ctx, target_bucket, opts.Output, report.Records)

	if err != nil {
		return fmt.Errorf("Failed to write export, %w", err)
	}

	slog.Info("Wrote export", "output", opts.Output, "count", len(report.Records))
	return nil
}

func newSources(ctx context.Context, opts *RunOptions) ([]hybrid.Source, error) {

	policy := retry.DefaultPolicy()

	srcs := make([]hybrid.Source, 0)

	if !opts.SkipOSM {

		cl := overpass.NewClient(&overpass.ClientOptions{})
		srcs = append(srcs, hybrid.NewOverpassSource(cl))
	}

	if !opts.SkipGoogle {

		key, err := apiKey(ctx, opts)

		if err != nil {
			return nil, err
		}

		if key == "" {
			slog.Warn("No Places API key, skipping Google Places")
		} else {

			cl, err := places.NewClient(&places.ClientOptions{
				APIKey: key,
				Client: sources.NewClient(&sources.ClientOptions{
					Interval: 100 * time.Millisecond,
					Policy:   policy,
				}),
				PageTokenDelay: places.DefaultPageTokenDelay,
			})

			if err != nil {
				return nil, err
			}

			srcs = append(srcs, hybrid.NewPlacesSource(cl))
		}
	}

	if !opts.SkipDatagouv {

		datasets, err := datagouv.Select(datagouv.AllDatasets)

		if err != nil {
			return nil, err
		}

		cl := sources.NewClient(&sources.ClientOptions{
			Interval: time.Second,
			Policy:   policy,
		})

		srcs = append(srcs, hybrid.NewDatagouvSource(cl, datasets))
	}

	return srcs, nil
}

func apiKey(ctx context.Context, opts *RunOptions) (string, error) {

	if opts.APIKey != "" {
		return config.Secret(ctx, opts.APIKey)
	}

	var files []string

	if opts.EnvFile != "" {
		files = append(files, opts.EnvFile)
	}

	cfg, err := config.Load(files...)

	if err != nil {
		return "", err
	}

	return cfg.PlacesKey(ctx)
}
