// Package importplaces implements the poi-import-places tool.
package importplaces

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aaronland/gocloud-blob/bucket"
	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/config"
	"github.com/allspots/go-poi-import/hybrid"
	"github.com/allspots/go-poi-import/poifile"
	"github.com/allspots/go-poi-import/retry"
	"github.com/allspots/go-poi-import/sources"
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

	c, err := category.Parse(opts.Category)

	if err != nil {
		return err
	}

	lat, lng, err := position(opts)

	if err != nil {
		return err
	}

	key, err := apiKey(ctx, opts)

	if err != nil {
		return err
	}

	target_bucket, err := bucket.OpenBucket(ctx, opts.TargetBucketURI)

	if err != nil {
		return fmt.Errorf("Failed to open target bucket, %w", err)
	}

	defer target_bucket.Close()

	http_client := sources.NewClient(&sources.ClientOptions{
		Interval: 100 * time.Millisecond,
		Policy:   retry.DefaultPolicy(),
	})

	cl, err := places.NewClient(&places.ClientOptions{
		Endpoint:       opts.Endpoint,
		APIKey:         key,
		Client:         http_client,
		PageTokenDelay: places.DefaultPageTokenDelay,
	})

	if err != nil {
		return err
	}

	logger := slog.Default().With("city", opts.City, "category", c)
	logger.Info("Import Google Places POIs", "latitude", lat, "longitude", lng, "radius", opts.Radius, "limit", opts.Limit)

	import_opts := &places.ImportOptions{
		Lat:      lat,
		Lng:      lng,
		Radius:   opts.Radius,
		Category: c,
		City:     cityLabel(opts.City),
		Limit:    opts.Limit,
	}

	records, stats, err := cl.Import(ctx, import_opts)

	if err != nil {
		return fmt.Errorf("Failed to import places, %w", err)
	}

	stats.Summary(os.Stdout, fmt.Sprintf("Google Places %s / %s", opts.City, c))

	fmt.Fprintf(os.Stdout, "Estimated cost: $%.2f for %d requests (monthly credit $%.0f)\n", cl.EstimatedCost(), cl.Requests(), places.MonthlyCredit)

	if len(records) == 0 {
		logger.Warn("No POIs found")
		return nil
	}

	err = poifile.Write(ctx, target_bucket, opts.Output, records)

	if err != nil {
		return fmt.Errorf("Failed to write export, %w", err)
	}

	logger.Info("Wrote export", "output", opts.Output, "count", len(records))
	return nil
}

func position(opts *RunOptions) (float64, float64, error) {

	if opts.Latitude != 0 && opts.Longitude != 0 {
		return opts.Latitude, opts.Longitude, nil
	}

	for _, c := range hybrid.MajorCities {

		if strings.EqualFold(c.Name, opts.City) {
			return c.Lat, c.Lng, nil
		}
	}

	return 0, 0, fmt.Errorf("%w '%s', use -latitude and -longitude", hybrid.ErrUnknownCity, opts.City)
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

	key, err := cfg.PlacesKey(ctx)

	if err != nil {
		return "", err
	}

	if key == "" {
		return "", places.ErrMissingAPIKey
	}

	return key, nil
}

func cityLabel(name string) string {
	c := &hybrid.City{Name: strings.ToLower(name)}
	return c.Label()
}
