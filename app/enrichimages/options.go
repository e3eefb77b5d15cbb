package enrichimages

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/allspots/go-poi-import/config"
	"github.com/sfomuseum/go-flags/flagset"
)

type RunOptions struct {
	Mode            string
	SourceBucketURI string
	TargetBucketURI string
	StoreURI        string
	Departments     []string
	Apply           bool
	Limit           int
	Radius          int
	MaxPhotos       int
	Pause           time.Duration
	APIKey          string
	Inputs          []string
	Verbose         bool
}

func RunOptionsFromFlagSet(ctx context.Context, fs *flag.FlagSet) (*RunOptions, error) {

	flagset.Parse(fs)

	err := flagset.SetFlagsFromEnvVars(fs, "ALLSPOTS")

	if err != nil {
		return nil, fmt.Errorf("Failed to set flags from environment variables, %w", err)
	}

	pause_d, err := time.ParseDuration(pause)

	if err != nil {
		return nil, fmt.Errorf("Invalid -pause value, %w", err)
	}

	var files []string

	if env_file != "" {
		files = append(files, env_file)
	}

	cfg, err := config.Load(files...)

	if err != nil {
		return nil, err
	}

	key := api_key

	if key == "" {
		key = cfg.PlacesAPIKey
	}

	key, err = config.Secret(ctx, key)

	if err != nil {
		return nil, err
	}

	opts := &RunOptions{
		Mode:            mode,
		SourceBucketURI: source_bucket_uri,
		TargetBucketURI: target_bucket_uri,
		StoreURI:        store_uri,
		Departments:     departments,
		Apply:           apply,
		Limit:           limit,
		Radius:          radius,
		MaxPhotos:       max_photos,
		Pause:           pause_d,
		APIKey:          key,
		Inputs:          fs.Args(),
		Verbose:         verbose,
	}

	if opts.Mode == ModeStore && opts.StoreURI == "" {

		uri, err := cfg.Store()

		if err != nil {
			return nil, err
		}

		opts.StoreURI = uri
	}

	return opts, nil
}
