package importplaces

import (
	"context"
	"flag"
	"fmt"

	"github.com/sfomuseum/go-flags/flagset"
)

type RunOptions struct {
	City            string
	Latitude        float64
	Longitude       float64
	Category        string
	Radius          int
	Limit           int
	APIKey          string
	EnvFile         string
	Endpoint        string
	TargetBucketURI string
	Output          string
	Verbose         bool
}

func RunOptionsFromFlagSet(ctx context.Context, fs *flag.FlagSet) (*RunOptions, error) {

	flagset.Parse(fs)

	err := flagset.SetFlagsFromEnvVars(fs, "ALLSPOTS")

	if err != nil {
		return nil, fmt.Errorf("Failed to set flags from environment variables, %w", err)
	}

	opts := &RunOptions{
		City:            city,
		Latitude:        latitude,
		Longitude:       longitude,
		Category:        category_name,
		Radius:          radius,
		Limit:           limit,
		APIKey:          api_key,
		EnvFile:         env_file,
		TargetBucketURI: target_bucket_uri,
		Output:          output,
		Verbose:         verbose,
	}

	return opts, nil
}
