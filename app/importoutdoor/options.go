package importoutdoor

import (
	"context"
	"flag"
	"fmt"

	"github.com/sfomuseum/go-flags/flagset"
)

type RunOptions struct {
	Method          string
	Activity        string
	SourceBucketURI string
	Input           string
	Latitude        float64
	Longitude       float64
	Radius          int
	Region          string
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
		Method:          method,
		Activity:        activity,
		SourceBucketURI: source_bucket_uri,
		Input:           input,
		Latitude:        latitude,
		Longitude:       longitude,
		Radius:          radius,
		Region:          region,
		Endpoint:        endpoint,
		TargetBucketURI: target_bucket_uri,
		Output:          output,
		Verbose:         verbose,
	}

	return opts, nil
}
