package convertgpx

import (
	"context"
	"flag"
	"fmt"

	"github.com/sfomuseum/go-flags/flagset"
)

type RunOptions struct {
	SourceBucketURI string
	Prefix          string
	Recursive       bool
	Category        string
	City            string
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
		SourceBucketURI: source_bucket_uri,
		Prefix:          prefix,
		Recursive:       recursive,
		Category:        category_name,
		City:            city,
		TargetBucketURI: target_bucket_uri,
		Output:          output,
		Verbose:         verbose,
	}

	return opts, nil
}
