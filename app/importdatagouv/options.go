package importdatagouv

import (
	"context"
	"flag"
	"fmt"

	"github.com/sfomuseum/go-flags/flagset"
)

type RunOptions struct {
	Dataset         string
	Department      string
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
		Dataset:         dataset,
		Department:      department,
		TargetBucketURI: target_bucket_uri,
		Output:          output,
		Verbose:         verbose,
	}

	return opts, nil
}
