package dedupe

import (
	"context"
	"flag"
	"fmt"

	"github.com/allspots/go-poi-import/config"
	"github.com/sfomuseum/go-flags/flagset"
)

type RunOptions struct {
	StoreURI        string
	Apply           bool
	Examples        int
	BatchSize       int
	BackupBucketURI string
	BackupURI       string
	Verbose         bool
}

func RunOptionsFromFlagSet(ctx context.Context, fs *flag.FlagSet) (*RunOptions, error) {

	flagset.Parse(fs)

	err := flagset.SetFlagsFromEnvVars(fs, "ALLSPOTS")

	if err != nil {
		return nil, fmt.Errorf("Failed to set flags from environment variables, %w", err)
	}

	uri, err := config.StoreURI(store_uri, env_file)

	if err != nil {
		return nil, err
	}

	opts := &RunOptions{
		StoreURI:        uri,
		Apply:           apply,
		Examples:        examples,
		BatchSize:       batch_size,
		BackupBucketURI: backup_bucket_uri,
		BackupURI:       backup_uri,
		Verbose:         verbose,
	}

	return opts, nil
}
