package upload

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/allspots/go-poi-import/config"
	"github.com/sfomuseum/go-flags/flagset"
)

type RunOptions struct {
	SourceBucketURI string
	StoreURI        string
	CheckpointURI   string
	BatchSize       int
	BatchSleep      time.Duration
	MonitorURI      string
	Inputs          []string
	DryRun          bool
	Verbose         bool
}

// RunOptionsFromFlagSet fills the options left unset by flags from the environment (see
// the config package).
func RunOptionsFromFlagSet(ctx context.Context, fs *flag.FlagSet) (*RunOptions, error) {

	flagset.Parse(fs)

	err := flagset.SetFlagsFromEnvVars(fs, "ALLSPOTS")

	if err != nil {
		return nil, fmt.Errorf("Failed to set flags from environment variables, %w", err)
	}

	var files []string

	if env_file != "" {
		files = append(files, env_file)
	}

	cfg, err := config.Load(files...)

	if err != nil {
		return nil, err
	}

	opts := &RunOptions{
		SourceBucketURI: source_bucket_uri,
		StoreURI:        store_uri,
		CheckpointURI:   checkpoint_uri,
		BatchSize:       batch_size,
		MonitorURI:      monitor_uri,
		Inputs:          fs.Args(),
		DryRun:          dry_run,
		Verbose:         verbose,
	}

	if opts.StoreURI == "" && !opts.DryRun {

		uri, err := cfg.Store()

		if err != nil {
			return nil, err
		}

		opts.StoreURI = uri
	}

	if opts.CheckpointURI == "" {
		opts.CheckpointURI = cfg.CheckpointURI
	}

	if opts.BatchSize <= 0 {
		opts.BatchSize = cfg.BatchSize
	}

	if batch_sleep != "" {

		d, err := time.ParseDuration(batch_sleep)

		if err != nil {
			return nil, fmt.Errorf("Invalid -batch-sleep value, %w", err)
		}

		opts.BatchSleep = d

	} else {
		opts.BatchSleep = cfg.Sleep()
	}

	return opts, nil
}
