package hybrid

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/sfomuseum/go-flags/flagset"
)

type RunOptions struct {
	Cities           []string
	Categories       []string
	SkipOSM          bool
	SkipGoogle       bool
	SkipDatagouv     bool
	Pause            time.Duration
	Cooldown         time.Duration
	APIKey           string
	EnvFile          string
	TargetBucketURI  string
	Output           string
	KeepIntermediate bool
	Verbose          bool
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

	cooldown_d, err := time.ParseDuration(cooldown)

	if err != nil {
		return nil, fmt.Errorf("Invalid -cooldown value, %w", err)
	}

	opts := &RunOptions{
		Cities:           cities,
		Categories:       categories,
		SkipOSM:          skip_osm,
		SkipGoogle:       skip_google,
		SkipDatagouv:     skip_datagouv,
		Pause:            pause_d,
		Cooldown:         cooldown_d,
		APIKey:           api_key,
		EnvFile:          env_file,
		TargetBucketURI:  target_bucket_uri,
		Output:           output,
		KeepIntermediate: keep_intermediate,
		Verbose:          verbose,
	}

	return opts, nil
}
