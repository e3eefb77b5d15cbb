package locate

import (
	"context"
	"flag"
	"fmt"

	"github.com/allspots/go-poi-import/locality"
	"github.com/sfomuseum/go-flags/flagset"
)

type RunOptions struct {
	SourceBucketURI string
	TargetBucketURI string
	ReportURI       string
	Overwrite       bool
	Resolver        *locality.ResolverOptions
	Inputs          []string
	Verbose         bool
}

func RunOptionsFromFlagSet(ctx context.Context, fs *flag.FlagSet) (*RunOptions, error) {

	flagset.Parse(fs)

	err := flagset.SetFlagsFromEnvVars(fs, "ALLSPOTS")

	if err != nil {
		return nil, fmt.Errorf("Failed to set flags from environment variables, %w", err)
	}

	resolver_opts := &locality.ResolverOptions{
		SpatialDatabaseURI: spatial_database_uri,
		Placetype:          placetype,
		Accept:             accept,
	}

	if index_spatial_database {

		if iterator_uri == "" || len(iterator_sources) == 0 {
			return nil, fmt.Errorf("-index-spatial-database requires both -iterator-uri and -iterator-source")
		}

		resolver_opts.IteratorURI = iterator_uri
		resolver_opts.IteratorSources = iterator_sources
	}

	opts := &RunOptions{
		SourceBucketURI: source_bucket_uri,
		TargetBucketURI: target_bucket_uri,
		ReportURI:       report_uri,
		Overwrite:       overwrite,
		Resolver:        resolver_opts,
		Inputs:          fs.Args(),
		Verbose:         verbose,
	}

	return opts, nil
}
