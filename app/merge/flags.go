package merge

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sfomuseum/go-flags/flagset"
)

var source_bucket_uri string
var target_bucket_uri string
var output string

var verbose bool

func DefaultFlagSet(ctx context.Context) *flag.FlagSet {

	fs := flagset.NewFlagSet("merge")

	fs.StringVar(&source_bucket_uri, "source-bucket-uri", "file:///", "A valid gocloud.dev/blob URI where export files are read from.")
	fs.StringVar(&target_bucket_uri, "target-bucket-uri", "file:///", "A valid gocloud.dev/blob URI where the merged file is written.")
	fs.StringVar(&output, "output", "pois_merged.json", "The name of the merged export file.")

	fs.BoolVar(&verbose, "verbose", false, "Enable verbose (debug) logging.")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s merges two or more export files, keeping one record per place.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage:\n\t %s [options] export.json [export.json...]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Valid options are:\n")
		fs.PrintDefaults()
	}

	return fs
}
