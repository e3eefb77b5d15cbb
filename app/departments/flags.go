package departments

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/allspots/go-poi-import/regions"
	"github.com/sfomuseum/go-flags/flagset"
)

var endpoint string

var target_bucket_uri string
var output string

var verbose bool

func DefaultFlagSet(ctx context.Context) *flag.FlagSet {

	fs := flagset.NewFlagSet("departments")

	fs.StringVar(&endpoint, "endpoint", regions.GeoAPIEndpoint, "The French geographic API endpoint.")

	fs.StringVar(&target_bucket_uri, "target-bucket-uri", "file:///", "A valid gocloud.dev/blob URI where the department table is written.")
	fs.StringVar(&output, "output", "departments.json", "The name of the department table file.")

	fs.BoolVar(&verbose, "verbose", false, "Enable verbose (debug) logging.")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s regenerates the department table (name, reference point, zone) from the French geographic API.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage:\n\t %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Valid options are:\n")
		fs.PrintDefaults()
	}

	return fs
}
