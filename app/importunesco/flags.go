package importunesco

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sfomuseum/go-flags/flagset"
	"github.com/sfomuseum/go-flags/multi"
)

var countries multi.MultiString
var category_name string
var limit int

var target_bucket_uri string
var output string

var verbose bool

func DefaultFlagSet(ctx context.Context) *flag.FlagSet {

	fs := flagset.NewFlagSet("importunesco")

	fs.Var(&countries, "country", "Zero or more country names to restrict sites to (case insensitive). Default is France.")
	fs.StringVar(&category_name, "category", "", "An optional category to restrict sites to.")
	fs.IntVar(&limit, "limit", 0, "The maximum number of sites to export. Zero means no limit.")

	fs.StringVar(&target_bucket_uri, "target-bucket-uri", "file:///", "A valid gocloud.dev/blob URI where the export file is written.")
	fs.StringVar(&output, "output", "pois_unesco.json", "The name of the export file.")

	fs.BoolVar(&verbose, "verbose", false, "Enable verbose (debug) logging.")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s imports UNESCO World Heritage sites, falling back to Wikidata when the UNESCO list is unavailable.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage:\n\t %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Valid options are:\n")
		fs.PrintDefaults()
	}

	return fs
}
