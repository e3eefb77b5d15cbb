package convertgpx

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sfomuseum/go-flags/flagset"
)

var source_bucket_uri string
var prefix string
var recursive bool

var category_name string
var city string

var target_bucket_uri string
var output string

var verbose bool

func DefaultFlagSet(ctx context.Context) *flag.FlagSet {

	fs := flagset.NewFlagSet("convertgpx")

	fs.StringVar(&source_bucket_uri, "source-bucket-uri", "file:///", "A valid gocloud.dev/blob URI where GPX files are read from.")
	fs.StringVar(&prefix, "prefix", "", "The folder, relative to -source-bucket-uri, containing GPX files.")
	fs.BoolVar(&recursive, "recursive", false, "Read GPX files in sub-folders of -prefix as well.")

	fs.StringVar(&category_name, "category", "nature", "The category assigned to converted routes.")
	fs.StringVar(&city, "city", "", "An optional city assigned to converted routes.")

	fs.StringVar(&target_bucket_uri, "target-bucket-uri", "file:///", "A valid gocloud.dev/blob URI where the export file is written.")
	fs.StringVar(&output, "output", "pois_gpx.json", "The name of the export file.")

	fs.BoolVar(&verbose, "verbose", false, "Enable verbose (debug) logging.")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s converts a folder of GPX tracks and routes into POI records.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage:\n\t %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Valid options are:\n")
		fs.PrintDefaults()
	}

	return fs
}
