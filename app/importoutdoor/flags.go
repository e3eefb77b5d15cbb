package importoutdoor

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/sources/outdoor"
	"github.com/sfomuseum/go-flags/flagset"
)

var method string
var activity string

var source_bucket_uri string
var input string

var latitude float64
var longitude float64
var radius int
var region string
var endpoint string

var target_bucket_uri string
var output string

var verbose bool

func DefaultFlagSet(ctx context.Context) *flag.FlagSet {

	fs := flagset.NewFlagSet("importoutdoor")

	fs.StringVar(&method, "method", outdoor.MethodManual, fmt.Sprintf("The import method. Valid options are: %s.", strings.Join(outdoor.Methods(), ", ")))
	fs.StringVar(&activity, "activity", outdoor.DefaultActivity, fmt.Sprintf("The activity to import. Valid options are: %s.", strings.Join(category.ActivityNames(), ", ")))

	fs.StringVar(&source_bucket_uri, "source-bucket-uri", "file:///", "A valid gocloud.dev/blob URI where manual exports are read from.")
	fs.StringVar(&input, "input", "", "The manual export to read. Required by the manual method.")

	fs.Float64Var(&latitude, "latitude", 0.0, "Search latitude. Required by the api method.")
	fs.Float64Var(&longitude, "longitude", 0.0, "Search longitude. Required by the api method.")
	fs.IntVar(&radius, "radius", outdoor.DefaultRadius, "The search radius in meters.")
	fs.StringVar(&region, "region", "", "The region to list routes for. Required by the region method.")
	fs.StringVar(&endpoint, "endpoint", outdoor.DefaultEndpoint, "The outdoor routes API endpoint.")

	fs.StringVar(&target_bucket_uri, "target-bucket-uri", "file:///", "A valid gocloud.dev/blob URI where the export file is written.")
	fs.StringVar(&output, "output", "pois_outdoor.json", "The name of the export file.")

	fs.BoolVar(&verbose, "verbose", false, "Enable verbose (debug) logging.")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s imports outdoor routes from manual app exports or the outdoor routes API.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage:\n\t %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Valid options are:\n")
		fs.PrintDefaults()
	}

	return fs
}
