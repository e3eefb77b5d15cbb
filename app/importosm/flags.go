package importosm

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/allspots/go-poi-import/sources/overpass"
	"github.com/sfomuseum/go-flags/flagset"
)

var department string
var category_name string
var radius int

var endpoint string
var departments_uri string

var target_bucket_uri string
var output string

var verbose bool

func DefaultFlagSet(ctx context.Context) *flag.FlagSet {

	fs := flagset.NewFlagSet("importosm")

	fs.StringVar(&department, "department", "", "The code of the department to import POIs for (for example 75 or 2A). Required.")
	fs.StringVar(&category_name, "category", "culture", "The category of POIs to import. Valid options are: culture, nature, experienceGustative, histoire, activites.")
	fs.IntVar(&radius, "radius", overpass.DefaultRadius, "The search radius, in metres, around the department's reference point.")

	fs.StringVar(&endpoint, "endpoint", overpass.DefaultEndpoint, "The Overpass API interpreter endpoint.")
	fs.StringVar(&departments_uri, "departments-uri", "", "An optional gocloud.dev/blob URI of a department table to use instead of the built-in one, for example file:///usr/local/data/departments.json.")

	fs.StringVar(&target_bucket_uri, "target-bucket-uri", "file:///", "A valid gocloud.dev/blob URI where the export file is written.")
	fs.StringVar(&output, "output", "pois_import.json", "The name of the export file.")

	fs.BoolVar(&verbose, "verbose", false, "Enable verbose (debug) logging.")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s imports POIs for a department and category from the OpenStreetMap Overpass API.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage:\n\t %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Valid options are:\n")
		fs.PrintDefaults()
	}

	return fs
}
