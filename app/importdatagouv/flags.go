package importdatagouv

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/allspots/go-poi-import/sources/datagouv"
	"github.com/sfomuseum/go-flags/flagset"
)

var dataset string
var department string

var target_bucket_uri string
var output string

var verbose bool

func DefaultFlagSet(ctx context.Context) *flag.FlagSet {

	fs := flagset.NewFlagSet("importdatagouv")

	desc := fmt.Sprintf("The dataset to import. Valid options are: %s, %s.", strings.Join(datagouv.Names(), ", "), datagouv.AllDatasets)

	fs.StringVar(&dataset, "dataset", datagouv.AllDatasets, desc)
	fs.StringVar(&department, "department", "", "An optional department code to filter rows by.")

	fs.StringVar(&target_bucket_uri, "target-bucket-uri", "file:///", "A valid gocloud.dev/blob URI where the export file is written.")
	fs.StringVar(&output, "output", "pois_datagouv.json", "The name of the export file.")

	fs.BoolVar(&verbose, "verbose", false, "Enable verbose (debug) logging.")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s imports monuments, museums and facilities from the French open-data portals.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage:\n\t %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Valid options are:\n")
		fs.PrintDefaults()
	}

	return fs
}
