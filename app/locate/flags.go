package locate

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/allspots/go-poi-import/locality"
	"github.com/allspots/go-poi-import/poi"
	"github.com/sfomuseum/go-flags/flagset"
	"github.com/sfomuseum/go-flags/multi"
)

var source_bucket_uri string
var target_bucket_uri string

var spatial_database_uri string
var index_spatial_database bool
var iterator_uri string
var iterator_sources multi.MultiString

var placetype string
var accept multi.MultiString

var report_uri string
var overwrite bool

var verbose bool

func DefaultFlagSet(ctx context.Context) *flag.FlagSet {

	fs := flagset.NewFlagSet("locate")

	fs.StringVar(&source_bucket_uri, "source-bucket-uri", "file:///", "A valid gocloud.dev/blob URI where export files are read from.")
	fs.StringVar(&target_bucket_uri, "target-bucket-uri", "file:///", "A valid gocloud.dev/blob URI where located JSONL files (and the CSV report) are written to.")

	fs.StringVar(&spatial_database_uri, "spatial-database-uri", "sqlite://?dsn=modernc://mem", "A valid whosonfirst/go-whosonfirst-spatial.SpatialDatabase URI.")
	fs.BoolVar(&index_spatial_database, "index-spatial-database", false, "Create a point-in-polygon enabled spatial index at runtime. If true then both -iterator-uri and -iterator-source must be set.")
	fs.StringVar(&iterator_uri, "iterator-uri", "repo://", "A valid whosonfirst/go-whosonfirst-iterate/v2 URI.")
	fs.Var(&iterator_sources, "iterator-source", "Zero or more URIs for the iterator defined by -iterator-uri to process.")

	fs.StringVar(&placetype, "placetype", locality.DefaultPlacetype, "The placetype assigned to each record before the point-in-polygon lookup.")
	fs.Var(&accept, "accept", "Zero or more placetypes whose name may be used as a city. Defaults to locality, localadmin and borough.")

	fs.StringVar(&report_uri, "report-uri", "", "An optional filename, relative to -target-bucket-uri, for the CSV report. The default is to write the report to STDOUT.")
	fs.BoolVar(&overwrite, "overwrite", false, fmt.Sprintf("Locate every record, not just the ones whose city is missing or '%s'.", poi.DefaultCity))

	fs.BoolVar(&verbose, "verbose", false, "Enable verbose (debug) logging.")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s assigns a city to export records using point-in-polygon lookups.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage:\n\t %s [options] export.json [export.json...]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Valid options are:\n")
		fs.PrintDefaults()
	}

	return fs
}
