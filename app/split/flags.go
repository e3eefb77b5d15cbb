package split

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/allspots/go-poi-import/poifile"
	"github.com/sfomuseum/go-flags/flagset"
)

var source_bucket_uri string
var target_bucket_uri string

var size int
var prefix string
var directory string
var group_by string

var verbose bool

func DefaultFlagSet(ctx context.Context) *flag.FlagSet {

	fs := flagset.NewFlagSet("split")

	fs.StringVar(&source_bucket_uri, "source-bucket-uri", "file:///", "A valid gocloud.dev/blob URI where export files are read from.")
	fs.StringVar(&target_bucket_uri, "target-bucket-uri", "file:///", "A valid gocloud.dev/blob URI where chunk files are written to.")

	fs.IntVar(&size, "size", poifile.DefaultChunkSize, "The maximum number of records per chunk.")
	fs.StringVar(&prefix, "prefix", poifile.DefaultChunkPrefix, "The prefix of chunk file names.")
	fs.StringVar(&directory, "directory", "", "An optional folder, relative to -target-bucket-uri, chunk files are written to.")
	fs.StringVar(&group_by, "group-by", "", "An optional record property (for example 'city' or 'category'). When set, records are written to one JSONL file per property value instead of fixed size chunks.")

	fs.BoolVar(&verbose, "verbose", false, "Enable verbose (debug) logging.")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s splits large export files into smaller ones.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage:\n\t %s [options] export.json [export.json...]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Valid options are:\n")
		fs.PrintDefaults()
	}

	return fs
}
