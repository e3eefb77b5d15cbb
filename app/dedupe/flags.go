package dedupe

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/allspots/go-poi-import/dedupe"
	"github.com/allspots/go-poi-import/store"
	"github.com/sfomuseum/go-flags/flagset"
)

var store_uri string
var env_file string

var apply bool
var examples int
var batch_size int

var backup_bucket_uri string
var backup_uri string

var verbose bool

func DefaultFlagSet(ctx context.Context) *flag.FlagSet {

	fs := flagset.NewFlagSet("dedupe")

	fs.StringVar(&store_uri, "store-uri", "", fmt.Sprintf("The store to deduplicate. Valid schemes are: %s. Defaults to the store derived from the environment.", store.Schemes()))
	fs.StringVar(&env_file, "env-file", "", "An optional .env file to read settings from. Defaults to ./.env when present.")

	fs.BoolVar(&apply, "apply", false, "Delete the duplicates. The default is to report the duplicate groups.")
	fs.IntVar(&examples, "examples", 10, "The number of duplicate groups listed in the summary.")
	fs.IntVar(&batch_size, "batch-size", dedupe.DefaultBatchSize, "The number of documents written per batch.")

	fs.StringVar(&backup_bucket_uri, "backup-bucket-uri", "file:///", "A valid gocloud.dev/blob URI where the backup of deleted duplicates is written.")
	fs.StringVar(&backup_uri, "backup-uri", "", "The name of the backup file. The default is to write no backup.")

	fs.BoolVar(&verbose, "verbose", false, "Enable verbose (debug) logging.")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s finds documents of the spots collection describing the same place and keeps the most complete one.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage:\n\t %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Valid options are:\n")
		fs.PrintDefaults()
	}

	return fs
}
