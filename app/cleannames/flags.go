package cleannames

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/allspots/go-poi-import/cleanup"
	"github.com/allspots/go-poi-import/store"
	"github.com/sfomuseum/go-flags/flagset"
)

var store_uri string
var env_file string

var apply bool
var limit int
var batch_size int

var backup_bucket_uri string
var backup_uri string

var verbose bool

func DefaultFlagSet(ctx context.Context) *flag.FlagSet {

	fs := flagset.NewFlagSet("cleannames")

	fs.StringVar(&store_uri, "store-uri", "", fmt.Sprintf("The store to clean. Valid schemes are: %s. Defaults to the store derived from the environment.", store.Schemes()))
	fs.StringVar(&env_file, "env-file", "", "An optional .env file to read settings from. Defaults to ./.env when present.")

	fs.BoolVar(&apply, "apply", false, "Rename the documents. The default is to report what would be renamed.")
	fs.IntVar(&limit, "limit", 0, "The maximum number of documents to scan. Zero means no limit.")
	fs.IntVar(&batch_size, "batch-size", cleanup.DefaultBatchSize, "The number of documents updated per batch.")

	fs.StringVar(&backup_bucket_uri, "backup-bucket-uri", "file:///", "A valid gocloud.dev/blob URI where the backup report is written.")
	fs.StringVar(&backup_uri, "backup-uri", "", "The name of the backup report. The default is to write no backup.")

	fs.BoolVar(&verbose, "verbose", false, "Enable verbose (debug) logging.")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s replaces placeholder names in the spots collection with names derived from each document's description or category.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage:\n\t %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Valid options are:\n")
		fs.PrintDefaults()
	}

	return fs
}
