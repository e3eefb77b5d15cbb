package upload

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/allspots/go-poi-import/store"
	"github.com/allspots/go-poi-import/writer"
	"github.com/sfomuseum/go-flags/flagset"
)

var source_bucket_uri string

var store_uri string
var checkpoint_uri string
var env_file string

var batch_size int
var batch_sleep string
var monitor_uri string

var dry_run bool
var verbose bool

func DefaultFlagSet(ctx context.Context) *flag.FlagSet {

	fs := flagset.NewFlagSet("upload")

	fs.StringVar(&source_bucket_uri, "source-bucket-uri", "file:///", "A valid gocloud.dev/blob URI where export files are read from.")

	fs.StringVar(&store_uri, "store-uri", "", fmt.Sprintf("The store records are written to. Valid schemes are: %s. Defaults to the store derived from the environment.", store.Schemes()))
	fs.StringVar(&checkpoint_uri, "checkpoint-uri", "", "An optional redis:// or gocloud.dev/blob URI where upload progress is saved. Defaults to FIRESTORE_PROGRESS_DIR.")
	fs.StringVar(&env_file, "env-file", "", "An optional .env file to read settings from. Defaults to ./.env when present.")

	fs.IntVar(&batch_size, "batch-size", 0, fmt.Sprintf("The number of documents committed per batch. Defaults to FIRESTORE_BATCH_SIZE or %d.", writer.DefaultBatchSize))
	fs.StringVar(&batch_sleep, "batch-sleep", "", fmt.Sprintf("The pause between two batches. Defaults to FIRESTORE_BATCH_SLEEP or %v.", writer.DefaultBatchSleep))
	fs.StringVar(&monitor_uri, "monitor-uri", "counter://PT60S", "A valid sfomuseum/go-timings URI.")

	fs.BoolVar(&dry_run, "dry-run", false, "Prepare the documents and report what would be written without writing anything.")
	fs.BoolVar(&verbose, "verbose", false, "Enable verbose (debug) logging.")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s writes export files to the spots collection in resumable batches.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage:\n\t %s [options] export.json [export.json...]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Valid options are:\n")
		fs.PrintDefaults()
	}

	return fs
}
