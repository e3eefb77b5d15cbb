package enrichimages

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/allspots/go-poi-import/enrich"
	"github.com/sfomuseum/go-flags/flagset"
	"github.com/sfomuseum/go-flags/multi"
)

const (
	ModeFiles = "files"
	ModeStore = "store"
)

var mode string

var source_bucket_uri string
var target_bucket_uri string

var store_uri string
var departments multi.MultiString
var apply bool

var limit int
var radius int
var max_photos int
var pause string

var api_key string
var env_file string

var verbose bool

func DefaultFlagSet(ctx context.Context) *flag.FlagSet {

	fs := flagset.NewFlagSet("enrichimages")

	fs.StringVar(&mode, "mode", ModeFiles, fmt.Sprintf("Valid options are: %s, %s.", ModeFiles, ModeStore))

	fs.StringVar(&source_bucket_uri, "source-bucket-uri", "file:///", "A valid gocloud.dev/blob URI where export files are read from.")
	fs.StringVar(&target_bucket_uri, "target-bucket-uri", "file:///", "A valid gocloud.dev/blob URI where enriched JSONL files are written to.")

	fs.StringVar(&store_uri, "store-uri", "", "The store to enrich in store mode. Defaults to the store derived from the environment.")
	fs.Var(&departments, "department", "Zero or more department codes to restrict store mode to.")
	fs.BoolVar(&apply, "apply", false, "Write enriched documents in store mode. The default is to report what would be enriched.")

	fs.IntVar(&limit, "limit", 0, "The maximum number of places to look up. Zero means no limit.")
	fs.IntVar(&radius, "radius", enrich.DefaultRadius, "The search radius in meters around each record.")
	fs.IntVar(&max_photos, "max-photos", enrich.DefaultMaxPhotos, "The maximum number of photos added to a record.")
	fs.StringVar(&pause, "pause", enrich.DefaultPause.String(), "The wait after each place lookup.")

	fs.StringVar(&api_key, "api-key", "", "A Places API key or a gocloud.dev/runtimevar URI resolving to one. Defaults to GOOGLE_PLACES_API_KEY.")
	fs.StringVar(&env_file, "env-file", "", "An optional .env file to read settings from. Defaults to ./.env when present.")

	fs.BoolVar(&verbose, "verbose", false, "Enable verbose (debug) logging.")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s adds Google Places photos to records with fewer than %d images.\n", os.Args[0], enrich.MinImages)
		fmt.Fprintf(os.Stderr, "Usage:\n\t %s [options] [export.json...]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Valid options are:\n")
		fs.PrintDefaults()
	}

	return fs
}
