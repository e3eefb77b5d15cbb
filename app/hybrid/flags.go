package hybrid

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/allspots/go-poi-import/hybrid"
	"github.com/sfomuseum/go-flags/flagset"
	"github.com/sfomuseum/go-flags/multi"
)

var cities multi.MultiString
var categories multi.MultiString

var skip_osm bool
var skip_google bool
var skip_datagouv bool

var pause string
var cooldown string

var api_key string
var env_file string

var target_bucket_uri string
var output string
var keep_intermediate bool

var verbose bool

func DefaultFlagSet(ctx context.Context) *flag.FlagSet {

	fs := flagset.NewFlagSet("hybrid")

	fs.Var(&cities, "city", fmt.Sprintf("Zero or more cities to import. Valid options are: %s, %s. Default is all.", strings.Join(hybrid.CityNames(), ", "), hybrid.All))
	fs.Var(&categories, "category", "Zero or more categories to import. Default is all.")

	fs.BoolVar(&skip_osm, "skip-osm", false, "Do not query OpenStreetMap.")
	fs.BoolVar(&skip_google, "skip-google", false, "Do not query Google Places.")
	fs.BoolVar(&skip_datagouv, "skip-datagouv", false, "Do not query the open-data datasets.")

	fs.StringVar(&pause, "pause", hybrid.DefaultPause.String(), "The wait after each per-category provider call.")
	fs.StringVar(&cooldown, "cooldown", hybrid.DefaultCooldown.String(), "The wait between two cities.")

	fs.StringVar(&api_key, "api-key", "", "A Places API key or a gocloud.dev/runtimevar URI resolving to one. Defaults to GOOGLE_PLACES_API_KEY. Google Places is skipped when no key is available.")
	fs.StringVar(&env_file, "env-file", "", "An optional .env file to read settings from. Defaults to ./.env when present.")

	fs.StringVar(&target_bucket_uri, "target-bucket-uri", "file:///", "A valid gocloud.dev/blob URI where export files are written.")
	fs.StringVar(&output, "output", "pois_hybrid.json", "The name of the merged export file.")
	fs.BoolVar(&keep_intermediate, "keep-intermediate", false, "Also write the records of every provider call to their own export file.")

	fs.BoolVar(&verbose, "verbose", false, "Enable verbose (debug) logging.")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s imports POIs for major French cities from several providers and merges them into a single export.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage:\n\t %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Valid options are:\n")
		fs.PrintDefaults()
	}

	return fs
}
