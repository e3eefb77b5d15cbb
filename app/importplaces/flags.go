package importplaces

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/allspots/go-poi-import/hybrid"
	"github.com/allspots/go-poi-import/sources/places"
	"github.com/sfomuseum/go-flags/flagset"
)

var city string
var latitude float64
var longitude float64

var category_name string
var radius int
var limit int

var api_key string
var env_file string

var target_bucket_uri string
var output string

var verbose bool

func DefaultFlagSet(ctx context.Context) *flag.FlagSet {

	fs := flagset.NewFlagSet("importplaces")

	desc_city := fmt.Sprintf("The city to search around. Known cities are: %s. Unknown cities require -latitude and -longitude.", strings.Join(hybrid.CityNames(), ", "))

	fs.StringVar(&city, "city", "paris", desc_city)
	fs.Float64Var(&latitude, "latitude", 0.0, "Search latitude. Overrides the city's position when set with -longitude.")
	fs.Float64Var(&longitude, "longitude", 0.0, "Search longitude. Overrides the city's position when set with -latitude.")

	fs.StringVar(&category_name, "category", "culture", "The category to search for.")
	fs.IntVar(&radius, "radius", places.DefaultRadius, "The search radius in meters.")
	fs.IntVar(&limit, "limit", places.DefaultLimit, "The maximum number of places for which details are requested.")

	fs.StringVar(&api_key, "api-key", "", "A Places API key or a gocloud.dev/runtimevar URI resolving to one. Defaults to GOOGLE_PLACES_API_KEY.")
	fs.StringVar(&env_file, "env-file", "", "An optional .env file to read settings from. Defaults to ./.env when present.")

	fs.StringVar(&target_bucket_uri, "target-bucket-uri", "file:///", "A valid gocloud.dev/blob URI where the export file is written.")
	fs.StringVar(&output, "output", "pois_google_places.json", "The name of the export file.")

	fs.BoolVar(&verbose, "verbose", false, "Enable verbose (debug) logging.")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s imports POIs from the Google Places web service.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage:\n\t %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Valid options are:\n")
		fs.PrintDefaults()
	}

	return fs
}
