// Package overpass queries the OpenStreetMap Overpass API and converts its elements into
// POI records.
package overpass

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/retry"
	"github.com/allspots/go-poi-import/sources"
	"github.com/tidwall/gjson"
)

const DefaultEndpoint = "https://overpass-api.de/api/interpreter"

const DefaultRadius = 20000

// DefaultInterval is the minimum delay between two Overpass requests.
const DefaultInterval = 2 * time.Second

// Tag is a key=value OSM tag filter.
type Tag struct {
	Key   string
	Value string
}

func (t Tag) String() string {
	return fmt.Sprintf(`%s="%s"`, t.Key, t.Value)
}

// CategoryTags are the tag filters queried for each category.
var CategoryTags = map[category.Category][]Tag{
	category.Culture: {
		{"tourism", "museum"},
		{"tourism", "gallery"},
		{"tourism", "artwork"},
		{"amenity", "theatre"},
		{"amenity", "cinema"},
	},
	category.Nature: {
		{"leisure", "park"},
		{"tourism", "viewpoint"},
		{"natural", "beach"},
		{"leisure", "garden"},
		{"natural", "peak"},
		{"natural", "waterfall"},
	},
	category.ExperienceGustative: {
		{"amenity", "restaurant"},
		{"amenity", "cafe"},
		{"shop", "bakery"},
		{"tourism", "wine_cellar"},
		{"amenity", "marketplace"},
	},
	category.Histoire: {
		{"historic", "monument"},
		{"historic", "castle"},
		{"historic", "memorial"},
		{"historic", "ruins"},
		{"tourism", "attraction"},
	},
	category.Activites: {
		{"leisure", "sports_centre"},
		{"tourism", "theme_park"},
		{"leisure", "water_park"},
		{"leisure", "stadium"},
		{"tourism", "alpine_hut"},
	},
}

// TagsForCategory returns the tag filters of 'c' or category.ErrUnknownCategory.
func TagsForCategory(c category.Category) ([]Tag, error) {

	tags, ok := CategoryTags[c]

	if !ok {
		return nil, fmt.Errorf("%w '%s'", category.ErrUnknownCategory, c)
	}

	return tags, nil
}

// Classify returns the first category (in category.All order) whose tag filters match
// 'tags', an element's "tags" object.
func Classify(tags gjson.Result) (category.Category, bool) {

	for _, c := range category.All {

		for _, t := range CategoryTags[c] {

			if tags.Get(t.Key).String() == t.Value {
				return c, true
			}
		}
	}

	return "", false
}

// BuildQuery returns an Overpass QL query for the nodes matching any of 'tags' within
// 'radius' metres of (lat, lng).
func BuildQuery(lat float64, lng float64, radius int, tags []Tag) string {

	var b strings.Builder

	b.WriteString("[out:json][timeout:60];\n(\n")

	for _, t := range tags {
		fmt.Fprintf(&b, "  node[%s](around:%d,%v,%v);\n", t.String(), radius, lat, lng)
	}

	b.WriteString(");\nout body;\n>;\nout skel qt;\n")
	return b.String()
}

type ClientOptions struct {
	Endpoint string
	Client   *sources.Client
}

type Client struct {
	endpoint string
	client   *sources.Client
}

func NewClient(opts *ClientOptions) *Client {

	if opts == nil {
		opts = &ClientOptions{}
	}

	endpoint := opts.Endpoint

	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	client := opts.Client

	if client == nil {
		client = sources.NewClient(&sources.ClientOptions{
			Interval: DefaultInterval,
			Policy:   retry.DefaultPolicy(),
		})
	}

	c := &Client{
		endpoint: endpoint,
		client:   client,
	}

	return c
}

// Query runs BuildQuery(lat, lng, radius, tags) and returns the response elements.
func (c *Client) Query(ctx context.Context, lat float64, lng float64, radius int, tags []Tag) ([]gjson.Result, error) {

	q := BuildQuery(lat, lng, radius, tags)

	body, err := c.client.Post(ctx, c.endpoint, "text/plain", []byte(q), nil)

	if err != nil {
		return nil, fmt.Errorf("Failed to query Overpass, %w", err)
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("Invalid Overpass response")
	}

	return gjson.GetBytes(body, "elements").Array(), nil
}

// Keys returns the distinct tag keys used by 'tags', sorted.
func Keys(tags []Tag) []string {

	seen := make(map[string]bool)
	keys := make([]string, 0)

	for _, t := range tags {

		if seen[t.Key] {
			continue
		}

		seen[t.Key] = true
		keys = append(keys, t.Key)
	}

	sort.Strings(keys)
	return keys
}
