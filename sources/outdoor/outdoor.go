// Package outdoor reads outdoor routes (hiking, trail, cycling...) from manual app exports
// or from the outdoor routes API and converts them into POI records anchored at the start
// of each route.
package outdoor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/sources"
	"github.com/tidwall/gjson"
)

const DefaultEndpoint = "https://www.decathlon-outdoor.com/api"

// DefaultRadius is the search radius, in metres, of API searches.
const DefaultRadius = 50000

const DefaultActivity = "hiking"

// DefaultLimit is the number of routes requested per API call.
const DefaultLimit = 100

const (
	MethodManual = "manual"
	MethodAPI    = "api"
	MethodRegion = "region"
)

var ErrUnknownActivity = errors.New("Unknown activity")

var ErrUnknownMethod = errors.New("Unknown import method")

// Methods lists the supported import methods.
func Methods() []string {
	return []string{MethodManual, MethodAPI, MethodRegion}
}

// ParseActivity validates 'v' against the known activities.
func ParseActivity(v string) (string, error) {

	for _, a := range category.ActivityNames() {

		if a == v {
			return a, nil
		}
	}

	return "", fmt.Errorf("%w '%s'", ErrUnknownActivity, v)
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
		client = sources.NewClient(nil)
	}

	c := &Client{
		endpoint: endpoint,
		client:   client,
	}

	return c
}

// SearchRoutes returns the routes for 'activity' within 'radius' metres of a position.
func (c *Client) SearchRoutes(ctx context.Context, lat float64, lng float64, radius int, activity string) ([]gjson.Result, error) {

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("radius", strconv.FormatFloat(float64(radius)/1000, 'f', -1, 64))
	params.Set("activity", activity)
	params.Set("limit", strconv.Itoa(DefaultLimit))

	rsp, err := c.client.GetJSON(ctx, c.endpoint+"/routes/search", params, nil)

	if err != nil {
		return nil, fmt.Errorf("Failed to search routes, %w", err)
	}

	return Routes(rsp), nil
}

// SearchRegion returns the routes for 'activity' in a named French region.
func (c *Client) SearchRegion(ctx context.Context, region string, activity string) ([]gjson.Result, error) {

	params := url.Values{}
	params.Set("region", region)
	params.Set("activity", activity)
	params.Set("country", "FR")
	params.Set("limit", strconv.Itoa(DefaultLimit))

	rsp, err := c.client.GetJSON(ctx, c.endpoint+"/routes", params, nil)

	if err != nil {
		return nil, fmt.Errorf("Failed to list routes for %s, %w", region, err)
	}

	return Routes(rsp), nil
}

// Routes returns the routes of an API response or a manual export. Exports may be an
// array, an object wrapping one under "routes", "results", "itineraires" or "tracks", or
// a single route object.
func Routes(data gjson.Result) []gjson.Result {

	if data.IsArray() {
		return data.Array()
	}

	if !data.IsObject() {
		return nil
	}

	for _, k := range []string{"routes", "results", "itineraires", "tracks"} {

		v := data.Get(k)

		if v.IsArray() {
			return v.Array()
		}
	}

	return []gjson.Result{data}
}
