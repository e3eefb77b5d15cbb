// Package unesco fetches World Heritage sites from the UNESCO list endpoints, falling
// back to a Wikidata SPARQL query, and converts them into POI records.
package unesco

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/allspots/go-poi-import/poi"
	"github.com/allspots/go-poi-import/sources"
	"github.com/tidwall/gjson"
)

// Endpoints are the UNESCO list URLs tried in order.
var Endpoints = []string{
	"https://whc.unesco.org/en/list/json/",
	"https://whc.unesco.org/en/list/?format=json",
	"https://whc.unesco.org/en/list/?json=1",
	"https://whc.unesco.org/en/list/?&json=1",
	"https://whc.unesco.org/en/list/?json",
}

const WikidataEndpoint = "https://query.wikidata.org/sparql"

// WikidataQuery selects the items located in France (Q142) whose heritage designation is
// a subclass of World Heritage Site (Q9259).
const WikidataQuery = `
SELECT ?item ?itemLabel ?coord ?unescoId ?heritageLabel WHERE {
  ?item wdt:P1435 ?heritage .
  ?heritage wdt:P279* wd:Q9259 .
  ?item wdt:P17 wd:Q142 .
  OPTIONAL { ?item wdt:P625 ?coord }
  OPTIONAL { ?item wdt:P757 ?unescoId }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "fr,en". }
}
`

const (
	ProviderUnesco   = "unesco"
	ProviderWikidata = "wikidata"
)

var ErrUnavailable = errors.New("UNESCO endpoints unavailable")

var headers = map[string]string{
	"Accept":          "application/json, text/plain;q=0.9, */*;q=0.8",
	"Accept-Language": "fr,en;q=0.8",
}

type ClientOptions struct {
	Endpoints        []string
	WikidataEndpoint string
	Client           *sources.Client
}

type Client struct {
	endpoints []string
	wikidata  string
	client    *sources.Client
}

func NewClient(opts *ClientOptions) *Client {

	if opts == nil {
		opts = &ClientOptions{}
	}

	endpoints := opts.Endpoints

	if len(endpoints) == 0 {
		endpoints = Endpoints
	}

	wikidata := opts.WikidataEndpoint

	if wikidata == "" {
		wikidata = WikidataEndpoint
	}

	client := opts.Client

	if client == nil {
		client = sources.NewClient(nil)
	}

	c := &Client{
		endpoints: endpoints,
		wikidata:  wikidata,
		client:    client,
	}

	return c
}

// FetchList returns the first JSON document served by one of the UNESCO endpoints.
func (c *Client) FetchList(ctx context.Context) (gjson.Result, error) {

	var last_err error

	for _, endpoint := range c.endpoints {

		rsp, err := c.client.GetJSON(ctx, endpoint, nil, headers)

		if err != nil {
			slog.Debug("UNESCO endpoint failed", "endpoint", endpoint, "error", err)
			last_err = err
			continue
		}

		if !rsp.IsArray() && !rsp.IsObject() {
			continue
		}

		return rsp, nil
	}

	if last_err != nil {
		return gjson.Result{}, fmt.Errorf("%w, %w", ErrUnavailable, last_err)
	}

	return gjson.Result{}, ErrUnavailable
}

// FetchWikidata returns the SPARQL result bindings of WikidataQuery.
func (c *Client) FetchWikidata(ctx context.Context) ([]gjson.Result, error) {

	params := url.Values{}
	params.Set("query", WikidataQuery)
	params.Set("format", "json")

	rsp, err := c.client.GetJSON(ctx, c.wikidata, params, headers)

	if err != nil {
		return nil, fmt.Errorf("Failed to query Wikidata, %w", err)
	}

	return rsp.Get("results.bindings").Array(), nil
}

// Records returns the site records of a UNESCO list document, which may be an array or
// an object wrapping one under "features", "results", "records", "items" or "properties".
func Records(data gjson.Result) []gjson.Result {

	if data.IsArray() {
		return data.Array()
	}

	for _, k := range []string{"features", "results", "records", "items", "properties"} {

		v := data.Get(k)

		if v.IsArray() {
			return v.Array()
		}
	}

	return []gjson.Result{data}
}

// CategoryFromText classifies a free-text heritage description as "natural", "mixed"
// or "cultural".
func CategoryFromText(text string) string {

	lower := strings.ToLower(strings.TrimSpace(text))

	for _, token := range []string{"natural", "naturel", "natura"} {

		if strings.Contains(lower, token) {
			return "natural"
		}
	}

	for _, token := range []string{"mixed", "mixte"} {

		if strings.Contains(lower, token) {
			return "mixed"
		}
	}

	return "cultural"
}

// Fetch converts the UNESCO list and falls back to Wikidata when no UNESCO endpoint
// answers. It returns the records and the provider they came from.
func (c *Client) Fetch(ctx context.Context, opts *ConvertOptions) ([]*poi.POI, string, error) {

	data, err := c.FetchList(ctx)

	if err == nil {
		return ConvertList(data, opts), ProviderUnesco, nil
	}

	slog.Warn("UNESCO list unavailable, falling back to Wikidata", "error", err)

	bindings, err := c.FetchWikidata(ctx)

	if err != nil {
		return nil, ProviderWikidata, err
	}

	return ConvertWikidata(bindings, opts), ProviderWikidata, nil
}
