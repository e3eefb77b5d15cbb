// Package places queries the Google Places web service (nearby search, details and
// photos) and converts places into POI records.
package places

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/sources"
	"github.com/tidwall/gjson"
)

const DefaultEndpoint = "https://maps.googleapis.com/maps/api/place"

// CostPerRequest is the estimated price in US dollars of one billed request.
const CostPerRequest = 0.017

// MonthlyCredit is the free monthly credit in US dollars.
const MonthlyCredit = 200.0

const DefaultPageTokenDelay = 2 * time.Second

// MaxSearchResults caps the results collected across the pages of one search.
const MaxSearchResults = 200

const DetailsFields = "name,formatted_address,geometry,photos,rating,website,formatted_phone_number,opening_hours,types"

var ErrMissingAPIKey = errors.New("Missing Places API key")

// APIError is returned when the service answers with a status other than OK or
// ZERO_RESULTS.
type APIError struct {
	Status  string
	Message string
}

func (e *APIError) Error() string {

	if e.Message != "" {
		return fmt.Sprintf("Places API error %s: %s", e.Status, e.Message)
	}

	return fmt.Sprintf("Places API error %s", e.Status)
}

// CategoryTypes are the place types searched for each category.
var CategoryTypes = map[category.Category][]string{
	category.Culture:             {"museum", "art_gallery", "library", "theater", "cultural_center"},
	category.Nature:              {"park", "natural_feature", "campground", "hiking_area"},
	category.ExperienceGustative: {"restaurant", "cafe", "bakery", "bar", "wine_bar"},
	category.Histoire:            {"historical_landmark", "monument", "castle", "archaeological_site"},
	category.Activites:           {"tourist_attraction", "amusement_park", "aquarium", "zoo", "sports_complex"},
}

type ClientOptions struct {
	Endpoint string
	APIKey   string
	Client   *sources.Client
	// PageTokenDelay is the wait before requesting the next page of results.
	PageTokenDelay time.Duration
}

type Client struct {
	endpoint         string
	api_key          string
	client           *sources.Client
	page_token_delay time.Duration
	requests         int64
}

func NewClient(opts *ClientOptions) (*Client, error) {

	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	endpoint := opts.Endpoint

	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	client := opts.Client

	if client == nil {
		client = sources.NewClient(&sources.ClientOptions{
			Interval: time.Second,
		})
	}

	c := &Client{
		endpoint:         strings.TrimRight(endpoint, "/"),
		api_key:          opts.APIKey,
		client:           client,
		page_token_delay: opts.PageTokenDelay,
	}

	return c, nil
}

// Requests returns the number of billed requests issued so far.
func (c *Client) Requests() int {
	return int(atomic.LoadInt64(&c.requests))
}

// EstimatedCost returns the estimated price of Requests() in US dollars.
func (c *Client) EstimatedCost() float64 {
	return float64(c.Requests()) * CostPerRequest
}

// PhotoURL returns the URL of a place photo.
func (c *Client) PhotoURL(reference string, max_width int) string {

	params := url.Values{}
	params.Set("maxwidth", fmt.Sprintf("%d", max_width))
	params.Set("photoreference", reference)
	params.Set("key", c.api_key)

	return fmt.Sprintf("%s/photo?%s", c.endpoint, params.Encode())
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (gjson.Result, error) {

	params.Set("key", c.api_key)

	atomic.AddInt64(&c.requests, 1)

	rsp, err := c.client.GetJSON(ctx, c.endpoint+path, params, nil)

	if err != nil {
		return gjson.Result{}, err
	}

	status := rsp.Get("status").String()

	switch status {
	case "OK", "ZERO_RESULTS":
		return rsp, nil
	default:
		return rsp, &APIError{Status: status, Message: rsp.Get("error_message").String()}
	}
}

// NearbySearch returns the places of 'place_type' within 'radius' metres of (lat, lng),
// following page tokens until MaxSearchResults is reached.
func (c *Client) NearbySearch(ctx context.Context, lat float64, lng float64, radius int, place_type string) ([]gjson.Result, error) {

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%v,%v", lat, lng))
	params.Set("radius", fmt.Sprintf("%d", radius))
	params.Set("type", place_type)

	rsp, err := c.get(ctx, "/nearbysearch/json", params)

	if err != nil {
		return nil, err
	}

	results := rsp.Get("results").Array()
	token := rsp.Get("next_page_token").String()

	for token != "" && len(results) < MaxSearchResults {

		if c.page_token_delay > 0 {

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.page_token_delay):
				// pass
			}
		}

		page_params := url.Values{}
		page_params.Set("pagetoken", token)

		page, err := c.get(ctx, "/nearbysearch/json", page_params)

		if err != nil {
			slog.Warn("Failed to fetch next page", "type", place_type, "error", err)
			break
		}

		results = append(results, page.Get("results").Array()...)
		token = page.Get("next_page_token").String()
	}

	return results, nil
}

// Search runs NearbySearch for every place type of 'c' and returns the places
// deduplicated by place id, in discovery order. Failing types are logged and skipped.
func (c *Client) Search(ctx context.Context, lat float64, lng float64, radius int, cat category.Category) ([]gjson.Result, error) {

	types, ok := CategoryTypes[cat]

	if !ok {
		return nil, fmt.Errorf("%w '%s'", category.ErrUnknownCategory, cat)
	}

	seen := make(map[string]bool)
	places := make([]gjson.Result, 0)

	for _, t := range types {

		results, err := c.NearbySearch(ctx, lat, lng, radius, t)

		if err != nil {

			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			slog.Warn("Failed to search places", "type", t, "error", err)
			continue
		}

		slog.Debug("Found places", "type", t, "count", len(results))

		for _, r := range results {

			id := r.Get("place_id").String()

			if id == "" || seen[id] {
				continue
			}

			seen[id] = true
			places = append(places, r)
		}
	}

	return places, nil
}

// Details returns the details of a place, in French, limited to 'fields'. The boolean
// is false when the place is unknown.
func (c *Client) Details(ctx context.Context, place_id string, fields string) (gjson.Result, bool, error) {

	params := url.Values{}
	params.Set("place_id", place_id)
	params.Set("fields", fields)
	params.Set("language", "fr")

	rsp, err := c.get(ctx, "/details/json", params)

	if err != nil {
		return gjson.Result{}, false, err
	}

	result := rsp.Get("result")

	if !result.IsObject() {
		return gjson.Result{}, false, nil
	}

	return result, true, nil
}

// FindPlace returns the id of the nearest place matching 'name' within 'radius' metres of
// (lat, lng).
func (c *Client) FindPlace(ctx context.Context, name string, lat float64, lng float64, radius int) (string, bool, error) {

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%v,%v", lat, lng))
	params.Set("radius", fmt.Sprintf("%d", radius))
	params.Set("keyword", name)

	rsp, err := c.get(ctx, "/nearbysearch/json", params)

	if err != nil {
		return "", false, err
	}

	id := rsp.Get("results.0.place_id").String()

	if id == "" {
		return "", false, nil
	}

	return id, true, nil
}

// Photos returns up to 'max' photo URLs for a place.
func (c *Client) Photos(ctx context.Context, place_id string, max int, max_width int) ([]string, error) {

	details, ok, err := c.Details(ctx, place_id, "photos")

	if err != nil || !ok {
		return nil, err
	}

	return c.photoURLs(details, max, max_width), nil
}

func (c *Client) photoURLs(details gjson.Result, max int, max_width int) []string {

	urls := make([]string, 0)

	for _, ph := range details.Get("photos").Array() {

		if len(urls) >= max {
			break
		}

		ref := ph.Get("photo_reference").String()

		if ref != "" {
			urls = append(urls, c.PhotoURL(ref, max_width))
		}
	}

	return urls
}
