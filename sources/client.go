// Package sources provides the paced HTTP client shared by the external source clients
// and the per-source import statistics.
package sources

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/allspots/go-poi-import/retry"
	"github.com/tidwall/gjson"
	"go.uber.org/ratelimit"
)

const DefaultUserAgent = "allspots-poi-import/1.0 (+https://allspots.app)"

const DefaultTimeout = 120 * time.Second

// StatusError is returned for non-2xx responses. Its message carries the status code so
// that retry.IsTransientMessage recognizes 429 and 503 responses.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {

	msg := fmt.Sprintf("%d %s", e.StatusCode, e.Status)

	if e.StatusCode == http.StatusServiceUnavailable {
		msg = fmt.Sprintf("%s (unavailable)", msg)
	}

	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}

	return msg
}

type ClientOptions struct {
	HTTPClient *http.Client
	// Interval is the minimum delay between two requests. Zero disables pacing.
	Interval  time.Duration
	UserAgent string
	// Policy, when set, retries transient request failures.
	Policy *retry.Policy
}

// Client issues paced HTTP requests and returns decoded bodies.
type Client struct {
	http       *http.Client
	limiter    ratelimit.Limiter
	user_agent string
	policy     *retry.Policy
}

func NewClient(opts *ClientOptions) *Client {

	if opts == nil {
		opts = &ClientOptions{}
	}

	http_client := opts.HTTPClient

	if http_client == nil {
		http_client = &http.Client{Timeout: DefaultTimeout}
	}

	limiter := ratelimit.NewUnlimited()

	if opts.Interval > 0 {
		limiter = ratelimit.New(1, ratelimit.Per(opts.Interval), ratelimit.WithoutSlack)
	}

	user_agent := opts.UserAgent

	if user_agent == "" {
		user_agent = DefaultUserAgent
	}

	c := &Client{
		http:       http_client,
		limiter:    limiter,
		user_agent: user_agent,
		policy:     opts.Policy,
	}

	return c
}

// Get fetches 'uri' with 'params' appended to its query string.
func (c *Client) Get(ctx context.Context, uri string, params url.Values, headers map[string]string) ([]byte, error) {

	if len(params) > 0 {

		sep := "?"

		if strings.Contains(uri, "?") {
			sep = "&"
		}

		uri = uri + sep + params.Encode()
	}

	return c.do(ctx, http.MethodGet, uri, nil, headers)
}

// Post sends 'body' to 'uri' with the given content type.
func (c *Client) Post(ctx context.Context, uri string, content_type string, body []byte, headers map[string]string) ([]byte, error) {

	h := map[string]string{
		"Content-Type": content_type,
	}

	for k, v := range headers {
		h[k] = v
	}

	return c.do(ctx, http.MethodPost, uri, body, h)
}

// GetJSON is Get followed by gjson parsing. Invalid JSON is an error.
func (c *Client) GetJSON(ctx context.Context, uri string, params url.Values, headers map[string]string) (gjson.Result, error) {

	body, err := c.Get(ctx, uri, params, headers)

	if err != nil {
		return gjson.Result{}, err
	}

	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("Invalid JSON response from %s", redact(uri))
	}

	return gjson.ParseBytes(body), nil
}

func (c *Client) do(ctx context.Context, method string, uri string, body []byte, headers map[string]string) ([]byte, error) {

	var rsp_body []byte

	op := func(ctx context.Context) error {

		c.limiter.Take()

		var r io.Reader

		if body != nil {
			r = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, uri, r)

		if err != nil {
			return fmt.Errorf("Failed to create request, %w", err)
		}

		req.Header.Set("User-Agent", c.user_agent)

		for k, v := range headers {
			req.Header.Set(k, v)
		}

		slog.Debug("Issue request", "method", method, "uri", redact(uri))

		rsp, err := c.http.Do(req)

		if err != nil {
			return fmt.Errorf("Failed to execute request, %w", err)
		}

		defer rsp.Body.Close()

		b, err := io.ReadAll(rsp.Body)

		if err != nil {
			return fmt.Errorf("Failed to read response, %w", err)
		}

		if rsp.StatusCode < 200 || rsp.StatusCode > 299 {

			excerpt := string(b)

			if len(excerpt) > 200 {
				excerpt = excerpt[:200]
			}

			return &StatusError{
				StatusCode: rsp.StatusCode,
				Status:     http.StatusText(rsp.StatusCode),
				Body:       strings.TrimSpace(excerpt),
			}
		}

		rsp_body = b
		return nil
	}

	var err error

	if c.policy != nil {
		err = c.policy.Do(ctx, op)
	} else {
		err = op(ctx)
	}

	if err != nil {
		return nil, err
	}

	return rsp_body, nil
}

// redact removes API keys from URIs before they are logged.
func redact(uri string) string {

	u, err := url.Parse(uri)

	if err != nil {
		return uri
	}

	q := u.Query()

	if q.Has("key") {
		q.Set("key", "...")
		u.RawQuery = q.Encode()
	}

	return u.String()
}
