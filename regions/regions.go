// Package regions provides the table of French departments (code, name, reference
// point) used to centre geographic searches.
package regions

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aaronland/gocloud-blob/bucket"
	"github.com/paulmach/orb"
	"gocloud.dev/blob"
)

//go:embed departments.json
var departments_json []byte

var ErrUnknownRegion = errors.New("Unknown region")

const (
	ZoneMetropolitan = "metro"
	ZoneOverseas     = "outre-mer"
)

type Department struct {
	Code string  `json:"-"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Zone string  `json:"zone"`
}

func (d *Department) Point() orb.Point {
	return orb.Point{d.Lng, d.Lat}
}

func (d *Department) IsMetropolitan() bool {
	return d.Zone != ZoneOverseas
}

// Table maps department codes ("75", "2A", "974") to departments.
type Table map[string]*Department

// DefaultTable returns the embedded department table.
func DefaultTable() (Table, error) {
	return NewTable(departments_json)
}

// NewTable decodes a table encoded as {"<code>": {"name", "lat", "lng", "zone"}}.
func NewTable(body []byte) (Table, error) {

	var t Table

	err := json.Unmarshal(body, &t)

	if err != nil {
		return nil, fmt.Errorf("Failed to decode department table, %w", err)
	}

	for code, d := range t {

		d.Code = code

		if d.Zone == "" {
			d.Zone = zoneForCode(code)
		}
	}

	return t, nil
}

// LoadTable reads a table from 'uri' in 'b'.
func LoadTable(ctx context.Context, b *blob.Bucket, uri string) (Table, error) {

	body, err := b.ReadAll(ctx, strings.TrimLeft(uri, "/"))

	if err != nil {
		return nil, fmt.Errorf("Failed to read department table, %w", err)
	}

	return NewTable(body)
}

// Open returns the table stored at 'uri', a gocloud.dev/blob bucket URI followed by the
// file name (for example file:///usr/local/data/departments.json), or the built-in table
// when 'uri' is empty.
func Open(ctx context.Context, uri string) (Table, error) {

	if uri == "" {
		return DefaultTable()
	}

	idx := strings.LastIndex(uri, "/")

	if idx == -1 {
		return nil, fmt.Errorf("Invalid department table URI '%s'", uri)
	}

	b, err := bucket.OpenBucket(ctx, uri[:idx+1])

	if err != nil {
		return nil, fmt.Errorf("Failed to open department table bucket, %w", err)
	}

	defer b.Close()

	return LoadTable(ctx, b, uri[idx+1:])
}

// Lookup returns the department for 'code'. Single digit codes are zero-padded and
// Corsican codes are upper-cased.
func (t Table) Lookup(code string) (*Department, error) {

	code = strings.ToUpper(strings.TrimSpace(code))

	if len(code) == 1 {
		code = "0" + code
	}

	d, ok := t[code]

	if !ok {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownRegion, code)
	}

	return d, nil
}

// Codes returns the codes of the table in sort order.
func (t Table) Codes() []string {

	codes := make([]string, 0, len(t))

	for code := range t {
		codes = append(codes, code)
	}

	sort.Strings(codes)
	return codes
}

func zoneForCode(code string) string {

	if strings.HasPrefix(code, "97") {
		return ZoneOverseas
	}

	return ZoneMetropolitan
}
