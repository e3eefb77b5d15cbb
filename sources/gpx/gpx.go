// Package gpx reads GPX 1.0 and 1.1 documents (tracks, routes and waypoints) and converts
// them into outdoor route POI records.
package gpx

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"gocloud.dev/blob"
	"golang.org/x/text/encoding/charmap"
)

const DefaultWaypointName = "Waypoint"

var ErrNoPoints = errors.New("No track or route points")

// Elements are matched by local name so that both the GPX 1.0 and 1.1 namespaces (and
// documents without one) decode the same way.

type Link struct {
	Href string `xml:"href,attr"`
}

type Point struct {
	Lat       float64  `xml:"lat,attr"`
	Lon       float64  `xml:"lon,attr"`
	Elevation *float64 `xml:"ele"`
	Name      string   `xml:"name"`
	Desc      string   `xml:"desc"`
}

type Segment struct {
	Points []Point `xml:"trkpt"`
}

type Track struct {
	Name     string    `xml:"name"`
	Desc     string    `xml:"desc"`
	Link     *Link     `xml:"link"`
	Segments []Segment `xml:"trkseg"`
}

type Route struct {
	Name   string  `xml:"name"`
	Desc   string  `xml:"desc"`
	Link   *Link   `xml:"link"`
	Points []Point `xml:"rtept"`
}

type Metadata struct {
	Name string `xml:"name"`
	Link *Link  `xml:"link"`
}

type GPX struct {
	XMLName   xml.Name  `xml:"gpx"`
	Metadata  *Metadata `xml:"metadata"`
	Tracks    []Track   `xml:"trk"`
	Routes    []Route   `xml:"rte"`
	Waypoints []Point   `xml:"wpt"`
}

// Trace is the flattened content of a GPX document: the points of its tracks (or, when
// it has none, of its routes), the elevations of the points carrying one, and its
// waypoints.
type Trace struct {
	Name        string
	Description string
	URL         string
	Points      []Point
	Elevations  []float64
	Waypoints   []Point
}

// Decode parses a GPX document.
func Decode(r io.Reader) (*GPX, error) {

	var doc GPX

	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	err := dec.Decode(&doc)

	if err != nil {
		return nil, fmt.Errorf("Failed to decode GPX document, %w", err)
	}

	return &doc, nil
}

// Trace flattens 'doc'. It returns ErrNoPoints if the document has neither track nor
// route points.
func (doc *GPX) Trace() (*Trace, error) {

	t := &Trace{
		Points:     make([]Point, 0),
		Elevations: make([]float64, 0),
		Waypoints:  make([]Point, 0),
	}

	for _, trk := range doc.Tracks {

		for _, seg := range trk.Segments {
			t.Points = append(t.Points, seg.Points...)
		}
	}

	if len(t.Points) == 0 {

		for _, rte := range doc.Routes {
			t.Points = append(t.Points, rte.Points...)
		}
	}

	if len(t.Points) == 0 {
		return nil, ErrNoPoints
	}

	for _, pt := range t.Points {

		if pt.Elevation != nil {
			t.Elevations = append(t.Elevations, *pt.Elevation)
		}
	}

	for _, trk := range doc.Tracks {
		t.Name = first(t.Name, trk.Name)
		t.Description = first(t.Description, trk.Desc)

		if trk.Link != nil {
			t.URL = first(t.URL, trk.Link.Href)
		}
	}

	for _, rte := range doc.Routes {
		t.Name = first(t.Name, rte.Name)
		t.Description = first(t.Description, rte.Desc)
	}

	if doc.Metadata != nil {

		t.Name = first(t.Name, doc.Metadata.Name)

		if doc.Metadata.Link != nil {
			t.URL = first(t.URL, doc.Metadata.Link.Href)
		}
	}

	for _, wpt := range doc.Waypoints {

		wpt.Name = first(strings.TrimSpace(wpt.Name), DefaultWaypointName)
		wpt.Desc = strings.TrimSpace(wpt.Desc)

		t.Waypoints = append(t.Waypoints, wpt)
	}

	return t, nil
}

// Read decodes and flattens the GPX document at 'uri' in 'bucket'. Traces without a
// name are named after the file.
func Read(ctx context.Context, bucket *blob.Bucket, uri string) (*Trace, error) {

	r, err := bucket.NewReader(ctx, uri, nil)

	if err != nil {
		return nil, fmt.Errorf("Failed to open %s, %w", uri, err)
	}

	defer r.Close()

	doc, err := Decode(r)

	if err != nil {
		return nil, fmt.Errorf("Failed to read %s, %w", uri, err)
	}

	t, err := doc.Trace()

	if err != nil {
		return nil, fmt.Errorf("Failed to read %s, %w", uri, err)
	}

	if t.Name == "" {
		base := filepath.Base(uri)
		t.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return t, nil
}

// Find returns the sorted keys of the .gpx files (any case) under 'prefix' in 'bucket'.
// Unless 'recursive' is true, only the files directly under 'prefix' are returned.
func Find(ctx context.Context, bucket *blob.Bucket, prefix string, recursive bool) ([]string, error) {

	prefix = strings.TrimLeft(prefix, "/")

	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix = prefix + "/"
	}

	opts := &blob.ListOptions{
		Prefix: prefix,
	}

	if !recursive {
		opts.Delimiter = "/"
	}

	keys := make([]string, 0)
	iter := bucket.List(opts)

	for {

		obj, err := iter.Next(ctx)

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("Failed to list %s, %w", prefix, err)
		}

		if obj.IsDir {
			continue
		}

		if strings.ToLower(filepath.Ext(obj.Key)) == ".gpx" {
			keys = append(keys, obj.Key)
		}
	}

	sort.Strings(keys)
	return keys, nil
}

func first(current string, candidate string) string {

	if current != "" {
		return current
	}

	return strings.TrimSpace(candidate)
}

// Some exporters declare a latin-1 encoding; everything else is expected to be UTF-8.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {

	switch strings.ToLower(charset) {
	case "utf-8", "utf8", "":
		return input, nil
	case "iso-8859-1", "latin1", "latin-1", "windows-1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	default:
		return nil, fmt.Errorf("Unsupported charset %s", charset)
	}
}
