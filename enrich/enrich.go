// Package enrich adds Google Places photos to records that have fewer than MinImages
// images, either in export files or in the spots collection.
package enrich

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/allspots/go-poi-import/dedupe"
	"github.com/allspots/go-poi-import/importer"
	"github.com/allspots/go-poi-import/poi"
	"github.com/allspots/go-poi-import/retry"
	"github.com/allspots/go-poi-import/store"
	"github.com/dustin/go-humanize"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// MinImages is the number of images below which a record is enriched.
const MinImages = 2

const (
	DefaultRadius     = 150
	DefaultMaxPhotos  = 3
	DefaultPhotoWidth = 1200
	DefaultPause      = time.Second
)

const (
	StatusEnriched = "enriched"
	StatusNotFound = "not-found"
	StatusNoPhotos = "no-photos"
)

// Finder looks up places and their photos. *places.Client implements it.
type Finder interface {
	FindPlace(ctx context.Context, name string, lat float64, lng float64, radius int) (string, bool, error)
	Photos(ctx context.Context, place_id string, max int, max_width int) ([]string, error)
}

type Options struct {
	Finder     Finder
	Radius     int
	MaxPhotos  int
	PhotoWidth int
	// Pause is the wait after each lookup.
	Pause time.Duration
	// Limit caps the number of records looked up; 0 means no limit.
	Limit int
	// Apply writes enriched documents to the store. It has no effect on export files.
	Apply  bool
	Policy *retry.Policy
	Now    func() time.Time
	Logger *slog.Logger
}

type Report struct {
	Scanned    int
	Candidates int
	Enriched   int
	NotFound   int
	NoPhotos   int
	Errors     int
	Written    int
}

func (r *Report) Summary(wr io.Writer) {

	fmt.Fprintf(wr, "\n=== Enrichment ===\n")
	fmt.Fprintf(wr, "Scanned    : %s\n", humanize.Comma(int64(r.Scanned)))
	fmt.Fprintf(wr, "Candidates : %s\n", humanize.Comma(int64(r.Candidates)))
	fmt.Fprintf(wr, "Enriched   : %s\n", humanize.Comma(int64(r.Enriched)))
	fmt.Fprintf(wr, "Not found  : %s\n", humanize.Comma(int64(r.NotFound)))
	fmt.Fprintf(wr, "No photos  : %s\n", humanize.Comma(int64(r.NoPhotos)))
	fmt.Fprintf(wr, "Errors     : %s\n", humanize.Comma(int64(r.Errors)))
	fmt.Fprintf(wr, "Written    : %s\n", humanize.Comma(int64(r.Written)))
}

// Enricher looks up photos for records and keeps a running Report.
type Enricher struct {
	options *Options
	report  *Report
	lookups int
}

func NewEnricher(opts *Options) (*Enricher, error) {

	if opts == nil || opts.Finder == nil {
		return nil, fmt.Errorf("Missing place finder")
	}

	o := *opts

	if o.Radius <= 0 {
		o.Radius = DefaultRadius
	}

	if o.MaxPhotos <= 0 {
		o.MaxPhotos = DefaultMaxPhotos
	}

	if o.PhotoWidth <= 0 {
		o.PhotoWidth = DefaultPhotoWidth
	}

	if o.Policy == nil {
		o.Policy = retry.DefaultPolicy()
	}

	if o.Now == nil {
		o.Now = time.Now
	}

	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	e := &Enricher{
		options: &o,
		report:  new(Report),
	}

	return e, nil
}

func (e *Enricher) Report() *Report {
	return e.report
}

// Lookup finds the place nearest to (lat, lng) matching 'name' and returns its id,
// its photo URLs and one of the Status constants.
func (e *Enricher) Lookup(ctx context.Context, name string, lat float64, lng float64) (string, []string, string, error) {

	defer e.pause(ctx)

	place_id, ok, err := e.options.Finder.FindPlace(ctx, name, lat, lng, e.options.Radius)

	if err != nil {
		return "", nil, "", fmt.Errorf("Failed to find place, %w", err)
	}

	if !ok {
		return "", nil, StatusNotFound, nil
	}

	photos, err := e.options.Finder.Photos(ctx, place_id, e.options.MaxPhotos, e.options.PhotoWidth)

	if err != nil {
		return place_id, nil, "", fmt.Errorf("Failed to fetch photos for %s, %w", place_id, err)
	}

	if len(photos) == 0 {
		return place_id, nil, StatusNoPhotos, nil
	}

	return place_id, photos, StatusEnriched, nil
}

// Record enriches one export record. It returns the updated record and true when photos
// were added, or the record unchanged and false.
func (e *Enricher) Record(ctx context.Context, r gjson.Result) ([]byte, bool, error) {

	body := []byte(r.Raw)

	e.report.Scanned += 1

	if !r.IsObject() || !e.wants(len(poi.ImageCandidates(r))) {
		return body, false, nil
	}

	lat, lng, ok := importer.Coordinates.Resolve(r)

	if !ok {
		return body, false, nil
	}

	e.report.Candidates += 1

	place_id, photos, ok := e.lookup(ctx, r.Get("name").String(), lat, lng)

	if !ok {
		return body, false, ctx.Err()
	}

	updates := map[string]any{
		"imageUrls":     photos,
		"images":        photos,
		"googlePlaceId": place_id,
		"enrichedAt":    e.options.Now().UTC().Format(time.RFC3339),
	}

	for path, v := range updates {

		b, err := sjson.SetBytes(body, path, v)

		if err != nil {
			return nil, false, fmt.Errorf("Failed to assign %s, %w", path, err)
		}

		body = b
	}

	return body, true, nil
}

// Store enriches the documents of 's' with fewer than MinImages images. When 'filters' is
// not empty only the documents matching one of them are scanned. Documents are only
// written when opts.Apply is true.
func (e *Enricher) Store(ctx context.Context, s store.Store, filters ...*store.Filter) (*Report, error) {

	policy := e.options.Policy.WithClassifier(s.IsTransient)

	if len(filters) == 0 {
		filters = []*store.Filter{nil}
	}

	docs := make([]*store.Document, 0)
	seen := make(map[string]bool)

	for _, f := range filters {

		err := policy.Do(ctx, func(ctx context.Context) error {

			rsp, err := s.Scan(ctx, &store.ScanOptions{Filter: f})

			if err != nil {
				return err
			}

			for _, d := range rsp {

				if !seen[d.Id] {
					seen[d.Id] = true
					docs = append(docs, d)
				}
			}

			return nil
		})

		if err != nil {
			return nil, fmt.Errorf("Failed to scan collection, %w", err)
		}
	}

	for _, d := range docs {

		e.report.Scanned += 1

		if !e.wants(imageCount(d.Fields)) {
			continue
		}

		lat, lng, ok := dedupe.Coordinates(d.Fields)

		if !ok {
			continue
		}

		e.report.Candidates += 1

		name, _ := d.Fields["name"].(string)
		place_id, photos, ok := e.lookup(ctx, name, lat, lng)

		if ctx.Err() != nil {
			return e.report, ctx.Err()
		}

		if !ok || !e.options.Apply {
			continue
		}

		m := &store.Mutation{
			Type: store.Update,
			Id:   d.Id,
			Fields: map[string]any{
				"imageUrls":     photos,
				"googlePlaceId": place_id,
				"enrichedAt":    store.ServerTimestamp,
			},
		}

		err := policy.Do(ctx, func(ctx context.Context) error {
			return s.Commit(ctx, []*store.Mutation{m})
		})

		if err != nil {
			return e.report, fmt.Errorf("Failed to update %s, %w", d.Id, err)
		}

		e.report.Written += 1
	}

	return e.report, nil
}

func (e *Enricher) wants(images int) bool {

	if images >= MinImages {
		return false
	}

	return e.options.Limit <= 0 || e.lookups < e.options.Limit
}

func (e *Enricher) lookup(ctx context.Context, name string, lat float64, lng float64) (string, []string, bool) {

	e.lookups += 1

	logger := e.options.Logger.With("name", name, "latitude", lat, "longitude", lng)

	place_id, photos, status, err := e.Lookup(ctx, name, lat, lng)

	if err != nil {
		logger.Warn("Failed to look up photos", "error", err)
		e.report.Errors += 1
		return "", nil, false
	}

	switch status {
	case StatusNotFound:
		e.report.NotFound += 1
	case StatusNoPhotos:
		e.report.NoPhotos += 1
	default:
		logger.Debug("Found photos", "place_id", place_id, "count", len(photos))
		e.report.Enriched += 1
		return place_id, photos, true
	}

	logger.Debug("No photos", "status", status)
	return "", nil, false
}

func (e *Enricher) pause(ctx context.Context) {

	if e.options.Pause <= 0 {
		return
	}

	select {
	case <-ctx.Done():
	case <-time.After(e.options.Pause):
	}
}

func imageCount(f map[string]any) int {

	n := 0

	for _, k := range []string{"imageUrls", "images"} {

		switch v := f[k].(type) {
		case []any:
			n = max(n, len(v))
		case []string:
			n = max(n, len(v))
		}
	}

	return n
}
