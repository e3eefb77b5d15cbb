// Package dedupe finds documents of the spots collection sharing an identity key, keeps
// the most complete one of each group and, in apply mode, deletes the others.
package dedupe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/allspots/go-poi-import/identity"
	"github.com/allspots/go-poi-import/poifile"
	"github.com/allspots/go-poi-import/retry"
	"github.com/allspots/go-poi-import/store"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"gocloud.dev/blob"
)

// DefaultBatchSize is the number of mutations committed per batch.
const DefaultBatchSize = 450

// Group is a set of documents sharing Key. Keeper is the document kept.
type Group struct {
	Key        string
	Keeper     *store.Document
	Duplicates []*store.Document
}

type Options struct {
	Apply     bool
	BatchSize int
	Policy    *retry.Policy
	// BackupBucket and BackupURI, when both set, receive the duplicates before they
	// are deleted.
	BackupBucket *blob.Bucket
	BackupURI    string
	Logger       *slog.Logger
}

type Report struct {
	RunId          string
	Mode           string
	Scanned        int
	Groups         []*Group
	Duplicates     int
	Deleted        int
	UpdatedKeepers int
}

// Key returns the identity key of a stored document: its recorded dedupeKey, else the
// key derived from its native identifiers or its content, else one derived from its id.
func Key(doc *store.Document) string {

	f := doc.Fields

	if k, ok := f["dedupeKey"].(string); ok && strings.TrimSpace(k) != "" {
		return strings.TrimSpace(k)
	}

	source, _ := f["source"].(string)
	osm_id := idString(f["osmId"])
	place_id := idString(f["place_id"])

	if (source == identity.SourceOpenStreetMap && osm_id != "") || place_id != "" {

		return identity.Key(&identity.KeyFields{
			Source:  source,
			OSMId:   osm_id,
			PlaceId: place_id,
		})
	}

	lat, lng, ok := Coordinates(f)

	if !ok {
		return fmt.Sprintf("doc_%s", doc.Id)
	}

	category, _ := f["category"].(string)
	group, _ := f["categoryGroup"].(string)
	name, _ := f["name"].(string)

	return identity.Key(&identity.KeyFields{
		Source:        source,
		Category:      category,
		CategoryGroup: group,
		Name:          name,
		Lat:           lat,
		Lng:           lng,
	})
}

// Coordinates returns the position of a stored document from its lat/lng fields or its
// location value.
func Coordinates(f map[string]any) (float64, float64, bool) {

	lat, ok_lat := f["lat"].(float64)
	lng, ok_lng := f["lng"].(float64)

	if ok_lat && ok_lng {
		return lat, lng, true
	}

	switch loc := f["location"].(type) {
	case store.GeoPoint:
		return loc.Latitude, loc.Longitude, true
	case map[string]any:

		for _, pair := range [][2]string{{"latitude", "longitude"}, {"_latitude", "_longitude"}} {

			lat, ok_lat := loc[pair[0]].(float64)
			lng, ok_lng := loc[pair[1]].(float64)

			if ok_lat && ok_lng {
				return lat, lng, true
			}
		}
	}

	return 0, 0, false
}

// QualityScore rates how complete a document is: description length, images, website,
// category and validation.
func QualityScore(f map[string]any) int {

	score := 0

	description, _ := f["description"].(string)
	n := utf8.RuneCountInString(strings.TrimSpace(description))

	switch {
	case n >= 40:
		score += 3
	case n >= 15:
		score += 2
	case n > 0:
		score += 1
	}

	images := max(length(f["imageUrls"]), length(f["images"]))

	switch {
	case images >= 3:
		score += 3
	case images >= 1:
		score += 2
	}

	if value(f, "websiteUrl", "website") != "" {
		score += 1
	}

	if value(f, "categoryGroup", "category") != "" {
		score += 1
	}

	if validated, ok := f["isValidated"].(bool); ok && validated {
		score += 1
	}

	return score
}

// UpdatedAt returns the updatedAt value of a document, or the zero time.
func UpdatedAt(f map[string]any) time.Time {

	switch v := f["updatedAt"].(type) {
	case time.Time:
		return v
	case string:

		t, err := time.Parse(time.RFC3339, v)

		if err == nil {
			return t
		}
	}

	return time.Time{}
}

// PickKeeper returns the document with the highest quality score, then the most recently
// updated, then the smallest id.
func PickKeeper(docs []*store.Document) *store.Document {

	sorted := make([]*store.Document, len(docs))
	copy(sorted, docs)

	sort.SliceStable(sorted, func(i, j int) bool {

		a := sorted[i]
		b := sorted[j]

		sa := QualityScore(a.Fields)
		sb := QualityScore(b.Fields)

		if sa != sb {
			return sa > sb
		}

		ta := UpdatedAt(a.Fields)
		tb := UpdatedAt(b.Fields)

		if !ta.Equal(tb) {
			return ta.After(tb)
		}

		return a.Id < b.Id
	})

	return sorted[0]
}

// Plan groups 'docs' by Key and returns the groups with more than one document, in the
// order their first document was seen.
func Plan(docs []*store.Document) []*Group {

	order := make([]string, 0)
	by_key := make(map[string][]*store.Document)

	for _, d := range docs {

		k := Key(d)

		if _, ok := by_key[k]; !ok {
			order = append(order, k)
		}

		by_key[k] = append(by_key[k], d)
	}

	groups := make([]*Group, 0)

	for _, k := range order {

		items := by_key[k]

		if len(items) < 2 {
			continue
		}

		keeper := PickKeeper(items)
		duplicates := make([]*store.Document, 0, len(items)-1)

		for _, d := range items {

			if d.Id != keeper.Id {
				duplicates = append(duplicates, d)
			}
		}

		groups = append(groups, &Group{Key: k, Keeper: keeper, Duplicates: duplicates})
	}

	return groups
}

// Run scans the collection, plans the duplicate groups and, in apply mode, tags each
// keeper with its key and deletes the duplicates.
func Run(ctx context.Context, s store.Store, opts *Options) (*Report, error) {

	if opts == nil {
		opts = &Options{}
	}

	logger := opts.Logger

	if logger == nil {
		logger = slog.Default()
	}

	policy := opts.Policy

	if policy == nil {
		policy = retry.DefaultPolicy()
	}

	policy = policy.WithClassifier(s.IsTransient)

	var docs []*store.Document

	err := policy.Do(ctx, func(ctx context.Context) error {

		d, err := s.Scan(ctx, nil)

		if err != nil {
			return err
		}

		docs = d
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("Failed to scan collection, %w", err)
	}

	report := &Report{
		RunId:   uuid.NewString(),
		Mode:    "dry-run",
		Scanned: len(docs),
		Groups:  Plan(docs),
	}

	for _, g := range report.Groups {
		report.Duplicates += len(g.Duplicates)
	}

	if !opts.Apply || report.Duplicates == 0 {
		return report, nil
	}

	report.Mode = "apply"

	if opts.BackupBucket != nil && opts.BackupURI != "" {

		err := poifile.Write(ctx, opts.BackupBucket, opts.BackupURI, report.Backup())

		if err != nil {
			return nil, fmt.Errorf("Failed to write backup, %w", err)
		}

		logger.Info("Wrote backup", "uri", opts.BackupURI)
	}

	keepers := make([]*store.Mutation, 0, len(report.Groups))
	deletions := make([]*store.Mutation, 0, report.Duplicates)

	for _, g := range report.Groups {

		keepers = append(keepers, &store.Mutation{
			Type: store.Upsert,
			Id:   g.Keeper.Id,
			Fields: map[string]any{
				"dedupeKey": g.Key,
				"dedupedAt": store.ServerTimestamp,
			},
		})

		for _, d := range g.Duplicates {
			deletions = append(deletions, &store.Mutation{Type: store.Delete, Id: d.Id})
		}
	}

	batch_size := opts.BatchSize

	if batch_size <= 0 {
		batch_size = DefaultBatchSize
	}

	batch_size = min(batch_size, s.MaxBatchSize())

	commit := func(mutations []*store.Mutation, done func(int)) error {

		for start := 0; start < len(mutations); start += batch_size {

			batch := mutations[start:min(start+batch_size, len(mutations))]

			err := policy.Do(ctx, func(ctx context.Context) error {
				return s.Commit(ctx, batch)
			})

			if err != nil {
				return err
			}

			done(len(batch))
		}

		return nil
	}

	err = commit(keepers, func(n int) {
		report.UpdatedKeepers += n
	})

	if err != nil {
		return report, fmt.Errorf("Failed to update keepers, %w", err)
	}

	err = commit(deletions, func(n int) {
		report.Deleted += n
		logger.Info("Deleted duplicates", "count", report.Deleted, "total", len(deletions))
	})

	if err != nil {
		return report, fmt.Errorf("Failed to delete duplicates, %w", err)
	}

	return report, nil
}

// Backup returns the JSON backup payload of the duplicate groups.
func (r *Report) Backup() map[string]any {

	groups := make([]map[string]any, len(r.Groups))

	for i, g := range r.Groups {

		duplicates := make([]map[string]any, len(g.Duplicates))

		for j, d := range g.Duplicates {
			duplicates[j] = map[string]any{
				"id":   d.Id,
				"data": d.Fields,
			}
		}

		groups[i] = map[string]any{
			"dedupeKey":  g.Key,
			"keeperId":   g.Keeper.Id,
			"duplicates": duplicates,
		}
	}

	payload := map[string]any{
		"generatedAt": time.Now().UTC().Format(time.RFC3339),
		"runId":       r.RunId,
		"mode":        r.Mode,
		"scanned":     r.Scanned,
		"candidates":  r.Duplicates,
		"changes":     groups,
	}

	return payload
}

// Summary writes a human readable summary of 'r', listing at most 'examples' groups.
func (r *Report) Summary(wr io.Writer, examples int) {

	fmt.Fprintf(wr, "Documents scanned : %s\n", humanize.Comma(int64(r.Scanned)))
	fmt.Fprintf(wr, "Duplicate groups  : %s\n", humanize.Comma(int64(len(r.Groups))))
	fmt.Fprintf(wr, "Duplicate docs    : %s\n", humanize.Comma(int64(r.Duplicates)))

	for i, g := range r.Groups {

		if i >= examples {
			break
		}

		ids := []string{g.Keeper.Id}

		for _, d := range g.Duplicates {
			ids = append(ids, d.Id)
		}

		fmt.Fprintf(wr, "  - key=%s keeper=%s docs=[%s]\n", g.Key, g.Keeper.Id, strings.Join(ids, ", "))
	}

	if r.Mode != "apply" {
		fmt.Fprintf(wr, "\nNothing was deleted. Run again with -apply to delete duplicates.\n")
		return
	}

	fmt.Fprintf(wr, "Keepers updated   : %s\n", humanize.Comma(int64(r.UpdatedKeepers)))
	fmt.Fprintf(wr, "Duplicates deleted: %s\n", humanize.Comma(int64(r.Deleted)))
}

func idString(v any) string {

	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func length(v any) int {

	switch t := v.(type) {
	case []any:
		return len(t)
	case []string:
		return len(t)
	default:
		return 0
	}
}

func value(f map[string]any, keys ...string) string {

	for _, k := range keys {

		s, ok := f[k].(string)

		if ok && strings.TrimSpace(s) != "" {
			return s
		}
	}

	return ""
}
