// Package cleanup finds placeholder names and generic spots in the spots collection and,
// in apply mode only, renames or deletes them. Every run produces a Report which can be
// written as a JSON backup of the affected documents.
package cleanup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/allspots/go-poi-import/normalize"
	"github.com/allspots/go-poi-import/poifile"
	"github.com/allspots/go-poi-import/retry"
	"github.com/allspots/go-poi-import/store"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"gocloud.dev/blob"
)

const (
	ModePlan  = "dry-run"
	ModeApply = "apply"
)

// DefaultBatchSize is the number of mutations committed per batch.
const DefaultBatchSize = 400

// DefaultQueryLimit is the number of documents fetched by each targeted query.
const DefaultQueryLimit = 300

// DefaultBackupThreshold is the number of candidates above which an apply run without
// a backup logs a warning.
const DefaultBackupThreshold = 20

// Generic spot queries: exact values matched per field.
var (
	GenericNameValues     = []string{"POI sans nom", "poi sans nom", "Sans nom", "Autre", "Other"}
	GenericGroupValues    = []string{"Autre", "Other", "autre", "other"}
	GenericItemValues     = []string{"Autre", "Other", "POI", "poi", "Point d'intérêt", "Point d interet", "Point interet"}
	DepartmentFieldValues = []string{"departmentCode", "departementCode", "dept"}
)

type Options struct {
	// Apply performs the writes. The default is to plan only.
	Apply bool
	// Limit caps the number of documents scanned; 0 means no limit.
	Limit      int
	QueryLimit int
	BatchSize  int
	// Policy retries the queries and the commits.
	Policy *retry.Policy
	// BackupBucket and BackupURI, when both set, receive the JSON report.
	BackupBucket    *blob.Bucket
	BackupURI       string
	BackupThreshold int
	Now             func() time.Time
	Logger          *slog.Logger
}

// Report describes a cleanup run. Updated and Deleted are marshalled under the action
// name of the run.
type Report struct {
	GeneratedAt time.Time
	RunId       string
	Mode        string
	Action      string
	Scanned     int
	Candidates  int
	Written     int
	Changes     []map[string]any
}

func (r *Report) MarshalJSON() ([]byte, error) {

	payload := map[string]any{
		"generatedAt": r.GeneratedAt.UTC().Format(time.RFC3339),
		"runId":       r.RunId,
		"mode":        r.Mode,
		"scanned":     r.Scanned,
		"candidates":  r.Candidates,
		r.Action:      r.Written,
		"changes":     r.Changes,
	}

	return poifile.Marshal(payload)
}

// Summary writes a human readable summary of 'r' to 'wr'.
func (r *Report) Summary(wr io.Writer) {

	fmt.Fprintf(wr, "\n=== Summary ===\n")
	fmt.Fprintf(wr, "Run        : %s\n", r.RunId)
	fmt.Fprintf(wr, "Mode       : %s\n", r.Mode)
	fmt.Fprintf(wr, "Scanned    : %s\n", humanize.Comma(int64(r.Scanned)))
	fmt.Fprintf(wr, "Candidates : %s\n", humanize.Comma(int64(r.Candidates)))
	fmt.Fprintf(wr, "%-11s: %s\n", capitalize(r.Action), humanize.Comma(int64(r.Written)))

	if r.Mode == ModePlan {
		fmt.Fprintf(wr, "\nNothing was written. Run again with -apply to write to the database.\n")
	}
}

// RenamePlaceholders scans the collection and renames the documents whose name is a
// placeholder.
func RenamePlaceholders(ctx context.Context, s store.Store, opts *Options) (*Report, error) {

	opts = defaults(opts)
	report := newReport(opts, "updated")

	policy := opts.Policy.WithClassifier(s.IsTransient)

	var docs []*store.Document

	err := policy.Do(ctx, func(ctx context.Context) error {

		d, err := s.Scan(ctx, &store.ScanOptions{Limit: opts.Limit})

		if err != nil {
			return err
		}

		docs = d
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("Failed to scan collection, %w", err)
	}

	mutations := make([]*store.Mutation, 0)

	for _, doc := range docs {

		report.Scanned += 1

		current := doc.Fields["name"]

		if !IsPlaceholderName(current) {
			continue
		}

		replacement := ReplacementName(doc.Fields)

		if normalize.Text(replacement) == normalize.Text(current) {
			continue
		}

		report.Candidates += 1

		report.Changes = append(report.Changes, map[string]any{
			"id":      doc.Id,
			"oldName": current,
			"newName": replacement,
		})

		opts.Logger.Debug("Rename placeholder", "id", doc.Id, "name", current, "replacement", replacement)

		m := &store.Mutation{
			Type: store.Update,
			Id:   doc.Id,
			Fields: map[string]any{
				"name":      replacement,
				"updatedAt": store.ServerTimestamp,
			},
		}

		mutations = append(mutations, m)
	}

	return finish(ctx, s, policy, opts, report, mutations)
}

// DeleteGeneric collects candidates with targeted equality queries and deletes those
// classified as generic spots.
func DeleteGeneric(ctx context.Context, s store.Store, opts *Options) (*Report, error) {

	opts = defaults(opts)
	report := newReport(opts, "deleted")

	policy := opts.Policy.WithClassifier(s.IsTransient)

	docs, err := CollectGeneric(ctx, s, policy, opts)

	if err != nil {
		return nil, err
	}

	mutations := make([]*store.Mutation, 0)

	for _, doc := range docs {

		report.Scanned += 1

		if !IsGenericSpot(doc.Fields) {
			continue
		}

		report.Candidates += 1

		report.Changes = append(report.Changes, map[string]any{
			"id":             doc.Id,
			"name":           doc.Fields["name"],
			"categoryGroup":  doc.Fields["categoryGroup"],
			"categoryItem":   doc.Fields["categoryItem"],
			"subCategory":    doc.Fields["subCategory"],
			"departmentCode": Value(doc.Fields, DepartmentFieldValues...),
			"lat":            doc.Fields["lat"],
			"lng":            doc.Fields["lng"],
			"before":         doc.Fields,
		})

		mutations = append(mutations, &store.Mutation{Type: store.Delete, Id: doc.Id})
	}

	return finish(ctx, s, policy, opts, report, mutations)
}

// CollectGeneric runs the targeted generic spot queries and returns the union of their
// results in query order, stopping once opts.Limit documents are collected.
func CollectGeneric(ctx context.Context, s store.Store, policy *retry.Policy, opts *Options) ([]*store.Document, error) {

	queries := make([]*store.Filter, 0)

	for _, v := range GenericNameValues {
		queries = append(queries, &store.Filter{Field: "name", Value: v})
	}

	for _, v := range GenericGroupValues {
		queries = append(queries, &store.Filter{Field: "categoryGroup", Value: v})
	}

	for _, field := range []string{"categoryItem", "subCategory"} {

		for _, v := range GenericItemValues {
			queries = append(queries, &store.Filter{Field: field, Value: v})
		}
	}

	docs := make([]*store.Document, 0)
	seen := make(map[string]bool)

	full := func() bool {
		return opts.Limit > 0 && len(docs) >= opts.Limit
	}

	for _, f := range queries {

		if full() {
			break
		}

		var results []*store.Document

		err := policy.Do(ctx, func(ctx context.Context) error {

			r, err := s.Scan(ctx, &store.ScanOptions{Filter: f, Limit: opts.QueryLimit})

			if err != nil {
				return err
			}

			results = r
			return nil
		})

		if err != nil {
			return nil, fmt.Errorf("Failed to query %s = %v, %w", f.Field, f.Value, err)
		}

		for _, doc := range results {

			if full() {
				break
			}

			if seen[doc.Id] {
				continue
			}

			seen[doc.Id] = true
			docs = append(docs, doc)
		}
	}

	return docs, nil
}

// WriteBackup writes 'report' as pretty printed JSON to 'uri' in 'bucket'.
func WriteBackup(ctx context.Context, bucket *blob.Bucket, uri string, report *Report) error {
	return poifile.Write(ctx, bucket, uri, report)
}

func finish(ctx context.Context, s store.Store, policy *retry.Policy, opts *Options, report *Report, mutations []*store.Mutation) (*Report, error) {

	has_backup := opts.BackupBucket != nil && opts.BackupURI != ""

	if opts.Apply && !has_backup && report.Candidates > opts.BackupThreshold {
		opts.Logger.Warn("Applying changes without a backup", "candidates", report.Candidates, "threshold", opts.BackupThreshold)
	}

	// The backup is written before anything is modified.

	if has_backup {

		err := WriteBackup(ctx, opts.BackupBucket, opts.BackupURI, report)

		if err != nil {
			return nil, fmt.Errorf("Failed to write backup, %w", err)
		}

		opts.Logger.Info("Wrote backup", "uri", opts.BackupURI)
	}

	if !opts.Apply {
		return report, nil
	}

	batch_size := opts.BatchSize

	if max := s.MaxBatchSize(); max > 0 && batch_size > max {
		batch_size = max
	}

	for start := 0; start < len(mutations); start += batch_size {

		end := min(start+batch_size, len(mutations))
		batch := mutations[start:end]

		err := policy.Do(ctx, func(ctx context.Context) error {
			return s.Commit(ctx, batch)
		})

		if err != nil {
			return report, fmt.Errorf("Failed to commit batch %d-%d, %w", start, end, err)
		}

		report.Written += len(batch)
		opts.Logger.Info("Committed batch", "action", report.Action, "count", report.Written, "total", len(mutations))
	}

	if has_backup && report.Written > 0 {

		// Rewrite the backup so that it records what was actually written.

		err := WriteBackup(ctx, opts.BackupBucket, opts.BackupURI, report)

		if err != nil {
			return report, fmt.Errorf("Failed to update backup, %w", err)
		}
	}

	return report, nil
}

func newReport(opts *Options, action string) *Report {

	mode := ModePlan

	if opts.Apply {
		mode = ModeApply
	}

	r := &Report{
		GeneratedAt: opts.Now(),
		RunId:       uuid.NewString(),
		Mode:        mode,
		Action:      action,
		Changes:     make([]map[string]any, 0),
	}

	return r
}

func defaults(opts *Options) *Options {

	if opts == nil {
		opts = &Options{}
	}

	o := *opts

	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}

	if o.QueryLimit <= 0 {
		o.QueryLimit = DefaultQueryLimit
	}

	if o.BackupThreshold <= 0 {
		o.BackupThreshold = DefaultBackupThreshold
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

	return &o
}

func capitalize(s string) string {

	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
