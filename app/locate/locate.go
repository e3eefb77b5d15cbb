// Package locate implements the poi-locate tool.
package locate

// Walk one or more export files and assign a city to each record whose city is missing
// or unspecified, using point-in-polygon lookups against a Who's On First spatial
// database. Every record is written to a JSONL file in the target bucket and each
// lookup is reported as a CSV row with the following columns:
// source,index,name,latitude,longitude,previous_city,city,status

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/aaronland/gocloud-blob/bucket"
	"github.com/allspots/go-poi-import/importer"
	"github.com/allspots/go-poi-import/locality"
	"github.com/allspots/go-poi-import/poi"
	"github.com/allspots/go-poi-import/poifile"
	"github.com/dustin/go-humanize"
	"github.com/sfomuseum/go-csvdict"
	"github.com/sfomuseum/go-timings"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"gocloud.dev/blob"
)

const (
	StatusLocated       = "located"
	StatusUnresolved    = "unresolved"
	StatusNoCoordinates = "no_coordinates"
	StatusError         = "error"
)

// Fieldnames are the columns of the CSV report.
var Fieldnames = []string{
	"source",
	"index",
	"name",
	"latitude",
	"longitude",
	"previous_city",
	"city",
	"status",
}

type Report struct {
	Scanned    int
	Candidates int
	Located    int
	Unresolved int
	Errors     int
}

func (r *Report) Summary(wr io.Writer) {

	fmt.Fprintf(wr, "\n=== Locate ===\n")
	fmt.Fprintf(wr, "Scanned    : %s\n", humanize.Comma(int64(r.Scanned)))
	fmt.Fprintf(wr, "Candidates : %s\n", humanize.Comma(int64(r.Candidates)))
	fmt.Fprintf(wr, "Located    : %s\n", humanize.Comma(int64(r.Located)))
	fmt.Fprintf(wr, "Unresolved : %s\n", humanize.Comma(int64(r.Unresolved)))
	fmt.Fprintf(wr, "Errors     : %s\n", humanize.Comma(int64(r.Errors)))
}

type LocateOptions struct {
	Resolver     locality.CityResolver
	SourceBucket *blob.Bucket
	TargetBucket *blob.Bucket
	// Report receives the CSV report. If nil no report is written.
	Report    io.Writer
	Monitor   timings.Monitor
	Overwrite bool
}

func Run(ctx context.Context) error {
	fs := DefaultFlagSet(ctx)
	return RunWithFlagSet(ctx, fs)
}

func RunWithFlagSet(ctx context.Context, fs *flag.FlagSet) error {

	opts, err := RunOptionsFromFlagSet(ctx, fs)

	if err != nil {
		return err
	}

	return RunWithOptions(ctx, opts)
}

func RunWithOptions(ctx context.Context, opts *RunOptions) error {

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.Verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
		slog.Debug("Verbose logging enabled")
	}

	if len(opts.Inputs) == 0 {
		return fmt.Errorf("No export files to locate")
	}

	source_bucket, err := bucket.OpenBucket(ctx, opts.SourceBucketURI)

	if err != nil {
		return fmt.Errorf("Failed to open source bucket, %w", err)
	}

	defer source_bucket.Close()

	target_bucket, err := bucket.OpenBucket(ctx, opts.TargetBucketURI)

	if err != nil {
		return fmt.Errorf("Failed to open target bucket, %w", err)
	}

	defer target_bucket.Close()

	resolver, err := locality.NewResolver(ctx, opts.Resolver)

	if err != nil {
		return err
	}

	defer resolver.Close(ctx)

	var report_wr io.Writer = os.Stdout

	if opts.ReportURI != "" {

		wr, err := target_bucket.NewWriter(ctx, opts.ReportURI, nil)

		if err != nil {
			return fmt.Errorf("Failed to create report writer for %s, %w", opts.ReportURI, err)
		}

		defer wr.Close()
		report_wr = wr
	}

	monitor, err := timings.NewMonitor(ctx, "counter://PT60S")

	if err != nil {
		return fmt.Errorf("Failed to create new monitor, %w", err)
	}

	monitor.Start(ctx, os.Stderr)
	defer monitor.Stop(ctx)

	locate_opts := &LocateOptions{
		Resolver:     resolver,
		SourceBucket: source_bucket,
		TargetBucket: target_bucket,
		Report:       report_wr,
		Monitor:      monitor,
		Overwrite:    opts.Overwrite,
	}

	report, err := Locate(ctx, locate_opts, opts.Inputs...)

	if report != nil {
		report.Summary(os.Stderr)
	}

	return err
}

// Locate assigns a city to the records of 'uris' and writes every record, located or not,
// to a JSONL file of the same base name in opts.TargetBucket.
func Locate(ctx context.Context, opts *LocateOptions, uris ...string) (*Report, error) {

	if opts.Resolver == nil {
		return nil, fmt.Errorf("Missing city resolver")
	}

	report := new(Report)

	writers := make(map[string]io.WriteCloser)

	mu := new(sync.RWMutex)

	var csv_wr *csvdict.Writer

	walk_cb := func(ctx context.Context, uri string, r *poifile.Record) error {

		if opts.Monitor != nil {
			defer func() {
				go opts.Monitor.Signal(ctx)
			}()
		}

		body, row := locateRecord(ctx, opts, uri, r)

		line, err := poifile.MarshalLine(gjson.ParseBytes(body))

		if err != nil {
			return err
		}

		fname := poifile.OutputName(uri)

		mu.Lock()
		defer mu.Unlock()

		report.Scanned += 1

		if row != nil {

			report.Candidates += 1

			switch row["status"] {
			case StatusLocated:
				report.Located += 1
			case StatusError:
				report.Errors += 1
			default:
				report.Unresolved += 1
			}

			if opts.Report != nil {

				if csv_wr == nil {

					wr, err := csvdict.NewWriter(opts.Report, Fieldnames)

					if err != nil {
						return fmt.Errorf("Failed to create CSV writer, %w", err)
					}

					err = wr.WriteHeader()

					if err != nil {
						return fmt.Errorf("Failed to write report header, %w", err)
					}

					csv_wr = wr
				}

				err := csv_wr.WriteRow(row)

				if err != nil {
					return fmt.Errorf("Failed to write report row, %w", err)
				}
			}
		}

		wr, exists := writers[fname]

		if !exists {

			new_wr, err := opts.TargetBucket.NewWriter(ctx, fname, nil)

			if err != nil {
				return fmt.Errorf("Failed to create new writer for %s, %w", fname, err)
			}

			wr = new_wr
			writers[fname] = wr
		}

		_, err = wr.Write(line)

		if err != nil {
			return fmt.Errorf("Failed to write record to %s, %w", fname, err)
		}

		return nil
	}

	walk_opts := &poifile.WalkOptions{
		SourceBucket: opts.SourceBucket,
		Callback:     walk_cb,
	}

	walk_err := poifile.Walk(ctx, walk_opts, uris...)

	if csv_wr != nil {

		csv_wr.Flush()

		err := csv_wr.Error()

		if err != nil && walk_err == nil {
			walk_err = fmt.Errorf("Failed to flush report, %w", err)
		}
	}

	for fname, wr := range writers {

		err := wr.Close()

		if err != nil && walk_err == nil {
			walk_err = fmt.Errorf("Failed to close writer for %s, %w", fname, err)
		}
	}

	return report, walk_err
}

// IsCandidate reports whether the city of 'r' is missing or unspecified.
func IsCandidate(r gjson.Result) bool {

	city := r.Get("city")
	return !city.Exists() || city.String() == "" || city.String() == poi.DefaultCity
}

// locateRecord returns the (possibly updated) body of 'r' and, for records that were
// looked up, a report row.
func locateRecord(ctx context.Context, opts *LocateOptions, uri string, r *poifile.Record) ([]byte, map[string]string) {

	body := []byte(r.Body.Raw)

	if !r.Body.IsObject() {
		return body, nil
	}

	if !opts.Overwrite && !IsCandidate(r.Body) {
		return body, nil
	}

	row := map[string]string{
		"source":        uri,
		"index":         strconv.Itoa(r.Index),
		"name":          r.Body.Get("name").String(),
		"latitude":      "",
		"longitude":     "",
		"previous_city": r.Body.Get("city").String(),
		"city":          "",
	}

	lat, lng, ok := importer.Coordinates.Resolve(r.Body)

	if !ok {
		row["status"] = StatusNoCoordinates
		return body, row
	}

	row["latitude"] = strconv.FormatFloat(lat, 'f', -1, 64)
	row["longitude"] = strconv.FormatFloat(lng, 'f', -1, 64)

	city, ok, err := opts.Resolver.City(ctx, lat, lng)

	if err != nil {
		slog.Warn("Failed to locate record", "path", uri, "index", r.Index, "error", err)
		row["status"] = StatusError
		return body, row
	}

	if !ok {
		slog.Debug("No city for record", "path", uri, "index", r.Index)
		row["status"] = StatusUnresolved
		return body, row
	}

	new_body, err := sjson.SetBytes(body, "city", city)

	if err != nil {
		slog.Warn("Failed to assign city", "path", uri, "index", r.Index, "error", err)
		row["status"] = StatusError
		return body, row
	}

	row["city"] = city
	row["status"] = StatusLocated

	return new_body, row
}
