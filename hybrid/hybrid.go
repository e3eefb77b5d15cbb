// Package hybrid imports POIs for a set of cities from several providers (OpenStreetMap
// first, Google Places for the main cities, open-data datasets once per department) and
// merges the results into a single set of records.
package hybrid

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/identity"
	"github.com/allspots/go-poi-import/poi"
	"github.com/allspots/go-poi-import/poifile"
	"github.com/allspots/go-poi-import/sources"
	"github.com/allspots/go-poi-import/sources/places"
	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
	"gocloud.dev/blob"
)

// DefaultPause is the wait after each per-category provider call.
const DefaultPause = 2 * time.Second

// DefaultCooldown is the wait between two cities.
const DefaultCooldown = 60 * time.Second

type SleepFunc func(context.Context, time.Duration) error

type Options struct {
	Cities     []*City
	Categories []category.Category
	Sources    []Source
	Pause      time.Duration
	Cooldown   time.Duration
	// Sleep waits between calls. The default honours context cancellation.
	Sleep  SleepFunc
	Merger *identity.Merger
	// Bucket, when set, receives the records of every provider call as a separate
	// export file (see IntermediateURI).
	Bucket *blob.Bucket
	Logger *slog.Logger
}

type Report struct {
	Cities     []string
	Categories []category.Category
	// Stats are keyed by source name.
	Stats   map[string]*sources.Stats
	Records []*poi.POI
	Merge   identity.MergeStats
	Files   []string
	// Errors accumulates the provider failures that did not stop the run.
	Errors *multierror.Error
}

// Run queries every enabled source for every city and category, then merges the records.
// A failing provider is logged and recorded in Report.Errors; only context cancellation
// and intermediate write failures stop the run.
func Run(ctx context.Context, opts *Options) (*Report, error) {

	logger := opts.Logger

	if logger == nil {
		logger = slog.Default()
	}

	sleep := opts.Sleep

	if sleep == nil {
		sleep = Sleep
	}

	merger := opts.Merger

	if merger == nil {
		merger = identity.NewMerger()
	}

	report := &Report{
		Cities:     make([]string, 0, len(opts.Cities)),
		Categories: opts.Categories,
		Stats:      make(map[string]*sources.Stats),
		Files:      make([]string, 0),
	}

	for _, s := range opts.Sources {
		report.Stats[s.Name()] = new(sources.Stats)
	}

	collect := func(city *City, c category.Category, src Source) error {

		logger := logger.With("city", city.Name, "source", src.Name())

		if c != "" {
			logger = logger.With("category", c)
		}

		records, stats, err := src.Import(ctx, city, c)

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if stats != nil {
			report.Stats[src.Name()].Add(stats)
		}

		if err != nil {
			logger.Warn("Provider failed", "error", err)
			report.Errors = multierror.Append(report.Errors, fmt.Errorf("%s %s %s: %w", src.Name(), city.Name, c, err))
		}

		if len(records) == 0 {
			return nil
		}

		logger.Info("Imported records", "count", len(records))

		if opts.Bucket != nil {

			uri := IntermediateURI(city, c, src.Name())
			err := poifile.Write(ctx, opts.Bucket, uri, records)

			if err != nil {
				return fmt.Errorf("Failed to write %s, %w", uri, err)
			}

			report.Files = append(report.Files, uri)
		}

		merger.Add(records...)
		return nil
	}

	for i, city := range opts.Cities {

		report.Cities = append(report.Cities, city.Name)
		logger.Info("Import city", "city", city.Name, "department", city.Department)

		for _, c := range opts.Categories {

			for _, src := range opts.Sources {

				if !src.PerCategory() || !src.Enabled(city) {
					continue
				}

				err := collect(city, c, src)

				if err != nil {
					return report, err
				}

				if opts.Pause > 0 {

					err := sleep(ctx, opts.Pause)

					if err != nil {
						return report, err
					}
				}
			}
		}

		for _, src := range opts.Sources {

			if src.PerCategory() || !src.Enabled(city) {
				continue
			}

			err := collect(city, "", src)

			if err != nil {
				return report, err
			}
		}

		if opts.Cooldown > 0 && i < len(opts.Cities)-1 {

			logger.Info("Cooling down before next city", "duration", opts.Cooldown)

			err := sleep(ctx, opts.Cooldown)

			if err != nil {
				return report, err
			}
		}
	}

	report.Records = merger.Records()
	report.Merge = merger.Stats()

	return report, nil
}

// IntermediateURI is the name of the export file holding the records of one provider
// call: pois_<city>_<category>_<source>.json, or pois_dept<code>_<source>.json for
// sources called once per city.
func IntermediateURI(city *City, c category.Category, source string) string {

	if c == "" {
		return fmt.Sprintf("pois_dept%s_%s.json", city.Department, source)
	}

	return fmt.Sprintf("pois_%s_%s_%s.json", city.Name, c, source)
}

// Sleep waits for 'd' or until 'ctx' is cancelled.
func Sleep(ctx context.Context, d time.Duration) error {

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// PlacesRequests returns the number of billed Places requests of the run.
func (r *Report) PlacesRequests() int {

	s, ok := r.Stats[SourcePlaces]

	if !ok {
		return 0
	}

	return s.Requests
}

// EstimatedCost is the estimated price of the run in US dollars.
func (r *Report) EstimatedCost() float64 {
	return float64(r.PlacesRequests()) * places.CostPerRequest
}

// Shares returns the number of merged records per record source, folding the open-data
// datasets into a single "datagouv" entry.
func (r *Report) Shares() map[string]int {

	shares := make(map[string]int)

	for _, p := range r.Records {

		src := p.Source

		if strings.HasPrefix(src, "datagouv_") {
			src = SourceDatagouv
		}

		shares[src] += 1
	}

	return shares
}

// Summary writes a human readable report of the run to 'wr'.
func (r *Report) Summary(wr io.Writer) {

	fmt.Fprintf(wr, "\n=== Hybrid import ===\n")
	fmt.Fprintf(wr, "Cities     : %s\n", strings.Join(r.Cities, ", "))

	cats := make([]string, len(r.Categories))

	for i, c := range r.Categories {
		cats[i] = c.String()
	}

	fmt.Fprintf(wr, "Categories : %s\n\n", strings.Join(cats, ", "))

	names := make([]string, 0, len(r.Stats))

	for n := range r.Stats {
		names = append(names, n)
	}

	sort.Strings(names)

	for _, n := range names {
		r.Stats[n].Summary(wr, n)
	}

	fmt.Fprintf(wr, "\n")
	r.Merge.Summary(wr)

	total := len(r.Records)
	shares := r.Shares()

	share_names := make([]string, 0, len(shares))

	for n := range shares {
		share_names = append(share_names, n)
	}

	sort.Strings(share_names)

	for _, n := range share_names {
		fmt.Fprintf(wr, "  %-20s %6s (%.0f%%)\n", n, humanize.Comma(int64(shares[n])), 100*float64(shares[n])/float64(total))
	}

	cost := r.EstimatedCost()

	fmt.Fprintf(wr, "\nPlaces requests : %s\n", humanize.Comma(int64(r.PlacesRequests())))
	fmt.Fprintf(wr, "Estimated cost  : ~$%.2f of the $%.0f monthly credit\n", cost, places.MonthlyCredit)

	if r.Errors != nil {
		fmt.Fprintf(wr, "\n%d provider call(s) failed:\n", len(r.Errors.Errors))

		for _, err := range r.Errors.Errors {
			fmt.Fprintf(wr, "  - %v\n", err)
		}
	}
}
