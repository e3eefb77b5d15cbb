package locate

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/allspots/go-poi-import/poifile"
	"gocloud.dev/blob/memblob"
)

type boxResolver struct{}

func (r *boxResolver) City(ctx context.Context, lat float64, lng float64) (string, bool, error) {

	switch {
	case lat > 48.8 && lat < 48.9:
		return "Paris", true, nil
	case lat < 0:
		return "", false, fmt.Errorf("Lookup failed")
	default:
		return "", false, nil
	}
}

func (r *boxResolver) Close(ctx context.Context) error {
	return nil
}

func TestLocate(t *testing.T) {

	ctx := context.Background()

	source := memblob.OpenBucket(nil)
	defer source.Close()

	target := memblob.OpenBucket(nil)
	defer target.Close()

	body := `[
{"name": "Louvre", "lat": 48.8606, "lng": 2.3376, "city": "Non spécifiée"},
{"name": "Calanques", "lat": 43.21, "lng": 5.44},
{"name": "Orsay", "lat": 48.86, "lng": 2.3266, "city": "Paris 7e"},
{"name": "Nowhere", "lat": -10.0, "lng": 2.0, "city": ""},
{"name": "Floating"}
]`

	err := source.WriteAll(ctx, "exports/pois.json", []byte(body), nil)

	if err != nil {
		t.Fatalf("Failed to write export, %v", err)
	}

	var buf bytes.Buffer

	opts := &LocateOptions{
		Resolver:     &boxResolver{},
		SourceBucket: source,
		TargetBucket: target,
		Report:       &buf,
	}

	report, err := Locate(ctx, opts, "exports/pois.json")

	if err != nil {
		t.Fatalf("Failed to locate records, %v", err)
	}

	if report.Scanned != 5 || report.Candidates != 4 || report.Located != 1 || report.Unresolved != 2 || report.Errors != 1 {
		t.Fatalf("Unexpected report %+v", report)
	}

	records, err := poifile.ReadRecords(ctx, target, "pois.jsonl")

	if err != nil {
		t.Fatalf("Failed to read located file, %v", err)
	}

	if len(records) != 5 {
		t.Fatalf("Expected 5 records, got %d", len(records))
	}

	if records[0].Get("city").String() != "Paris" {
		t.Fatalf("Expected Louvre to be located in Paris, got %s", records[0].Get("city").String())
	}

	if records[2].Get("city").String() != "Paris 7e" {
		t.Fatalf("Did not expect Orsay to be relocated")
	}

	if records[1].Get("city").Exists() {
		t.Fatalf("Did not expect unresolved record to be assigned a city")
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	if len(lines) != 5 {
		t.Fatalf("Expected a header and 4 report rows, got %d lines", len(lines))
	}

	if !strings.HasPrefix(lines[0], "source,index,name") {
		t.Fatalf("Unexpected report header %s", lines[0])
	}

	if !strings.HasSuffix(lines[1], ",Paris,located") {
		t.Fatalf("Unexpected first report row %s", lines[1])
	}
}

func TestLocateOverwrite(t *testing.T) {

	ctx := context.Background()

	source := memblob.OpenBucket(nil)
	defer source.Close()

	target := memblob.OpenBucket(nil)
	defer target.Close()

	body := `{"name": "Orsay", "lat": 48.86, "lng": 2.3266, "city": "Paris 7e"}
`

	err := source.WriteAll(ctx, "pois.jsonl", []byte(body), nil)

	if err != nil {
		t.Fatalf("Failed to write export, %v", err)
	}

	opts := &LocateOptions{
		Resolver:     &boxResolver{},
		SourceBucket: source,
		TargetBucket: target,
		Overwrite:    true,
	}

	report, err := Locate(ctx, opts, "pois.jsonl")

	if err != nil {
		t.Fatalf("Failed to locate records, %v", err)
	}

	if report.Located != 1 {
		t.Fatalf("Expected 1 located record, got %+v", report)
	}

	records, err := poifile.ReadRecords(ctx, target, "pois.jsonl")

	if err != nil {
		t.Fatalf("Failed to read located file, %v", err)
	}

	if len(records) != 1 || records[0].Get("city").String() != "Paris" {
		t.Fatalf("Unexpected located records %v", records)
	}
}

func TestLocateReportLargerThanBuffer(t *testing.T) {

	ctx := context.Background()

	source := memblob.OpenBucket(nil)
	defer source.Close()

	target := memblob.OpenBucket(nil)
	defer target.Close()

	count := 500

	var body bytes.Buffer

	for i := 0; i < count; i++ {
		fmt.Fprintf(&body, `{"name": "Spot numéro %d", "lat": 48.85, "lng": 2.35, "city": "Non spécifiée"}`+"\n", i)
	}

	err := source.WriteAll(ctx, "pois.jsonl", body.Bytes(), nil)

	if err != nil {
		t.Fatalf("Failed to write export, %v", err)
	}

	wr, err := target.NewWriter(ctx, "locate.csv", nil)

	if err != nil {
		t.Fatalf("Failed to create report writer, %v", err)
	}

	opts := &LocateOptions{
		Resolver:     &boxResolver{},
		SourceBucket: source,
		TargetBucket: target,
		Report:       wr,
	}

	report, err := Locate(ctx, opts, "pois.jsonl")

	if err != nil {
		t.Fatalf("Failed to locate records, %v", err)
	}

	err = wr.Close()

	if err != nil {
		t.Fatalf("Failed to close report writer, %v", err)
	}

	if report.Located != count {
		t.Fatalf("Expected %d located records, got %+v", count, report)
	}

	csv_body, err := target.ReadAll(ctx, "locate.csv")

	if err != nil {
		t.Fatalf("Failed to read report, %v", err)
	}

	if len(csv_body) <= 4096 {
		t.Fatalf("Expected report to be larger than 4096 bytes, got %d", len(csv_body))
	}

	lines := strings.Split(strings.TrimSpace(string(csv_body)), "\n")

	if len(lines) != count+1 {
		t.Fatalf("Expected a header and %d report rows, got %d lines", count, len(lines))
	}

	if !strings.HasPrefix(lines[count], "pois.jsonl,499,Spot numéro 499,") {
		t.Fatalf("Unexpected last report row %s", lines[count])
	}
}
