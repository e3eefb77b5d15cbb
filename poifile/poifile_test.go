package poifile

import (
	"context"
	"strings"
	"testing"

	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/poi"
	"gocloud.dev/blob/memblob"
)

func TestWalkJSONL(t *testing.T) {

	ctx := context.Background()

	b := memblob.OpenBucket(nil)
	defer b.Close()

	body := `{"name":"a"}
{"name":"b"}

{"name":"c"}
`

	err := b.WriteAll(ctx, "pois.jsonl", []byte(body), nil)

	if err != nil {
		t.Fatalf("Failed to write fixture, %v", err)
	}

	records, err := ReadRecords(ctx, b, "pois.jsonl")

	if err != nil {
		t.Fatalf("Failed to read records, %v", err)
	}

	names := make([]string, 0)

	for _, r := range records {
		names = append(names, r.Get("name").String())
	}

	if strings.Join(names, ",") != "a,b,c" {
		t.Fatalf("Unexpected records %v", names)
	}
}

func TestWriteAndReadPOIs(t *testing.T) {

	ctx := context.Background()

	b := memblob.OpenBucket(nil)
	defer b.Close()

	p := poi.New("Musée d'Orsay", 48.86, 2.3266, category.Culture, "openstreetmap")
	p.AddImages("https://example.com/a.jpg?x=1&y=2")
	p.SetExtra("museum_type", "art")

	err := Write(ctx, b, "/exports/pois.json", []*poi.POI{p})

	if err != nil {
		t.Fatalf("Failed to write POIs, %v", err)
	}

	body, err := b.ReadAll(ctx, "exports/pois.json")

	if err != nil {
		t.Fatalf("Failed to read export, %v", err)
	}

	if !strings.HasPrefix(string(body), "[\n  {\n    \"name\": \"Musée d'Orsay\"") {
		t.Fatalf("Unexpected export layout %s", string(body))
	}

	if !strings.Contains(string(body), "a.jpg?x=1&y=2") {
		t.Fatalf("Expected URLs to be written unescaped")
	}

	pois, skipped, err := ReadPOIs(ctx, b, "exports/pois.json")

	if err != nil {
		t.Fatalf("Failed to read POIs, %v", err)
	}

	if len(pois) != 1 || skipped != 0 {
		t.Fatalf("Unexpected read results, %d records %d skipped", len(pois), skipped)
	}

	if pois[0].Name != p.Name || pois[0].Location.Latitude != 48.86 {
		t.Fatalf("Unexpected record %v", pois[0])
	}

	if pois[0].Extras["museum_type"] != "art" {
		t.Fatalf("Expected extras to survive, got %v", pois[0].Extras)
	}
}

func TestReadPOIsSkipsMalformed(t *testing.T) {

	ctx := context.Background()

	b := memblob.OpenBucket(nil)
	defer b.Close()

	err := b.WriteAll(ctx, "pois.json", []byte(`[{"name":"ok","location":{"_latitude":45,"_longitude":5}}, 12, "nope"]`), nil)

	if err != nil {
		t.Fatalf("Failed to write fixture, %v", err)
	}

	pois, skipped, err := ReadPOIs(ctx, b, "pois.json")

	if err != nil {
		t.Fatalf("Failed to read POIs, %v", err)
	}

	if len(pois) != 1 || skipped != 2 {
		t.Fatalf("Expected 1 record and 2 skipped, got %d and %d", len(pois), skipped)
	}
}

func TestSplit(t *testing.T) {

	ctx := context.Background()

	b := memblob.OpenBucket(nil)
	defer b.Close()

	err := b.WriteAll(ctx, "big.json", []byte(`[{"name":"a"},{"name":"b"},{"name":"c"},{"name":"d"},{"name":"e"}]`), nil)

	if err != nil {
		t.Fatalf("Failed to write fixture, %v", err)
	}

	written := 0

	chunks, err := Split(ctx, &SplitOptions{
		SourceBucket: b,
		TargetBucket: b,
		Size:         2,
		Directory:    "chunks",
		Callback: func(ctx context.Context, c *Chunk) error {
			written += c.Size()
			return nil
		},
	}, "big.json")

	if err != nil {
		t.Fatalf("Failed to split file, %v", err)
	}

	if len(chunks) != 3 || written != 5 {
		t.Fatalf("Unexpected chunks %d (%d records)", len(chunks), written)
	}

	expected := []string{
		"chunks/pois_chunk_001_0_1.json",
		"chunks/pois_chunk_002_2_3.json",
		"chunks/pois_chunk_003_4_4.json",
	}

	for i, c := range chunks {

		if c.URI != expected[i] {
			t.Fatalf("Expected %s, got %s", expected[i], c.URI)
		}
	}

	records, err := ReadRecords(ctx, b, expected[2])

	if err != nil {
		t.Fatalf("Failed to read chunk, %v", err)
	}

	if len(records) != 1 || records[0].Get("name").String() != "e" {
		t.Fatalf("Unexpected last chunk %v", records)
	}
}

func TestOutputName(t *testing.T) {

	for uri, expected := range map[string]string{
		"exports/pois_paris.json":   "pois_paris.jsonl",
		"pois.jsonl.bz2":            "pois.jsonl",
		"/data/pois_datagouv.jsonl": "pois_datagouv.jsonl",
	} {

		if OutputName(uri) != expected {
			t.Fatalf("Expected %s for %s, got %s", expected, uri, OutputName(uri))
		}
	}
}
