package poifile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/allspots/go-poi-import/poi"
	"github.com/tidwall/gjson"
	"gocloud.dev/blob"
)

// ReadRecords returns every record of 'uri' in file order.
func ReadRecords(ctx context.Context, b *blob.Bucket, uri string) ([]gjson.Result, error) {

	records := make([]gjson.Result, 0)

	cb := func(ctx context.Context, uri string, r *Record) error {
		records = append(records, r.Body)
		return nil
	}

	opts := &WalkOptions{
		SourceBucket: b,
		Callback:     cb,
	}

	err := Walk(ctx, opts, uri)

	if err != nil {
		return nil, err
	}

	return records, nil
}

// ReadPOIs decodes the records of 'uri' as POIs. Records that are not JSON objects or fail
// to decode are skipped and counted.
func ReadPOIs(ctx context.Context, b *blob.Bucket, uri string) ([]*poi.POI, int, error) {

	records, err := ReadRecords(ctx, b, uri)

	if err != nil {
		return nil, 0, err
	}

	pois := make([]*poi.POI, 0, len(records))
	skipped := 0

	for _, r := range records {

		if !r.IsObject() {
			skipped += 1
			continue
		}

		var p *poi.POI

		err := json.Unmarshal([]byte(r.Raw), &p)

		if err != nil {
			skipped += 1
			continue
		}

		pois = append(pois, p)
	}

	return pois, skipped, nil
}

// Marshal encodes 'v' as UTF-8 JSON indented with two spaces, leaving non-ASCII characters
// and URLs unescaped.
func Marshal(v any) ([]byte, error) {

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	err := enc.Encode(v)

	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// MarshalLine returns 'r' as a single line of compact JSON terminated by a newline, for
// JSONL files.
func MarshalLine(r gjson.Result) ([]byte, error) {

	var buf bytes.Buffer

	err := json.Compact(&buf, []byte(r.Raw))

	if err != nil {
		return nil, fmt.Errorf("Failed to compact record, %w", err)
	}

	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Write stores 'v' at 'uri' using Marshal.
func Write(ctx context.Context, b *blob.Bucket, uri string, v any) error {

	body, err := Marshal(v)

	if err != nil {
		return fmt.Errorf("Failed to marshal %s, %w", uri, err)
	}

	uri = strings.TrimLeft(uri, "/")

	wr_opts := &blob.WriterOptions{
		ContentType: "application/json",
	}

	err = b.WriteAll(ctx, uri, body, wr_opts)

	if err != nil {
		return fmt.Errorf("Failed to write %s, %w", uri, err)
	}

	return nil
}

// OutputName returns the name of the JSONL file derived from 'uri': its base name, less
// any ".bz2" suffix, with a .jsonl extension.
func OutputName(uri string) string {

	fname := filepath.Base(strings.TrimSuffix(uri, ".bz2"))
	return strings.TrimSuffix(fname, filepath.Ext(fname)) + ".jsonl"
}
