// Package poifile reads and writes POI export files (JSON arrays or JSONL) stored in
// gocloud blob buckets.
package poifile

import (
	"bytes"
	"compress/bzip2"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"
	"gocloud.dev/blob"
)

// Record is one element of an export file. Index is its zero-based position in the file.
type Record struct {
	Path  string
	Index int
	Body  gjson.Result
}

type WalkCallbackFunc func(context.Context, string, *Record) error

type WalkOptions struct {
	SourceBucket *blob.Bucket
	Callback     WalkCallbackFunc
	// IsBzipped forces bzip2 decompression; files ending in ".bz2" are always decompressed.
	IsBzipped bool
}

// Walk invokes opts.Callback for every record of every file in 'uris', in file order.
// Records that are not JSON objects are still passed on; callers decide whether to
// count them as malformed.
func Walk(ctx context.Context, opts *WalkOptions, uris ...string) error {

	for _, uri := range uris {

		err := walkURI(ctx, opts, uri)

		if err != nil {
			return fmt.Errorf("Failed to walk %s, %w", uri, err)
		}
	}

	return nil
}

func walkURI(ctx context.Context, opts *WalkOptions, uri string) error {

	uri = strings.TrimLeft(uri, "/")

	r, err := opts.SourceBucket.NewReader(ctx, uri, nil)

	if err != nil {
		return fmt.Errorf("Failed to open reader for '%s', %w", uri, err)
	}

	defer r.Close()

	var fh io.Reader = r

	if opts.IsBzipped || strings.HasSuffix(uri, ".bz2") {
		fh = bzip2.NewReader(r)
	}

	body, err := io.ReadAll(fh)

	if err != nil {
		return fmt.Errorf("Failed to read '%s', %w", uri, err)
	}

	return walkBytes(ctx, uri, body, opts.Callback)
}

func walkBytes(ctx context.Context, uri string, body []byte, cb WalkCallbackFunc) error {

	body = bytes.TrimSpace(body)

	if len(body) == 0 {
		return nil
	}

	var walk_err error
	idx := 0

	iter := func(v gjson.Result) bool {

		select {
		case <-ctx.Done():
			walk_err = ctx.Err()
			return false
		default:
			// pass
		}

		rec := &Record{
			Path:  uri,
			Index: idx,
			Body:  v,
		}

		idx += 1

		err := cb(ctx, uri, rec)

		if err != nil {
			walk_err = fmt.Errorf("Failed to invoke callback for record %d, %w", rec.Index, err)
			return false
		}

		return true
	}

	if body[0] == '[' {

		if !gjson.ValidBytes(body) {
			return fmt.Errorf("Invalid JSON array")
		}

		gjson.ParseBytes(body).ForEach(func(_, v gjson.Result) bool {
			return iter(v)
		})

	} else {

		gjson.ForEachLine(string(body), func(line gjson.Result) bool {

			if strings.TrimSpace(line.Raw) == "" {
				return true
			}

			return iter(line)
		})
	}

	return walk_err
}
