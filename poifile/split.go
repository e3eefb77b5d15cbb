package poifile

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"gocloud.dev/blob"
)

const DefaultChunkSize = 15000

const DefaultChunkPrefix = "pois_chunk"

// Chunk describes one file written by Split. Start and End are the inclusive positions of
// its first and last records in the source file.
type Chunk struct {
	URI   string
	Index int
	Start int
	End   int
}

func (c *Chunk) Size() int {
	return c.End - c.Start + 1
}

type SplitOptions struct {
	SourceBucket *blob.Bucket
	TargetBucket *blob.Bucket
	// Prefix names the chunks <Prefix>_<nnn>_<start>_<end>.json.
	Prefix string
	Size   int
	// Directory, when set, is prepended to every chunk name.
	Directory string
	// Callback, when set, is invoked after each chunk is written.
	Callback func(context.Context, *Chunk) error
}

// Split copies the records of 'uri' into consecutive JSON array files of at most opts.Size
// records each.
func Split(ctx context.Context, opts *SplitOptions, uri string) ([]*Chunk, error) {

	size := opts.Size

	if size <= 0 {
		size = DefaultChunkSize
	}

	prefix := opts.Prefix

	if prefix == "" {
		prefix = DefaultChunkPrefix
	}

	chunks := make([]*Chunk, 0)
	buf := make([]json.RawMessage, 0, size)
	start := 0

	flush := func(ctx context.Context) error {

		if len(buf) == 0 {
			return nil
		}

		c := &Chunk{
			Index: len(chunks) + 1,
			Start: start,
			End:   start + len(buf) - 1,
		}

		fname := fmt.Sprintf("%s_%03d_%d_%d.json", prefix, c.Index, c.Start, c.End)
		c.URI = fname

		if opts.Directory != "" {
			c.URI = filepath.Join(opts.Directory, fname)
		}

		err := Write(ctx, opts.TargetBucket, c.URI, buf)

		if err != nil {
			return err
		}

		chunks = append(chunks, c)

		start = c.End + 1
		buf = make([]json.RawMessage, 0, size)

		if opts.Callback != nil {
			return opts.Callback(ctx, c)
		}

		return nil
	}

	cb := func(ctx context.Context, uri string, r *Record) error {

		buf = append(buf, json.RawMessage(r.Body.Raw))

		if len(buf) < size {
			return nil
		}

		return flush(ctx)
	}

	walk_opts := &WalkOptions{
		SourceBucket: opts.SourceBucket,
		Callback:     cb,
	}

	err := Walk(ctx, walk_opts, uri)

	if err != nil {
		return nil, err
	}

	err = flush(ctx)

	if err != nil {
		return nil, err
	}

	return chunks, nil
}
