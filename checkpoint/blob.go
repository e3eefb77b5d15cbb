package checkpoint

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aaronland/gocloud-blob/bucket"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// BlobCheckpointer stores offsets as "<key>.offset" text files in a gocloud blob bucket.
type BlobCheckpointer struct {
	bucket *blob.Bucket
}

func NewBlobCheckpointer(ctx context.Context, uri string) (Checkpointer, error) {

	b, err := bucket.OpenBucket(ctx, uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to open checkpoint bucket, %w", err)
	}

	return NewBlobCheckpointerWithBucket(b), nil
}

func NewBlobCheckpointerWithBucket(b *blob.Bucket) *BlobCheckpointer {

	c := &BlobCheckpointer{
		bucket: b,
	}

	return c
}

func (c *BlobCheckpointer) Load(ctx context.Context, key string) (int, error) {

	r, err := c.bucket.NewReader(ctx, offsetFile(key), nil)

	if err != nil {

		if gcerrors.Code(err) == gcerrors.NotFound {
			return 0, nil
		}

		return 0, fmt.Errorf("Failed to open checkpoint for %s, %w", key, err)
	}

	defer r.Close()

	body, err := io.ReadAll(r)

	if err != nil {
		return 0, fmt.Errorf("Failed to read checkpoint for %s, %w", key, err)
	}

	v := strings.TrimSpace(string(body))

	if v == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(v)

	// A corrupt checkpoint restarts the import from the beginning; upserts are idempotent.
	if err != nil || offset < 0 {
		return 0, nil
	}

	return offset, nil
}

func (c *BlobCheckpointer) Save(ctx context.Context, key string, offset int) error {
	return c.bucket.WriteAll(ctx, offsetFile(key), []byte(strconv.Itoa(offset)), nil)
}

func (c *BlobCheckpointer) Clear(ctx context.Context, key string) error {

	err := c.bucket.Delete(ctx, offsetFile(key))

	if err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return fmt.Errorf("Failed to remove checkpoint for %s, %w", key, err)
	}

	return nil
}

func (c *BlobCheckpointer) Close() error {
	return c.bucket.Close()
}

func offsetFile(key string) string {
	return fmt.Sprintf("%s.offset", key)
}
