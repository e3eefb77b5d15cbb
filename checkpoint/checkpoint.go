// Package checkpoint records how far a bulk import has progressed so an interrupted run
// can resume at the first uncommitted record.
package checkpoint

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Checkpointer stores one offset per input identity.
type Checkpointer interface {
	// Load returns the saved offset for 'key', or 0 if there is none.
	Load(context.Context, string) (int, error)
	Save(context.Context, string, int) error
	Clear(context.Context, string) error
	Close() error
}

// NewCheckpointer returns a redis backed Checkpointer for redis:// and rediss:// URIs and a
// gocloud blob backed Checkpointer for anything else.
func NewCheckpointer(ctx context.Context, uri string) (Checkpointer, error) {

	u, err := url.Parse(uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to parse checkpoint URI, %w", err)
	}

	switch u.Scheme {
	case "redis", "rediss":
		return NewRedisCheckpointer(ctx, uri)
	default:
		return NewBlobCheckpointer(ctx, uri)
	}
}

// KeyFromPath derives a checkpoint key from an input file path: its base name without
// extension.
func KeyFromPath(path string) string {

	fname := filepath.Base(path)
	return strings.TrimSuffix(fname, filepath.Ext(fname))
}
