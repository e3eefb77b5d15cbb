// Package store defines the document database contract used by the importers and the
// maintenance tools, and a registry of drivers selected by URI scheme.
package store

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/aaronland/go-roster"
)

// MutationType is the kind of write applied to a document.
type MutationType int

const (
	// Upsert creates the document or merges the given fields into it.
	Upsert MutationType = iota
	// Update modifies the given fields of an existing document.
	Update
	// Delete removes the document.
	Delete
)

func (t MutationType) String() string {

	switch t {
	case Upsert:
		return "upsert"
	case Update:
		return "update"
	case Delete:
		return "delete"
	default:
		return "unknown"
	}
}

type Mutation struct {
	Type   MutationType
	Id     string
	Fields map[string]any
}

type Document struct {
	Id     string
	Fields map[string]any
}

// Filter restricts a scan to documents whose Field equals Value.
type Filter struct {
	Field string
	Value any
}

type ScanOptions struct {
	Filter *Filter
	// Limit caps the number of documents returned; 0 means no limit.
	Limit int
}

// Store is a collection of documents keyed by identifier.
type Store interface {
	// Commit applies 'mutations' as one atomic batch.
	Commit(context.Context, []*Mutation) error
	// Scan returns the documents matching 'opts'.
	Scan(context.Context, *ScanOptions) ([]*Document, error)
	// MaxBatchSize is the largest number of mutations Commit accepts.
	MaxBatchSize() int
	// IsTransient reports whether 'err', returned by this store, is worth retrying.
	IsTransient(error) bool
	Close() error
}

// StoreInitializationFunc creates a Store from a URI.
type StoreInitializationFunc func(ctx context.Context, uri string) (Store, error)

var stores roster.Roster

func RegisterStore(ctx context.Context, scheme string, init_func StoreInitializationFunc) error {

	err := ensureStoreRoster()

	if err != nil {
		return err
	}

	return stores.Register(ctx, scheme, init_func)
}

func ensureStoreRoster() error {

	if stores == nil {

		r, err := roster.NewDefaultRoster()

		if err != nil {
			return err
		}

		stores = r
	}

	return nil
}

// NewStore returns the Store registered for the scheme of 'uri'.
func NewStore(ctx context.Context, uri string) (Store, error) {

	u, err := url.Parse(uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to parse URI, %w", err)
	}

	err = ensureStoreRoster()

	if err != nil {
		return nil, err
	}

	i, err := stores.Driver(ctx, u.Scheme)

	if err != nil {
		return nil, fmt.Errorf("Failed to find driver for %s, %w", u.Scheme, err)
	}

	init_func := i.(StoreInitializationFunc)
	return init_func(ctx, uri)
}

// Schemes returns the list of registered schemes, suitable for flag help text.
func Schemes() string {

	ctx := context.Background()
	schemes := []string{}

	err := ensureStoreRoster()

	if err != nil {
		return ""
	}

	for _, dr := range stores.Drivers(ctx) {
		scheme := fmt.Sprintf("%s://", strings.ToLower(dr))
		schemes = append(schemes, scheme)
	}

	sort.Strings(schemes)
	return strings.Join(schemes, ", ")
}
