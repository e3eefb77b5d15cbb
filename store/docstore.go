package store

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"gocloud.dev/docstore"
	_ "gocloud.dev/docstore/memdocstore"
	"gocloud.dev/gcerrors"
)

// DocstoreStore is a Store backed by a gocloud.dev/docstore collection. Upserts read the
// existing document and write back the merged fields. Batches are applied as a docstore
// action list, which is not atomic across documents.
type DocstoreStore struct {
	collection *docstore.Collection
	id_field   string
}

func init() {

	ctx := context.Background()
	err := RegisterStore(ctx, "mem", NewDocstoreStore)

	if err != nil {
		panic(err)
	}
}

// NewDocstoreStore returns a new DocstoreStore for 'uri', a valid gocloud.dev/docstore
// collection URI. The key field is read from the URI path, for example "mem://spots/id".
func NewDocstoreStore(ctx context.Context, uri string) (Store, error) {

	u, err := url.Parse(uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to parse URI, %w", err)
	}

	id_field := strings.Trim(u.Path, "/")

	if id_field == "" {
		return nil, fmt.Errorf("Missing key field in docstore URI")
	}

	col, err := docstore.OpenCollection(ctx, uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to open collection, %w", err)
	}

	s := &DocstoreStore{
		collection: col,
		id_field:   id_field,
	}

	return s, nil
}

func (s *DocstoreStore) Commit(ctx context.Context, mutations []*Mutation) error {

	if len(mutations) == 0 {
		return nil
	}

	if len(mutations) > s.MaxBatchSize() {
		return fmt.Errorf("Batch of %d mutations exceeds limit of %d", len(mutations), s.MaxBatchSize())
	}

	actions := s.collection.Actions()

	for _, m := range mutations {

		key := map[string]interface{}{
			s.id_field: m.Id,
		}

		switch m.Type {
		case Upsert:

			doc := map[string]interface{}{
				s.id_field: m.Id,
			}

			err := s.collection.Get(ctx, doc)

			if err != nil {

				if gcerrors.Code(err) != gcerrors.NotFound {
					return fmt.Errorf("Failed to retrieve %s, %w", m.Id, err)
				}

				doc = map[string]interface{}{
					s.id_field: m.Id,
				}
			}

			for k, v := range m.Fields {
				doc[k] = encodeDocstoreValue(v)
			}

			actions.Put(doc)

		case Update:

			mods := docstore.Mods{}

			for k, v := range m.Fields {
				mods[docstore.FieldPath(k)] = encodeDocstoreValue(v)
			}

			actions.Update(key, mods)

		case Delete:
			actions.Delete(key)

		default:
			return fmt.Errorf("Unsupported mutation type %d", m.Type)
		}
	}

	return actions.Do(ctx)
}

func (s *DocstoreStore) Scan(ctx context.Context, opts *ScanOptions) ([]*Document, error) {

	q := s.collection.Query()

	if opts != nil && opts.Filter != nil {
		q = q.Where(docstore.FieldPath(opts.Filter.Field), "=", opts.Filter.Value)
	}

	if opts != nil && opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	iter := q.Get(ctx)
	defer iter.Stop()

	docs := make([]*Document, 0)

	for {

		doc := map[string]interface{}{}
		err := iter.Next(ctx, doc)

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("Failed to iterate collection, %w", err)
		}

		id := fmt.Sprintf("%v", doc[s.id_field])

		delete(doc, s.id_field)
		delete(doc, docstore.DefaultRevisionField)

		fields := make(map[string]any, len(doc))

		for k, v := range doc {
			fields[k] = decodeDocstoreValue(v)
		}

		docs = append(docs, &Document{Id: id, Fields: fields})
	}

	return docs, nil
}

func (s *DocstoreStore) MaxBatchSize() int {
	return MaxBatchSize
}

func (s *DocstoreStore) IsTransient(err error) bool {

	switch gcerrors.Code(err) {
	case gcerrors.ResourceExhausted, gcerrors.DeadlineExceeded:
		return true
	default:
		return false
	}
}

func (s *DocstoreStore) Close() error {
	return s.collection.Close()
}

func encodeDocstoreValue(v any) any {

	switch t := v.(type) {
	case GeoPoint:
		return map[string]interface{}{
			"latitude":  t.Latitude,
			"longitude": t.Longitude,
		}
	case serverTimestamp:
		return time.Now().UTC()
	case map[string]any:

		m := make(map[string]interface{}, len(t))

		for k, v := range t {
			m[k] = encodeDocstoreValue(v)
		}

		return m

	case []any:

		a := make([]interface{}, len(t))

		for i, v := range t {
			a[i] = encodeDocstoreValue(v)
		}

		return a

	default:
		return v
	}
}

func decodeDocstoreValue(v any) any {

	m, ok := v.(map[string]interface{})

	if !ok {
		return v
	}

	if len(m) == 2 {

		lat, ok_lat := m["latitude"].(float64)
		lng, ok_lng := m["longitude"].(float64)

		if ok_lat && ok_lng {
			return GeoPoint{Latitude: lat, Longitude: lng}
		}
	}

	return m
}
