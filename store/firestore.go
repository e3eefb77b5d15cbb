package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
	"google.golang.org/genproto/googleapis/type/latlng"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const DefaultCollection = "spots"

// FirestoreStore is a Store backed by a Cloud Firestore collection, accessed through the
// Firebase Admin SDK. Upserts use merge semantics and every batch is committed atomically.
type FirestoreStore struct {
	client     *firestore.Client
	collection *firestore.CollectionRef
}

func init() {

	ctx := context.Background()
	err := RegisterStore(ctx, "firestore", NewFirestoreStore)

	if err != nil {
		panic(err)
	}
}

// NewFirestoreStore returns a new FirestoreStore for 'uri' which takes the form of:
//
//	firestore://{PROJECT_ID}/{COLLECTION}?credentials={PATH}
//
// An empty project id defers to the environment (GOOGLE_CLOUD_PROJECT and application
// default credentials).
func NewFirestoreStore(ctx context.Context, uri string) (Store, error) {

	u, err := url.Parse(uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to parse URI, %w", err)
	}

	q := u.Query()

	collection := strings.Trim(u.Path, "/")

	if collection == "" {
		collection = DefaultCollection
	}

	client_opts := make([]option.ClientOption, 0)

	credentials := q.Get("credentials")

	if credentials != "" {
		client_opts = append(client_opts, option.WithCredentialsFile(credentials))
	}

	var conf *firebase.Config

	if u.Host != "" {
		conf = &firebase.Config{
			ProjectID: u.Host,
		}
	}

	app, err := firebase.NewApp(ctx, conf, client_opts...)

	if err != nil {
		return nil, fmt.Errorf("Failed to initialize Firebase app, %w", err)
	}

	client, err := app.Firestore(ctx)

	if err != nil {
		return nil, fmt.Errorf("Failed to create Firestore client, %w", err)
	}

	s := &FirestoreStore{
		client:     client,
		collection: client.Collection(collection),
	}

	return s, nil
}

func (s *FirestoreStore) Commit(ctx context.Context, mutations []*Mutation) error {

	if len(mutations) == 0 {
		return nil
	}

	if len(mutations) > s.MaxBatchSize() {
		return fmt.Errorf("Batch of %d mutations exceeds limit of %d", len(mutations), s.MaxBatchSize())
	}

	batch := s.client.Batch()

	for _, m := range mutations {

		ref := s.collection.Doc(m.Id)

		switch m.Type {
		case Upsert:
			batch.Set(ref, encodeFirestoreFields(m.Fields), firestore.MergeAll)
		case Update:

			updates := make([]firestore.Update, 0, len(m.Fields))

			for k, v := range m.Fields {
				updates = append(updates, firestore.Update{Path: k, Value: encodeFirestoreValue(v)})
			}

			batch.Update(ref, updates)

		case Delete:
			batch.Delete(ref)
		default:
			return fmt.Errorf("Unsupported mutation type %d", m.Type)
		}
	}

	_, err := batch.Commit(ctx)
	return err
}

func (s *FirestoreStore) Scan(ctx context.Context, opts *ScanOptions) ([]*Document, error) {

	q := s.collection.Query

	if opts != nil && opts.Filter != nil {
		q = q.Where(opts.Filter.Field, "==", opts.Filter.Value)
	}

	if opts != nil && opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	snapshots, err := q.Documents(ctx).GetAll()

	if err != nil {
		return nil, fmt.Errorf("Failed to query collection, %w", err)
	}

	docs := make([]*Document, len(snapshots))

	for i, snap := range snapshots {

		data := snap.Data()
		fields := make(map[string]any, len(data))

		for k, v := range data {
			fields[k] = decodeFirestoreValue(v)
		}

		docs[i] = &Document{
			Id:     snap.Ref.ID,
			Fields: fields,
		}
	}

	return docs, nil
}

func (s *FirestoreStore) MaxBatchSize() int {
	return MaxBatchSize
}

func (s *FirestoreStore) IsTransient(err error) bool {

	switch status.Code(err) {
	case codes.ResourceExhausted, codes.Unavailable, codes.DeadlineExceeded, codes.Aborted:
		return true
	default:
		return false
	}
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func encodeFirestoreFields(fields map[string]any) map[string]interface{} {

	data := make(map[string]interface{}, len(fields))

	for k, v := range fields {
		data[k] = encodeFirestoreValue(v)
	}

	return data
}

func encodeFirestoreValue(v any) interface{} {

	switch t := v.(type) {
	case GeoPoint:
		return &latlng.LatLng{Latitude: t.Latitude, Longitude: t.Longitude}
	case serverTimestamp:
		return firestore.ServerTimestamp
	case map[string]any:
		return encodeFirestoreFields(t)
	case []any:

		a := make([]interface{}, len(t))

		for i, v := range t {
			a[i] = encodeFirestoreValue(v)
		}

		return a

	default:
		return v
	}
}

func decodeFirestoreValue(v interface{}) any {

	switch t := v.(type) {
	case *latlng.LatLng:
		return GeoPoint{Latitude: t.Latitude, Longitude: t.Longitude}
	default:
		return v
	}
}
