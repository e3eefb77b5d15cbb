package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is a Store backed by a MongoDB collection. Locations are stored as GeoJSON
// points and server timestamps use $currentDate. Batches are sent as one ordered bulk
// write.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func init() {

	ctx := context.Background()

	for _, scheme := range []string{"mongodb", "mongodb+srv"} {

		err := RegisterStore(ctx, scheme, NewMongoStore)

		if err != nil {
			panic(err)
		}
	}
}

// NewMongoStore returns a new MongoStore for 'uri' which takes the form of a MongoDB
// connection string with two extra query parameters:
//
//	mongodb://{HOST}:{PORT}/?database={DATABASE}&collection={COLLECTION}
func NewMongoStore(ctx context.Context, uri string) (Store, error) {

	u, err := url.Parse(uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to parse URI, %w", err)
	}

	q := u.Query()

	database := q.Get("database")
	collection := q.Get("collection")

	if database == "" {
		return nil, fmt.Errorf("Missing ?database= parameter")
	}

	if collection == "" {
		collection = DefaultCollection
	}

	q.Del("database")
	q.Del("collection")
	u.RawQuery = q.Encode()

	connect_ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connect_ctx, options.Client().ApplyURI(u.String()))

	if err != nil {
		return nil, fmt.Errorf("Failed to connect to MongoDB, %w", err)
	}

	err = client.Ping(connect_ctx, nil)

	if err != nil {
		return nil, fmt.Errorf("Failed to ping MongoDB, %w", err)
	}

	s := &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}

	return s, nil
}

func (s *MongoStore) Commit(ctx context.Context, mutations []*Mutation) error {

	if len(mutations) == 0 {
		return nil
	}

	if len(mutations) > s.MaxBatchSize() {
		return fmt.Errorf("Batch of %d mutations exceeds limit of %d", len(mutations), s.MaxBatchSize())
	}

	models := make([]mongo.WriteModel, 0, len(mutations))

	for _, m := range mutations {

		filter := bson.M{"_id": m.Id}

		switch m.Type {
		case Upsert, Update:

			set := bson.M{}
			current := bson.M{}

			for k, v := range m.Fields {

				if IsServerTimestamp(v) {
					current[k] = true
					continue
				}

				set[k] = encodeMongoValue(v)
			}

			update := bson.M{}

			if len(set) > 0 {
				update["$set"] = set
			}

			if len(current) > 0 {
				update["$currentDate"] = current
			}

			if len(update) == 0 {
				continue
			}

			model := mongo.NewUpdateOneModel().SetFilter(filter).SetUpdate(update).SetUpsert(m.Type == Upsert)
			models = append(models, model)

		case Delete:
			models = append(models, mongo.NewDeleteOneModel().SetFilter(filter))
		default:
			return fmt.Errorf("Unsupported mutation type %d", m.Type)
		}
	}

	if len(models) == 0 {
		return nil
	}

	_, err := s.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	return err
}

func (s *MongoStore) Scan(ctx context.Context, opts *ScanOptions) ([]*Document, error) {

	filter := bson.M{}
	find_opts := options.Find()

	if opts != nil && opts.Filter != nil {
		filter[opts.Filter.Field] = opts.Filter.Value
	}

	if opts != nil && opts.Limit > 0 {
		find_opts.SetLimit(int64(opts.Limit))
	}

	cur, err := s.collection.Find(ctx, filter, find_opts)

	if err != nil {
		return nil, fmt.Errorf("Failed to query collection, %w", err)
	}

	defer cur.Close(ctx)

	docs := make([]*Document, 0)

	for cur.Next(ctx) {

		var raw bson.M

		err := cur.Decode(&raw)

		if err != nil {
			return nil, fmt.Errorf("Failed to decode document, %w", err)
		}

		id := fmt.Sprintf("%v", raw["_id"])
		delete(raw, "_id")

		fields := make(map[string]any, len(raw))

		for k, v := range raw {
			fields[k] = decodeMongoValue(v)
		}

		docs = append(docs, &Document{Id: id, Fields: fields})
	}

	err = cur.Err()

	if err != nil {
		return nil, fmt.Errorf("Failed to iterate cursor, %w", err)
	}

	return docs, nil
}

func (s *MongoStore) MaxBatchSize() int {
	return MaxBatchSize
}

func (s *MongoStore) IsTransient(err error) bool {

	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return true
	}

	var labeled mongo.LabeledError

	if errors.As(err, &labeled) && labeled.HasErrorLabel("RetryableWriteError") {
		return true
	}

	return false
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

func encodeMongoValue(v any) any {

	switch t := v.(type) {
	case GeoPoint:
		return bson.M{
			"type":        "Point",
			"coordinates": bson.A{t.Longitude, t.Latitude},
		}
	case map[string]any:

		m := bson.M{}

		for k, v := range t {
			m[k] = encodeMongoValue(v)
		}

		return m

	case []any:

		a := make(bson.A, len(t))

		for i, v := range t {
			a[i] = encodeMongoValue(v)
		}

		return a

	default:
		return v
	}
}

func decodeMongoValue(v any) any {

	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.A:

		a := make([]any, len(t))

		for i, v := range t {
			a[i] = decodeMongoValue(v)
		}

		return a

	case primitive.D:
		return decodeMongoValue(bson.M(t.Map()))

	case bson.M:

		if t["type"] == "Point" {

			coords, ok := t["coordinates"].(primitive.A)

			if ok && len(coords) == 2 {

				lng, ok_lng := coords[0].(float64)
				lat, ok_lat := coords[1].(float64)

				if ok_lng && ok_lat {
					return GeoPoint{Latitude: lat, Longitude: lng}
				}
			}
		}

		m := make(map[string]any, len(t))

		for k, v := range t {
			m[k] = decodeMongoValue(v)
		}

		return m

	default:
		return v
	}
}
