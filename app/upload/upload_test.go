package upload

import (
	"context"
	"testing"

	"github.com/allspots/go-poi-import/checkpoint"
	"github.com/allspots/go-poi-import/store"
	"github.com/allspots/go-poi-import/writer"
	"gocloud.dev/blob/memblob"
)

const export = `[
{"name": "Tour Eiffel", "source": "openstreetmap", "osmId": 5013364, "lat": 48.8584, "lng": 2.2945},
{"name": "Tour Eiffel bis", "source": "openstreetmap", "osmId": 5013364, "lat": 48.8584, "lng": 2.2945},
{"name": "Café de Flore", "source": "google_places", "place_id": "ChIJ-abc", "lat": 48.854, "lng": 2.3326},
{"name": "Nowhere", "source": "manual"}
]`

func TestUpload(t *testing.T) {

	ctx := context.Background()

	b := memblob.OpenBucket(nil)
	defer b.Close()

	err := b.WriteAll(ctx, "exports/pois_paris.json", []byte(export), nil)

	if err != nil {
		t.Fatalf("Failed to write export, %v", err)
	}

	summary, err := Upload(ctx, b, nil, "exports/pois_paris.json")

	if err != nil {
		t.Fatalf("Failed to prepare export, %v", err)
	}

	if summary.Records != 4 || summary.Skipped != 1 || summary.Duplicates != 1 || summary.Result != nil {
		t.Fatalf("Unexpected dry run summary %+v", summary)
	}

	st, err := store.NewStore(ctx, "mem://upload_test/id")

	if err != nil {
		t.Fatalf("Failed to create store, %v", err)
	}

	defer st.Close()

	cp_bucket := memblob.OpenBucket(nil)
	defer cp_bucket.Close()

	cp := checkpoint.NewBlobCheckpointerWithBucket(cp_bucket)

	wr := writer.NewWriter(st, &writer.Options{
		BatchSize:    1,
		Checkpointer: cp,
	})

	summary, err = Upload(ctx, b, wr, "exports/pois_paris.json")

	if err != nil {
		t.Fatalf("Failed to upload export, %v", err)
	}

	if summary.Result.Written != 2 || summary.Result.Batches != 2 {
		t.Fatalf("Unexpected result %+v", summary.Result)
	}

	docs, err := st.Scan(ctx, nil)

	if err != nil {
		t.Fatalf("Failed to scan store, %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(docs))
	}

	offset, err := cp.Load(ctx, "pois_paris")

	if err != nil {
		t.Fatalf("Failed to load checkpoint, %v", err)
	}

	if offset != 0 {
		t.Fatalf("Expected completed upload to clear its checkpoint, got %d", offset)
	}

	_, err = Upload(ctx, b, wr, "exports/missing.json")

	if err == nil {
		t.Fatalf("Expected missing export to fail")
	}
}
