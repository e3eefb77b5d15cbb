package checkpoint

import (
	"context"
	"testing"

	_ "gocloud.dev/blob/memblob"
)

func TestBlobCheckpointer(t *testing.T) {

	ctx := context.Background()

	c, err := NewCheckpointer(ctx, "mem://")

	if err != nil {
		t.Fatalf("Failed to create checkpointer, %v", err)
	}

	defer c.Close()

	key := KeyFromPath("/data/chunks/pois_chunk_001_0_14999.json")

	if key != "pois_chunk_001_0_14999" {
		t.Fatalf("Unexpected key %s", key)
	}

	offset, err := c.Load(ctx, key)

	if err != nil {
		t.Fatalf("Failed to load checkpoint, %v", err)
	}

	if offset != 0 {
		t.Fatalf("Expected missing checkpoint to load as 0, got %d", offset)
	}

	err = c.Save(ctx, key, 750)

	if err != nil {
		t.Fatalf("Failed to save checkpoint, %v", err)
	}

	offset, err = c.Load(ctx, key)

	if err != nil {
		t.Fatalf("Failed to load checkpoint, %v", err)
	}

	if offset != 750 {
		t.Fatalf("Unexpected offset %d", offset)
	}

	err = c.Clear(ctx, key)

	if err != nil {
		t.Fatalf("Failed to clear checkpoint, %v", err)
	}

	err = c.Clear(ctx, key)

	if err != nil {
		t.Fatalf("Clearing a missing checkpoint should not fail, %v", err)
	}

	offset, _ = c.Load(ctx, key)

	if offset != 0 {
		t.Fatalf("Expected cleared checkpoint to load as 0")
	}
}
