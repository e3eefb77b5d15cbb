package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {

	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")

	body := "FIREBASE_PROJECT_ID=allspots-test\nGOOGLE_APPLICATION_CREDENTIALS=/secrets/sa.json\nFIRESTORE_BATCH_SIZE=100\nFIRESTORE_BATCH_SLEEP=0.5\n"

	err := os.WriteFile(path, []byte(body), 0644)

	if err != nil {
		t.Fatalf("Failed to write env file, %v", err)
	}

	for _, k := range []string{"FIREBASE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS", "FIRESTORE_BATCH_SIZE", "FIRESTORE_BATCH_SLEEP", "ALLSPOTS_STORE_URI", "ALLSPOTS_COLLECTION"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load(path)

	if err != nil {
		t.Fatalf("Failed to load config, %v", err)
	}

	if cfg.BatchSize != 100 || cfg.Sleep() != 500*time.Millisecond || cfg.Collection != DefaultCollection {
		t.Fatalf("Unexpected config %+v", cfg)
	}

	uri, err := cfg.Store()

	if err != nil {
		t.Fatalf("Failed to derive store URI, %v", err)
	}

	if uri != "firestore://allspots-test/spots?credentials=%2Fsecrets%2Fsa.json" {
		t.Fatalf("Unexpected store URI %s", uri)
	}

	cfg.StoreURI = "mem://spots/id"

	uri, _ = cfg.Store()

	if uri != "mem://spots/id" {
		t.Fatalf("Expected explicit store URI, got %s", uri)
	}

	_, err = (&Config{}).Store()

	if err == nil {
		t.Fatalf("Expected missing project to fail")
	}

	_, err = Load(filepath.Join(dir, "missing.env"))

	if err == nil {
		t.Fatalf("Expected missing env file to fail")
	}
}

func TestSecret(t *testing.T) {

	ctx := context.Background()

	v, err := Secret(ctx, "plain-key")

	if err != nil || v != "plain-key" {
		t.Fatalf("Unexpected plain secret %s %v", v, err)
	}

	v, err = Secret(ctx, "constant://?val=s3cret")

	if err != nil {
		t.Fatalf("Failed to resolve secret, %v", err)
	}

	if v != "s3cret" {
		t.Fatalf("Unexpected secret %s", v)
	}
}

func TestStoreURI(t *testing.T) {

	uri, err := StoreURI("mongodb://localhost:27017/?database=allspots", "")

	if err != nil || uri != "mongodb://localhost:27017/?database=allspots" {
		t.Fatalf("Unexpected store URI %s %v", uri, err)
	}

	path := filepath.Join(t.TempDir(), "store.env")

	err = os.WriteFile(path, []byte("ALLSPOTS_STORE_URI=mem://spots/id\n"), 0644)

	if err != nil {
		t.Fatalf("Failed to write env file, %v", err)
	}

	t.Setenv("ALLSPOTS_STORE_URI", "")
	os.Unsetenv("ALLSPOTS_STORE_URI")

	uri, err = StoreURI("", path)

	if err != nil || uri != "mem://spots/id" {
		t.Fatalf("Unexpected store URI %s %v", uri, err)
	}
}
