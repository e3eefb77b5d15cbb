package cleanup

import (
	"context"
	"fmt"
	"testing"

	"github.com/allspots/go-poi-import/store"
	"github.com/tidwall/gjson"
	"gocloud.dev/blob/memblob"
)

func newTestStore(t *testing.T, name string, docs map[string]map[string]any) store.Store {

	ctx := context.Background()

	s, err := store.NewStore(ctx, fmt.Sprintf("mem://%s/id", name))

	if err != nil {
		t.Fatalf("Failed to create store, %v", err)
	}

	mutations := make([]*store.Mutation, 0)

	for id, fields := range docs {
		mutations = append(mutations, &store.Mutation{Type: store.Upsert, Id: id, Fields: fields})
	}

	err = s.Commit(ctx, mutations)

	if err != nil {
		t.Fatalf("Failed to seed store, %v", err)
	}

	return s
}

func names(t *testing.T, s store.Store) map[string]string {

	docs, err := s.Scan(context.Background(), nil)

	if err != nil {
		t.Fatalf("Failed to scan store, %v", err)
	}

	n := make(map[string]string)

	for _, d := range docs {
		n[d.Id] = Value(d.Fields, "name")
	}

	return n
}

var placeholder_docs = map[string]map[string]any{
	"a": {"name": "POI sans nom", "description": "Magnifique point de vue sur le lac"},
	"b": {"name": "", "categoryItem": "art_gallery"},
	"c": {"name": "Sans nom", "categoryGroup": "experienceGustative"},
	"d": {"name": "Tour Eiffel", "categoryGroup": "histoire"},
	"e": {"name": "spot", "categoryItem": "Spot"},
}

func TestClassify(t *testing.T) {

	for _, v := range []any{nil, "", "POI sans nom", "Point d'intérêt : POI sans nom", "Unnamed"} {

		if !IsPlaceholderName(v) {
			t.Fatalf("Expected '%v' to be a placeholder", v)
		}
	}

	if IsPlaceholderName("Sans nom de famille") {
		t.Fatalf("Unexpected placeholder match")
	}

	expected := map[string]string{
		"a": "Point de vue",
		"b": "Galerie d'art",
		"c": "Expérience gustative",
	}

	for id, name := range expected {

		if ReplacementName(placeholder_docs[id]) != name {
			t.Fatalf("Expected %s for %s, got %s", name, id, ReplacementName(placeholder_docs[id]))
		}
	}

	if !IsGenericSpot(map[string]any{"name": "Musée", "category": "Other"}) {
		t.Fatalf("Expected generic category to match")
	}

	if IsGenericSpot(map[string]any{"name": "Musée", "categoryGroup": "culture", "categoryItem": "museum"}) {
		t.Fatalf("Unexpected generic match")
	}
}

func TestRenamePlaceholders(t *testing.T) {

	ctx := context.Background()

	s := newTestStore(t, "cleanup_rename", placeholder_docs)
	defer s.Close()

	plan, err := RenamePlaceholders(ctx, s, nil)

	if err != nil {
		t.Fatalf("Failed to plan renames, %v", err)
	}

	if plan.Mode != ModePlan || plan.Scanned != 5 || plan.Candidates != 3 || plan.Written != 0 {
		t.Fatalf("Unexpected plan %+v", plan)
	}

	if names(t, s)["a"] != "POI sans nom" {
		t.Fatalf("Plan mode modified the store")
	}

	b := memblob.OpenBucket(nil)
	defer b.Close()

	report, err := RenamePlaceholders(ctx, s, &Options{
		Apply:        true,
		BackupBucket: b,
		BackupURI:    "backups/rename.json",
	})

	if err != nil {
		t.Fatalf("Failed to apply renames, %v", err)
	}

	if report.Written != 3 {
		t.Fatalf("Expected 3 updates, got %d", report.Written)
	}

	n := names(t, s)

	if n["a"] != "Point de vue" || n["b"] != "Galerie d'art" || n["c"] != "Expérience gustative" || n["e"] != "spot" {
		t.Fatalf("Unexpected names %v", n)
	}

	body, err := b.ReadAll(ctx, "backups/rename.json")

	if err != nil {
		t.Fatalf("Failed to read backup, %v", err)
	}

	backup := gjson.ParseBytes(body)

	if int(backup.Get("changes.#").Int()) != plan.Candidates {
		t.Fatalf("Expected %d changes in backup, got %s", plan.Candidates, body)
	}

	if backup.Get("mode").String() != ModeApply || backup.Get("updated").Int() != 3 || backup.Get("runId").String() == "" {
		t.Fatalf("Unexpected backup %s", body)
	}
}

func TestDeleteGeneric(t *testing.T) {

	ctx := context.Background()

	docs := map[string]map[string]any{
		"g1": {"name": "Autre"},
		"g2": {"name": "Musée", "categoryGroup": "other"},
		"g3": {"name": "Fontaine", "subCategory": "Point d'intérêt"},
		"g4": {"name": "Sans nom", "categoryItem": "viewpoint", "departementCode": "74"},
		"k":  {"name": "Tour Eiffel", "categoryGroup": "histoire"},
	}

	s := newTestStore(t, "cleanup_delete", docs)
	defer s.Close()

	limited, err := DeleteGeneric(ctx, s, &Options{Limit: 2})

	if err != nil {
		t.Fatalf("Failed to plan deletions, %v", err)
	}

	if limited.Scanned != 2 {
		t.Fatalf("Expected limit to cap scanned documents, got %d", limited.Scanned)
	}

	plan, err := DeleteGeneric(ctx, s, nil)

	if err != nil {
		t.Fatalf("Failed to plan deletions, %v", err)
	}

	if plan.Candidates != 4 || plan.Written != 0 || len(names(t, s)) != 5 {
		t.Fatalf("Unexpected plan %+v", plan)
	}

	b := memblob.OpenBucket(nil)
	defer b.Close()

	report, err := DeleteGeneric(ctx, s, &Options{
		Apply:        true,
		BackupBucket: b,
		BackupURI:    "deleted.json",
	})

	if err != nil {
		t.Fatalf("Failed to delete generic spots, %v", err)
	}

	if report.Written != 4 {
		t.Fatalf("Expected 4 deletions, got %d", report.Written)
	}

	remaining := names(t, s)

	if len(remaining) != 1 || remaining["k"] != "Tour Eiffel" {
		t.Fatalf("Unexpected remaining documents %v", remaining)
	}

	body, err := b.ReadAll(ctx, "deleted.json")

	if err != nil {
		t.Fatalf("Failed to read backup, %v", err)
	}

	if gjson.GetBytes(body, "changes.#").Int() != 4 || gjson.GetBytes(body, "deleted").Int() != 4 {
		t.Fatalf("Unexpected backup %s", body)
	}

	if gjson.GetBytes(body, `changes.#(id=="g4").departmentCode`).String() != "74" {
		t.Fatalf("Expected department code in backup %s", body)
	}
}
