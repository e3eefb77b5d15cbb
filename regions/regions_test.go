package regions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/allspots/go-poi-import/sources"
	_ "gocloud.dev/blob/fileblob"
)

func TestDefaultTable(t *testing.T) {

	table, err := DefaultTable()

	if err != nil {
		t.Fatalf("Failed to load default table, %v", err)
	}

	if len(table) != 101 {
		t.Fatalf("Expected 101 departments, got %d", len(table))
	}

	paris, err := table.Lookup("75")

	if err != nil {
		t.Fatalf("Failed to lookup Paris, %v", err)
	}

	if paris.Name != "Paris" || paris.Code != "75" || !paris.IsMetropolitan() {
		t.Fatalf("Unexpected department %v", paris)
	}

	d, err := table.Lookup("6")

	if err != nil || d.Name != "Alpes-Maritimes" {
		t.Fatalf("Expected single digit codes to be padded")
	}

	d, err = table.Lookup("2a")

	if err != nil || d.Name != "Corse-du-Sud" {
		t.Fatalf("Expected Corsican codes to be upper-cased")
	}

	d, _ = table.Lookup("974")

	if d.IsMetropolitan() {
		t.Fatalf("Expected 974 to be overseas")
	}

	_, err = table.Lookup("99")

	if !errors.Is(err, ErrUnknownRegion) {
		t.Fatalf("Expected ErrUnknownRegion, got %v", err)
	}
}

func TestGenerate(t *testing.T) {

	mux := http.NewServeMux()

	mux.HandleFunc("/departements", func(rsp http.ResponseWriter, req *http.Request) {
		fmt.Fprint(rsp, `[{"code":"75","nom":"Paris"},{"code":"976","nom":"Mayotte"}]`)
	})

	mux.HandleFunc("/communes", func(rsp http.ResponseWriter, req *http.Request) {

		if req.URL.Query().Get("codeDepartement") == "976" {
			fmt.Fprint(rsp, `[]`)
			return
		}

		fmt.Fprint(rsp, `[{"nom":"Paris","population":2100000,"centre":{"coordinates":[2.347,48.859]}},{"nom":"Autre","population":10,"centre":{"coordinates":[1,1]}}]`)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := sources.NewClient(&sources.ClientOptions{})

	table, err := Generate(context.Background(), client, srv.URL)

	if err != nil {
		t.Fatalf("Failed to generate table, %v", err)
	}

	paris := table["75"]

	if paris == nil || paris.Lat != 48.859 || paris.Lng != 2.347 || paris.Zone != ZoneMetropolitan {
		t.Fatalf("Unexpected Paris entry %v", paris)
	}

	mayotte := table["976"]

	if mayotte == nil || mayotte.Lat != FallbackPoint[0] || mayotte.Zone != ZoneOverseas {
		t.Fatalf("Unexpected Mayotte entry %v", mayotte)
	}
}

func TestOpen(t *testing.T) {

	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "departments.json")

	err := os.WriteFile(path, []byte(`{"74": {"name": "Haute-Savoie", "lat": 45.899, "lng": 6.129}}`), 0644)

	if err != nil {
		t.Fatalf("Failed to write table, %v", err)
	}

	table, err := Open(ctx, "file://"+path)

	if err != nil {
		t.Fatalf("Failed to open table, %v", err)
	}

	d, err := table.Lookup("74")

	if err != nil || d.Name != "Haute-Savoie" || d.Zone != ZoneMetropolitan {
		t.Fatalf("Unexpected department %v %v", d, err)
	}

	table, err = Open(ctx, "")

	if err != nil || len(table) != 101 {
		t.Fatalf("Expected the built-in table")
	}
}
