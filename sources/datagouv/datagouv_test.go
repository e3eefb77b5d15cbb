package datagouv

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/poi"
	"github.com/allspots/go-poi-import/sources"
)

func TestSelect(t *testing.T) {

	all, err := Select(AllDatasets)

	if err != nil || len(all) != 3 {
		t.Fatalf("Expected 3 datasets")
	}

	_, err = Select("parkings")

	if !errors.Is(err, ErrUnknownDataset) {
		t.Fatalf("Expected ErrUnknownDataset, got %v", err)
	}
}

func TestDecode(t *testing.T) {

	tests := map[string]int{
		`[{"nom": "a"}, {"nom": "b"}]`:                                 2,
		`{"records": [{"fields": {"nom": "a"}}, {"fields": {"nom": "b"}}]}`: 2,
		`{"results": [{"nom": "a"}]}`:                                  1,
		`{"nom": "a"}`:                                                 1,
		"nom,latitude,longitude\nMusée,\"48,85\",\"2,35\"\n":           1,
		"":                                                             0,
	}

	for body, expected := range tests {

		rows, err := Decode([]byte(body))

		if err != nil {
			t.Fatalf("Failed to decode %s, %v", body, err)
		}

		if len(rows) != expected {
			t.Fatalf("Expected %d rows for %s, got %d", expected, body, len(rows))
		}
	}
}

func TestFetchAndConvert(t *testing.T) {

	var refine string

	srv := httptest.NewServer(http.HandlerFunc(func(rsp http.ResponseWriter, req *http.Request) {

		refine = req.URL.Query().Get("refine.departement")

		rsp.Header().Set("Content-Type", "text/csv")
		fmt.Fprint(rsp, "nom_officiel,adresse,commune,latitude,longitude,departement,type_musee,themes\n")
		fmt.Fprint(rsp, "Musée Réattu,10 rue du Grand Prieuré,Arles,\"43,6787\",\"4,6276\",13,beaux-arts,photographie\n")
		fmt.Fprint(rsp, "Musée lointain,,Fort-de-France,14.6,-61.05,972,,\n")
		fmt.Fprint(rsp, "Musée sans position,,Aix,,,13,,\n")
	}))

	defer srv.Close()

	d := *Datasets["musees"]
	d.URL = srv.URL

	rows, err := Fetch(context.Background(), sources.NewClient(nil), &d, "13")

	if err != nil {
		t.Fatalf("Failed to fetch dataset, %v", err)
	}

	if refine != "13" {
		t.Fatalf("Expected department refinement, got '%s'", refine)
	}

	rows = FilterByDepartment(rows, "13")

	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows for department 13, got %d", len(rows))
	}

	now := time.Unix(1700000000, 0)

	p, err := Convert(rows[0], &d, now)

	if err != nil {
		t.Fatalf("Failed to convert row, %v", err)
	}

	if p.Name != "Musée Réattu" || p.City != "Arles" || p.Category != category.Culture || p.Source != "datagouv_musees" {
		t.Fatalf("Unexpected record %v", p)
	}

	if p.Location.Latitude != 43.6787 || p.Location.Longitude != 4.6276 {
		t.Fatalf("Expected comma decimals to be parsed, got %v", p.Location)
	}

	if p.Extras["museum_type"] != "beaux-arts" || p.Extras["collection"] != "photographie" {
		t.Fatalf("Unexpected extras %v", p.Extras)
	}

	if p.CreatedAt.Unix() != 1700000000 {
		t.Fatalf("Unexpected createdAt %v", p.CreatedAt)
	}

	_, err = Convert(rows[1], &d, now)

	if !errors.Is(err, poi.ErrInvalidLocation) {
		t.Fatalf("Expected missing coordinates to be rejected, got %v", err)
	}
}

func TestImport(t *testing.T) {

	mux := http.NewServeMux()

	mux.HandleFunc("/musees", func(rsp http.ResponseWriter, req *http.Request) {
		fmt.Fprint(rsp, `[
			{"nom_officiel": "Musée Granet", "commune": "Aix-en-Provence", "latitude": 43.5254, "longitude": 5.4526, "departement": "13"},
			{"nom_officiel": "Musée du Louvre", "commune": "Paris", "latitude": 48.8606, "longitude": 2.3376, "departement": "75"},
			{"nom_officiel": "Musée sans position", "departement": "13"}
		]`)
	})

	mux.HandleFunc("/monuments", func(rsp http.ResponseWriter, req *http.Request) {
		http.Error(rsp, "gone", http.StatusGone)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	musees := *Datasets["musees"]
	musees.URL = srv.URL + "/musees"

	monuments := *Datasets["monuments"]
	monuments.URL = srv.URL + "/monuments"

	records, stats, err := Import(context.Background(), sources.NewClient(nil), []*Dataset{&monuments, &musees}, "13", time.Now())

	if err == nil {
		t.Fatalf("Expected the unavailable dataset to be reported")
	}

	if len(records) != 1 || records[0].Name != "Musée Granet" {
		t.Fatalf("Unexpected records %v", records)
	}

	if stats.Requests != 2 || stats.Fetched != 2 || stats.Converted != 1 || stats.Invalid != 1 {
		t.Fatalf("Unexpected stats %+v", stats)
	}
}
