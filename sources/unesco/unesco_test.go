package unesco

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/sources"
	"github.com/tidwall/gjson"
)

const list_fixture = `{"features": [
{"properties": {"id": "600", "name_en": "Paris, Banks of the Seine", "category": "Cultural", "states_name_en": "France", "short_description": "From the Louvre to the Eiffel Tower", "city": "Paris"}, "geometry": {"coordinates": [2.3, 48.85]}},
{"properties": {"id": "600", "name_en": "Duplicate", "category": "Cultural", "states_name_en": "France"}, "geometry": {"coordinates": [2.3, 48.85]}},
{"properties": {"id": "1152", "name_en": "Pitons, cirques and remparts of Reunion Island", "category": "Natural", "states_name_en": "France", "latitude": "-21,08", "longitude": "55,47"}},
{"properties": {"id": "773", "name_en": "Pyrénées - Mont Perdu", "category": "Mixed", "states_name_en": "France / Spain", "latitude": 42.68, "longitude": 0.03}},
{"properties": {"id": "1", "name_en": "Galápagos Islands", "category": "Natural", "states_name_en": "Ecuador", "latitude": -0.68, "longitude": -90.5}},
{"properties": {"id": "2", "name_en": "No coordinates", "states_name_en": "France"}}
]}`

func TestConvertList(t *testing.T) {

	pois := ConvertList(gjson.Parse(list_fixture), &ConvertOptions{Countries: []string{"France"}})

	if len(pois) != 3 {
		t.Fatalf("Expected 3 sites, got %d", len(pois))
	}

	seine := pois[0]

	if seine.UnescoId != "600" || seine.Category != category.Histoire || seine.City != "Paris" || seine.Country != "France" {
		t.Fatalf("Unexpected record %v", seine)
	}

	if seine.Website != "https://whc.unesco.org/en/list/600" || seine.Source != "unesco" {
		t.Fatalf("Unexpected website or source %v", seine)
	}

	reunion := pois[1]

	if reunion.Category != category.Nature || reunion.Location.Latitude != -21.08 || reunion.City != DefaultCity {
		t.Fatalf("Unexpected record %v", reunion)
	}

	pyrenees := pois[2]

	if pyrenees.UnescoCategory != "mixed" || pyrenees.Category != category.Histoire || pyrenees.Country != "France, Spain" {
		t.Fatalf("Unexpected record %v", pyrenees)
	}

	natural := ConvertList(gjson.Parse(list_fixture), &ConvertOptions{Countries: []string{"France"}, Category: category.Nature})

	if len(natural) != 1 || natural[0].UnescoId != "1152" {
		t.Fatalf("Expected category filter to keep 1 site")
	}

	limited := ConvertList(gjson.Parse(list_fixture), &ConvertOptions{Limit: 2})

	if len(limited) != 2 {
		t.Fatalf("Expected limit to be applied")
	}
}

func TestParsePoint(t *testing.T) {

	lat, lng, ok := ParsePoint("Point(2.2945 48.8584)")

	if !ok || lat != 48.8584 || lng != 2.2945 {
		t.Fatalf("Unexpected point %f %f", lat, lng)
	}

	for _, v := range []string{"", "Point(2.2)", "POLYGON((1 2))", "Point(a b)"} {

		_, _, ok := ParsePoint(v)

		if ok {
			t.Fatalf("Expected %s to be rejected", v)
		}
	}
}

func TestFetchFallsBackToWikidata(t *testing.T) {

	unavailable := httptest.NewServer(http.HandlerFunc(func(rsp http.ResponseWriter, req *http.Request) {
		http.Error(rsp, "forbidden", http.StatusForbidden)
	}))

	defer unavailable.Close()

	wikidata := httptest.NewServer(http.HandlerFunc(func(rsp http.ResponseWriter, req *http.Request) {

		if req.URL.Query().Get("query") == "" {
			t.Errorf("Missing SPARQL query")
		}

		fmt.Fprint(rsp, `{"results": {"bindings": [
			{"itemLabel": {"value": "Mont-Saint-Michel"}, "coord": {"value": "Point(-1.5114 48.6361)"}, "unescoId": {"value": "80"}, "heritageLabel": {"value": "site du patrimoine mondial"}},
			{"itemLabel": {"value": "Mont-Saint-Michel bis"}, "coord": {"value": "Point(-1.5114 48.6361)"}, "unescoId": {"value": "80"}},
			{"itemLabel": {"value": "Sans coordonnées"}}
		]}}`)
	}))

	defer wikidata.Close()

	c := NewClient(&ClientOptions{
		Endpoints:        []string{unavailable.URL},
		WikidataEndpoint: wikidata.URL,
		Client:           sources.NewClient(nil),
	})

	pois, provider, err := c.Fetch(context.Background(), &ConvertOptions{})

	if err != nil {
		t.Fatalf("Failed to fetch sites, %v", err)
	}

	if provider != ProviderWikidata {
		t.Fatalf("Expected Wikidata provider, got %s", provider)
	}

	if len(pois) != 1 || pois[0].Name != "Mont-Saint-Michel" || pois[0].UnescoId != "80" || pois[0].Location.Longitude != -1.5114 {
		t.Fatalf("Unexpected records %v", pois)
	}
}
