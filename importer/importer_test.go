package importer

import (
	"errors"
	"testing"
	"time"

	"github.com/allspots/go-poi-import/poi"
	"github.com/allspots/go-poi-import/store"
	"github.com/tidwall/gjson"
)

func TestPrepare(t *testing.T) {

	body := `[
{"name": "Tour Eiffel", "source": "openstreetmap", "osmId": 5013364, "lat": 48.8584, "lng": 2.2945, "image": "File:Tour Eiffel.jpg"},
{"name": "Tour Eiffel bis", "source": "openstreetmap", "osmId": 5013364, "lat": 48.8584, "lng": 2.2945},
{"name": "Café de Flore", "source": "google_places", "place_id": "ChIJ-abc", "location": {"_latitude": 48.854, "_longitude": 2.3326}, "isPublic": false, "createdAt": {"_seconds": 1700000000, "_nanoseconds": 0}},
{"name": "Nowhere", "source": "manual"},
{"name": "Off the map", "source": "manual", "lat": 200, "lng": 500},
"not a record",
{"name": "Lac d'Annecy", "source": "datagouv_culture", "category": "nature", "location": {"latitude": 45.86, "longitude": 6.17}, "updatedAt": "yesterday"}
]`

	records := gjson.Parse(body).Array()

	rsp := Prepare(records)

	if rsp.Skipped != 3 || rsp.Duplicates != 1 {
		t.Fatalf("Expected 3 skipped and 1 duplicate, got %d and %d", rsp.Skipped, rsp.Duplicates)
	}

	if len(rsp.Mutations) != 3 {
		t.Fatalf("Expected 3 mutations, got %d", len(rsp.Mutations))
	}

	ids := []string{
		"osm_5013364",
		"gplaces_chij_abc",
		"datagouv_culture_nature_lac_d_annecy_45.860000_6.170000",
	}

	for i, id := range ids {

		m := rsp.Mutations[i]

		if m.Id != id {
			t.Fatalf("Expected id %s at position %d, got %s", id, i, m.Id)
		}

		if m.Type != store.Upsert {
			t.Fatalf("Expected upsert mutation")
		}

		if m.Fields["dedupeKey"] != id {
			t.Fatalf("Expected dedupeKey to equal id")
		}

		if !store.IsServerTimestamp(m.Fields["importedAt"]) {
			t.Fatalf("Expected importedAt to be server assigned")
		}
	}

	eiffel := rsp.Mutations[0].Fields

	if eiffel["name"] != "Tour Eiffel" {
		t.Fatalf("Expected first record to win, got %v", eiffel["name"])
	}

	images := eiffel["images"].([]string)

	if len(images) != 1 || images[0] != "https://commons.wikimedia.org/wiki/Special:FilePath/Tour_Eiffel.jpg" {
		t.Fatalf("Unexpected images %v", images)
	}

	if eiffel["isPublic"] != true || eiffel["isValidated"] != true {
		t.Fatalf("Expected flags to default to true")
	}

	pt := eiffel["location"].(store.GeoPoint)

	if pt.Latitude != 48.8584 || eiffel["lng"] != 2.2945 {
		t.Fatalf("Unexpected location %v", pt)
	}

	flore := rsp.Mutations[1].Fields

	if flore["isPublic"] != false {
		t.Fatalf("Expected explicit isPublic to be kept")
	}

	created, ok := flore["createdAt"].(time.Time)

	if !ok || created.Unix() != 1700000000 {
		t.Fatalf("Unexpected createdAt %v", flore["createdAt"])
	}

	if !store.IsServerTimestamp(flore["updatedAt"]) {
		t.Fatalf("Expected missing updatedAt to be server assigned")
	}

	if !store.IsServerTimestamp(rsp.Mutations[2].Fields["updatedAt"]) {
		t.Fatalf("Expected unparsable updatedAt to be server assigned")
	}
}

func TestPrepareRecordInvalidLocation(t *testing.T) {

	for _, body := range []string{
		`{"name": "Off the map", "source": "manual", "category": "culture", "lat": 200, "lng": 500}`,
		`{"name": "Too far east", "source": "manual", "location": {"latitude": 45.0, "longitude": 181.0}}`,
		`{"name": "Too far south", "source": "manual", "location": {"_latitude": -90.5, "_longitude": 2.0}}`,
	} {

		id, doc, err := PrepareRecord(gjson.Parse(body))

		if !errors.Is(err, poi.ErrInvalidLocation) {
			t.Fatalf("Expected invalid location error for %s, got id=%s doc=%v err=%v", body, id, doc, err)
		}
	}

	_, _, err := PrepareRecord(gjson.Parse(`{"name": "Pôle Nord", "source": "manual", "lat": 90, "lng": -180}`))

	if err != nil {
		t.Fatalf("Failed to prepare record on the edge of the valid range, %v", err)
	}
}
