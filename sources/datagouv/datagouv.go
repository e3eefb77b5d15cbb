// Package datagouv fetches French open-data datasets (protected monuments, museums,
// sports equipment) and converts their rows into POI records.
package datagouv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/fields"
	"github.com/allspots/go-poi-import/sources"
	"github.com/sfomuseum/go-csvdict"
	"github.com/tidwall/gjson"
)

var ErrUnknownDataset = errors.New("Unknown dataset")

// AllDatasets selects every dataset in Datasets.
const AllDatasets = "all"

// Dataset describes one open-data export and the fields its rows are read from.
type Dataset struct {
	Name             string
	URL              string
	Category         category.Category
	NamePaths        fields.Paths
	DescriptionPaths fields.Paths
	CityPaths        fields.Paths
	Coordinates      *fields.Coordinates
	// Extras maps POI extra properties to the row fields they are copied from.
	Extras map[string]string
}

// Source is the value of the "source" property of records converted from 'd'.
func (d *Dataset) Source() string {
	return fmt.Sprintf("datagouv_%s", d.Name)
}

var coordinates = &fields.Coordinates{
	Pairs: []fields.Pair{
		{Lat: "latitude", Lng: "longitude"},
		{Lat: "coordonnees.lat", Lng: "coordonnees.lon"},
		{Lat: "geolocalisation.lat", Lng: "geolocalisation.lon"},
		{Lat: "lat", Lng: "lon"},
	},
}

var Datasets = map[string]*Dataset{
	"monuments": {
		Name:             "monuments",
		URL:              "https://data.culture.gouv.fr/api/explore/v2.1/catalog/datasets/liste-des-immeubles-proteges-au-titre-des-monuments-historiques/exports/json",
		Category:         category.Histoire,
		NamePaths:        fields.Paths{"tico", "nom", "titre"},
		DescriptionPaths: fields.Paths{"ppro", "adresse", "adresse_complete"},
		CityPaths:        fields.Paths{"commune", "ville"},
		Coordinates:      coordinates,
		Extras: map[string]string{
			"protection_type":   "protection",
			"historical_period": "siecle",
		},
	},
	"musees": {
		Name:             "musees",
		URL:              "https://data.culture.gouv.fr/api/explore/v2.1/catalog/datasets/liste-et-localisation-des-musees-de-france/exports/json",
		Category:         category.Culture,
		NamePaths:        fields.Paths{"nom_officiel", "nom", "titre"},
		DescriptionPaths: fields.Paths{"adresse", "adresse_complete"},
		CityPaths:        fields.Paths{"commune", "ville"},
		Coordinates:      coordinates,
		Extras: map[string]string{
			"museum_type": "type_musee",
			"collection":  "themes",
		},
	},
	"equipements": {
		Name:             "equipements",
		URL:              "https://www.data.gouv.fr/fr/datasets/r/0d8f0f0e-4d5f-4f7e-8c1b-5f3f9e4e3f5e",
		Category:         category.Activites,
		NamePaths:        fields.Paths{"nom", "titre"},
		DescriptionPaths: fields.Paths{"type", "adresse", "adresse_complete"},
		CityPaths:        fields.Paths{"commune", "ville"},
		Coordinates:      coordinates,
	},
}

// Names returns the dataset names, sorted.
func Names() []string {

	names := make([]string, 0, len(Datasets))

	for n := range Datasets {
		names = append(names, n)
	}

	sort.Strings(names)
	return names
}

// Select returns the datasets named by 'name', which may be AllDatasets.
func Select(name string) ([]*Dataset, error) {

	if name == AllDatasets {

		datasets := make([]*Dataset, 0, len(Datasets))

		for _, n := range Names() {
			datasets = append(datasets, Datasets[n])
		}

		return datasets, nil
	}

	d, ok := Datasets[name]

	if !ok {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownDataset, name)
	}

	return []*Dataset{d}, nil
}

// Fetch downloads the rows of 'd', optionally refined by department. JSON exports may be
// arrays, OpenDataSoft "records[].fields" envelopes or "results" envelopes; CSV exports are
// read with a header row.
func Fetch(ctx context.Context, client *sources.Client, d *Dataset, department string) ([]gjson.Result, error) {

	params := url.Values{}

	if department != "" {
		params.Set("refine.departement", department)
	}

	body, err := client.Get(ctx, d.URL, params, nil)

	if err != nil {
		return nil, fmt.Errorf("Failed to fetch %s dataset, %w", d.Name, err)
	}

	return Decode(body)
}

// Decode returns the rows of a dataset export.
func Decode(body []byte) ([]gjson.Result, error) {

	trimmed := bytes.TrimSpace(body)

	if len(trimmed) == 0 {
		return []gjson.Result{}, nil
	}

	if gjson.ValidBytes(trimmed) {
		return decodeJSON(gjson.ParseBytes(trimmed)), nil
	}

	return decodeCSV(trimmed)
}

func decodeJSON(rsp gjson.Result) []gjson.Result {

	if rsp.IsArray() {
		return rsp.Array()
	}

	if !rsp.IsObject() {
		return []gjson.Result{}
	}

	records := rsp.Get("records")

	if records.IsArray() {

		rows := make([]gjson.Result, 0)

		for _, r := range records.Array() {

			f := r.Get("fields")

			if f.IsObject() {
				rows = append(rows, f)
			} else {
				rows = append(rows, r)
			}
		}

		return rows
	}

	results := rsp.Get("results")

	if results.IsArray() {
		return results.Array()
	}

	return []gjson.Result{rsp}
}

func decodeCSV(body []byte) ([]gjson.Result, error) {

	rdr, err := csvdict.NewReader(bytes.NewReader(body))

	if err != nil {
		return nil, fmt.Errorf("Failed to create CSV reader, %w", err)
	}

	rows := make([]gjson.Result, 0)

	for {

		row, err := rdr.Read()

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("Failed to read CSV row, %w", err)
		}

		enc, err := json.Marshal(row)

		if err != nil {
			return nil, fmt.Errorf("Failed to encode CSV row, %w", err)
		}

		rows = append(rows, gjson.ParseBytes(enc))
	}

	return rows, nil
}

var department_paths = fields.Paths{
	"departement",
	"dep",
	"code_departement",
}

// FilterByDepartment keeps the rows whose department code equals 'department'. Codes are
// compared zero-padded to two characters.
func FilterByDepartment(rows []gjson.Result, department string) []gjson.Result {

	if department == "" {
		return rows
	}

	want := padCode(department)
	filtered := make([]gjson.Result, 0)

	for _, r := range rows {

		code, ok := department_paths.String(r)

		if ok && padCode(code) == want {
			filtered = append(filtered, r)
		}
	}

	return filtered
}

func padCode(code string) string {

	code = strings.ToUpper(strings.TrimSpace(code))

	if len(code) == 1 {
		code = "0" + code
	}

	return code
}
