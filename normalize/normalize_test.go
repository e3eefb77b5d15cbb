package normalize

import (
	"testing"
)

func TestText(t *testing.T) {

	tests := map[string]string{
		"Café-du-Nord: Été":       "cafe du nord ete",
		"  POI   sans nom ":       "poi sans nom",
		"Point d'intérêt":         "point d interet",
		"Expérience_Gustative!!":  "experience gustative",
		"":                        "",
		"Musée d'Orsay (Paris 7)": "musee d orsay paris 7",
	}

	for input, expected := range tests {

		v := Text(input)

		if v != expected {
			t.Fatalf("Unexpected value for '%s': '%s' (expected '%s')", input, v, expected)
		}

		if Text(v) != v {
			t.Fatalf("Normalization of '%s' is not idempotent", input)
		}
	}
}

func TestTextNonString(t *testing.T) {

	if Text(nil) != "" {
		t.Fatalf("Expected empty string for nil")
	}

	if Text(42) != "42" {
		t.Fatalf("Unexpected value for integer input")
	}
}

func TestSlug(t *testing.T) {

	tests := map[string]string{
		"ChIJ-abc.123":         "chij_abc_123",
		"Château de Vincennes": "chateau_de_vincennes",
		"__spot__":             "spot",
		"experienceGustative":  "experiencegustative",
	}

	for input, expected := range tests {

		v := Slug(input)

		if v != expected {
			t.Fatalf("Unexpected slug for '%s': '%s' (expected '%s')", input, v, expected)
		}
	}
}
