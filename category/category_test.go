package category

import (
	"errors"
	"testing"
)

func TestLabelsMapper(t *testing.T) {

	tests := map[string]Category{
		"Culture":              Culture,
		"experienceGustative":  ExperienceGustative,
		"Expérience Gustative": ExperienceGustative,
		"experience_gustative": ExperienceGustative,
		"Activités plein air":  Activites,
		"something else":       Culture,
		"":                     Culture,
	}

	for input, expected := range tests {

		c := Labels.Map(input)

		if c != expected {
			t.Fatalf("Unexpected category for '%s': %s (expected %s)", input, c, expected)
		}
	}
}

func TestActivitiesMapper(t *testing.T) {

	if Activities.Map("hiking") != Nature {
		t.Fatalf("Expected hiking to map to nature")
	}

	if Activities.Map("via-ferrata") != Activites {
		t.Fatalf("Expected via-ferrata to map to activites")
	}

	if Activities.Map("paragliding") != Activites {
		t.Fatalf("Expected unknown activity to map to the default")
	}
}

func TestHeritageMapper(t *testing.T) {

	if Heritage.Map("Natural") != Nature {
		t.Fatalf("Expected natural to map to nature")
	}

	if Heritage.Map("mixed") != Histoire {
		t.Fatalf("Expected mixed to map to histoire")
	}
}

func TestParse(t *testing.T) {

	c, err := Parse("experienceGustative")

	if err != nil {
		t.Fatalf("Failed to parse category, %v", err)
	}

	if c != ExperienceGustative {
		t.Fatalf("Unexpected category %s", c)
	}

	_, err = Parse("shopping")

	if !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("Expected ErrUnknownCategory, got %v", err)
	}
}

func TestSubLabel(t *testing.T) {

	tests := map[string]string{
		"scenic_viewpoint": "Point de vue",
		"Place of worship": "Lieu de culte",
		"museum":           "Museum",
		"wine_cellar":      "Wine Cellar",
		"":                 "",
	}

	for input, expected := range tests {

		v := SubLabel(input)

		if v != expected {
			t.Fatalf("Unexpected label for '%s': '%s' (expected '%s')", input, v, expected)
		}
	}
}

func TestLabel(t *testing.T) {

	if ExperienceGustative.Label() != "Expérience gustative" {
		t.Fatalf("Unexpected label for experienceGustative")
	}

	if Category("bogus").Label() != "Culture" {
		t.Fatalf("Unexpected label for unknown category")
	}
}
