// Package category maps the free-form category vocabularies of external sources onto the
// fixed set of application categories.
package category

import (
	"errors"
	"fmt"

	"github.com/allspots/go-poi-import/normalize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Category string

const (
	Culture             Category = "culture"
	Nature              Category = "nature"
	Histoire            Category = "histoire"
	ExperienceGustative Category = "experienceGustative"
	Activites           Category = "activites"
)

// All lists the application categories in their canonical order.
var All = []Category{
	Culture,
	Nature,
	ExperienceGustative,
	Histoire,
	Activites,
}

var ErrUnknownCategory = errors.New("Unknown category")

func (c Category) String() string {
	return string(c)
}

// Label returns the human readable label for 'c'.
func (c Category) Label() string {

	switch c {
	case Nature:
		return "Nature"
	case Histoire:
		return "Histoire"
	case ExperienceGustative:
		return "Expérience gustative"
	case Activites:
		return "Activités"
	default:
		return "Culture"
	}
}

// Parse returns the Category exactly matching 'v' (after normalization) or ErrUnknownCategory.
// It is meant for validating user input before any work starts.
func Parse(v string) (Category, error) {

	n := normalize.Text(v)

	for _, c := range All {

		if normalize.Text(string(c)) == n {
			return c, nil
		}
	}

	return "", fmt.Errorf("%w '%s'", ErrUnknownCategory, v)
}

// Mapper translates a source vocabulary to application categories. Lookups are exact
// matches on normalized keys; anything else maps to Default.
type Mapper struct {
	Table   map[string]Category
	Default Category
}

// NewMapper returns a Mapper whose table keys are normalized.
func NewMapper(table map[string]Category, default_category Category) *Mapper {

	normalized := make(map[string]Category, len(table))

	for k, v := range table {
		normalized[normalize.Text(k)] = v
	}

	return &Mapper{
		Table:   normalized,
		Default: default_category,
	}
}

func (m *Mapper) Map(raw string) Category {

	c, ok := m.Table[normalize.Text(raw)]

	if !ok {
		return m.Default
	}

	return c
}

// Labels maps the category strings found in existing records, including their legacy
// spellings, to application categories.
var Labels = NewMapper(map[string]Category{
	"culture":              Culture,
	"nature":               Nature,
	"histoire":             Histoire,
	"experienceGustative":  ExperienceGustative,
	"experience gustative": ExperienceGustative,
	"experience_gustative": ExperienceGustative,
	"activites":            Activites,
	"activites plein air":  Activites,
}, Culture)

// Activities maps outdoor route activities to application categories.
var Activities = NewMapper(map[string]Category{
	"hiking":        Nature,
	"trail":         Activites,
	"cycling":       Activites,
	"mountain-bike": Activites,
	"climbing":      Activites,
	"via-ferrata":   Activites,
	"snowshoeing":   Nature,
	"skiing":        Activites,
	"running":       Activites,
	"walking":       Nature,
}, Activites)

// Heritage maps World Heritage site categories to application categories.
var Heritage = NewMapper(map[string]Category{
	"cultural": Histoire,
	"natural":  Nature,
	"mixed":    Histoire,
}, Histoire)

// ActivityNames returns the keys of the Activities mapper, used to validate flags.
func ActivityNames() []string {

	return []string{
		"hiking",
		"trail",
		"cycling",
		"mountain-bike",
		"climbing",
		"via-ferrata",
		"snowshoeing",
		"skiing",
		"running",
		"walking",
	}
}

var sub_labels = map[string]string{
	"scenic viewpoint":   "Point de vue",
	"viewpoint":          "Point de vue",
	"natural feature":    "Site naturel",
	"tourist attraction": "Attraction touristique",
	"art gallery":        "Galerie d'art",
	"sports complex":     "Complexe sportif",
	"hiking area":        "Zone de randonnée",
	"place of worship":   "Lieu de culte",
	"amusement park":     "Parc d'attractions",
}

// SubLabel returns a human readable label for a sub-category value such as an OSM tag or
// a Places type. Known values use a curated dictionary, others are title-cased.
func SubLabel(raw string) string {

	n := normalize.Text(raw)

	if n == "" {
		return ""
	}

	label, ok := sub_labels[n]

	if ok {
		return label
	}

	return cases.Title(language.French).String(n)
}
