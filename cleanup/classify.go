package cleanup

import (
	"fmt"
	"strings"

	"github.com/allspots/go-poi-import/category"
	"github.com/allspots/go-poi-import/normalize"
)

// ViewpointLabel is the name given to placeholder records describing a viewpoint.
const ViewpointLabel = "Point de vue"

var placeholder_names = map[string]bool{
	"poi sans nom":                 true,
	"point d interet poi sans nom": true,
	"point dinteret poi sans nom":  true,
	"point interet poi sans nom":   true,
	"sans nom":                     true,
	"spot":                         true,
	"poi":                          true,
	"unknown":                      true,
	"unnamed":                      true,
}

var generic_names = map[string]bool{
	"autre":                        true,
	"other":                        true,
	"poi":                          true,
	"spot":                         true,
	"sans nom":                     true,
	"poi sans nom":                 true,
	"point d interet poi sans nom": true,
	"point dinteret poi sans nom":  true,
	"point interet poi sans nom":   true,
	"point d interet":              true,
	"point interet":                true,
	"unknown":                      true,
	"unnamed":                      true,
	"":                             true,
}

var generic_categories = map[string]bool{
	"autre": true,
	"other": true,
}

var generic_sub_categories = map[string]bool{
	"autre":           true,
	"other":           true,
	"poi":             true,
	"point d interet": true,
	"point interet":   true,
}

// IsPlaceholderName reports whether 'name' is empty or one of the placeholder names
// written by the importers.
func IsPlaceholderName(name any) bool {

	n := normalize.Text(name)

	if n == "" || placeholder_names[n] {
		return true
	}

	if strings.Contains(n, "poi sans nom") {
		return true
	}

	return strings.Contains(n, "point d interet") && strings.Contains(n, "sans nom")
}

// ReplacementName derives a name for a placeholder record from its description,
// sub-category or category, in that order.
func ReplacementName(fields map[string]any) string {

	if strings.Contains(normalize.Text(fields["description"]), "point de vue") {
		return ViewpointLabel
	}

	sub := category.SubLabel(Value(fields, "categoryItem", "subCategory"))

	if sub != "" {
		return sub
	}

	return category.Labels.Map(Value(fields, "categoryGroup", "category")).Label()
}

// IsGenericSpot reports whether a record has a generic name, category or sub-category
// and should be deleted.
func IsGenericSpot(fields map[string]any) bool {

	name := normalize.Text(fields["name"])

	if generic_names[name] || strings.Contains(name, "poi sans nom") {
		return true
	}

	if generic_categories[normalize.Text(Value(fields, "categoryGroup", "category"))] {
		return true
	}

	return generic_sub_categories[normalize.Text(Value(fields, "categoryItem", "subCategory"))]
}

// Value returns the first non-empty string form of 'keys' in 'fields'.
func Value(fields map[string]any, keys ...string) string {

	for _, k := range keys {

		v, ok := fields[k]

		if !ok || v == nil {
			continue
		}

		s := strings.TrimSpace(fmt.Sprintf("%v", v))

		if s != "" {
			return s
		}
	}

	return ""
}
