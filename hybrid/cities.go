package hybrid

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/allspots/go-poi-import/category"
)

// All selects every city or every category.
const All = "all"

var ErrUnknownCity = errors.New("Unknown city")

// City is one metropolitan area covered by the hybrid import.
type City struct {
	Name       string
	Department string
	Lat        float64
	Lng        float64
	Radius     int
	// UsePlaces enables Google Places searches for the city, capped at PlacesLimit
	// places per category.
	UsePlaces   bool
	PlacesLimit int
}

// Label is the capitalized city name.
func (c *City) Label() string {

	if c.Name == "" {
		return c.Name
	}

	return strings.ToUpper(c.Name[:1]) + c.Name[1:]
}

// MajorCities are the cities imported by default, in import order.
var MajorCities = []*City{
	{Name: "paris", Department: "75", Lat: 48.8566, Lng: 2.3522, Radius: 25000, UsePlaces: true, PlacesLimit: 50},
	{Name: "marseille", Department: "13", Lat: 43.2965, Lng: 5.3698, Radius: 20000, UsePlaces: true, PlacesLimit: 40},
	{Name: "lyon", Department: "69", Lat: 45.7640, Lng: 4.8357, Radius: 20000, UsePlaces: true, PlacesLimit: 40},
	{Name: "toulouse", Department: "31", Lat: 43.6047, Lng: 1.4442, Radius: 18000, UsePlaces: true, PlacesLimit: 30},
	{Name: "nice", Department: "06", Lat: 43.7102, Lng: 7.2620, Radius: 15000, UsePlaces: true, PlacesLimit: 30},
	{Name: "nantes", Department: "44", Lat: 47.2184, Lng: -1.5536, Radius: 15000},
	{Name: "strasbourg", Department: "67", Lat: 48.5734, Lng: 7.7521, Radius: 15000},
	{Name: "montpellier", Department: "34", Lat: 43.6108, Lng: 3.8767, Radius: 15000},
	{Name: "bordeaux", Department: "33", Lat: 44.8378, Lng: -0.5792, Radius: 18000, UsePlaces: true, PlacesLimit: 30},
	{Name: "lille", Department: "59", Lat: 50.6292, Lng: 3.0573, Radius: 15000},
}

// CityNames returns the names of MajorCities in import order.
func CityNames() []string {

	names := make([]string, len(MajorCities))

	for i, c := range MajorCities {
		names[i] = c.Name
	}

	return names
}

// SelectCities returns the cities named in 'names', in the order of MajorCities. An empty
// list or one containing All selects every city.
func SelectCities(names []string) ([]*City, error) {

	if len(names) == 0 || slices.Contains(names, All) {
		return MajorCities, nil
	}

	for _, n := range names {

		if !slices.Contains(CityNames(), strings.ToLower(n)) {
			return nil, fmt.Errorf("%w '%s'", ErrUnknownCity, n)
		}
	}

	cities := make([]*City, 0)

	for _, c := range MajorCities {

		if slices.ContainsFunc(names, func(n string) bool { return strings.EqualFold(n, c.Name) }) {
			cities = append(cities, c)
		}
	}

	return cities, nil
}

// SelectCategories parses 'names'. An empty list or one containing All selects every
// category.
func SelectCategories(names []string) ([]category.Category, error) {

	if len(names) == 0 || slices.Contains(names, All) {
		return category.All, nil
	}

	categories := make([]category.Category, 0, len(names))

	for _, n := range names {

		c, err := category.Parse(n)

		if err != nil {
			return nil, err
		}

		if !slices.Contains(categories, c) {
			categories = append(categories, c)
		}
	}

	return categories, nil
}
