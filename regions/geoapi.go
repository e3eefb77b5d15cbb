package regions

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/allspots/go-poi-import/sources"
)

const GeoAPIEndpoint = "https://geo.api.gouv.fr"

// FallbackPoint is used for departments whose communes carry no usable centre.
var FallbackPoint = [2]float64{46.603354, 1.888334}

// Generate builds a department table from the French geographic API, using the centre of
// the most populated commune of each department as its reference point.
func Generate(ctx context.Context, client *sources.Client, endpoint string) (Table, error) {

	if endpoint == "" {
		endpoint = GeoAPIEndpoint
	}

	params := url.Values{}
	params.Set("format", "json")

	rsp, err := client.GetJSON(ctx, endpoint+"/departements", params, nil)

	if err != nil {
		return nil, fmt.Errorf("Failed to fetch departments, %w", err)
	}

	t := make(Table)

	for idx, r := range rsp.Array() {

		code := r.Get("code").String()

		if code == "" {
			continue
		}

		d := &Department{
			Code: code,
			Name: r.Get("nom").String(),
			Lat:  FallbackPoint[0],
			Lng:  FallbackPoint[1],
			Zone: zoneForCode(code),
		}

		commune_params := url.Values{}
		commune_params.Set("codeDepartement", code)
		commune_params.Set("fields", "code,nom,centre,population")
		commune_params.Set("format", "json")

		communes, err := client.GetJSON(ctx, endpoint+"/communes", commune_params, nil)

		if err != nil {
			slog.Warn("Failed to fetch communes, using fallback point", "department", code, "error", err)
		} else {

			best_population := int64(-1)

			for _, c := range communes.Array() {

				centre := c.Get("centre.coordinates").Array()
				population := c.Get("population").Int()

				if len(centre) == 2 && population >= best_population {
					best_population = population
					d.Lng = centre[0].Float()
					d.Lat = centre[1].Float()
				}
			}
		}

		t[code] = d

		if (idx+1)%20 == 0 {
			slog.Info("Processed departments", "count", idx+1)
		}
	}

	return t, nil
}
