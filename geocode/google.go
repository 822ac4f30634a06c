package geocode

import (
	"context"
	"fmt"

	"medcart/models"

	"googlemaps.github.io/maps"
)

type Google struct {
	client *maps.Client
}

func NewGoogle(apiKey string) (*Google, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("google maps client: %w", err)
	}
	return &Google{client: client}, nil
}

func (g *Google) Autocomplete(ctx context.Context, input string) ([]models.MapsPrediction, error) {
	resp, err := g.client.PlaceAutocomplete(ctx, &maps.PlaceAutocompleteRequest{
		Input:      input,
		Components: map[maps.Component][]string{maps.ComponentCountry: {"in"}},
	})
	if err != nil {
		return nil, fmt.Errorf("google autocomplete: %w", err)
	}

	predictions := make([]models.MapsPrediction, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		predictions = append(predictions, models.MapsPrediction{
			Description: p.Description,
			PlaceID:     p.PlaceID,
		})
	}
	return predictions, nil
}

func (g *Google) Details(ctx context.Context, placeID string) (models.GeocodedAddress, error) {
	resp, err := g.client.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID: placeID,
		Fields: []maps.PlaceDetailsFieldMask{
			maps.PlaceDetailsFieldMaskAddressComponent,
			maps.PlaceDetailsFieldMaskFormattedAddress,
			maps.PlaceDetailsFieldMaskGeometry,
		},
	})
	if err != nil {
		return models.GeocodedAddress{}, fmt.Errorf("google place details: %w", err)
	}

	addr := fromComponents(resp.FormattedAddress, googleComponents(resp.AddressComponents))
	addr.Latitude = resp.Geometry.Location.Lat
	addr.Longitude = resp.Geometry.Location.Lng
	return addr, nil
}

func (g *Google) Reverse(ctx context.Context, lat, lng float64) (models.GeocodedAddress, error) {
	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: lat, Lng: lng},
	})
	if err != nil {
		return models.GeocodedAddress{}, fmt.Errorf("google reverse geocode: %w", err)
	}
	if len(results) == 0 {
		return models.GeocodedAddress{}, ErrNotFound
	}

	best := results[0]
	addr := fromComponents(best.FormattedAddress, googleComponents(best.AddressComponents))
	addr.Latitude = lat
	addr.Longitude = lng
	return addr, nil
}

func googleComponents(in []maps.AddressComponent) []component {
	out := make([]component, 0, len(in))
	for _, c := range in {
		out = append(out, component{name: c.LongName, types: c.Types})
	}
	return out
}
