// Package geocode resolves place predictions, place details and reverse
// geocodes through a maps provider.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"medcart/models"
)

var (
	ErrNotFound        = errors.New("no results")
	ErrNotConfigured   = errors.New("maps provider not configured")
	ErrUnknownProvider = errors.New("unknown maps provider")
)

type Provider interface {
	Autocomplete(ctx context.Context, input string) ([]models.MapsPrediction, error)
	Details(ctx context.Context, placeID string) (models.GeocodedAddress, error)
	Reverse(ctx context.Context, lat, lng float64) (models.GeocodedAddress, error)
}

const (
	ProviderGoogle = "google"
	ProviderOla    = "ola"
)

// New builds the provider named by kind.
func New(kind, googleKey, olaKey string) (Provider, error) {
	switch strings.ToLower(kind) {
	case ProviderGoogle, "":
		if googleKey == "" {
			return nil, fmt.Errorf("google: %w", ErrNotConfigured)
		}
		return NewGoogle(googleKey)
	case ProviderOla:
		if olaKey == "" {
			return nil, fmt.Errorf("ola: %w", ErrNotConfigured)
		}
		return NewOla(olaKey, ""), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, kind)
	}
}

// component is a provider-neutral address component.
type component struct {
	name  string
	types []string
}

// fromComponents fills city, state, postal code and the first address line
// from address components.
func fromComponents(formatted string, comps []component) models.GeocodedAddress {
	addr := models.GeocodedAddress{FormattedAddress: formatted}

	var streetNumber, route, sublocality string
	for _, c := range comps {
		for _, t := range c.types {
			switch t {
			case "street_number":
				streetNumber = c.name
			case "route":
				route = c.name
			case "sublocality", "sublocality_level_1":
				if sublocality == "" {
					sublocality = c.name
				}
			case "locality":
				addr.City = c.name
			case "administrative_area_level_2":
				if addr.City == "" {
					addr.City = c.name
				}
			case "administrative_area_level_1":
				addr.State = c.name
			case "postal_code":
				addr.PostalCode = c.name
			}
		}
	}

	line := strings.TrimSpace(strings.Join(nonEmpty(streetNumber, route, sublocality), ", "))
	if line == "" {
		line = formatted
	}
	addr.AddressLine1 = line
	return addr
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
