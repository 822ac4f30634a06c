package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"medcart/geocode"
	"medcart/models"

	"golang.org/x/sync/singleflight"
)

const (
	MinAutocompleteLength = 3
	placeCacheTTL         = 24 * time.Hour
)

type MapsService struct {
	provider geocode.Provider
	cache    Cache
	inflight singleflight.Group
}

// NewMapsService builds the service; a nil provider makes every lookup fail
// with ErrMapsUnavailable.
func NewMapsService(provider geocode.Provider, cache Cache) *MapsService {
	return &MapsService{provider: provider, cache: cache}
}

// Autocomplete returns no predictions for queries shorter than three characters.
func (s *MapsService) Autocomplete(ctx context.Context, query string) ([]models.MapsPrediction, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinAutocompleteLength {
		return []models.MapsPrediction{}, nil
	}
	if s.provider == nil {
		return nil, ErrMapsUnavailable
	}
	return s.provider.Autocomplete(ctx, query)
}

func (s *MapsService) Details(ctx context.Context, placeID string) (*models.GeocodedAddress, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, invalid("place_id is required")
	}
	if s.provider == nil {
		return nil, ErrMapsUnavailable
	}

	return s.lookup(ctx, "place:"+placeID, func() (models.GeocodedAddress, error) {
		return s.provider.Details(ctx, placeID)
	})
}

func (s *MapsService) Reverse(ctx context.Context, lat, lng float64) (*models.GeocodedAddress, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, invalid("lat/lng out of range")
	}
	if s.provider == nil {
		return nil, ErrMapsUnavailable
	}

	key := fmt.Sprintf("rev:%.5f,%.5f", lat, lng)
	return s.lookup(ctx, key, func() (models.GeocodedAddress, error) {
		return s.provider.Reverse(ctx, lat, lng)
	})
}

// lookup serves key from the cache, coalescing concurrent misses into one
// provider call.
func (s *MapsService) lookup(ctx context.Context, key string, fetch func() (models.GeocodedAddress, error)) (*models.GeocodedAddress, error) {
	var cached models.GeocodedAddress
	if s.cache != nil && s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	v, err, _ := s.inflight.Do(key, func() (interface{}, error) {
		addr, err := fetch()
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			s.cache.Set(ctx, key, addr, placeCacheTTL)
		}
		return addr, nil
	})
	if err != nil {
		return nil, err
	}
	addr := v.(models.GeocodedAddress)
	return &addr, nil
}
