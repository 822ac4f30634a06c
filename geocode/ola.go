package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"medcart/models"
)

const olaBaseURL = "https://api.olamaps.io"

// Ola talks to the Ola Maps places REST API, which mirrors the Google
// response shapes.
type Ola struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewOla(apiKey, baseURL string) *Ola {
	if baseURL == "" {
		baseURL = olaBaseURL
	}
	return &Ola{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type olaComponent struct {
	LongName string   `json:"long_name"`
	Types    []string `json:"types"`
}

type olaLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type olaResult struct {
	FormattedAddress  string         `json:"formatted_address"`
	AddressComponents []olaComponent `json:"address_components"`
	Geometry          struct {
		Location olaLocation `json:"location"`
	} `json:"geometry"`
}

func (o *Ola) Autocomplete(ctx context.Context, input string) ([]models.MapsPrediction, error) {
	var resp struct {
		Predictions []struct {
			Description string `json:"description"`
			PlaceID     string `json:"place_id"`
		} `json:"predictions"`
	}
	if err := o.get(ctx, "/places/v1/autocomplete", url.Values{"input": {input}}, &resp); err != nil {
		return nil, err
	}

	predictions := make([]models.MapsPrediction, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		predictions = append(predictions, models.MapsPrediction{Description: p.Description, PlaceID: p.PlaceID})
	}
	return predictions, nil
}

func (o *Ola) Details(ctx context.Context, placeID string) (models.GeocodedAddress, error) {
	var resp struct {
		Result olaResult `json:"result"`
	}
	if err := o.get(ctx, "/places/v1/details", url.Values{"place_id": {placeID}}, &resp); err != nil {
		return models.GeocodedAddress{}, err
	}
	if resp.Result.FormattedAddress == "" && len(resp.Result.AddressComponents) == 0 {
		return models.GeocodedAddress{}, ErrNotFound
	}

	addr := fromComponents(resp.Result.FormattedAddress, olaComponents(resp.Result.AddressComponents))
	addr.Latitude = resp.Result.Geometry.Location.Lat
	addr.Longitude = resp.Result.Geometry.Location.Lng
	return addr, nil
}

func (o *Ola) Reverse(ctx context.Context, lat, lng float64) (models.GeocodedAddress, error) {
	latlng := strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)

	var resp struct {
		Results []olaResult `json:"results"`
	}
	if err := o.get(ctx, "/places/v1/reverse-geocode", url.Values{"latlng": {latlng}}, &resp); err != nil {
		return models.GeocodedAddress{}, err
	}
	if len(resp.Results) == 0 {
		return models.GeocodedAddress{}, ErrNotFound
	}

	best := resp.Results[0]
	addr := fromComponents(best.FormattedAddress, olaComponents(best.AddressComponents))
	addr.Latitude = lat
	addr.Longitude = lng
	return addr, nil
}

func (o *Ola) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	query.Set("api_key", o.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ola maps: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ola maps: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ola maps: decode: %w", err)
	}
	return nil
}

func olaComponents(in []olaComponent) []component {
	out := make([]component, 0, len(in))
	for _, c := range in {
		out = append(out, component{name: c.LongName, types: c.Types})
	}
	return out
}
