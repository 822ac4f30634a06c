package models

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type PaginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

type PaginationLinks struct {
	Self string `json:"self"`
	Next string `json:"next,omitempty"`
	Prev string `json:"prev,omitempty"`
}

type HATEOASResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    interface{}     `json:"data"`
	Meta    PaginationMeta  `json:"meta"`
	Links   PaginationLinks `json:"links"`
}

type MapsPrediction struct {
	Description string `json:"description"`
	PlaceID     string `json:"place_id"`
}

type AutocompleteResponse struct {
	Predictions []MapsPrediction `json:"predictions"`
}

// GeocodedAddress is the address fragment resolved from a place id or coordinate.
type GeocodedAddress struct {
	FormattedAddress string  `json:"formattedAddress"`
	AddressLine1     string  `json:"addressLine1"`
	City             string  `json:"city"`
	State            string  `json:"state"`
	PostalCode       string  `json:"postalCode"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
}

type GeocodeResponse struct {
	Address GeocodedAddress `json:"address"`
}
