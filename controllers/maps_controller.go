package controllers

import (
	"context"
	"net/http"
	"strconv"

	"medcart/models"
	"medcart/utils"

	"github.com/gin-gonic/gin"
)

type MapsService interface {
	Autocomplete(ctx context.Context, query string) ([]models.MapsPrediction, error)
	Details(ctx context.Context, placeID string) (*models.GeocodedAddress, error)
	Reverse(ctx context.Context, lat, lng float64) (*models.GeocodedAddress, error)
}

type MapsController struct {
	maps MapsService
}

func NewMapsController(maps MapsService) *MapsController {
	return &MapsController{maps: maps}
}

// Autocomplete godoc
// @Summary Address autocomplete
// @Description Queries shorter than three characters return no predictions
// @Tags Maps
// @Security BearerAuth
// @Produce json
// @Param q query string true "Search text"
// @Success 200 {object} models.AutocompleteResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /api/maps/autocomplete [get]
func (ctrl *MapsController) Autocomplete(c *gin.Context) {
	predictions, err := ctrl.maps.Autocomplete(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AutocompleteResponse{Predictions: predictions})
}

// PlaceDetails godoc
// @Summary Resolve a place id
// @Tags Maps
// @Security BearerAuth
// @Produce json
// @Param place_id query string true "Place ID"
// @Success 200 {object} models.GeocodeResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/maps/details [get]
func (ctrl *MapsController) PlaceDetails(c *gin.Context) {
	addr, err := ctrl.maps.Details(c.Request.Context(), c.Query("place_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.GeocodeResponse{Address: *addr})
}

// ReverseGeocode godoc
// @Summary Reverse geocode a coordinate
// @Tags Maps
// @Security BearerAuth
// @Produce json
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Success 200 {object} models.GeocodeResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/maps/reverse [get]
func (ctrl *MapsController) ReverseGeocode(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		utils.RespondError(c, http.StatusBadRequest, "lat and lng must be numbers", nil)
		return
	}

	addr, err := ctrl.maps.Reverse(c.Request.Context(), lat, lng)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.GeocodeResponse{Address: *addr})
}
