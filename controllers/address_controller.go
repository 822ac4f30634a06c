package controllers

import (
	"context"
	"net/http"

	"medcart/middleware"
	"medcart/models"

	"github.com/gin-gonic/gin"
)

type AddressService interface {
	List(ctx context.Context, userID string) ([]models.Address, error)
	Create(ctx context.Context, userID string, req models.AddressRequest) (*models.Address, error)
	Update(ctx context.Context, userID, id string, req models.AddressRequest) (*models.Address, error)
	Delete(ctx context.Context, userID, id string) error
}

type AddressController struct {
	addresses AddressService
}

func NewAddressController(addresses AddressService) *AddressController {
	return &AddressController{addresses: addresses}
}

// ListAddresses godoc
// @Summary List saved addresses
// @Tags Account
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.AddressListResponse
// @Router /api/account/address [get]
func (ctrl *AddressController) ListAddresses(c *gin.Context) {
	addresses, err := ctrl.addresses.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AddressListResponse{Addresses: addresses})
}

// CreateAddress godoc
// @Summary Save a delivery address
// @Tags Account
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.AddressRequest true "Address"
// @Success 201 {object} models.AddressResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/account/address [post]
func (ctrl *AddressController) CreateAddress(c *gin.Context) {
	var req models.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	address, err := ctrl.addresses.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.AddressResponse{Success: true, Address: *address})
}

// UpdateAddress godoc
// @Summary Update a saved address
// @Tags Account
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Address ID"
// @Param request body models.AddressRequest true "Address"
// @Success 200 {object} models.AddressResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/account/address/{id} [patch]
func (ctrl *AddressController) UpdateAddress(c *gin.Context) {
	var req models.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	address, err := ctrl.addresses.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AddressResponse{Success: true, Address: *address})
}

// DeleteAddress godoc
// @Summary Delete a saved address
// @Tags Account
// @Security BearerAuth
// @Produce json
// @Param id path string true "Address ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /api/account/address/{id} [delete]
func (ctrl *AddressController) DeleteAddress(c *gin.Context) {
	if err := ctrl.addresses.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
