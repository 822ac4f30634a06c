package controllers

import (
	"context"
	"net/http"

	"medcart/middleware"
	"medcart/models"

	"github.com/gin-gonic/gin"
)

type CartService interface {
	List(ctx context.Context, userID string) ([]models.CartItem, error)
	Add(ctx context.Context, userID string, req models.AddToCartRequest) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, id string, quantity int) (*models.CartItem, error)
	Remove(ctx context.Context, userID, id string) error
	Clear(ctx context.Context, userID string) error
}

type CartController struct {
	cart CartService
}

func NewCartController(cart CartService) *CartController {
	return &CartController{cart: cart}
}

// GetCart godoc
// @Summary Get cart
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.CartResponse
// @Router /api/cart [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	items, err := ctrl.cart.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CartResponse{Items: items})
}

// AddToCart godoc
// @Summary Add item to cart
// @Description Adds a product or medicine; an existing line for the same item is incremented
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.AddToCartRequest true "Cart line"
// @Success 201 {object} models.CartItemResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/cart [post]
func (ctrl *CartController) AddToCart(c *gin.Context) {
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	item, err := ctrl.cart.Add(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.CartItemResponse{Success: true, Item: *item})
}

// UpdateCartItem godoc
// @Summary Set cart line quantity
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Cart item ID"
// @Param request body models.UpdateCartItemRequest true "Quantity"
// @Success 200 {object} models.CartItemResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/cart/{id} [put]
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	item, err := ctrl.cart.UpdateQuantity(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CartItemResponse{Success: true, Item: *item})
}

// RemoveCartItem godoc
// @Summary Remove cart line
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Param id path string true "Cart item ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /api/cart/{id} [delete]
func (ctrl *CartController) RemoveCartItem(c *gin.Context) {
	if err := ctrl.cart.Remove(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ClearCart godoc
// @Summary Clear cart
// @Description Removes every line; clearing an empty cart succeeds
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /api/cart [delete]
func (ctrl *CartController) ClearCart(c *gin.Context) {
	if err := ctrl.cart.Clear(c.Request.Context(), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
