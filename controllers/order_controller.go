package controllers

import (
	"context"
	"net/http"

	"medcart/middleware"
	"medcart/models"
	"medcart/utils"

	"github.com/gin-gonic/gin"
)

type OrderService interface {
	Create(ctx context.Context, userID string, req models.CreateOrderRequest) (*models.Order, error)
	Get(ctx context.Context, userID, id string) (*models.Order, error)
}

type OrderController struct {
	orders OrderService
}

func NewOrderController(orders OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// CreateOrder godoc
// @Summary Place an order
// @Description Re-prices the cart lines on the server and rejects a total that differs by more than one paisa
// @Tags Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.CreateOrderRequest true "Order"
// @Success 201 {object} models.CreateOrderResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/orders [post]
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	order, err := ctrl.orders.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.CreateOrderResponse{
		Success: true,
		OrderID: order.ID,
		Message: "Order created successfully",
	})
}

// GetOrder godoc
// @Summary Get one of my orders
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.Response{data=models.Order}
// @Failure 404 {object} models.ErrorResponse
// @Router /api/orders/{id} [get]
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	order, err := ctrl.orders.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Order retrieved successfully", order)
}
