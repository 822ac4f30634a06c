package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"medcart/models"
	"medcart/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func orderRouter(svc OrderService) *gin.Engine {
	r := gin.New()
	ctrl := NewOrderController(svc)
	r.POST("/api/orders", asUser("user-1"), ctrl.CreateOrder)
	r.GET("/api/orders/:id", asUser("user-1"), ctrl.GetOrder)
	return r
}

func validOrderBody() models.CreateOrderRequest {
	id := "prod-1"
	return models.CreateOrderRequest{
		Address:       models.Address{ID: "addr-1"},
		TotalAmount:   239,
		PaymentMethod: models.PaymentMethodCOD,
		Items:         []models.OrderLine{{ProductID: &id, Quantity: 2, Price: 100}},
	}
}

func TestCreateOrder(t *testing.T) {
	var gotUser string
	svc := &stubOrders{create: func(userID string, _ models.CreateOrderRequest) (*models.Order, error) {
		gotUser = userID
		return &models.Order{ID: "order-9"}, nil
	}}

	w := doJSON(t, orderRouter(svc), http.MethodPost, "/api/orders", validOrderBody())

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "order-9", body["orderId"])
	assert.Equal(t, "user-1", gotUser)
}

func TestCreateOrder_AmountMismatch(t *testing.T) {
	svc := &stubOrders{create: func(string, models.CreateOrderRequest) (*models.Order, error) {
		return nil, fmt.Errorf("pricing: %w", services.ErrAmountMismatch)
	}}

	w := doJSON(t, orderRouter(svc), http.MethodPost, "/api/orders", validOrderBody())

	assert.Equal(t, http.StatusConflict, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Order amount mismatch", body["message"])
}

func TestCreateOrder_ValidationErrors(t *testing.T) {
	svc := &stubOrders{create: func(string, models.CreateOrderRequest) (*models.Order, error) {
		return nil, &services.ValidationError{Fields: map[string]string{"postalCode": "Postal code must be 6 digits"}}
	}}

	w := doJSON(t, orderRouter(svc), http.MethodPost, "/api/orders", validOrderBody())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Validation failed", body["message"])
	assert.Equal(t, map[string]interface{}{"postalCode": "Postal code must be 6 digits"}, body["errors"])
}

func TestCreateOrder_RejectsMalformedBody(t *testing.T) {
	svc := &stubOrders{create: func(string, models.CreateOrderRequest) (*models.Order, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}}
	req := validOrderBody()
	req.Items = nil

	w := doJSON(t, orderRouter(svc), http.MethodPost, "/api/orders", req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOrder_InternalErrorHidesDetail(t *testing.T) {
	svc := &stubOrders{create: func(string, models.CreateOrderRequest) (*models.Order, error) {
		return nil, fmt.Errorf("connection refused")
	}}

	w := doJSON(t, orderRouter(svc), http.MethodPost, "/api/orders", validOrderBody())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Internal server error", body["message"])
	assert.NotContains(t, w.Body.String(), "connection refused")
}
