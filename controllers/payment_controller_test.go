package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"medcart/models"
	"medcart/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paymentRouter(svc PaymentService) *gin.Engine {
	r := gin.New()
	ctrl := NewPaymentController(svc)
	r.POST("/api/payment/razorpay", asUser("user-1"), ctrl.CreateRazorpaySession)
	r.POST("/api/payment/callback", asUser("user-1"), ctrl.PaymentCallback)
	return r
}

func TestCreateRazorpaySession(t *testing.T) {
	svc := &stubPayments{session: func(req models.GatewaySessionRequest) (*models.GatewaySession, error) {
		return &models.GatewaySession{Key: "rzp_test", Amount: 23900, Currency: "INR", OrderID: "order_GW1"}, nil
	}}

	w := doJSON(t, paymentRouter(svc), http.MethodPost, "/api/payment/razorpay", models.GatewaySessionRequest{
		OrderID: "order-1", Amount: 239, Currency: "INR", PaymentMethod: models.PaymentMethodUPI,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "rzp_test", body["key"])
	assert.Equal(t, float64(23900), body["amount"])
	assert.Equal(t, "order_GW1", body["order_id"])
}

func TestCreateRazorpaySession_GatewayDown(t *testing.T) {
	svc := &stubPayments{session: func(models.GatewaySessionRequest) (*models.GatewaySession, error) {
		return nil, services.ErrGatewayUnavailable
	}}

	w := doJSON(t, paymentRouter(svc), http.MethodPost, "/api/payment/razorpay", models.GatewaySessionRequest{
		OrderID: "order-1", Amount: 239, PaymentMethod: models.PaymentMethodCard,
	})

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestPaymentCallback(t *testing.T) {
	var got models.PaymentCallback
	svc := &stubPayments{callback: func(cb models.PaymentCallback) (*models.PaymentCallbackResponse, error) {
		got = cb
		return &models.PaymentCallbackResponse{Success: true, OrderStatus: models.OrderStatusPaid}, nil
	}}

	w := doJSON(t, paymentRouter(svc), http.MethodPost, "/api/payment/callback", models.PaymentCallback{
		OrderID:           "order-1",
		ProviderPaymentID: "pay_1",
		Status:            models.PaymentStatusSuccess,
		Provider:          "razorpay",
		Metadata:          map[string]string{models.MetaSignature: "sig"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, models.OrderStatusPaid, body["orderStatus"])
	assert.Equal(t, "sig", got.Metadata[models.MetaSignature])
}

func TestPaymentCallback_ForwardsIdempotencyKey(t *testing.T) {
	var got models.PaymentCallback
	svc := &stubPayments{callback: func(cb models.PaymentCallback) (*models.PaymentCallbackResponse, error) {
		got = cb
		return &models.PaymentCallbackResponse{Success: true, OrderStatus: models.OrderStatusPaymentPending}, nil
	}}

	body := strings.NewReader(`{"orderId":"order-1","status":"CANCELLED"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/payment/callback", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(models.IdempotencyKeyHeader, "order-1:CANCELLED")
	w := httptest.NewRecorder()
	paymentRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "order-1:CANCELLED", got.IdempotencyKey)
}

func TestPaymentCallback_IdempotencyConflict(t *testing.T) {
	svc := &stubPayments{callback: func(models.PaymentCallback) (*models.PaymentCallbackResponse, error) {
		return nil, services.ErrIdempotencyConflict
	}}

	w := doJSON(t, paymentRouter(svc), http.MethodPost, "/api/payment/callback", models.PaymentCallback{
		OrderID: "order-1", Status: models.PaymentStatusFailed,
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPaymentCallback_BadSignature(t *testing.T) {
	svc := &stubPayments{callback: func(models.PaymentCallback) (*models.PaymentCallbackResponse, error) {
		return nil, services.ErrInvalidSignature
	}}

	w := doJSON(t, paymentRouter(svc), http.MethodPost, "/api/payment/callback", models.PaymentCallback{
		OrderID: "order-1", Status: models.PaymentStatusSuccess, Provider: "razorpay",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Payment verification failed", decode(t, w)["message"])
}

func TestPaymentCallback_UnknownStatus(t *testing.T) {
	svc := &stubPayments{callback: func(models.PaymentCallback) (*models.PaymentCallbackResponse, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}}

	w := doJSON(t, paymentRouter(svc), http.MethodPost, "/api/payment/callback", map[string]string{
		"orderId": "order-1", "status": "MAYBE",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
