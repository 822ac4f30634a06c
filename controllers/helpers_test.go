package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"medcart/middleware"
	"medcart/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser stands in for AuthMiddleware.
func asUser(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, id)
		c.Next()
	}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

type stubOrders struct {
	create func(userID string, req models.CreateOrderRequest) (*models.Order, error)
}

func (s *stubOrders) Create(_ context.Context, userID string, req models.CreateOrderRequest) (*models.Order, error) {
	return s.create(userID, req)
}

func (s *stubOrders) Get(context.Context, string, string) (*models.Order, error) {
	return &models.Order{ID: "order-1"}, nil
}

type stubPayments struct {
	session  func(req models.GatewaySessionRequest) (*models.GatewaySession, error)
	callback func(cb models.PaymentCallback) (*models.PaymentCallbackResponse, error)
}

func (s *stubPayments) CreateSession(_ context.Context, _ string, req models.GatewaySessionRequest) (*models.GatewaySession, error) {
	return s.session(req)
}

func (s *stubPayments) HandleCallback(_ context.Context, _ string, cb models.PaymentCallback) (*models.PaymentCallbackResponse, error) {
	return s.callback(cb)
}

type stubCart struct {
	items   []models.CartItem
	cleared bool
	removed string
}

func (s *stubCart) List(context.Context, string) ([]models.CartItem, error) {
	return s.items, nil
}

func (s *stubCart) Add(_ context.Context, _ string, req models.AddToCartRequest) (*models.CartItem, error) {
	item := models.CartItem{ID: "line-1", ProductID: req.ProductID, Quantity: req.Quantity}
	s.items = append(s.items, item)
	return &item, nil
}

func (s *stubCart) UpdateQuantity(_ context.Context, _ string, id string, quantity int) (*models.CartItem, error) {
	return &models.CartItem{ID: id, Quantity: quantity}, nil
}

func (s *stubCart) Remove(_ context.Context, _ string, id string) error {
	s.removed = id
	return nil
}

func (s *stubCart) Clear(context.Context, string) error {
	s.cleared = true
	s.items = nil
	return nil
}

type stubMaps struct {
	predictions []models.MapsPrediction
	lastQuery   string
}

func (s *stubMaps) Autocomplete(_ context.Context, query string) ([]models.MapsPrediction, error) {
	s.lastQuery = query
	return s.predictions, nil
}

func (s *stubMaps) Details(_ context.Context, placeID string) (*models.GeocodedAddress, error) {
	return &models.GeocodedAddress{FormattedAddress: placeID, City: "Pune", PostalCode: "411001"}, nil
}

func (s *stubMaps) Reverse(_ context.Context, lat, lng float64) (*models.GeocodedAddress, error) {
	return &models.GeocodedAddress{City: "Pune", Latitude: lat, Longitude: lng}, nil
}
