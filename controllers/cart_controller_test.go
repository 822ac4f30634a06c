package controllers

import (
	"net/http"
	"testing"

	"medcart/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func cartRouter(svc CartService) *gin.Engine {
	r := gin.New()
	ctrl := NewCartController(svc)
	g := r.Group("/api/cart", asUser("user-1"))
	g.GET("", ctrl.GetCart)
	g.POST("", ctrl.AddToCart)
	g.DELETE("", ctrl.ClearCart)
	g.PUT("/:id", ctrl.UpdateCartItem)
	g.DELETE("/:id", ctrl.RemoveCartItem)
	return r
}

func TestCartEndpoints(t *testing.T) {
	svc := &stubCart{}
	r := cartRouter(svc)
	id := "prod-1"

	w := doJSON(t, r, http.MethodPost, "/api/cart", models.AddToCartRequest{ProductID: &id, Quantity: 2})
	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "line-1", body["item"].(map[string]interface{})["id"])

	w = doJSON(t, r, http.MethodGet, "/api/cart", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["items"], 1)

	w = doJSON(t, r, http.MethodPut, "/api/cart/line-1", models.UpdateCartItemRequest{Quantity: 5})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(5), decode(t, w)["item"].(map[string]interface{})["quantity"])

	w = doJSON(t, r, http.MethodDelete, "/api/cart/line-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "line-1", svc.removed)

	w = doJSON(t, r, http.MethodDelete, "/api/cart", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"success": true}, decode(t, w))
	assert.True(t, svc.cleared)
}

func TestCart_EmptyListIsArray(t *testing.T) {
	w := doJSON(t, cartRouter(&stubCart{items: []models.CartItem{}}), http.MethodGet, "/api/cart", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())
}

func TestCart_RejectsZeroQuantity(t *testing.T) {
	w := doJSON(t, cartRouter(&stubCart{}), http.MethodPut, "/api/cart/line-1", map[string]int{"quantity": 0})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
