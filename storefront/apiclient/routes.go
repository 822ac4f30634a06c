package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"medcart/models"
)

const IdempotencyKeyHeader = models.IdempotencyKeyHeader

func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var out models.LoginResponse
	if err := c.doEnvelope(ctx, http.MethodPost, "/auth/login", models.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.doEnvelope(ctx, http.MethodGet, "/auth/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type CatalogQuery struct {
	Kind   string
	Search string
	Page   int
	Limit  int
}

func (c *Client) Catalog(ctx context.Context, q CatalogQuery) ([]models.CatalogItem, error) {
	params := url.Values{}
	if q.Kind != "" {
		params.Set("kind", q.Kind)
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	path := "/api/catalog"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var out []models.CatalogItem
	if err := c.doEnvelope(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Cart(ctx context.Context) ([]models.CartItem, error) {
	var out models.CartResponse
	if err := c.do(ctx, http.MethodGet, "/api/cart", nil, &out, nil); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) AddToCart(ctx context.Context, req models.AddToCartRequest) (*models.CartItem, error) {
	var out models.CartItemResponse
	if err := c.do(ctx, http.MethodPost, "/api/cart", req, &out, nil); err != nil {
		return nil, err
	}
	return &out.Item, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, id string, quantity int) (*models.CartItem, error) {
	var out models.CartItemResponse
	req := models.UpdateCartItemRequest{Quantity: quantity}
	if err := c.do(ctx, http.MethodPut, "/api/cart/"+url.PathEscape(id), req, &out, nil); err != nil {
		return nil, err
	}
	return &out.Item, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/cart/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/cart", nil, nil, nil)
}

func (c *Client) Addresses(ctx context.Context) ([]models.Address, error) {
	var out models.AddressListResponse
	if err := c.do(ctx, http.MethodGet, "/api/account/address", nil, &out, nil); err != nil {
		return nil, err
	}
	return out.Addresses, nil
}

func (c *Client) CreateAddress(ctx context.Context, req models.AddressRequest) (*models.Address, error) {
	var out models.AddressResponse
	if err := c.do(ctx, http.MethodPost, "/api/account/address", req, &out, nil); err != nil {
		return nil, err
	}
	return &out.Address, nil
}

func (c *Client) UpdateAddress(ctx context.Context, id string, req models.AddressRequest) (*models.Address, error) {
	var out models.AddressResponse
	if err := c.do(ctx, http.MethodPatch, "/api/account/address/"+url.PathEscape(id), req, &out, nil); err != nil {
		return nil, err
	}
	return &out.Address, nil
}

func (c *Client) DeleteAddress(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/account/address/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) ValidateCoupon(ctx context.Context, code string, orderAmount float64) (*models.CouponValidateResponse, error) {
	var out models.CouponValidateResponse
	req := models.CouponValidateRequest{Code: code, OrderAmount: orderAmount}
	if err := c.do(ctx, http.MethodPost, "/api/coupons/validate", req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.CreateOrderResponse, error) {
	var out models.CreateOrderResponse
	if err := c.do(ctx, http.MethodPost, "/api/orders", req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateGatewaySession(ctx context.Context, req models.GatewaySessionRequest) (*models.GatewaySession, error) {
	var out models.GatewaySession
	if err := c.do(ctx, http.MethodPost, "/api/payment/razorpay", req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PaymentCallback(ctx context.Context, cb models.PaymentCallback, idempotencyKey string) (*models.PaymentCallbackResponse, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{IdempotencyKeyHeader: idempotencyKey}
	}

	var out models.PaymentCallbackResponse
	if err := c.do(ctx, http.MethodPost, "/api/payment/callback", cb, &out, headers); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Autocomplete(ctx context.Context, query string) ([]models.MapsPrediction, error) {
	var out models.AutocompleteResponse
	path := "/api/maps/autocomplete?" + url.Values{"q": {query}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &out, nil); err != nil {
		return nil, err
	}
	return out.Predictions, nil
}

func (c *Client) PlaceDetails(ctx context.Context, placeID string) (*models.GeocodedAddress, error) {
	var out models.GeocodeResponse
	path := "/api/maps/details?" + url.Values{"place_id": {placeID}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out.Address, nil
}

func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (*models.GeocodedAddress, error) {
	var out models.GeocodeResponse
	params := url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lng": {strconv.FormatFloat(lng, 'f', -1, 64)},
	}
	if err := c.do(ctx, http.MethodGet, "/api/maps/reverse?"+params.Encode(), nil, &out, nil); err != nil {
		return nil, err
	}
	return &out.Address, nil
}
