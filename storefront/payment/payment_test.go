package payment

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"medcart/models"
	"medcart/storefront/apiclient"
	"medcart/storefront/gateway"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu          sync.Mutex
	orders      []models.CreateOrderRequest
	sessions    []models.GatewaySessionRequest
	callbacks   []models.PaymentCallback
	keys        []string
	orderErr    error
	callbackErr []error
}

func (f *fakeAPI) CreateOrder(_ context.Context, req models.CreateOrderRequest) (*models.CreateOrderResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, req)
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	return &models.CreateOrderResponse{Success: true, OrderID: "order-1"}, nil
}

func (f *fakeAPI) CreateGatewaySession(_ context.Context, req models.GatewaySessionRequest) (*models.GatewaySession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, req)
	return &models.GatewaySession{Key: "rzp_test", Amount: 19300, Currency: req.Currency, OrderID: "order_GW1"}, nil
}

func (f *fakeAPI) PaymentCallback(_ context.Context, cb models.PaymentCallback, key string) (*models.PaymentCallbackResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks = append(f.callbacks, cb)
	f.keys = append(f.keys, key)
	if len(f.callbackErr) > 0 {
		err := f.callbackErr[0]
		f.callbackErr = f.callbackErr[1:]
		if err != nil {
			return nil, err
		}
	}
	return &models.PaymentCallbackResponse{Success: true}, nil
}

type fakeCart struct {
	items  []models.CartItem
	clears int
}

func (c *fakeCart) Items() []models.CartItem { return c.items }

func (c *fakeCart) Clear(context.Context) error {
	c.clears++
	c.items = nil
	return nil
}

type fakeWidget struct {
	opts     []gateway.Options
	handlers gateway.Handlers
	err      error
}

func (w *fakeWidget) Open(_ context.Context, opts gateway.Options, h gateway.Handlers) error {
	if w.err != nil {
		return w.err
	}
	w.opts = append(w.opts, opts)
	w.handlers = h
	return nil
}

type fakeNav struct {
	targets []string
}

func (n *fakeNav) Navigate(target string) { n.targets = append(n.targets, target) }

type fixture struct {
	api    *fakeAPI
	cart   *fakeCart
	widget *fakeWidget
	nav    *fakeNav
	flow   *Flow
}

func cartLine(price float64, qty int) models.CartItem {
	pid := "prod-1"
	return models.CartItem{ID: "line-1", Quantity: qty, ProductID: &pid, Product: &models.ItemSnapshot{ID: pid, Name: "Vitamin C", Price: price}}
}

func newFixture(items ...models.CartItem) *fixture {
	f := &fixture{
		api:    &fakeAPI{},
		cart:   &fakeCart{items: items},
		widget: &fakeWidget{},
		nav:    &fakeNav{},
	}
	f.flow = New(f.api, f.cart, f.widget, f.nav, WithBackOff(func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2)
	}))
	f.flow.SetAddress(&models.Address{ID: "addr-1", FullName: "Asha Rao"})
	return f
}

func TestSubmit_RequiresAddress(t *testing.T) {
	f := newFixture(cartLine(150, 1))
	f.flow.SetAddress(nil)

	err := f.flow.Submit(context.Background())

	require.Error(t, err)
	assert.Equal(t, MsgNoAddress, f.flow.Err())
	assert.Empty(t, f.api.orders)
	assert.Equal(t, Idle, f.flow.State())
}

func TestSubmit_NonPositiveAmountMakesNoOrderCall(t *testing.T) {
	f := newFixture(cartLine(0, 1))

	err := f.flow.Submit(context.Background())

	require.Error(t, err)
	assert.Equal(t, MsgInvalidAmount, err.Error())
	assert.Equal(t, MsgInvalidAmount, f.flow.Err())
	assert.Empty(t, f.api.orders)
	assert.False(t, f.flow.Processing())
}

func TestSubmit_NoValidItems(t *testing.T) {
	line := cartLine(150, 1)
	line.ProductID = nil
	f := newFixture(line)

	err := f.flow.Submit(context.Background())

	require.Error(t, err)
	assert.Equal(t, MsgNoItems, f.flow.Err())
	assert.Empty(t, f.api.orders)
}

func TestSubmit_OrderFailureShowsBackendMessage(t *testing.T) {
	f := newFixture(cartLine(150, 1))
	f.api.orderErr = &apiclient.APIError{Status: http.StatusConflict, Message: "Order amount mismatch"}

	err := f.flow.Submit(context.Background())

	require.Error(t, err)
	assert.Equal(t, "Order amount mismatch", f.flow.Err())
	assert.Equal(t, Idle, f.flow.State())
	assert.Zero(t, f.cart.clears)
}

func TestSubmit_CashOnDeliveryClearsAndNavigatesOnce(t *testing.T) {
	f := newFixture(cartLine(150, 1))
	f.flow.SetCoupon(&models.Coupon{Code: "SAVE10", Discount: 10})
	require.NoError(t, f.flow.SelectMethod(models.PaymentMethodCOD))

	require.NoError(t, f.flow.Submit(context.Background()))

	require.Len(t, f.api.orders, 1)
	assert.Equal(t, 193.0, f.api.orders[0].TotalAmount)
	assert.Equal(t, "SAVE10", f.api.orders[0].CouponCode)
	assert.Equal(t, models.PaymentMethodCOD, f.api.orders[0].PaymentMethod)
	assert.Equal(t, 1, f.cart.clears)
	assert.Equal(t, []string{"/checkout/success?method=cod&orderId=order-1"}, f.nav.targets)
	assert.Empty(t, f.api.sessions)
	assert.Equal(t, Completed, f.flow.State())

	assert.ErrorIs(t, f.flow.Submit(context.Background()), ErrBusy)
	assert.Equal(t, 1, f.cart.clears)
	assert.Len(t, f.nav.targets, 1)
}

func TestOnline_SuccessPostsCallbackThenFinishes(t *testing.T) {
	f := newFixture(cartLine(150, 1))
	require.NoError(t, f.flow.SelectMethod(models.PaymentMethodUPI))

	require.NoError(t, f.flow.Submit(context.Background()))
	assert.Equal(t, AwaitingGateway, f.flow.State())
	assert.True(t, f.flow.Processing())
	require.Len(t, f.api.sessions, 1)
	assert.Equal(t, models.CurrencyINR, f.api.sessions[0].Currency)
	require.Len(t, f.widget.opts, 1)
	assert.Equal(t, models.PaymentMethodUPI, f.widget.opts[0].Prefill.Method)

	f.widget.handlers.OnSuccess(gateway.SuccessResponse{PaymentID: "pay_1", OrderID: "order_GW1", Signature: "sig"})

	require.Len(t, f.api.callbacks, 1)
	cb := f.api.callbacks[0]
	assert.Equal(t, models.PaymentStatusSuccess, cb.Status)
	assert.Equal(t, "pay_1", cb.ProviderPaymentID)
	assert.Equal(t, "order_GW1", cb.Metadata[models.MetaGatewayOrderID])
	assert.Equal(t, "sig", cb.Metadata[models.MetaSignature])
	assert.Equal(t, "order-1:SUCCESS:pay_1", f.api.keys[0])

	assert.Equal(t, 1, f.cart.clears)
	assert.Equal(t, []string{"/checkout/success?method=upi&orderId=order-1&paymentId=pay_1"}, f.nav.targets)
	assert.Empty(t, f.flow.CallbackFailures())
}

func TestOnline_SuccessCallbackRetriedThenRecordedAsFailure(t *testing.T) {
	f := newFixture(cartLine(150, 1))
	down := &apiclient.APIError{Status: http.StatusBadGateway, Message: "Bad Gateway"}
	f.api.callbackErr = []error{down, down, down}

	require.NoError(t, f.flow.Submit(context.Background()))
	f.widget.handlers.OnSuccess(gateway.SuccessResponse{PaymentID: "pay_1", OrderID: "order_GW1", Signature: "sig"})

	assert.Len(t, f.api.callbacks, 3)
	for _, key := range f.api.keys {
		assert.Equal(t, "order-1:SUCCESS:pay_1", key)
	}
	failures := f.flow.CallbackFailures()
	require.Len(t, failures, 1)
	assert.Equal(t, "pay_1", failures[0].PaymentID)

	assert.Equal(t, 1, f.cart.clears)
	assert.Len(t, f.nav.targets, 1)
}

func TestOnline_SuccessCallbackRejectedIsNotRetried(t *testing.T) {
	f := newFixture(cartLine(150, 1))
	f.api.callbackErr = []error{&apiclient.APIError{Status: http.StatusBadRequest, Message: "Payment verification failed"}}

	require.NoError(t, f.flow.Submit(context.Background()))
	f.widget.handlers.OnSuccess(gateway.SuccessResponse{PaymentID: "pay_1"})

	assert.Len(t, f.api.callbacks, 1)
	assert.Len(t, f.flow.CallbackFailures(), 1)
}

func TestOnline_DismissPostsCancelledWithoutClearingOrNavigating(t *testing.T) {
	f := newFixture(cartLine(150, 1))

	require.NoError(t, f.flow.Submit(context.Background()))
	f.widget.handlers.OnDismiss()

	require.Len(t, f.api.callbacks, 1)
	assert.Equal(t, models.PaymentStatusCancelled, f.api.callbacks[0].Status)
	assert.Equal(t, "order-1", f.api.callbacks[0].OrderID)
	assert.Equal(t, "order-1:CANCELLED", f.api.keys[0])
	assert.Zero(t, f.cart.clears)
	assert.Empty(t, f.nav.targets)
	assert.Equal(t, Idle, f.flow.State())
	assert.False(t, f.flow.Processing())
}

func TestOnline_GatewayFailureSurfacesDescription(t *testing.T) {
	f := newFixture(cartLine(150, 1))

	require.NoError(t, f.flow.Submit(context.Background()))
	f.widget.handlers.OnFailure(gateway.FailureResponse{Code: "BAD_REQUEST_ERROR", Description: "Card declined", Reason: "payment_failed", PaymentID: "pay_2"})

	require.Len(t, f.api.callbacks, 1)
	assert.Equal(t, models.PaymentStatusFailed, f.api.callbacks[0].Status)
	assert.Equal(t, "order-1:FAILED:pay_2", f.api.keys[0])
	assert.Equal(t, "Card declined", f.flow.Err())
	assert.Equal(t, Idle, f.flow.State())
	assert.Zero(t, f.cart.clears)

	// A late dismiss after the failure is ignored.
	f.widget.handlers.OnDismiss()
	assert.Len(t, f.api.callbacks, 1)
}

func TestOnline_GatewayOpenFailureReturnsToIdle(t *testing.T) {
	f := newFixture(cartLine(150, 1))
	f.widget.err = errors.New("script blocked")

	err := f.flow.Submit(context.Background())

	require.Error(t, err)
	assert.Equal(t, Idle, f.flow.State())
	assert.Equal(t, "Failed to load payment gateway", f.flow.Err())
}

func TestSelectMethod(t *testing.T) {
	f := newFixture(cartLine(150, 1))

	assert.ErrorIs(t, f.flow.SelectMethod("cheque"), ErrInvalidMethod)
	require.NoError(t, f.flow.SelectMethod(models.PaymentMethodCOD))
	assert.Equal(t, models.PaymentMethodCOD, f.flow.Method())
}
