// Package payment drives the payment page: validation, order creation, the
// cash-on-delivery finish and the online gateway round trip.
package payment

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"medcart/models"
	"medcart/pricing"
	"medcart/storefront/apiclient"
	"medcart/storefront/gateway"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	DefaultTimeout = 60 * time.Second
	SuccessPath    = "/checkout/success"

	callbackAttempts = 5
)

const (
	MsgNoAddress     = "Please select a delivery address"
	MsgInvalidAmount = "Invalid order amount"
	MsgNoItems       = "No valid items in cart"
	MsgPaymentFailed = "Payment failed"
)

var (
	ErrBusy          = errors.New("payment already in progress")
	ErrInvalidMethod = errors.New("invalid payment method")
)

type State int

const (
	Idle State = iota
	Validating
	CreatingOrder
	OpeningGateway
	AwaitingGateway
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case CreatingOrder:
		return "creating_order"
	case OpeningGateway:
		return "opening_gateway"
	case AwaitingGateway:
		return "awaiting_gateway"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

type API interface {
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.CreateOrderResponse, error)
	CreateGatewaySession(ctx context.Context, req models.GatewaySessionRequest) (*models.GatewaySession, error)
	PaymentCallback(ctx context.Context, cb models.PaymentCallback, idempotencyKey string) (*models.PaymentCallbackResponse, error)
}

type Cart interface {
	Items() []models.CartItem
	Clear(ctx context.Context) error
}

// Gateway opens the checkout widget; *gateway.Bridge satisfies it.
type Gateway interface {
	Open(ctx context.Context, opts gateway.Options, h gateway.Handlers) error
}

type Navigator interface {
	Navigate(target string)
}

// CallbackFailure records a success callback the API never acknowledged.
// The customer was still sent to the success page.
type CallbackFailure struct {
	OrderID   string
	PaymentID string
	Err       error
	At        time.Time
}

type Flow struct {
	api     API
	cart    Cart
	gateway Gateway
	nav     Navigator
	log     *zap.Logger
	timeout time.Duration
	backOff func() backoff.BackOff

	mu       sync.Mutex
	state    State
	method   string
	address  *models.Address
	coupon   *models.Coupon
	err      string
	orderID  string
	failures []CallbackFailure
}

type Option func(*Flow)

func WithLogger(log *zap.Logger) Option {
	return func(f *Flow) { f.log = log }
}

func WithTimeout(d time.Duration) Option {
	return func(f *Flow) { f.timeout = d }
}

// WithBackOff sets the retry policy for the success callback.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(f *Flow) { f.backOff = newBackOff }
}

func New(api API, cart Cart, gw Gateway, nav Navigator, opts ...Option) *Flow {
	f := &Flow{
		api:     api,
		cart:    cart,
		gateway: gw,
		nav:     nav,
		log:     zap.NewNop(),
		timeout: DefaultTimeout,
		method:  models.PaymentMethodCard,
		backOff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), callbackAttempts-1)
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) Processing() bool {
	s := f.State()
	return s != Idle && s != Completed
}

func (f *Flow) Err() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *Flow) Method() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.method
}

func (f *Flow) OrderID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orderID
}

func (f *Flow) CallbackFailures() []CallbackFailure {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CallbackFailure(nil), f.failures...)
}

func (f *Flow) SetAddress(addr *models.Address) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if addr == nil {
		f.address = nil
		return
	}
	a := *addr
	f.address = &a
}

func (f *Flow) SetCoupon(c *models.Coupon) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c == nil {
		f.coupon = nil
		return
	}
	cp := *c
	f.coupon = &cp
}

func (f *Flow) SelectMethod(method string) error {
	if !models.ValidPaymentMethod(method) {
		return ErrInvalidMethod
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != Idle {
		return ErrBusy
	}
	f.method = method
	return nil
}

// Quote prices the live cart with the applied coupon.
func (f *Flow) Quote() pricing.Breakdown {
	f.mu.Lock()
	coupon := f.coupon
	f.mu.Unlock()
	return pricing.Quote(f.cart.Items(), coupon)
}

// Submit validates and places the order. For cash on delivery it finishes the
// checkout; for online methods it returns once the gateway widget is open.
func (f *Flow) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.state != Idle {
		f.mu.Unlock()
		return ErrBusy
	}
	f.state = Validating
	f.err = ""
	method, coupon := f.method, f.coupon
	var address models.Address
	hasAddress := f.address != nil
	if hasAddress {
		address = *f.address
	}
	f.mu.Unlock()

	if !hasAddress || address.ID == "" {
		return f.fail(MsgNoAddress)
	}

	items := f.cart.Items()
	quote := pricing.Quote(items, coupon)
	if quote.Subtotal <= 0 || quote.GrandTotal <= 0 {
		return f.fail(MsgInvalidAmount)
	}

	lines := orderLines(items)
	if len(lines) == 0 {
		return f.fail(MsgNoItems)
	}
	total := pricing.QuoteSubtotal(pricing.LinesSubtotal(lines), coupon).GrandTotal

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	f.setState(CreatingOrder)
	req := models.CreateOrderRequest{
		Address:       address,
		TotalAmount:   total,
		PaymentMethod: method,
		Items:         lines,
	}
	if coupon != nil {
		req.CouponCode = coupon.Code
	}
	created, err := f.api.CreateOrder(ctx, req)
	if err != nil {
		return f.fail(apiclient.Message(err))
	}
	if created.OrderID == "" {
		return f.fail("Failed to create order")
	}

	f.mu.Lock()
	f.orderID = created.OrderID
	f.mu.Unlock()

	if method == models.PaymentMethodCOD {
		f.finish(ctx, successTarget(method, created.OrderID, ""))
		return nil
	}

	f.setState(OpeningGateway)
	session, err := f.api.CreateGatewaySession(ctx, models.GatewaySessionRequest{
		OrderID:       created.OrderID,
		Amount:        total,
		Currency:      models.CurrencyINR,
		PaymentMethod: method,
	})
	if err != nil {
		return f.fail(apiclient.Message(err))
	}

	opts := gateway.OptionsFrom(*session)
	opts.Prefill.Method = method

	orderID := created.OrderID
	f.setState(AwaitingGateway)
	err = f.gateway.Open(ctx, opts, gateway.Handlers{
		OnSuccess: func(resp gateway.SuccessResponse) { f.onSuccess(orderID, method, resp) },
		OnDismiss: func() { f.onDismiss(orderID, method) },
		OnFailure: func(resp gateway.FailureResponse) { f.onFailure(orderID, method, resp) },
	})
	if err != nil {
		f.log.Warn("payment gateway failed to open", zap.String("order_id", orderID), zap.Error(err))
		return f.fail("Failed to load payment gateway")
	}
	return nil
}

func (f *Flow) onSuccess(orderID, method string, resp gateway.SuccessResponse) {
	if !f.awaiting() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	cb := models.PaymentCallback{
		OrderID:           orderID,
		ProviderPaymentID: resp.PaymentID,
		Status:            models.PaymentStatusSuccess,
		Provider:          models.PaymentProviderRazorpay,
		Metadata: map[string]string{
			models.MetaGatewayOrderID: resp.OrderID,
			models.MetaSignature:      resp.Signature,
			models.MetaMethod:         method,
		},
	}
	if err := f.postWithRetry(ctx, cb); err != nil {
		f.log.Warn("payment success callback not delivered",
			zap.String("order_id", orderID),
			zap.String("payment_id", resp.PaymentID),
			zap.Error(err),
		)
		f.mu.Lock()
		f.failures = append(f.failures, CallbackFailure{OrderID: orderID, PaymentID: resp.PaymentID, Err: err, At: time.Now()})
		f.mu.Unlock()
	}

	f.finish(ctx, successTarget(method, orderID, resp.PaymentID))
}

func (f *Flow) onDismiss(orderID, method string) {
	if !f.awaiting() {
		return
	}
	f.postOnce(orderID, models.PaymentCallback{
		OrderID:  orderID,
		Status:   models.PaymentStatusCancelled,
		Provider: models.PaymentProviderRazorpay,
		Metadata: map[string]string{models.MetaMethod: method},
	})

	f.mu.Lock()
	f.state = Idle
	f.mu.Unlock()
}

func (f *Flow) onFailure(orderID, method string, resp gateway.FailureResponse) {
	if !f.awaiting() {
		return
	}
	f.postOnce(orderID, models.PaymentCallback{
		OrderID:           orderID,
		ProviderPaymentID: resp.PaymentID,
		Status:            models.PaymentStatusFailed,
		Provider:          models.PaymentProviderRazorpay,
		Metadata: map[string]string{
			models.MetaMethod: method,
			models.MetaReason: resp.Reason,
			"code":            resp.Code,
		},
	})

	msg := resp.Description
	if msg == "" {
		msg = MsgPaymentFailed
	}
	f.mu.Lock()
	f.state = Idle
	f.err = msg
	f.mu.Unlock()
}

// postWithRetry retries transport errors and 5xx responses with exponential
// backoff. Every retry carries the same idempotency key so a retried post
// is applied once.
func (f *Flow) postWithRetry(ctx context.Context, cb models.PaymentCallback) error {
	key := callbackKey(cb)
	op := func() error {
		_, err := f.api.PaymentCallback(ctx, cb, key)
		if err == nil {
			return nil
		}
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError && apiErr.Status != http.StatusTooManyRequests {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.Retry(op, backoff.WithContext(f.backOff(), ctx))
}

func (f *Flow) postOnce(orderID string, cb models.PaymentCallback) {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()
	if _, err := f.api.PaymentCallback(ctx, cb, callbackKey(cb)); err != nil {
		f.log.Warn("payment callback failed",
			zap.String("order_id", orderID),
			zap.String("status", cb.Status),
			zap.Error(err),
		)
	}
}

// finish clears the cart once and navigates once.
func (f *Flow) finish(ctx context.Context, target string) {
	f.mu.Lock()
	if f.state == Completed {
		f.mu.Unlock()
		return
	}
	f.state = Completed
	f.mu.Unlock()

	if err := f.cart.Clear(ctx); err != nil {
		f.log.Warn("cart clear after order failed", zap.Error(err))
	}
	f.nav.Navigate(target)
}

func (f *Flow) awaiting() bool {
	return f.State() == AwaitingGateway
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

func (f *Flow) fail(msg string) error {
	f.mu.Lock()
	f.state = Idle
	f.err = msg
	f.mu.Unlock()
	return errors.New(msg)
}

// orderLines keeps cart lines that name a catalog item with a positive
// quantity and price.
func orderLines(items []models.CartItem) []models.OrderLine {
	lines := make([]models.OrderLine, 0, len(items))
	for _, it := range items {
		if it.CatalogID() == "" || it.Quantity <= 0 || it.UnitPrice() <= 0 {
			continue
		}
		lines = append(lines, models.OrderLine{
			ProductID:  it.ProductID,
			MedicineID: it.MedicineID,
			Quantity:   it.Quantity,
			Price:      it.UnitPrice(),
		})
	}
	return lines
}

func successTarget(method, orderID, paymentID string) string {
	q := url.Values{}
	q.Set("method", method)
	q.Set("orderId", orderID)
	if paymentID != "" {
		q.Set("paymentId", paymentID)
	}
	return SuccessPath + "?" + q.Encode()
}

// callbackKey identifies one gateway outcome. Two failed attempts on the
// same order carry different payment ids and so different keys.
func callbackKey(cb models.PaymentCallback) string {
	key := cb.OrderID + ":" + cb.Status
	if cb.ProviderPaymentID != "" {
		key += ":" + cb.ProviderPaymentID
	}
	return key
}
