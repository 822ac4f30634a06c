// Package checkout implements the checkout page: address selection, the
// order summary and coupon entry.
package checkout

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"medcart/models"
	"medcart/pricing"
	"medcart/storefront/apiclient"
	"medcart/storefront/session"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const PaymentPath = "/checkout/payment"

var (
	ErrCannotProceed  = errors.New("select a delivery address to continue")
	ErrUnknownAddress = errors.New("address not found")
)

// CouponError carries the message shown next to the coupon field.
type CouponError struct {
	Message string
}

func (e *CouponError) Error() string { return e.Message }

type API interface {
	Addresses(ctx context.Context) ([]models.Address, error)
	CreateAddress(ctx context.Context, req models.AddressRequest) (*models.Address, error)
	UpdateAddress(ctx context.Context, id string, req models.AddressRequest) (*models.Address, error)
	DeleteAddress(ctx context.Context, id string) error
	ValidateCoupon(ctx context.Context, code string, orderAmount float64) (*models.CouponValidateResponse, error)
}

type Cart interface {
	Items() []models.CartItem
	Flush(ctx context.Context) error
}

type Page struct {
	api   API
	cart  Cart
	store session.Store
	sess  *session.Context
	log   *zap.Logger

	mu        sync.Mutex
	addresses []models.Address
	selected  string
	coupon    *models.Coupon
}

type Option func(*Page)

func WithLogger(log *zap.Logger) Option {
	return func(p *Page) { p.log = log }
}

func New(api API, cart Cart, store session.Store, sess *session.Context, opts ...Option) *Page {
	p := &Page{api: api, cart: cart, store: store, sess: sess, log: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load fetches saved addresses and restores the selection and coupon kept in
// the session store when they are still valid.
func (p *Page) Load(ctx context.Context) error {
	var (
		addresses []models.Address
		saved     session.CheckoutState
		coupon    *models.Coupon
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := p.api.Addresses(gctx)
		addresses = list
		return err
	})
	g.Go(func() error {
		state, err := p.store.Load(gctx)
		if err != nil {
			p.log.Warn("session store unreadable", zap.Error(err))
			return nil
		}
		saved = state
		if state.Coupon == nil {
			return nil
		}
		resp, err := p.api.ValidateCoupon(gctx, state.Coupon.Code, p.Subtotal())
		if err != nil {
			if errors.Is(err, apiclient.ErrUnauthorized) {
				return err
			}
			p.log.Info("saved coupon not revalidated", zap.Error(err))
			return nil
		}
		if resp.Valid && resp.Coupon != nil {
			coupon = resp.Coupon
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	selected := saved.SelectedAddressID
	if p.sess != nil && p.sess.SelectedAddressID() != "" {
		selected = p.sess.SelectedAddressID()
	}
	if indexOf(addresses, selected) < 0 {
		selected = ""
	}

	p.mu.Lock()
	p.addresses = addresses
	p.selected = selected
	p.coupon = coupon
	p.mu.Unlock()

	p.publishSelection(selected)
	return nil
}

func (p *Page) Addresses() []models.Address {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Address(nil), p.addresses...)
}

func (p *Page) SelectedAddressID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected
}

func (p *Page) Select(id string) error {
	p.mu.Lock()
	if indexOf(p.addresses, id) < 0 {
		p.mu.Unlock()
		return ErrUnknownAddress
	}
	p.selected = id
	p.mu.Unlock()

	p.publishSelection(id)
	return nil
}

func (p *Page) Subtotal() float64 {
	return pricing.Subtotal(p.cart.Items())
}

// Summary prices the live cart; it is never cached.
func (p *Page) Summary() pricing.Breakdown {
	return pricing.Quote(p.cart.Items(), p.Coupon())
}

func (p *Page) Coupon() *models.Coupon {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.coupon == nil {
		return nil
	}
	c := *p.coupon
	return &c
}

// ApplyCoupon validates code against the current subtotal. On rejection it
// returns a *CouponError and leaves any applied coupon untouched.
func (p *Page) ApplyCoupon(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return &CouponError{Message: "Please enter a coupon code"}
	}

	resp, err := p.api.ValidateCoupon(ctx, code, p.Subtotal())
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			return err
		}
		return &CouponError{Message: apiclient.Message(err)}
	}
	if !resp.Valid || resp.Coupon == nil {
		msg := resp.Message
		if msg == "" {
			msg = "Invalid coupon code"
		}
		return &CouponError{Message: msg}
	}

	p.mu.Lock()
	c := *resp.Coupon
	p.coupon = &c
	p.mu.Unlock()
	return nil
}

func (p *Page) RemoveCoupon() {
	p.mu.Lock()
	p.coupon = nil
	p.mu.Unlock()
}

// CanProceed reports whether a listed address is selected.
func (p *Page) CanProceed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected != "" && len(p.addresses) > 0 && indexOf(p.addresses, p.selected) >= 0
}

// Proceed flushes pending cart edits, saves the checkout state and returns
// the payment page target.
func (p *Page) Proceed(ctx context.Context) (string, error) {
	if !p.CanProceed() {
		return "", ErrCannotProceed
	}
	if err := p.cart.Flush(ctx); err != nil {
		return "", err
	}

	state := session.CheckoutState{SelectedAddressID: p.SelectedAddressID(), Coupon: p.Coupon()}
	if err := p.store.Save(ctx, state); err != nil {
		p.log.Warn("checkout state not saved", zap.Error(err))
	}

	q := url.Values{}
	q.Set("addressId", state.SelectedAddressID)
	q.Set("amount", strconv.FormatFloat(p.Summary().GrandTotal, 'f', 2, 64))
	return PaymentPath + "?" + q.Encode(), nil
}

// DeleteAddress removes the address immediately and restores it, along with
// the selection, if the API call fails.
func (p *Page) DeleteAddress(ctx context.Context, id string) error {
	p.mu.Lock()
	index := indexOf(p.addresses, id)
	if index < 0 {
		p.mu.Unlock()
		return ErrUnknownAddress
	}
	removed := p.addresses[index]
	prevSelected := p.selected
	p.addresses = append(append([]models.Address(nil), p.addresses[:index]...), p.addresses[index+1:]...)
	if p.selected == id {
		p.selected = ""
	}
	selected := p.selected
	p.mu.Unlock()
	p.publishSelection(selected)

	if err := p.api.DeleteAddress(ctx, id); err != nil {
		p.mu.Lock()
		restored := append([]models.Address(nil), p.addresses[:min(index, len(p.addresses))]...)
		restored = append(restored, removed)
		restored = append(restored, p.addresses[min(index, len(p.addresses)):]...)
		p.addresses = restored
		if p.selected == "" {
			p.selected = prevSelected
		}
		selected = p.selected
		p.mu.Unlock()
		p.publishSelection(selected)
		return err
	}
	return nil
}

// AddAddress saves a new address, reloads the list and selects the new
// address when nothing was selected.
func (p *Page) AddAddress(ctx context.Context, req models.AddressRequest) (*models.Address, error) {
	saved, err := p.api.CreateAddress(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := p.refresh(ctx); err != nil {
		return saved, err
	}
	if p.SelectedAddressID() == "" {
		if err := p.Select(saved.ID); err != nil {
			p.log.Warn("saved address missing from refreshed list",
				zap.String("address_id", saved.ID),
				zap.Error(err),
			)
		}
	}
	return saved, nil
}

func (p *Page) EditAddress(ctx context.Context, id string, req models.AddressRequest) (*models.Address, error) {
	saved, err := p.api.UpdateAddress(ctx, id, req)
	if err != nil {
		return nil, err
	}
	return saved, p.refresh(ctx)
}

func (p *Page) refresh(ctx context.Context) error {
	list, err := p.api.Addresses(ctx)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.addresses = list
	if indexOf(list, p.selected) < 0 {
		p.selected = ""
	}
	selected := p.selected
	p.mu.Unlock()

	p.publishSelection(selected)
	return nil
}

func (p *Page) publishSelection(id string) {
	if p.sess != nil {
		p.sess.SetSelectedAddressID(id)
	}
}

func indexOf(list []models.Address, id string) int {
	if id == "" {
		return -1
	}
	for i, a := range list {
		if a.ID == id {
			return i
		}
	}
	return -1
}
