// Package gateway bridges the payment page to the Razorpay checkout widget.
package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"medcart/models"

	"golang.org/x/sync/singleflight"
)

const CheckoutScriptURL = "https://checkout.razorpay.com/v1/checkout.js"

// ScriptLoader fetches the checkout script once. Concurrent callers share a
// single fetch and a failed fetch is retried by the next caller.
type ScriptLoader struct {
	url    string
	client *http.Client
	group  singleflight.Group

	mu     sync.RWMutex
	script []byte
}

func NewScriptLoader(client *http.Client, url string) *ScriptLoader {
	if client == nil {
		client = http.DefaultClient
	}
	if url == "" {
		url = CheckoutScriptURL
	}
	return &ScriptLoader{url: url, client: client}
}

func (l *ScriptLoader) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.script != nil
}

// Script returns the loaded script body, or nil before a successful Ensure.
func (l *ScriptLoader) Script() []byte {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.script
}

func (l *ScriptLoader) Ensure(ctx context.Context) error {
	if l.Loaded() {
		return nil
	}

	_, err, _ := l.group.Do("script", func() (interface{}, error) {
		if l.Loaded() {
			return nil, nil
		}
		body, err := l.fetch(ctx)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.script = body
		l.mu.Unlock()
		return nil, nil
	})
	return err
}

func (l *ScriptLoader) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("load checkout script: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("load checkout script: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("load checkout script: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("load checkout script: empty body")
	}
	return body, nil
}

// Options are the widget constructor options.
type Options struct {
	Key         string            `json:"key"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	OrderID     string            `json:"order_id"`
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`
	Prefill     models.Prefill    `json:"prefill"`
	Notes       map[string]string `json:"notes,omitempty"`
	Theme       models.Theme      `json:"theme"`
}

func OptionsFrom(s models.GatewaySession) Options {
	notes := make(map[string]string, len(s.Notes))
	for k, v := range s.Notes {
		notes[k] = v
	}
	return Options{
		Key:         s.Key,
		Amount:      s.Amount,
		Currency:    s.Currency,
		OrderID:     s.OrderID,
		Name:        s.Name,
		Description: s.Description,
		Prefill:     s.Prefill,
		Notes:       notes,
		Theme:       s.Theme,
	}
}

// SuccessResponse is the widget's success handler payload.
type SuccessResponse struct {
	PaymentID string `json:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id"`
	Signature string `json:"razorpay_signature"`
}

// FailureResponse is the widget's payment.failed payload.
type FailureResponse struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
	PaymentID   string `json:"payment_id"`
}

type Handlers struct {
	OnSuccess func(SuccessResponse)
	OnDismiss func()
	OnFailure func(FailureResponse)
}

// Widget is implemented by the embedding UI. Open returns once the modal is
// shown; the outcome arrives later through exactly one handler.
type Widget interface {
	Open(ctx context.Context, opts Options, h Handlers) error
}

type Loader interface {
	Ensure(ctx context.Context) error
}

type Bridge struct {
	loader Loader
	widget Widget
}

func NewBridge(loader Loader, widget Widget) *Bridge {
	return &Bridge{loader: loader, widget: widget}
}

func (b *Bridge) Open(ctx context.Context, opts Options, h Handlers) error {
	if err := b.loader.Ensure(ctx); err != nil {
		return err
	}
	return b.widget.Open(ctx, opts, h)
}
