package models

import "time"

const (
	PaymentProviderRazorpay = "razorpay"
	CurrencyINR             = "INR"
)

const (
	PaymentStatusSuccess   = "SUCCESS"
	PaymentStatusCancelled = "CANCELLED"
	PaymentStatusFailed    = "FAILED"
)

// Callback metadata keys sent by the storefront.
const (
	MetaGatewayOrderID = "razorpay_order_id"
	MetaSignature      = "razorpay_signature"
	MetaMethod         = "method"
	MetaReason         = "reason"
)

type GatewaySessionRequest struct {
	OrderID       string  `json:"orderId" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Currency      string  `json:"currency"`
	PaymentMethod string  `json:"paymentMethod" binding:"required,oneof=card upi"`
}

type Prefill struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact,omitempty"`
	Method  string `json:"method,omitempty"`
}

type Theme struct {
	Color string `json:"color,omitempty"`
}

// GatewaySession is the descriptor the storefront hands to the checkout widget.
type GatewaySession struct {
	Key         string            `json:"key"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	OrderID     string            `json:"order_id"`
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`
	Prefill     Prefill           `json:"prefill"`
	Notes       map[string]string `json:"notes,omitempty"`
	Theme       Theme             `json:"theme"`
}

type PaymentCallback struct {
	OrderID           string            `json:"orderId" binding:"required"`
	ProviderPaymentID string            `json:"providerPaymentId,omitempty"`
	Status            string            `json:"status" binding:"required,oneof=SUCCESS CANCELLED FAILED"`
	Provider          string            `json:"provider"`
	Metadata          map[string]string `json:"metadata,omitempty"`

	// IdempotencyKey is read from the IdempotencyKeyHeader request header.
	IdempotencyKey string `json:"-"`
}

// IdempotencyKeyHeader carries a caller-chosen key for retried writes.
const IdempotencyKeyHeader = "Idempotency-Key"

type PaymentCallbackResponse struct {
	Success     bool   `json:"success"`
	OrderStatus string `json:"orderStatus,omitempty"`
	Duplicate   bool   `json:"duplicate,omitempty"`
	Message     string `json:"message,omitempty"`
}

type Payment struct {
	ID                string            `json:"id"`
	OrderID           string            `json:"orderId"`
	Provider          string            `json:"provider"`
	ProviderPaymentID string            `json:"providerPaymentId,omitempty"`
	Status            string            `json:"status"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
}
