package libs

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var ErrRazorpayNotConfigured = errors.New("razorpay keys not set")

type RazorpayOrder struct {
	ID       string            `json:"id"`
	Entity   string            `json:"entity"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Status   string            `json:"status"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type createOrderBody struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// RazorpayClient talks to the Razorpay Orders API.
type RazorpayClient struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
	maxRetries uint64
}

func NewRazorpayClient(baseURL, keyID, keySecret string) *RazorpayClient {
	return &RazorpayClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		keyID:      keyID,
		keySecret:  keySecret,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		maxRetries: 3,
	}
}

func (c *RazorpayClient) KeyID() string {
	return c.keyID
}

func (c *RazorpayClient) Configured() bool {
	return c.keyID != "" && c.keySecret != ""
}

// CreateOrder creates a gateway order. Server errors and transport failures
// are retried; 4xx responses are returned immediately.
func (c *RazorpayClient) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes map[string]string) (*RazorpayOrder, error) {
	if !c.Configured() {
		return nil, ErrRazorpayNotConfigured
	}

	payload, err := json.Marshal(createOrderBody{
		Amount:   amountPaise,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		return nil, err
	}

	var order RazorpayOrder
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.SetBasicAuth(c.keyID, c.keySecret)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		if resp.StatusCode >= 500 {
			return fmt.Errorf("razorpay: status %d", resp.StatusCode)
		}
		if resp.StatusCode >= 300 {
			var rzErr razorpayError
			_ = json.Unmarshal(body, &rzErr)
			msg := rzErr.Error.Description
			if msg == "" {
				msg = http.StatusText(resp.StatusCode)
			}
			return backoff.Permanent(fmt.Errorf("razorpay: %s", msg))
		}

		if err := json.Unmarshal(body, &order); err != nil {
			return backoff.Permanent(fmt.Errorf("razorpay: decode order: %w", err))
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return &order, nil
}

// VerifySignature checks the checkout signature,
// hex(HMAC-SHA256(gatewayOrderID + "|" + paymentID, keySecret)).
func (c *RazorpayClient) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return VerifyPaymentSignature(c.keySecret, gatewayOrderID, paymentID, signature)
}

func VerifyPaymentSignature(secret, gatewayOrderID, paymentID, signature string) bool {
	if secret == "" || gatewayOrderID == "" || paymentID == "" || signature == "" {
		return false
	}
	expected := SignPayment(secret, gatewayOrderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func SignPayment(secret, gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
