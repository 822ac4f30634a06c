package libs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}

		var body createOrderBody
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(19300), body.Amount)
		assert.Equal(t, "INR", body.Currency)

		w.Write([]byte(`{"id":"order_abc","entity":"order","amount":19300,"currency":"INR","receipt":"o-1","status":"created"}`))
	}))
	defer srv.Close()

	client := NewRazorpayClient(srv.URL, "rzp_test", "secret")
	order, err := client.CreateOrder(context.Background(), 19300, "INR", "o-1", nil)
	require.NoError(t, err)
	assert.Equal(t, "order_abc", order.ID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCreateOrderClientErrorIsPermanent(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount too small"}}`))
	}))
	defer srv.Close()

	client := NewRazorpayClient(srv.URL, "rzp_test", "secret")
	_, err := client.CreateOrder(context.Background(), 10, "INR", "o-1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount too small")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCreateOrderRequiresKeys(t *testing.T) {
	_, err := NewRazorpayClient("http://localhost", "", "").CreateOrder(context.Background(), 100, "INR", "r", nil)
	assert.ErrorIs(t, err, ErrRazorpayNotConfigured)
}

func TestVerifyPaymentSignature(t *testing.T) {
	sig := SignPayment("secret", "order_abc", "pay_1")

	assert.True(t, VerifyPaymentSignature("secret", "order_abc", "pay_1", sig))
	assert.False(t, VerifyPaymentSignature("secret", "order_abc", "pay_2", sig))
	assert.False(t, VerifyPaymentSignature("other", "order_abc", "pay_1", sig))
	assert.False(t, VerifyPaymentSignature("secret", "order_abc", "pay_1", ""))
}

func TestFormatRupee(t *testing.T) {
	assert.Equal(t, "₹193.00", FormatRupee(193))
	assert.Equal(t, "₹1,234.50", FormatRupee(1234.5))
	assert.Equal(t, "₹1,23,456.00", FormatRupee(123456))
	assert.Equal(t, "₹12,34,567.89", FormatRupee(1234567.89))
}
