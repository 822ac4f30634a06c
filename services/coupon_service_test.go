package services

import (
	"context"
	"testing"
	"time"

	"medcart/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCoupon(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	store := &fakeCoupons{coupons: map[string]models.Coupon{
		"SAVE10": {Code: "SAVE10", Discount: 10, Active: true, ExpiresAt: &future},
		"BIG500": {Code: "BIG500", Discount: 20, MinOrderAmount: 500, Active: true},
		"OLD":    {Code: "OLD", Discount: 5, Active: true, ExpiresAt: &past},
		"PAUSED": {Code: "PAUSED", Discount: 5, Active: false},
	}}
	svc := NewCouponService(store, nil)
	svc.now = func() time.Time { return now }

	tests := []struct {
		code    string
		amount  float64
		valid   bool
		message string
	}{
		{" save10 ", 150, true, "Coupon applied"},
		{"BIG500", 499.99, false, "Minimum order amount of ₹500.00 required for this coupon"},
		{"BIG500", 500, true, "Coupon applied"},
		{"OLD", 150, false, "This coupon has expired"},
		{"PAUSED", 150, false, "This coupon is no longer active"},
		{"MISSING", 150, false, "Invalid coupon code"},
		{"", 150, false, "Please enter a coupon code"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			res, err := svc.Validate(context.Background(), tt.code, tt.amount)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid)
			assert.Equal(t, tt.message, res.Message)
			if tt.valid {
				require.NotNil(t, res.Coupon)
			} else {
				assert.Nil(t, res.Coupon)
			}
		})
	}
}

func TestValidateCouponUsesCache(t *testing.T) {
	store := &fakeCoupons{coupons: map[string]models.Coupon{
		"SAVE10": {Code: "SAVE10", Discount: 10, Active: true},
	}}
	svc := NewCouponService(store, newMemCache())

	for i := 0; i < 3; i++ {
		res, err := svc.Validate(context.Background(), "SAVE10", 150)
		require.NoError(t, err)
		assert.True(t, res.Valid)
	}
	assert.Equal(t, 1, store.lookups)
}
