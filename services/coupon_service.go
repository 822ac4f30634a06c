package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medcart/models"
)

const couponCacheTTL = 5 * time.Minute

type CouponService struct {
	coupons CouponStore
	cache   Cache
	now     func() time.Time
}

func NewCouponService(coupons CouponStore, cache Cache) *CouponService {
	return &CouponService{coupons: coupons, cache: cache, now: time.Now}
}

// Validate checks a coupon against an order amount. An unusable coupon is a
// normal result with Valid=false and a message, not an error.
func (s *CouponService) Validate(ctx context.Context, code string, orderAmount float64) (*models.CouponValidateResponse, error) {
	code = normalizeCode(code)
	if code == "" {
		return &models.CouponValidateResponse{Valid: false, Message: "Please enter a coupon code"}, nil
	}

	coupon, err := s.lookup(ctx, code)
	if errors.Is(err, ErrNotFound) {
		return &models.CouponValidateResponse{Valid: false, Message: "Invalid coupon code"}, nil
	}
	if err != nil {
		return nil, err
	}

	if msg := s.check(coupon, orderAmount); msg != "" {
		return &models.CouponValidateResponse{Valid: false, Message: msg}, nil
	}
	return &models.CouponValidateResponse{Valid: true, Coupon: coupon, Message: "Coupon applied"}, nil
}

func (s *CouponService) check(c *models.Coupon, orderAmount float64) string {
	switch {
	case !c.Active:
		return "This coupon is no longer active"
	case c.ExpiresAt != nil && !s.now().Before(*c.ExpiresAt):
		return "This coupon has expired"
	case orderAmount < c.MinOrderAmount:
		return fmt.Sprintf("Minimum order amount of ₹%.2f required for this coupon", c.MinOrderAmount)
	}
	return ""
}

func (s *CouponService) lookup(ctx context.Context, code string) (*models.Coupon, error) {
	var cached models.Coupon
	if s.cache != nil && s.cache.Get(ctx, code, &cached) {
		return &cached, nil
	}

	coupon, err := s.coupons.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, code, coupon, couponCacheTTL)
	}
	return coupon, nil
}
