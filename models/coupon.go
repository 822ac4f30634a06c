package models

import "time"

type Coupon struct {
	ID             string     `json:"id,omitempty"`
	Code           string     `json:"code"`
	Discount       float64    `json:"discount"`
	MinOrderAmount float64    `json:"minOrderAmount,omitempty"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	Active         bool       `json:"active"`
}

type CouponValidateRequest struct {
	Code        string  `json:"code" binding:"required"`
	OrderAmount float64 `json:"orderAmount"`
}

type CouponValidateResponse struct {
	Valid   bool    `json:"valid"`
	Coupon  *Coupon `json:"coupon,omitempty"`
	Message string  `json:"message,omitempty"`
}
