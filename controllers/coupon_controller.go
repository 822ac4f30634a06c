package controllers

import (
	"context"
	"net/http"

	"medcart/models"

	"github.com/gin-gonic/gin"
)

type CouponService interface {
	Validate(ctx context.Context, code string, orderAmount float64) (*models.CouponValidateResponse, error)
}

type CouponController struct {
	coupons CouponService
}

func NewCouponController(coupons CouponService) *CouponController {
	return &CouponController{coupons: coupons}
}

// ValidateCoupon godoc
// @Summary Validate a coupon
// @Description Checks a coupon code against the current order subtotal
// @Tags Coupons
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.CouponValidateRequest true "Coupon"
// @Success 200 {object} models.CouponValidateResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/coupons/validate [post]
func (ctrl *CouponController) ValidateCoupon(c *gin.Context) {
	var req models.CouponValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := ctrl.coupons.Validate(c.Request.Context(), req.Code, req.OrderAmount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
