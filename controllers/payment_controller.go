package controllers

import (
	"context"
	"net/http"

	"medcart/middleware"
	"medcart/models"

	"github.com/gin-gonic/gin"
)

type PaymentService interface {
	CreateSession(ctx context.Context, userID string, req models.GatewaySessionRequest) (*models.GatewaySession, error)
	HandleCallback(ctx context.Context, userID string, cb models.PaymentCallback) (*models.PaymentCallbackResponse, error)
}

type PaymentController struct {
	payments PaymentService
}

func NewPaymentController(payments PaymentService) *PaymentController {
	return &PaymentController{payments: payments}
}

// CreateRazorpaySession godoc
// @Summary Create a gateway checkout session
// @Description Creates the Razorpay order once per order and returns the checkout widget options
// @Tags Payments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.GatewaySessionRequest true "Session request"
// @Success 200 {object} models.GatewaySession
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/payment/razorpay [post]
func (ctrl *PaymentController) CreateRazorpaySession(c *gin.Context) {
	var req models.GatewaySessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := ctrl.payments.CreateSession(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// PaymentCallback godoc
// @Summary Record a gateway outcome
// @Description SUCCESS requires a valid gateway signature. Replays return the original outcome.
// @Tags Payments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Key shared by retries of the same callback"
// @Param request body models.PaymentCallback true "Callback"
// @Success 200 {object} models.PaymentCallbackResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/payment/callback [post]
func (ctrl *PaymentController) PaymentCallback(c *gin.Context) {
	var req models.PaymentCallback
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	req.IdempotencyKey = c.GetHeader(models.IdempotencyKeyHeader)

	resp, err := ctrl.payments.HandleCallback(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
