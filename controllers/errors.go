package controllers

import (
	"errors"
	"net/http"
	"strings"

	"medcart/config"
	"medcart/services"
	"medcart/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps service errors onto HTTP statuses and the error envelope.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Validation failed",
			"errors":  verr.Fields,
		})
	case errors.Is(err, services.ErrInvalidInput):
		utils.RespondError(c, http.StatusBadRequest, inputMessage(err), nil)
	case errors.Is(err, utils.ErrFileTooLarge), errors.Is(err, utils.ErrInvalidFileType):
		utils.RespondError(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, services.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, "Resource not found", nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.RespondError(c, http.StatusUnauthorized, "Invalid email or password", nil)
	case errors.Is(err, services.ErrForbidden):
		utils.RespondError(c, http.StatusForbidden, "Access denied", nil)
	case errors.Is(err, services.ErrEmailTaken):
		utils.RespondError(c, http.StatusConflict, "Email already exists", nil)
	case errors.Is(err, services.ErrAmountMismatch):
		utils.RespondError(c, http.StatusConflict, "Order amount mismatch", nil)
	case errors.Is(err, services.ErrInvalidState):
		utils.RespondError(c, http.StatusConflict, "Order is not awaiting payment", nil)
	case errors.Is(err, services.ErrIdempotencyConflict):
		utils.RespondError(c, http.StatusConflict, "Idempotency-Key was already used for a different request", nil)
	case errors.Is(err, services.ErrInvalidSignature):
		utils.RespondError(c, http.StatusBadRequest, "Payment verification failed", nil)
	case errors.Is(err, services.ErrGatewayUnavailable):
		utils.RespondError(c, http.StatusBadGateway, "Payment gateway unavailable, please try again", nil)
	case errors.Is(err, services.ErrMapsUnavailable), errors.Is(err, services.ErrImageStoreDisabled):
		utils.RespondError(c, http.StatusServiceUnavailable, capitalize(err.Error()), nil)
	default:
		config.Logger().Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}

func bindError(c *gin.Context, err error) {
	utils.RespondError(c, http.StatusBadRequest, "Invalid request", err)
}

func inputMessage(err error) string {
	prefix := services.ErrInvalidInput.Error() + ": "
	msg := err.Error()
	if i := strings.Index(msg, prefix); i >= 0 {
		msg = msg[i+len(prefix):]
	}
	return capitalize(msg)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
