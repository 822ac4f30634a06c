package utils

import (
	"medcart/models"

	"github.com/gin-gonic/gin"
)

func RespondError(c *gin.Context, status int, message string, err error) {
	resp := models.ErrorResponse{
		Success: false,
		Message: message,
	}
	if err != nil && status < 500 {
		resp.Error = err.Error()
	}
	c.AbortWithStatusJSON(status, resp)
}

func RespondSuccess(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, models.Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}
