package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	db Pinger
}

func NewHealthController(db Pinger) *HealthController {
	return &HealthController{db: db}
}

// Health godoc
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} models.Response
// @Failure 503 {object} models.ErrorResponse
// @Router /health [get]
func (ctrl *HealthController) Health(c *gin.Context) {
	if ctrl.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := ctrl.db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Database unavailable"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "OK"})
}
