// Package api is the serverless entry point.
package api

import (
	"context"
	"net/http"
	"sync"

	"medcart/app"
	"medcart/config"
	_ "medcart/docs"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	instance *app.App
	initErr  error
	once     sync.Once
)

func initApp() {
	once.Do(func() {
		gin.SetMode(gin.ReleaseMode)
		cfg := config.LoadConfig()
		config.InitLogger(cfg)
		instance, initErr = app.New(context.Background(), cfg)
		if initErr != nil {
			config.Logger().Error("failed to initialize app", zap.Error(initErr))
		}
	})
}

func Handler(w http.ResponseWriter, r *http.Request) {
	initApp()
	if initErr != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"success":false,"message":"Service unavailable"}`))
		return
	}
	instance.Router.ServeHTTP(w, r)
}
