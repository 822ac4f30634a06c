// Package app assembles the HTTP server from configuration.
package app

import (
	"context"
	"errors"
	"os"
	"time"

	"medcart/config"
	"medcart/controllers"
	"medcart/geocode"
	"medcart/libs"
	"medcart/repositories"
	"medcart/routes"
	"medcart/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const orderLockTTL = 10 * time.Second

type App struct {
	Router *gin.Engine
}

// New connects Postgres and Redis and builds the router. Close releases both.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := config.Logger()

	pool, err := config.ConnectDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rdb := config.InitRedis(ctx, cfg)

	if err := os.MkdirAll(cfg.UploadDir, os.ModePerm); err != nil {
		log.Warn("failed to create upload directory", zap.String("dir", cfg.UploadDir), zap.Error(err))
	}

	users := repositories.NewUserRepository(pool)
	addresses := repositories.NewAddressRepository(pool)
	catalog := repositories.NewCatalogRepository(pool)
	cart := repositories.NewCartRepository(pool)
	coupons := repositories.NewCouponRepository(pool)
	orders := repositories.NewOrderRepository(pool)
	payments := repositories.NewPaymentRepository(pool)

	cache := libs.NewCache(rdb, "medcart")
	locker := libs.NewLocker(rdb, orderLockTTL)
	gateway := libs.NewRazorpayClient(cfg.RazorpayBaseURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	if !gateway.Configured() {
		log.Warn("razorpay keys not set, online payments will fail")
	}

	couponSvc := services.NewCouponService(coupons, cache)
	orderSvc := services.NewOrderService(orders, catalog, addresses, users, couponSvc, notifier(cfg, log))
	paymentSvc := services.NewPaymentService(orders, payments, users, gateway, locker, cache, orderSvc, services.PaymentServiceConfig{
		StoreName:  cfg.StoreName,
		ThemeColor: cfg.ThemeColor,
	})

	ctrls := routes.Controllers{
		Health:  controllers.NewHealthController(pool),
		Auth:    controllers.NewAuthController(services.NewAuthService(users, cfg.JWTSecret, cfg.JWTExpiry)),
		Address: controllers.NewAddressController(services.NewAddressService(addresses)),
		Catalog: controllers.NewCatalogController(services.NewCatalogService(catalog, imageStore(cfg, log)), cfg.MaxUploadSize),
		Cart:    controllers.NewCartController(services.NewCartService(cart, catalog)),
		Coupon:  controllers.NewCouponController(couponSvc),
		Order:   controllers.NewOrderController(orderSvc),
		Payment: controllers.NewPaymentController(paymentSvc),
		Maps:    controllers.NewMapsController(services.NewMapsService(mapsProvider(cfg, log), cache)),
		Admin:   controllers.NewAdminController(services.NewAdminService(orders, users)),
	}

	router := gin.New()
	routes.SetupRoutes(router, cfg, log, ctrls)

	return &App{Router: router}, nil
}

func (a *App) Close() {
	config.CloseRedis()
	config.CloseDB()
}

func notifier(cfg *config.Config, log *zap.Logger) services.OrderNotifier {
	mailer, err := libs.NewMailer(cfg)
	if err != nil {
		log.Warn("order confirmation email disabled", zap.Error(err))
		return nil
	}
	return mailer
}

func imageStore(cfg *config.Config, log *zap.Logger) services.ImageStore {
	store, err := libs.NewCloudinaryStore(cfg)
	if err == nil {
		return store
	}
	if !errors.Is(err, libs.ErrCloudinaryNotConfigured) {
		log.Warn("cloudinary unavailable, storing images locally", zap.Error(err))
	}
	return libs.NewLocalStore(cfg.UploadDir)
}

func mapsProvider(cfg *config.Config, log *zap.Logger) geocode.Provider {
	provider, err := geocode.New(cfg.MapsProvider, cfg.GoogleMapsAPIKey, cfg.OlaMapsAPIKey)
	if err != nil {
		log.Warn("maps lookups disabled", zap.String("provider", cfg.MapsProvider), zap.Error(err))
		return nil
	}
	return provider
}
