package routes

import (
	"net/http"

	"medcart/config"
	"medcart/controllers"
	"medcart/metrics"
	"medcart/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

type Controllers struct {
	Health  *controllers.HealthController
	Auth    *controllers.AuthController
	Address *controllers.AddressController
	Catalog *controllers.CatalogController
	Cart    *controllers.CartController
	Coupon  *controllers.CouponController
	Order   *controllers.OrderController
	Payment *controllers.PaymentController
	Maps    *controllers.MapsController
	Admin   *controllers.AdminController
}

func SetupRoutes(router *gin.Engine, cfg *config.Config, log *zap.Logger, ctrl Controllers) {
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Metrics())
	router.Use(middleware.CORSMiddleware(cfg.OriginURL))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", ctrl.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	router.StaticFS("/uploads", http.Dir(cfg.UploadDir))

	router.POST("/auth/register", ctrl.Auth.Register)
	router.POST("/auth/login", ctrl.Auth.Login)

	router.GET("/api/catalog", ctrl.Catalog.ListCatalog)
	router.GET("/api/catalog/:id", ctrl.Catalog.GetCatalogItem)

	auth := router.Group("/")
	auth.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		auth.GET("/auth/profile", ctrl.Auth.GetProfile)

		auth.GET("/api/account/address", ctrl.Address.ListAddresses)
		auth.POST("/api/account/address", ctrl.Address.CreateAddress)
		auth.PATCH("/api/account/address/:id", ctrl.Address.UpdateAddress)
		auth.DELETE("/api/account/address/:id", ctrl.Address.DeleteAddress)

		auth.GET("/api/cart", ctrl.Cart.GetCart)
		auth.POST("/api/cart", ctrl.Cart.AddToCart)
		auth.DELETE("/api/cart", ctrl.Cart.ClearCart)
		auth.PUT("/api/cart/:id", ctrl.Cart.UpdateCartItem)
		auth.DELETE("/api/cart/:id", ctrl.Cart.RemoveCartItem)

		auth.POST("/api/coupons/validate", ctrl.Coupon.ValidateCoupon)

		auth.POST("/api/orders", ctrl.Order.CreateOrder)
		auth.GET("/api/orders/:id", ctrl.Order.GetOrder)

		auth.POST("/api/payment/razorpay", ctrl.Payment.CreateRazorpaySession)
		auth.POST("/api/payment/callback", ctrl.Payment.PaymentCallback)
	}

	maps := router.Group("/api/maps")
	maps.Use(
		middleware.AuthMiddleware(cfg.JWTSecret),
		middleware.NewRateLimiter(cfg.MapsRateLimit, cfg.MapsRateBurst).Limit(),
	)
	{
		maps.GET("/autocomplete", ctrl.Maps.Autocomplete)
		maps.GET("/details", ctrl.Maps.PlaceDetails)
		maps.GET("/reverse", ctrl.Maps.ReverseGeocode)
	}

	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg.JWTSecret), middleware.AdminMiddleware())
	{
		admin.GET("/dashboard", ctrl.Admin.GetDashboard)

		admin.GET("/orders", ctrl.Admin.ListOrders)
		admin.GET("/orders/:id", ctrl.Admin.GetOrder)
		admin.PATCH("/orders/:id/status", ctrl.Admin.UpdateOrderStatus)

		admin.GET("/customers", ctrl.Admin.ListCustomers)

		admin.POST("/catalog", ctrl.Catalog.CreateCatalogItem)
		admin.PATCH("/catalog/:id", ctrl.Catalog.UpdateCatalogItem)
		admin.DELETE("/catalog/:id", ctrl.Catalog.DeleteCatalogItem)
	}
}
