package services

import (
	"context"
	"mime/multipart"
	"time"

	"medcart/libs"
	"medcart/models"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListCustomers(ctx context.Context, filter models.CustomerFilter) ([]models.User, int, error)
	CountCustomers(ctx context.Context) (int, error)
}

type AddressStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.Address, error)
	Get(ctx context.Context, userID, id string) (*models.Address, error)
	Create(ctx context.Context, a *models.Address) error
	Update(ctx context.Context, a *models.Address) error
	Delete(ctx context.Context, userID, id string) error
}

type CatalogStore interface {
	List(ctx context.Context, filter models.CatalogFilter) ([]models.CatalogItem, int, error)
	Get(ctx context.Context, id string) (*models.CatalogItem, error)
	GetMany(ctx context.Context, ids []string) (map[string]models.CatalogItem, error)
	Create(ctx context.Context, item *models.CatalogItem) error
	Update(ctx context.Context, item *models.CatalogItem) error
	Deactivate(ctx context.Context, id string) error
}

type CartStore interface {
	List(ctx context.Context, userID string) ([]models.CartItem, error)
	Add(ctx context.Context, userID string, req models.AddToCartRequest) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, id string, quantity int) (*models.CartItem, error)
	Delete(ctx context.Context, userID, id string) error
	Clear(ctx context.Context, userID string) error
}

type CouponStore interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, id string) (*models.Order, error)
	SetGatewayOrderID(ctx context.Context, id, gatewayOrderID string) (string, error)
	UpdateStatus(ctx context.Context, id, status string) error
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int, error)
	Summary(ctx context.Context) (*models.DashboardSummary, error)
}

type PaymentStore interface {
	Record(ctx context.Context, p *models.Payment) (bool, error)
	Find(ctx context.Context, orderID, status, providerPaymentID string) (*models.Payment, error)
}

// Cache is a best-effort JSON cache; misses and failures are equivalent.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type PaymentGateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes map[string]string) (*libs.RazorpayOrder, error)
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
}

type ImageStore interface {
	Upload(ctx context.Context, header *multipart.FileHeader) (url, ref string, err error)
	Delete(ctx context.Context, ref string) error
}

type OrderNotifier interface {
	SendOrderConfirmation(toEmail string, order models.Order) error
}
