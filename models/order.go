package models

import "time"

const (
	PaymentMethodCard = "card"
	PaymentMethodUPI  = "upi"
	PaymentMethodCOD  = "cod"
)

const (
	OrderStatusPlaced         = "placed"
	OrderStatusPaymentPending = "payment_pending"
	OrderStatusPaid           = "paid"
	OrderStatusPaymentFailed  = "payment_failed"
	OrderStatusCancelled      = "cancelled"
	OrderStatusShipped        = "shipped"
	OrderStatusDelivered      = "delivered"
)

var OrderStatuses = []string{
	OrderStatusPlaced,
	OrderStatusPaymentPending,
	OrderStatusPaid,
	OrderStatusPaymentFailed,
	OrderStatusCancelled,
	OrderStatusShipped,
	OrderStatusDelivered,
}

func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCard, PaymentMethodUPI, PaymentMethodCOD:
		return true
	}
	return false
}

func ValidOrderStatus(s string) bool {
	for _, st := range OrderStatuses {
		if st == s {
			return true
		}
	}
	return false
}

type Order struct {
	ID             string      `json:"id"`
	UserID         string      `json:"userId"`
	Address        Address     `json:"address"`
	Items          []OrderItem `json:"items,omitempty"`
	Subtotal       float64     `json:"subtotal"`
	DeliveryFee    float64     `json:"deliveryFee"`
	PlatformFee    float64     `json:"platformFee"`
	Discount       float64     `json:"discount"`
	TotalAmount    float64     `json:"totalAmount"`
	CouponCode     string      `json:"couponCode,omitempty"`
	PaymentMethod  string      `json:"paymentMethod"`
	Status         string      `json:"status"`
	GatewayOrderID string      `json:"gatewayOrderId,omitempty"`
	CustomerName   string      `json:"customerName,omitempty"`
	CustomerEmail  string      `json:"customerEmail,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

type OrderItem struct {
	ID         string  `json:"id,omitempty"`
	OrderID    string  `json:"orderId,omitempty"`
	ProductID  *string `json:"productId,omitempty"`
	MedicineID *string `json:"medicineId,omitempty"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
}

// OrderLine is one cart line as submitted by the storefront.
type OrderLine struct {
	ProductID  *string `json:"productId,omitempty"`
	MedicineID *string `json:"medicineId,omitempty"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

func (l OrderLine) CatalogID() string {
	if l.ProductID != nil && *l.ProductID != "" {
		return *l.ProductID
	}
	if l.MedicineID != nil && *l.MedicineID != "" {
		return *l.MedicineID
	}
	return ""
}

type CreateOrderRequest struct {
	Address       Address     `json:"address"`
	TotalAmount   float64     `json:"totalAmount"`
	PaymentMethod string      `json:"paymentMethod" binding:"required,oneof=card upi cod"`
	Items         []OrderLine `json:"items" binding:"required,min=1"`
	CouponCode    string      `json:"couponCode,omitempty"`
}

type CreateOrderResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
	Message string `json:"message,omitempty"`
}

type OrderFilter struct {
	Status    string
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" form:"status" binding:"required"`
}

type DashboardSummary struct {
	TotalOrders    int            `json:"totalOrders"`
	OrdersByStatus map[string]int `json:"ordersByStatus"`
	Revenue        float64        `json:"revenue"`
	TotalCustomers int            `json:"totalCustomers"`
}
