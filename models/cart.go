package models

import (
	"strings"
	"time"
)

// TempCartItemPrefix marks placeholder items inserted before the server confirms an add.
const TempCartItemPrefix = "temp-"

// ItemSnapshot is the denormalized catalog data carried on a cart line.
type ItemSnapshot struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image,omitempty"`
}

type CartItem struct {
	ID         string        `json:"id"`
	UserID     string        `json:"-"`
	Quantity   int           `json:"quantity"`
	ProductID  *string       `json:"productId,omitempty"`
	MedicineID *string       `json:"medicineId,omitempty"`
	Product    *ItemSnapshot `json:"product,omitempty"`
	Medicine   *ItemSnapshot `json:"medicine,omitempty"`
	CreatedAt  time.Time     `json:"createdAt,omitempty"`
	UpdatedAt  time.Time     `json:"updatedAt,omitempty"`
}

// CatalogID returns the product or medicine id the line refers to, or "".
func (c CartItem) CatalogID() string {
	if c.ProductID != nil && *c.ProductID != "" {
		return *c.ProductID
	}
	if c.MedicineID != nil && *c.MedicineID != "" {
		return *c.MedicineID
	}
	return ""
}

func (c CartItem) Snapshot() *ItemSnapshot {
	if c.Product != nil {
		return c.Product
	}
	return c.Medicine
}

// UnitPrice is the snapshot price, 0 when the snapshot is missing.
func (c CartItem) UnitPrice() float64 {
	if s := c.Snapshot(); s != nil {
		return s.Price
	}
	return 0
}

func (c CartItem) Name() string {
	if s := c.Snapshot(); s != nil {
		return s.Name
	}
	return ""
}

func (c CartItem) IsTemporary() bool {
	return strings.HasPrefix(c.ID, TempCartItemPrefix)
}

type AddToCartRequest struct {
	ProductID  *string `json:"productId,omitempty"`
	MedicineID *string `json:"medicineId,omitempty"`
	Quantity   int     `json:"quantity" binding:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

type CartResponse struct {
	Items []CartItem `json:"items"`
}

type CartItemResponse struct {
	Success bool     `json:"success"`
	Item    CartItem `json:"item"`
}
