package models

import "time"

const (
	KindProduct  = "product"
	KindMedicine = "medicine"
)

type CatalogItem struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	CloudinaryID string    `json:"-"`
	Stock        int       `json:"stock"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (c CatalogItem) Snapshot() ItemSnapshot {
	return ItemSnapshot{ID: c.ID, Name: c.Name, Price: c.Price, Image: c.ImageURL}
}

type CatalogFilter struct {
	Kind   string
	Search string
	Page   int
	Limit  int
}

type CreateCatalogItemRequest struct {
	Kind        string  `json:"kind" form:"kind" binding:"required,oneof=product medicine"`
	Name        string  `json:"name" form:"name" binding:"required"`
	Description string  `json:"description" form:"description"`
	Price       float64 `json:"price" form:"price" binding:"required,gt=0"`
	Stock       int     `json:"stock" form:"stock" binding:"min=0"`
}

type UpdateCatalogItemRequest struct {
	Name        string   `json:"name" form:"name"`
	Description string   `json:"description" form:"description"`
	Price       *float64 `json:"price" form:"price"`
	Stock       *int     `json:"stock" form:"stock"`
	IsActive    *bool    `json:"isActive" form:"is_active"`
}
