package services

import (
	"context"

	"medcart/models"
)

type CartService struct {
	cart    CartStore
	catalog CatalogStore
}

func NewCartService(cart CartStore, catalog CatalogStore) *CartService {
	return &CartService{cart: cart, catalog: catalog}
}

func (s *CartService) List(ctx context.Context, userID string) ([]models.CartItem, error) {
	return s.cart.List(ctx, userID)
}

func (s *CartService) Add(ctx context.Context, userID string, req models.AddToCartRequest) (*models.CartItem, error) {
	hasProduct := req.ProductID != nil && *req.ProductID != ""
	hasMedicine := req.MedicineID != nil && *req.MedicineID != ""
	if hasProduct == hasMedicine {
		return nil, invalid("exactly one of productId or medicineId is required")
	}
	if req.Quantity < 1 {
		return nil, invalid("quantity must be at least 1")
	}

	id, kind := req.MedicineID, models.KindMedicine
	if hasProduct {
		id, kind = req.ProductID, models.KindProduct
	}

	item, err := s.catalog.Get(ctx, *id)
	if err != nil {
		return nil, err
	}
	if !item.IsActive || item.Kind != kind {
		return nil, ErrNotFound
	}

	return s.cart.Add(ctx, userID, req)
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, id string, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, invalid("quantity must be at least 1")
	}
	return s.cart.UpdateQuantity(ctx, userID, id, quantity)
}

func (s *CartService) Remove(ctx context.Context, userID, id string) error {
	return s.cart.Delete(ctx, userID, id)
}

// Clear empties the cart. Clearing an empty cart succeeds.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	return s.cart.Clear(ctx, userID)
}
