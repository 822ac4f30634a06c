package services

import (
	"context"
	"errors"

	"medcart/config"
	"medcart/metrics"
	"medcart/models"
	"medcart/pricing"

	"go.uber.org/zap"
)

type OrderService struct {
	orders    OrderStore
	catalog   CatalogStore
	addresses AddressStore
	users     UserStore
	coupons   *CouponService
	notifier  OrderNotifier
}

// NewOrderService wires the order flow; notifier may be nil.
func NewOrderService(orders OrderStore, catalog CatalogStore, addresses AddressStore, users UserStore, coupons *CouponService, notifier OrderNotifier) *OrderService {
	return &OrderService{
		orders:    orders,
		catalog:   catalog,
		addresses: addresses,
		users:     users,
		coupons:   coupons,
		notifier:  notifier,
	}
}

// Create re-prices the submitted lines from the catalog and stores the order.
// A client total that differs from the server quote by more than one paisa is rejected.
func (s *OrderService) Create(ctx context.Context, userID string, req models.CreateOrderRequest) (*models.Order, error) {
	if !models.ValidPaymentMethod(req.PaymentMethod) {
		return nil, invalid("unsupported payment method %q", req.PaymentMethod)
	}
	if len(req.Items) == 0 {
		return nil, invalid("No valid items in cart")
	}

	address, err := s.resolveAddress(ctx, userID, req.Address)
	if err != nil {
		return nil, err
	}

	items, lines, err := s.priceLines(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	subtotal := pricing.LinesSubtotal(lines)
	var coupon *models.Coupon
	if code := normalizeCode(req.CouponCode); code != "" {
		res, err := s.coupons.Validate(ctx, code, subtotal)
		if err != nil {
			return nil, err
		}
		if !res.Valid {
			return nil, invalid("%s", res.Message)
		}
		coupon = res.Coupon
	}

	quote := pricing.QuoteSubtotal(subtotal, coupon)
	if quote.Subtotal <= 0 || quote.GrandTotal <= 0 {
		return nil, invalid("Invalid order amount")
	}
	if !pricing.Equal(quote.GrandTotal, req.TotalAmount) {
		metrics.OrderAmountMismatches.Inc()
		config.Logger().Warn("order amount mismatch",
			zap.String("user_id", userID),
			zap.Float64("client_total", req.TotalAmount),
			zap.Float64("server_total", quote.GrandTotal),
		)
		return nil, ErrAmountMismatch
	}

	status := models.OrderStatusPaymentPending
	if req.PaymentMethod == models.PaymentMethodCOD {
		status = models.OrderStatusPlaced
	}

	order := &models.Order{
		UserID:        userID,
		Address:       address,
		Items:         items,
		Subtotal:      quote.Subtotal,
		DeliveryFee:   quote.DeliveryFee,
		PlatformFee:   quote.PlatformFee,
		Discount:      quote.Discount,
		TotalAmount:   quote.GrandTotal,
		PaymentMethod: req.PaymentMethod,
		Status:        status,
	}
	if coupon != nil {
		order.CouponCode = coupon.Code
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	metrics.OrdersCreated.WithLabelValues(order.PaymentMethod).Inc()
	config.Logger().Info("order created",
		zap.String("order_id", order.ID),
		zap.String("method", order.PaymentMethod),
		zap.Float64("total", order.TotalAmount),
	)

	if order.Status == models.OrderStatusPlaced {
		s.Notify(order.UserID, *order)
	}
	return order, nil
}

// resolveAddress prefers the saved address row over the client snapshot.
func (s *OrderService) resolveAddress(ctx context.Context, userID string, submitted models.Address) (models.Address, error) {
	address := submitted
	if submitted.ID != "" {
		saved, err := s.addresses.Get(ctx, userID, submitted.ID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return models.Address{}, invalid("Please select a delivery address")
			}
			return models.Address{}, err
		}
		address = *saved
	}

	if errs := models.ValidateAddress(address); len(errs) > 0 {
		return models.Address{}, &ValidationError{Fields: errs}
	}
	address.UserID = ""
	return address, nil
}

func (s *OrderService) priceLines(ctx context.Context, submitted []models.OrderLine) ([]models.OrderItem, []models.OrderLine, error) {
	ids := make([]string, 0, len(submitted))
	for _, line := range submitted {
		if line.CatalogID() == "" || line.Quantity <= 0 {
			return nil, nil, invalid("No valid items in cart")
		}
		ids = append(ids, line.CatalogID())
	}

	catalog, err := s.catalog.GetMany(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	items := make([]models.OrderItem, 0, len(submitted))
	lines := make([]models.OrderLine, 0, len(submitted))
	for _, line := range submitted {
		entry, ok := catalog[line.CatalogID()]
		if !ok || !entry.IsActive {
			return nil, nil, invalid("an item in your cart is no longer available")
		}
		wantKind := models.KindMedicine
		if line.ProductID != nil && *line.ProductID != "" {
			wantKind = models.KindProduct
		}
		if entry.Kind != wantKind {
			return nil, nil, invalid("an item in your cart is no longer available")
		}

		items = append(items, models.OrderItem{
			ProductID:  line.ProductID,
			MedicineID: line.MedicineID,
			Name:       entry.Name,
			Quantity:   line.Quantity,
			UnitPrice:  entry.Price,
		})
		lines = append(lines, models.OrderLine{
			ProductID:  line.ProductID,
			MedicineID: line.MedicineID,
			Quantity:   line.Quantity,
			Price:      entry.Price,
		})
	}
	return items, lines, nil
}

// Get returns the order when it belongs to userID.
func (s *OrderService) Get(ctx context.Context, userID, id string) (*models.Order, error) {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotFound
	}
	return order, nil
}

// Notify sends the confirmation email in the background.
func (s *OrderService) Notify(userID string, order models.Order) {
	if s.notifier == nil {
		return
	}
	go func() {
		email := order.CustomerEmail
		if email == "" {
			user, err := s.users.FindByID(context.Background(), userID)
			if err != nil {
				config.Logger().Warn("order email skipped", zap.String("order_id", order.ID), zap.Error(err))
				return
			}
			email = user.Email
		}
		if err := s.notifier.SendOrderConfirmation(email, order); err != nil {
			config.Logger().Warn("order email failed", zap.String("order_id", order.ID), zap.Error(err))
		}
	}()
}
