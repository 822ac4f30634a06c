package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"medcart/config"
	"medcart/metrics"
	"medcart/models"
	"medcart/pricing"

	"go.uber.org/zap"
)

const (
	callbackLockTimeout = 10 * time.Second
	idempotencyTTL      = 24 * time.Hour
)

// idempotentReply is the cached outcome of a keyed callback.
type idempotentReply struct {
	Request  string                         `json:"request"`
	Response models.PaymentCallbackResponse `json:"response"`
}

type PaymentService struct {
	orders     OrderStore
	payments   PaymentStore
	users      UserStore
	gateway    PaymentGateway
	locker     Locker
	cache      Cache
	orderSvc   *OrderService
	storeName  string
	themeColor string
}

type PaymentServiceConfig struct {
	StoreName  string
	ThemeColor string
}

func NewPaymentService(orders OrderStore, payments PaymentStore, users UserStore, gateway PaymentGateway, locker Locker, cache Cache, orderSvc *OrderService, cfg PaymentServiceConfig) *PaymentService {
	return &PaymentService{
		orders:     orders,
		payments:   payments,
		users:      users,
		gateway:    gateway,
		locker:     locker,
		cache:      cache,
		orderSvc:   orderSvc,
		storeName:  cfg.StoreName,
		themeColor: cfg.ThemeColor,
	}
}

// CreateSession returns the checkout widget descriptor for an online order.
// The gateway order is created once and reused on repeat calls.
func (s *PaymentService) CreateSession(ctx context.Context, userID string, req models.GatewaySessionRequest) (*models.GatewaySession, error) {
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = models.CurrencyINR
	}
	if currency != models.CurrencyINR {
		return nil, invalid("unsupported currency %q", req.Currency)
	}

	unlock, err := s.lock(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	order, err := s.ownedOrder(ctx, userID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentMethod == models.PaymentMethodCOD {
		return nil, invalid("cash on delivery orders do not need a payment session")
	}
	if order.Status != models.OrderStatusPaymentPending && order.Status != models.OrderStatusPaymentFailed {
		return nil, ErrInvalidState
	}
	if !pricing.Equal(order.TotalAmount, req.Amount) {
		return nil, ErrAmountMismatch
	}

	amount := pricing.ToPaise(order.TotalAmount)
	notes := map[string]string{"orderId": order.ID}

	if order.GatewayOrderID == "" {
		gwOrder, err := s.gateway.CreateOrder(ctx, amount, currency, order.ID, notes)
		if err != nil {
			metrics.GatewayOrders.WithLabelValues("error").Inc()
			config.Logger().Error("gateway order creation failed", zap.String("order_id", order.ID), zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
		}
		stored, err := s.orders.SetGatewayOrderID(ctx, order.ID, gwOrder.ID)
		if err != nil {
			return nil, err
		}
		if stored != gwOrder.ID {
			config.Logger().Warn("gateway order already set, discarding new one",
				zap.String("order_id", order.ID),
				zap.String("kept", stored),
				zap.String("discarded", gwOrder.ID),
			)
			metrics.GatewayOrders.WithLabelValues("reused").Inc()
		} else {
			metrics.GatewayOrders.WithLabelValues("created").Inc()
		}
		order.GatewayOrderID = stored
	} else {
		metrics.GatewayOrders.WithLabelValues("reused").Inc()
	}

	prefill := models.Prefill{
		Name:    order.Address.FullName,
		Contact: order.Address.PhoneNumber,
		Method:  req.PaymentMethod,
	}
	if user, err := s.users.FindByID(ctx, userID); err == nil {
		prefill.Email = user.Email
		if prefill.Name == "" {
			prefill.Name = user.FullName
		}
	}

	return &models.GatewaySession{
		Key:         s.gateway.KeyID(),
		Amount:      amount,
		Currency:    currency,
		OrderID:     order.GatewayOrderID,
		Name:        s.storeName,
		Description: fmt.Sprintf("Order %s", order.ID),
		Prefill:     prefill,
		Notes:       notes,
		Theme:       models.Theme{Color: s.themeColor},
	}, nil
}

// HandleCallback records a gateway outcome and moves the order status.
// Replays of the same (order, status, payment id) return the original outcome.
// A callback carrying an idempotency key is answered from the cached reply
// of an earlier call with that key; reusing a key for a different callback
// is rejected with ErrIdempotencyConflict.
func (s *PaymentService) HandleCallback(ctx context.Context, userID string, cb models.PaymentCallback) (*models.PaymentCallbackResponse, error) {
	status := strings.ToUpper(cb.Status)
	switch status {
	case models.PaymentStatusSuccess, models.PaymentStatusCancelled, models.PaymentStatusFailed:
	default:
		return nil, invalid("unknown payment status %q", cb.Status)
	}
	if status == models.PaymentStatusSuccess && cb.ProviderPaymentID == "" {
		return nil, invalid("providerPaymentId is required for a successful payment")
	}

	unlock, err := s.lock(ctx, cb.OrderID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if cb.IdempotencyKey == "" || s.cache == nil {
		return s.recordCallback(ctx, userID, status, cb)
	}

	key := "idem:callback:" + userID + ":" + cb.IdempotencyKey
	request := strings.Join([]string{cb.OrderID, status, cb.ProviderPaymentID}, "|")
	var prev idempotentReply
	if s.cache.Get(ctx, key, &prev) {
		if prev.Request != request {
			return nil, ErrIdempotencyConflict
		}
		metrics.PaymentCallbacks.WithLabelValues(status, "duplicate").Inc()
		resp := prev.Response
		resp.Duplicate = true
		return &resp, nil
	}

	resp, err := s.recordCallback(ctx, userID, status, cb)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, idempotentReply{Request: request, Response: *resp}, idempotencyTTL)
	return resp, nil
}

func (s *PaymentService) recordCallback(ctx context.Context, userID, status string, cb models.PaymentCallback) (*models.PaymentCallbackResponse, error) {
	order, err := s.ownedOrder(ctx, userID, cb.OrderID)
	if err != nil {
		return nil, err
	}

	if _, err := s.payments.Find(ctx, order.ID, status, cb.ProviderPaymentID); err == nil {
		metrics.PaymentCallbacks.WithLabelValues(status, "duplicate").Inc()
		return &models.PaymentCallbackResponse{Success: true, OrderStatus: order.Status, Duplicate: true}, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if status == models.PaymentStatusSuccess {
		if !s.verify(order, cb) {
			metrics.PaymentCallbacks.WithLabelValues(status, "bad_signature").Inc()
			config.Logger().Warn("payment signature rejected",
				zap.String("order_id", order.ID),
				zap.String("payment_id", cb.ProviderPaymentID),
			)
			return nil, ErrInvalidSignature
		}
	}

	provider := cb.Provider
	if provider == "" {
		provider = models.PaymentProviderRazorpay
	}
	payment := &models.Payment{
		OrderID:           order.ID,
		Provider:          provider,
		ProviderPaymentID: cb.ProviderPaymentID,
		Status:            status,
		Metadata:          cb.Metadata,
	}
	inserted, err := s.payments.Record(ctx, payment)
	if err != nil {
		return nil, err
	}
	if !inserted {
		metrics.PaymentCallbacks.WithLabelValues(status, "duplicate").Inc()
		return &models.PaymentCallbackResponse{Success: true, OrderStatus: order.Status, Duplicate: true}, nil
	}

	next := nextOrderStatus(order.Status, status)
	if next != order.Status {
		if err := s.orders.UpdateStatus(ctx, order.ID, next); err != nil {
			return nil, err
		}
		order.Status = next
		if next == models.OrderStatusPaid && s.orderSvc != nil {
			s.orderSvc.Notify(order.UserID, *order)
		}
	}

	metrics.PaymentCallbacks.WithLabelValues(status, "recorded").Inc()
	config.Logger().Info("payment callback recorded",
		zap.String("order_id", order.ID),
		zap.String("status", status),
		zap.String("order_status", order.Status),
	)
	return &models.PaymentCallbackResponse{Success: true, OrderStatus: order.Status}, nil
}

// nextOrderStatus never moves a paid or fulfilled order backwards.
func nextOrderStatus(current, paymentStatus string) string {
	switch current {
	case models.OrderStatusPaid, models.OrderStatusShipped, models.OrderStatusDelivered, models.OrderStatusCancelled:
		return current
	}
	switch paymentStatus {
	case models.PaymentStatusSuccess:
		return models.OrderStatusPaid
	case models.PaymentStatusFailed:
		return models.OrderStatusPaymentFailed
	default:
		return models.OrderStatusPaymentPending
	}
}

func (s *PaymentService) verify(order *models.Order, cb models.PaymentCallback) bool {
	if order.GatewayOrderID == "" {
		return false
	}
	if gw := cb.Metadata[models.MetaGatewayOrderID]; gw != "" && gw != order.GatewayOrderID {
		return false
	}
	return s.gateway.VerifySignature(order.GatewayOrderID, cb.ProviderPaymentID, cb.Metadata[models.MetaSignature])
}

func (s *PaymentService) ownedOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotFound
	}
	return order, nil
}

func (s *PaymentService) lock(ctx context.Context, orderID string) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, callbackLockTimeout)
	defer cancel()
	return s.locker.Lock(lockCtx, "order:"+orderID)
}
