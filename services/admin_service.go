package services

import (
	"context"

	"medcart/config"
	"medcart/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AdminService struct {
	orders OrderStore
	users  UserStore
}

func NewAdminService(orders OrderStore, users UserStore) *AdminService {
	return &AdminService{orders: orders, users: users}
}

func (s *AdminService) Dashboard(ctx context.Context) (*models.DashboardSummary, error) {
	var (
		summary   *models.DashboardSummary
		customers int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.orders.Summary(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		customers, err = s.users.CountCustomers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	summary.TotalCustomers = customers
	return summary, nil
}

func (s *AdminService) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, int, error) {
	if filter.Status == "All" {
		filter.Status = ""
	}
	if filter.Status != "" && !models.ValidOrderStatus(filter.Status) {
		return nil, 0, invalid("unknown status %q", filter.Status)
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, 0, invalid("end date is before start date")
	}
	filter.Page, filter.Limit = clampPage(filter.Page, filter.Limit, 10)
	return s.orders.List(ctx, filter)
}

func (s *AdminService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.orders.Get(ctx, id)
}

func (s *AdminService) UpdateOrderStatus(ctx context.Context, id, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, invalid("unknown status %q", status)
	}
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == status {
		return order, nil
	}
	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	config.Logger().Info("order status changed",
		zap.String("order_id", id),
		zap.String("from", order.Status),
		zap.String("to", status),
	)
	order.Status = status
	return order, nil
}

func (s *AdminService) ListCustomers(ctx context.Context, filter models.CustomerFilter) ([]models.User, int, error) {
	filter.Page, filter.Limit = clampPage(filter.Page, filter.Limit, 10)
	return s.users.ListCustomers(ctx, filter)
}
