package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fancystore/storeadmin/internal/domain"
	"github.com/fancystore/storeadmin/internal/event"
	"github.com/fancystore/storeadmin/internal/repository"
	apperrors "github.com/fancystore/storeadmin/pkg/errors"
	"github.com/fancystore/storeadmin/pkg/pagination"
)

// OrderService implements the admin operations on orders.
type OrderService struct {
	repo     repository.OrderRepository
	producer *event.Producer
	cache    StatsCache
	logger   *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(repo repository.OrderRepository, producer *event.Producer, cache StatsCache, logger *slog.Logger) *OrderService {
	return &OrderService{
		repo:     repo,
		producer: producer,
		cache:    cache,
		logger:   logger,
	}
}

// GetOrder retrieves an order by ID.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// ListOrders returns a page of orders, optionally filtered by status.
func (s *OrderService) ListOrders(ctx context.Context, status string, params pagination.Params) (pagination.Result[domain.Order], error) {
	filter := repository.OrderFilter{Page: params.Page, PerPage: params.PerPage}
	if status != "" {
		if !domain.IsValidOrderStatus(status) {
			return pagination.Result[domain.Order]{}, invalidStatus(status)
		}
		filter.Status = &status
	}

	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return pagination.Result[domain.Order]{}, fmt.Errorf("list orders: %w", err)
	}
	return pagination.NewResult(orders, total, params), nil
}

// UpdateStatus sets a new status on an order. Statuses outside the closed set
// are rejected before the order is touched. Any valid status may follow any
// other.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	if !domain.IsValidOrderStatus(status) {
		return nil, invalidStatus(status)
	}

	prior, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if prior.Status == status {
		return prior, nil
	}

	order, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	if err := s.producer.PublishOrderStatusChanged(ctx, order, prior.Status); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}
	invalidateStats(ctx, s.cache, s.logger)

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", order.ID),
		slog.String("from", prior.Status),
		slog.String("to", order.Status),
	)

	return order, nil
}

func invalidStatus(status string) error {
	return apperrors.InvalidInput(fmt.Sprintf("invalid order status %q: must be one of %s", status, domain.OrderStatusList()))
}
