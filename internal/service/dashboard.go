package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fancystore/storeadmin/internal/cache"
	"github.com/fancystore/storeadmin/internal/domain"
	"github.com/fancystore/storeadmin/internal/repository"
)

const recentLimit = 5

// DashboardService computes the admin dashboard aggregates behind a
// read-through cache.
type DashboardService struct {
	products          repository.ProductRepository
	categories        repository.CategoryRepository
	orders            repository.OrderRepository
	users             repository.UserRepository
	images            ImageStore
	cache             StatsCache
	lowStockThreshold int
	logger            *slog.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	orders repository.OrderRepository,
	users repository.UserRepository,
	images ImageStore,
	cache StatsCache,
	lowStockThreshold int,
	logger *slog.Logger,
) *DashboardService {
	return &DashboardService{
		products:          products,
		categories:        categories,
		orders:            orders,
		users:             users,
		images:            images,
		cache:             cache,
		lowStockThreshold: lowStockThreshold,
		logger:            logger,
	}
}

// OrderStats returns order counts per status and revenue.
func (s *DashboardService) OrderStats(ctx context.Context) (*domain.OrderStats, error) {
	var stats domain.OrderStats
	if s.cached(ctx, cache.KeyOrderStats, &stats) {
		return &stats, nil
	}

	counts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}
	result := domain.NewOrderStats(counts)

	s.store(ctx, cache.KeyOrderStats, result)
	return result, nil
}

// Overview returns the dashboard summary.
func (s *DashboardService) Overview(ctx context.Context) (*domain.Overview, error) {
	var overview domain.Overview
	if s.cached(ctx, cache.KeyOverview, &overview) {
		return &overview, nil
	}

	productCount, err := s.products.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	categoryCount, err := s.categories.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	counts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}
	lowStock, err := s.products.ListLowStock(ctx, s.lowStockThreshold, 20)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	recentProducts, err := s.products.ListRecent(ctx, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent products: %w", err)
	}
	recentOrders, err := s.orders.ListRecent(ctx, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent orders: %w", err)
	}

	for i := range lowStock {
		lowStock[i].ImageURL = publicURL(s.images, lowStock[i].ImageRef)
	}
	for i := range recentProducts {
		recentProducts[i].ImageURL = publicURL(s.images, recentProducts[i].ImageRef)
	}

	stats := domain.NewOrderStats(counts)
	result := &domain.Overview{
		Counts: domain.OverviewCounts{
			Products:   productCount,
			Categories: categoryCount,
			Orders:     stats.Total,
		},
		TotalRevenue:   stats.TotalRevenue,
		LowStock:       lowStock,
		OrdersByStatus: stats.ByStatus,
		RecentOrders:   recentOrders,
		RecentProducts: recentProducts,
		GeneratedAt:    time.Now().UTC(),
	}

	s.store(ctx, cache.KeyOverview, result)
	return result, nil
}

// AdminData returns the summary the admin UI pages share: record counts,
// low stock and active customer figures, and the latest orders and products.
func (s *DashboardService) AdminData(ctx context.Context) (*domain.AdminData, error) {
	var data domain.AdminData
	if s.cached(ctx, cache.KeyAdminData, &data) {
		return &data, nil
	}

	now := time.Now().UTC()

	userCount, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	activeUsers, err := s.users.CountActive(ctx, now.Add(-domain.ActiveUserWindow))
	if err != nil {
		return nil, fmt.Errorf("count active users: %w", err)
	}
	productCount, err := s.products.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	categoryCount, err := s.categories.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	counts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}
	lowStock, err := s.products.CountLowStock(ctx, s.lowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("count low stock: %w", err)
	}
	recentProducts, err := s.products.ListRecent(ctx, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent products: %w", err)
	}
	recentOrders, err := s.orders.ListRecent(ctx, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent orders: %w", err)
	}

	for i := range recentProducts {
		recentProducts[i].ImageURL = publicURL(s.images, recentProducts[i].ImageRef)
	}

	stats := domain.NewOrderStats(counts)
	result := &domain.AdminData{
		Counts: domain.AdminCounts{
			Users:      userCount,
			Products:   productCount,
			Categories: categoryCount,
			Orders:     stats.Total,
			Revenue:    stats.TotalRevenue,
		},
		Stats: domain.AdminStats{
			LowStock:       lowStock,
			ActiveUsers:    activeUsers,
			OrdersByStatus: stats.ByStatus,
		},
		Recent: domain.AdminRecent{
			Orders:   recentOrders,
			Products: recentProducts,
		},
		GeneratedAt: now,
	}

	s.store(ctx, cache.KeyAdminData, result)
	return result, nil
}

// cached reports a cache hit. Cache errors are logged and treated as misses.
func (s *DashboardService) cached(ctx context.Context, key string, dst any) bool {
	hit, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.logger.WarnContext(ctx, "stats cache read failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false
	}
	return hit
}

func (s *DashboardService) store(ctx context.Context, key string, v any) {
	if err := s.cache.Set(ctx, key, v); err != nil {
		s.logger.WarnContext(ctx, "stats cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
