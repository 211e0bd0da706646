package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fancystore/storeadmin/internal/cache"
	"github.com/fancystore/storeadmin/internal/domain"
)

func newRedisCache(t *testing.T) *cache.StatsCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewStatsCache(client, time.Minute)
}

var sampleCounts = []domain.StatusCount{
	{Status: domain.OrderStatusProcessing, Count: 2, Revenue: 100},
	{Status: domain.OrderStatusDelivered, Count: 1, Revenue: 50},
	{Status: domain.OrderStatusCancelled, Count: 1, Revenue: 40},
}

func TestOrderStats_CachesResult(t *testing.T) {
	orders := new(mockOrderRepository)
	svc := NewDashboardService(nil, nil, orders, nil, new(mockImageStore), newRedisCache(t), 5, newTestLogger())
	ctx := context.Background()

	orders.On("CountByStatus", ctx).Return(sampleCounts, nil).Once()

	first, err := svc.OrderStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, first.Total)
	assert.Equal(t, 2, first.Processing)
	assert.InDelta(t, 150.0, first.TotalRevenue, 0.001)

	second, err := svc.OrderStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Total, second.Total)
	assert.InDelta(t, first.TotalRevenue, second.TotalRevenue, 0.001)

	orders.AssertNumberOfCalls(t, "CountByStatus", 1)
}

func TestOrderStats_InvalidatedByStatusChange(t *testing.T) {
	orders := new(mockOrderRepository)
	statsCache := newRedisCache(t)
	dashboard := NewDashboardService(nil, nil, orders, nil, new(mockImageStore), statsCache, 5, newTestLogger())
	orderSvc := NewOrderService(orders, newTestProducer(), statsCache, newTestLogger())
	ctx := context.Background()

	orders.On("CountByStatus", ctx).Return(sampleCounts, nil)
	orders.On("GetByID", ctx, testOrderID).Return(&domain.Order{ID: testOrderID, Status: domain.OrderStatusProcessing}, nil)
	orders.On("UpdateStatus", ctx, testOrderID, domain.OrderStatusShipped).
		Return(&domain.Order{ID: testOrderID, Status: domain.OrderStatusShipped}, nil)

	_, err := dashboard.OrderStats(ctx)
	require.NoError(t, err)

	_, err = orderSvc.UpdateStatus(ctx, testOrderID, domain.OrderStatusShipped)
	require.NoError(t, err)

	_, err = dashboard.OrderStats(ctx)
	require.NoError(t, err)
	orders.AssertNumberOfCalls(t, "CountByStatus", 2)
}

func TestOrderStats_RepositoryError(t *testing.T) {
	orders := new(mockOrderRepository)
	svc := NewDashboardService(nil, nil, orders, nil, new(mockImageStore), nopCache, 5, newTestLogger())
	ctx := context.Background()

	orders.On("CountByStatus", ctx).Return([]domain.StatusCount(nil), errors.New("timeout"))

	_, err := svc.OrderStats(ctx)
	assert.Error(t, err)
}

func TestOverview(t *testing.T) {
	products := new(mockProductRepository)
	categories := new(mockCategoryRepository)
	orders := new(mockOrderRepository)
	svc := NewDashboardService(products, categories, orders, nil, new(mockImageStore), nopCache, 5, newTestLogger())
	ctx := context.Background()

	products.On("Count", ctx).Return(12, nil)
	categories.On("Count", ctx).Return(3, nil)
	orders.On("CountByStatus", ctx).Return(sampleCounts, nil)
	products.On("ListLowStock", ctx, 5, mock.Anything).
		Return([]domain.Product{{ID: "p1", Stock: 1, ImageRef: strPtr("1-low.png")}}, nil)
	products.On("ListRecent", ctx, recentLimit).Return([]domain.Product{{ID: "p2"}}, nil)
	orders.On("ListRecent", ctx, recentLimit).Return([]domain.Order{{ID: testOrderID}}, nil)

	overview, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, overview.Counts.Products)
	assert.Equal(t, 3, overview.Counts.Categories)
	assert.Equal(t, 4, overview.Counts.Orders)
	assert.InDelta(t, 150.0, overview.TotalRevenue, 0.001)
	require.Len(t, overview.LowStock, 1)
	assert.Equal(t, "/uploads/1-low.png", overview.LowStock[0].ImageURL)
	assert.Len(t, overview.RecentOrders, 1)
	assert.Len(t, overview.RecentProducts, 1)
	assert.False(t, overview.GeneratedAt.IsZero())
}

func TestCheckConsistency(t *testing.T) {
	products := new(mockProductRepository)
	svc := NewCatalogService(products, newTestLogger())
	ctx := context.Background()

	products.On("OrphanCategories", ctx).
		Return([]domain.OrphanCategory{{Name: "Gone", ProductCount: 2}}, nil)

	report, err := svc.CheckConsistency(ctx)
	require.NoError(t, err)
	assert.False(t, report.Consistent())
	assert.Equal(t, "Gone", report.OrphanCategories[0].Name)
}

func TestAdminData(t *testing.T) {
	products := new(mockProductRepository)
	categories := new(mockCategoryRepository)
	orders := new(mockOrderRepository)
	users := new(mockUserRepository)
	svc := NewDashboardService(products, categories, orders, users, new(mockImageStore), nopCache, 5, newTestLogger())
	ctx := context.Background()

	var since time.Time
	users.On("Count", ctx).Return(9, nil)
	users.On("CountActive", ctx, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) { since = args.Get(1).(time.Time) }).
		Return(4, nil)
	products.On("Count", ctx).Return(12, nil)
	categories.On("Count", ctx).Return(3, nil)
	orders.On("CountByStatus", ctx).Return(sampleCounts, nil)
	products.On("CountLowStock", ctx, 5).Return(2, nil)
	products.On("ListRecent", ctx, recentLimit).
		Return([]domain.Product{{ID: "p2", ImageRef: strPtr("2-new.png")}}, nil)
	orders.On("ListRecent", ctx, recentLimit).Return([]domain.Order{{ID: testOrderID}}, nil)

	data, err := svc.AdminData(ctx)
	require.NoError(t, err)

	assert.Equal(t, 9, data.Counts.Users)
	assert.Equal(t, 12, data.Counts.Products)
	assert.Equal(t, 3, data.Counts.Categories)
	assert.Equal(t, 4, data.Counts.Orders)
	assert.InDelta(t, 150.0, data.Counts.Revenue, 0.001)
	assert.Equal(t, 2, data.Stats.LowStock)
	assert.Equal(t, 4, data.Stats.ActiveUsers)
	assert.Equal(t, 2, data.Stats.OrdersByStatus[domain.OrderStatusProcessing])
	require.Len(t, data.Recent.Products, 1)
	assert.Equal(t, "/uploads/2-new.png", data.Recent.Products[0].ImageURL)
	assert.Len(t, data.Recent.Orders, 1)
	assert.WithinDuration(t, data.GeneratedAt.Add(-domain.ActiveUserWindow), since, time.Second)
	products.AssertNotCalled(t, "ListLowStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminData_CachesResult(t *testing.T) {
	products := new(mockProductRepository)
	categories := new(mockCategoryRepository)
	orders := new(mockOrderRepository)
	users := new(mockUserRepository)
	svc := NewDashboardService(products, categories, orders, users, new(mockImageStore), newRedisCache(t), 5, newTestLogger())
	ctx := context.Background()

	users.On("Count", ctx).Return(1, nil)
	users.On("CountActive", ctx, mock.Anything).Return(1, nil)
	products.On("Count", ctx).Return(1, nil)
	categories.On("Count", ctx).Return(1, nil)
	orders.On("CountByStatus", ctx).Return(sampleCounts, nil)
	products.On("CountLowStock", ctx, 5).Return(0, nil)
	products.On("ListRecent", ctx, recentLimit).Return([]domain.Product{}, nil)
	orders.On("ListRecent", ctx, recentLimit).Return([]domain.Order{}, nil)

	_, err := svc.AdminData(ctx)
	require.NoError(t, err)
	second, err := svc.AdminData(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Counts.Users)

	users.AssertNumberOfCalls(t, "Count", 1)
	orders.AssertNumberOfCalls(t, "CountByStatus", 1)
}

func TestAdminData_UserRepositoryError(t *testing.T) {
	users := new(mockUserRepository)
	svc := NewDashboardService(nil, nil, nil, users, new(mockImageStore), nopCache, 5, newTestLogger())
	ctx := context.Background()

	users.On("Count", ctx).Return(0, errors.New("timeout"))

	_, err := svc.AdminData(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count users")
}
