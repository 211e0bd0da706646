package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fancystore/storeadmin/internal/blob"
	"github.com/fancystore/storeadmin/internal/blob/memory"
	"github.com/fancystore/storeadmin/internal/cache"
	"github.com/fancystore/storeadmin/internal/domain"
	"github.com/fancystore/storeadmin/internal/event"
	"github.com/fancystore/storeadmin/internal/repository"
)

// --- Mock ProductRepository ---

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	args := m.Called(ctx, id, patch)
	if fn, ok := args.Get(0).(func(context.Context, string, domain.ProductPatch) *domain.Product); ok {
		return fn(ctx, id, patch), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockProductRepository) ListLowStock(ctx context.Context, threshold, limit int) ([]domain.Product, error) {
	args := m.Called(ctx, threshold, limit)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) CountLowStock(ctx context.Context, threshold int) (int, error) {
	args := m.Called(ctx, threshold)
	return args.Int(0), args.Error(1)
}

func (m *mockProductRepository) ListRecent(ctx context.Context, limit int) ([]domain.Product, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) OrphanCategories(ctx context.Context) ([]domain.OrphanCategory, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.OrphanCategory), args.Error(1)
}

// --- Mock CategoryRepository ---

type mockCategoryRepository struct {
	mock.Mock
}

func (m *mockCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) Update(ctx context.Context, id string, patch domain.CategoryPatch) (*domain.Category, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id string) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// --- Mock OrderRepository ---

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) CountByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.StatusCount), args.Error(1)
}

func (m *mockOrderRepository) ListRecent(ctx context.Context, limit int) ([]domain.Order, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Order), args.Error(1)
}

// --- Mock UserRepository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *mockUserRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockUserRepository) CountActive(ctx context.Context, since time.Time) (int, error) {
	args := m.Called(ctx, since)
	return args.Int(0), args.Error(1)
}

// --- Mock ImageStore ---

type mockImageStore struct {
	mock.Mock
}

func (m *mockImageStore) Store(ctx context.Context, payload []byte, contentType, filename string) (string, error) {
	args := m.Called(ctx, payload, contentType, filename)
	return args.String(0), args.Error(1)
}

func (m *mockImageStore) Delete(ctx context.Context, ref string) {
	m.Called(ctx, ref)
}

func (m *mockImageStore) PublicURL(ref string) string {
	if ref == "" {
		return ""
	}
	return "/uploads/" + ref
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProducer() *event.Producer {
	return event.NewProducer(event.NopPublisher{}, newTestLogger())
}

// newMemoryImages returns a ready adapter over an in-memory backend.
func newMemoryImages(t *testing.T) *blob.Adapter {
	t.Helper()
	a := blob.NewAdapter(memory.New(""), blob.Config{Timeout: time.Second}, newTestLogger())
	require.NoError(t, a.Start(context.Background()))
	return a
}

var nopCache StatsCache = cache.Nop{}

func strPtr(s string) *string       { return &s }
func float64Ptr(f float64) *float64 { return &f }
func intPtr(n int) *int             { return &n }

var pngUpload = &domain.ImageUpload{
	Filename:    "shoe.png",
	ContentType: "image/png",
	Data:        []byte("\x89PNG\r\n\x1a\nfake-image-body"),
}
