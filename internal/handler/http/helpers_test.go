package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
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
	"github.com/fancystore/storeadmin/internal/service"
	"github.com/fancystore/storeadmin/pkg/health"
	"github.com/fancystore/storeadmin/pkg/httputil"
)

// Ensure interfaces are satisfied at compile time.
var (
	_ repository.ProductRepository  = (*mockProductRepository)(nil)
	_ repository.CategoryRepository = (*mockCategoryRepository)(nil)
	_ repository.OrderRepository    = (*mockOrderRepository)(nil)
	_ repository.UserRepository     = (*mockUserRepository)(nil)
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

// --- Test Helpers ---

const (
	testProductID  = "550e8400-e29b-41d4-a716-446655440001"
	testCategoryID = "550e8400-e29b-41d4-a716-446655440002"
	testOrderID    = "550e8400-e29b-41d4-a716-446655440003"
)

var (
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	gifBytes = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\xff\xff\xff\x00\x00\x00!\xf9\x04")
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// testEnv is a router over real services with mocked repositories and an
// in-memory image store.
type testEnv struct {
	router     http.Handler
	products   *mockProductRepository
	categories *mockCategoryRepository
	orders     *mockOrderRepository
	users      *mockUserRepository
	images     *blob.Adapter
	store      *memory.Store
}

func newTestEnv(t *testing.T, maxUploadBytes int64) *testEnv {
	t.Helper()
	logger := testLogger()

	env := &testEnv{
		products:   new(mockProductRepository),
		categories: new(mockCategoryRepository),
		orders:     new(mockOrderRepository),
		users:      new(mockUserRepository),
		store:      memory.New(""),
	}
	env.images = blob.NewAdapter(env.store, blob.Config{Timeout: time.Second}, logger)
	require.NoError(t, env.images.Start(context.Background()))

	producer := event.NewProducer(event.NopPublisher{}, logger)
	statsCache := cache.Nop{}

	svcs := Services{
		Products:   service.NewProductService(env.products, env.images, producer, statsCache, logger),
		Categories: service.NewCategoryService(env.categories, env.images, producer, statsCache, logger),
		Orders:     service.NewOrderService(env.orders, producer, statsCache, logger),
		Users:      service.NewUserService(env.users, logger),
		Dashboard:  service.NewDashboardService(env.products, env.categories, env.orders, env.users, env.images, statsCache, 10, logger),
		Catalog:    service.NewCatalogService(env.products, logger),
		Images:     env.images,
	}
	env.router = NewRouter(svcs, health.NewHandler(), RouterConfig{MaxUploadBytes: maxUploadBytes}, logger)
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// filePart describes the image part of a multipart request.
type filePart struct {
	filename    string
	contentType string
	data        []byte
}

func newMultipartRequest(t *testing.T, method, target string, fields map[string]string, file *filePart) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="`+file.filename+`"`)
		if file.contentType != "" {
			h.Set("Content-Type", file.contentType)
		}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newJSONRequest(t *testing.T, method, target string, v any) *http.Request {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// decodeData decodes the data field of the envelope into a generic map.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	resp := decodeResponse(t, rec)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is not an object: %#v", resp.Data)
	return data
}

func strPtr(s string) *string { return &s }
