package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fancystore/storeadmin/internal/service"
	"github.com/fancystore/storeadmin/pkg/health"
	"github.com/fancystore/storeadmin/pkg/middleware"
)

const serviceName = "storeadmin"

// imageMaxAge is the Cache-Control max-age for image responses. References
// are never reused, so a stored payload never changes.
const imageMaxAge = 86400

// Services groups the application services the router exposes.
type Services struct {
	Products   *service.ProductService
	Categories *service.CategoryService
	Orders     *service.OrderService
	Users      *service.UserService
	Dashboard  *service.DashboardService
	Catalog    *service.CatalogService
	Images     ImageFetcher
}

// RouterConfig holds the HTTP surface settings.
type RouterConfig struct {
	MaxUploadBytes int64
	CORS           middleware.CORSConfig
	PprofEnabled   bool
	PprofCIDRs     []string
}

// NewRouter creates a chi router with all admin routes registered.
func NewRouter(svcs Services, healthHandler *health.Handler, cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	if cfg.PprofEnabled {
		middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)
	}

	// Image routes
	imageHandler := NewImageHandler(svcs.Images, logger)
	r.Group(func(r chi.Router) {
		r.Use(middleware.ImmutableCache(imageMaxAge))

		r.Get("/api/images/{ref}", imageHandler.GetImage)
		r.Get("/uploads/{ref}", imageHandler.GetImage)
	})

	productHandler := NewProductHandler(svcs.Products, cfg.MaxUploadBytes, logger)
	categoryHandler := NewCategoryHandler(svcs.Categories, cfg.MaxUploadBytes, logger)
	orderHandler := NewOrderHandler(svcs.Orders, logger)
	userHandler := NewUserHandler(svcs.Users, logger)
	dashboardHandler := NewDashboardHandler(svcs.Dashboard, svcs.Catalog, logger)

	r.Group(func(r chi.Router) {
		r.Use(chimw.Compress(5))
		r.Use(chimw.Timeout(60 * time.Second))
		r.Use(ContentTypeFormOrJSON)

		r.Route("/api/products", func(r chi.Router) {
			r.Get("/", productHandler.ListProducts)
			r.Post("/", productHandler.CreateProduct)
			r.Get("/{id}", productHandler.GetProduct)
			r.Put("/{id}", productHandler.UpdateProduct)
			r.Delete("/{id}", productHandler.DeleteProduct)
		})

		r.Route("/api/categories", func(r chi.Router) {
			r.Get("/", categoryHandler.ListCategories)
			r.Post("/", categoryHandler.CreateCategory)
			r.Get("/{id}", categoryHandler.GetCategory)
			r.Put("/{id}", categoryHandler.UpdateCategory)
			r.Delete("/{id}", categoryHandler.DeleteCategory)
		})

		r.Put("/api/orders/{orderId}/status", orderHandler.UpdateStatus)

		r.Route("/api/admin", func(r chi.Router) {
			r.Get("/orders", orderHandler.ListOrders)
			r.Get("/orders/{orderId}", orderHandler.GetOrder)
			r.Put("/orders/{orderId}/status", orderHandler.UpdateStatus)
			r.Post("/update-order", orderHandler.LegacyUpdateOrder)

			r.Get("/users", userHandler.ListUsers)

			r.Get("/orders-stats", dashboardHandler.OrderStats)
			r.Get("/overview", dashboardHandler.Overview)
			r.Get("/data", dashboardHandler.AdminData)
			r.Get("/catalog/orphans", dashboardHandler.CatalogOrphans)
		})
	})

	return r
}
