package http

import (
	"log/slog"
	"net/http"

	"github.com/fancystore/storeadmin/internal/service"
	"github.com/fancystore/storeadmin/pkg/httputil"
)

// DashboardHandler serves the admin dashboard aggregates and the catalog
// consistency report.
type DashboardHandler struct {
	dashboard *service.DashboardService
	catalog   *service.CatalogService
	logger    *slog.Logger
}

// NewDashboardHandler creates a new dashboard HTTP handler.
func NewDashboardHandler(dashboard *service.DashboardService, catalog *service.CatalogService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		catalog:   catalog,
		logger:    logger,
	}
}

// OrderStats handles GET /api/admin/orders-stats.
func (h *DashboardHandler) OrderStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.OrderStats(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: stats})
}

// Overview handles GET /api/admin/overview.
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.dashboard.Overview(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: overview})
}

// AdminData handles GET /api/admin/data.
func (h *DashboardHandler) AdminData(w http.ResponseWriter, r *http.Request) {
	data, err := h.dashboard.AdminData(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: data})
}

// CatalogOrphans handles GET /api/admin/catalog/orphans.
func (h *DashboardHandler) CatalogOrphans(w http.ResponseWriter, r *http.Request) {
	report, err := h.catalog.CheckConsistency(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: report})
}
