package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fancystore/storeadmin/internal/service"
	"github.com/fancystore/storeadmin/pkg/httputil"
	"github.com/fancystore/storeadmin/pkg/pagination"
	"github.com/fancystore/storeadmin/pkg/validator"
)

// OrderHandler handles the admin order endpoints.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// UpdateStatusRequest is the JSON body for PUT /api/admin/orders/{orderId}/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Processing Shipped Delivered Cancelled"`
}

// LegacyUpdateOrderRequest is the JSON body for POST /api/admin/update-order.
type LegacyUpdateOrderRequest struct {
	OrderID string `json:"orderId" validate:"required,uuid"`
	Status  string `json:"status" validate:"required,oneof=Processing Shipped Delivered Cancelled"`
}

type statusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// --- Handlers ---

// ListOrders handles GET /api/admin/orders.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	result, err := h.service.ListOrders(r.Context(), r.URL.Query().Get("status"), params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// GetOrder handles GET /api/admin/orders/{orderId}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, r, chi.URLParam(r, "orderId"))
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// UpdateStatus handles PUT /api/admin/orders/{orderId}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, r, chi.URLParam(r, "orderId"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	var req UpdateStatusRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	h.updateStatus(w, r, id.String(), req.Status)
}

// LegacyUpdateOrder handles POST /api/admin/update-order.
func (h *OrderHandler) LegacyUpdateOrder(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	var req LegacyUpdateOrderRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	h.updateStatus(w, r, req.OrderID, req.Status)
}

func (h *OrderHandler) updateStatus(w http.ResponseWriter, r *http.Request, id, status string) {
	order, err := h.service.UpdateStatus(r.Context(), id, status)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: statusResponse{ID: order.ID, Status: order.Status},
	})
}
