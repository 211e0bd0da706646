package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fancystore/storeadmin/internal/service"
	"github.com/fancystore/storeadmin/pkg/httputil"
)

// CategoryHandler handles HTTP requests for category endpoints.
type CategoryHandler struct {
	service *service.CategoryService
	uploads uploadParser
	logger  *slog.Logger
}

// NewCategoryHandler creates a new category HTTP handler.
func NewCategoryHandler(svc *service.CategoryService, maxUploadBytes int64, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: svc,
		uploads: newUploadParser(maxUploadBytes),
		logger:  logger,
	}
}

// CategoryRequest is the JSON body for creating or updating a category.
type CategoryRequest struct {
	Name *string `json:"name"`
}

// CreateCategory handles POST /api/categories.
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	body, err := h.uploads.parse(w, r, &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	input := &service.CreateCategoryInput{Image: body.image}
	name := req.Name
	if body.values != nil {
		name = body.values.str("name")
	}
	if name != nil {
		input.Name = *name
	}

	category, err := h.service.CreateCategory(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: category})
}

// ListCategories handles GET /api/categories.
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: categories})
}

// GetCategory handles GET /api/categories/{id}.
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.service.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: category})
}

// UpdateCategory handles PUT /api/categories/{id}.
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	body, err := h.uploads.parse(w, r, &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	input := &service.UpdateCategoryInput{Name: req.Name, Image: body.image}
	if body.values != nil {
		input.Name = body.values.str("name")
	}

	category, err := h.service.UpdateCategory(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: category})
}

// DeleteCategory handles DELETE /api/categories/{id}.
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]string{"message": "category deleted", "id": id},
	})
}
