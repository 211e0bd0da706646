package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fancystore/storeadmin/internal/service"
	"github.com/fancystore/storeadmin/pkg/httputil"
)

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service *service.ProductService
	uploads uploadParser
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, maxUploadBytes int64, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		uploads: newUploadParser(maxUploadBytes),
		logger:  logger,
	}
}

// --- Request DTOs ---

// ProductRequest is the JSON body for creating or updating a product. Absent
// fields are left untouched on update.
type ProductRequest struct {
	Name              *string    `json:"name"`
	Price             *float64   `json:"price"`
	Category          *string    `json:"category"`
	Rating            *float64   `json:"rating"`
	Colors            *[]string  `json:"colors"`
	Stock             *int       `json:"stock"`
	AvailableQuantity *int       `json:"availableQuantity"`
	Sold              *int       `json:"sold"`
	Description       *string    `json:"description"`
	OfferEnds         *time.Time `json:"offerEnds"`
}

func (req *ProductRequest) toInput() *service.ProductInput {
	return &service.ProductInput{
		Name:              req.Name,
		Price:             req.Price,
		Category:          req.Category,
		Rating:            req.Rating,
		Colors:            req.Colors,
		Stock:             req.Stock,
		AvailableQuantity: req.AvailableQuantity,
		Sold:              req.Sold,
		Description:       req.Description,
		OfferEnds:         req.OfferEnds,
	}
}

// productInputFromForm maps multipart fields onto a product input.
func productInputFromForm(f formValues) (*service.ProductInput, error) {
	in := &service.ProductInput{
		Name:        f.str("name"),
		Category:    f.str("category"),
		Description: f.str("description"),
		Colors:      f.list("colors"),
	}

	var err error
	if in.Price, err = f.float("price"); err != nil {
		return nil, err
	}
	if in.Rating, err = f.float("rating"); err != nil {
		return nil, err
	}
	if in.Stock, err = f.int("stock"); err != nil {
		return nil, err
	}
	if in.AvailableQuantity, err = f.int("availableQuantity"); err != nil {
		return nil, err
	}
	if in.Sold, err = f.int("sold"); err != nil {
		return nil, err
	}
	if in.OfferEnds, err = f.time("offerEnds"); err != nil {
		return nil, err
	}
	return in, nil
}

func (h *ProductHandler) readInput(w http.ResponseWriter, r *http.Request) (*service.ProductInput, error) {
	var req ProductRequest
	body, err := h.uploads.parse(w, r, &req)
	if err != nil {
		return nil, err
	}
	if body.values == nil {
		return req.toInput(), nil
	}

	input, err := productInputFromForm(body.values)
	if err != nil {
		return nil, err
	}
	input.Image = body.image
	return input, nil
}

// --- Handlers ---

// CreateProduct handles POST /api/products.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	input, err := h.readInput(w, r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// ListProducts handles GET /api/products.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: products})
}

// GetProduct handles GET /api/products/{id}.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// UpdateProduct handles PUT /api/products/{id}.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	input, err := h.readInput(w, r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// DeleteProduct handles DELETE /api/products/{id}.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]string{"message": "product deleted", "id": id},
	})
}
