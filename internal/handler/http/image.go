package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fancystore/storeadmin/internal/blob"
	"github.com/fancystore/storeadmin/pkg/httputil"
)

// ImageFetcher reads stored image payloads.
type ImageFetcher interface {
	Fetch(ctx context.Context, ref string) (*blob.Object, error)
}

// ImageHandler streams stored images.
type ImageHandler struct {
	images ImageFetcher
	logger *slog.Logger
}

// NewImageHandler creates a new image HTTP handler.
func NewImageHandler(images ImageFetcher, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{images: images, logger: logger}
}

// GetImage handles GET /api/images/{ref} and GET /uploads/{ref}.
func (h *ImageHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	obj, err := h.images.Fetch(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.Data)))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(obj.Data)
	}
}
