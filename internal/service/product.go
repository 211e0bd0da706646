package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fancystore/storeadmin/internal/domain"
	"github.com/fancystore/storeadmin/internal/event"
	"github.com/fancystore/storeadmin/internal/repository"
	apperrors "github.com/fancystore/storeadmin/pkg/errors"
	"github.com/fancystore/storeadmin/pkg/validator"
)

// ProductService implements the business logic for product operations.
type ProductService struct {
	repo     repository.ProductRepository
	images   ImageStore
	producer *event.Producer
	cache    StatsCache
	logger   *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	repo repository.ProductRepository,
	images ImageStore,
	producer *event.Producer,
	cache StatsCache,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		repo:     repo,
		images:   images,
		producer: producer,
		cache:    cache,
		logger:   logger,
	}
}

// ProductInput carries the fields of a create or update request. Nil fields
// were not supplied. Stock and AvailableQuantity are two names for the same
// quantity. Upper bounds are those of the NUMERIC(12,2) and INTEGER columns.
type ProductInput struct {
	Name              *string             `validate:"omitempty,min=1,max=200"`
	Price             *float64            `validate:"omitempty,gte=0,lte=9999999999.99"`
	Category          *string             `validate:"omitempty,min=1,max=100"`
	Rating            *float64            `validate:"omitempty,gte=0,lte=5"`
	Colors            *[]string           `validate:"-"`
	Stock             *int                `validate:"omitempty,gte=0,lte=2147483647"`
	AvailableQuantity *int                `validate:"omitempty,gte=0,lte=2147483647"`
	Sold              *int                `validate:"omitempty,gte=0,lte=2147483647"`
	Description       *string             `validate:"omitempty,min=1"`
	OfferEnds         *time.Time          `validate:"-"`
	Image             *domain.ImageUpload `validate:"-"`
}

// normalize trims text fields and drops blank colors.
func (in *ProductInput) normalize() {
	trim := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := strings.TrimSpace(*p)
		return &v
	}
	in.Name = trim(in.Name)
	in.Category = trim(in.Category)
	in.Description = trim(in.Description)

	if in.Colors != nil {
		colors := make([]string, 0, len(*in.Colors))
		for _, c := range *in.Colors {
			if c = strings.TrimSpace(c); c != "" {
				colors = append(colors, c)
			}
		}
		in.Colors = &colors
	}
}

// quantity resolves the stock aliases. Supplying both with different values
// is rejected.
func (in *ProductInput) quantity() (*int, error) {
	switch {
	case in.Stock != nil && in.AvailableQuantity != nil:
		if *in.Stock != *in.AvailableQuantity {
			return nil, apperrors.InvalidInput("stock and availableQuantity must be equal when both are supplied")
		}
		return in.Stock, nil
	case in.Stock != nil:
		return in.Stock, nil
	default:
		return in.AvailableQuantity, nil
	}
}

func (in *ProductInput) missingRequired() []string {
	var missing []string
	if in.Name == nil {
		missing = append(missing, "name")
	}
	if in.Price == nil {
		missing = append(missing, "price")
	}
	if in.Category == nil {
		missing = append(missing, "category")
	}
	if in.Description == nil {
		missing = append(missing, "description")
	}
	return missing
}

// CreateProduct validates input, stores the image if any and inserts the
// record.
func (s *ProductService) CreateProduct(ctx context.Context, input *ProductInput) (*domain.Product, error) {
	input.normalize()
	if missing := input.missingRequired(); len(missing) > 0 {
		return nil, apperrors.InvalidInput("missing required fields: " + strings.Join(missing, ", "))
	}
	if err := validator.Validate(input); err != nil {
		return nil, err
	}
	stock, err := input.quantity()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New().String(),
		Name:        *input.Name,
		Price:       *input.Price,
		Category:    *input.Category,
		Description: *input.Description,
		Colors:      []string{},
		Stock:       domain.DefaultStock,
		OfferEnds:   input.OfferEnds,
		DateAdded:   now,
		UpdatedAt:   now,
	}
	if input.Rating != nil {
		product.Rating = *input.Rating
	}
	if input.Colors != nil {
		product.Colors = *input.Colors
	}
	if stock != nil {
		product.Stock = *stock
	}
	if input.Sold != nil {
		product.Sold = *input.Sold
	}

	product.ImageRef, err = storeImage(ctx, s.images, input.Image)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		discardImage(ctx, s.images, product.ImageRef)
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.decorate(product)

	if err := s.producer.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}
	invalidateStats(ctx, s.cache, s.logger)

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("category", product.Category),
		slog.Bool("has_image", product.ImageRef != nil),
	)

	return product, nil
}

// GetProduct retrieves a product by ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.decorate(product)
	return product, nil
}

// ListProducts returns every product, newest first.
func (s *ProductService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	for i := range products {
		s.decorate(&products[i])
	}
	return products, nil
}

// UpdateProduct applies only the supplied fields. A new image is stored
// before the record write and the previous image is deleted after it.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input *ProductInput) (*domain.Product, error) {
	input.normalize()
	if err := validator.Validate(input); err != nil {
		return nil, err
	}
	stock, err := input.quantity()
	if err != nil {
		return nil, err
	}

	prior, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := domain.ProductPatch{
		Name:        input.Name,
		Price:       input.Price,
		Category:    input.Category,
		Rating:      input.Rating,
		Colors:      input.Colors,
		Stock:       stock,
		Sold:        input.Sold,
		Description: input.Description,
		OfferEnds:   input.OfferEnds,
	}
	if patch.IsEmpty() && input.Image == nil {
		s.decorate(prior)
		return prior, nil
	}

	patch.ImageRef, err = storeImage(ctx, s.images, input.Image)
	if err != nil {
		return nil, err
	}

	product, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		discardImage(ctx, s.images, patch.ImageRef)
		return nil, fmt.Errorf("update product: %w", err)
	}

	if patch.ImageRef != nil {
		discardImage(ctx, s.images, prior.ImageRef)
	}

	s.decorate(product)

	if err := s.producer.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}
	invalidateStats(ctx, s.cache, s.logger)

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
		slog.Bool("image_replaced", patch.ImageRef != nil),
	)

	return product, nil
}

// DeleteProduct removes a product and then its image.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	discardImage(ctx, s.images, deleted.ImageRef)

	if err := s.producer.PublishProductDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}
	invalidateStats(ctx, s.cache, s.logger)

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
	)

	return nil
}

func (s *ProductService) decorate(p *domain.Product) {
	p.ImageURL = publicURL(s.images, p.ImageRef)
	if p.Colors == nil {
		p.Colors = []string{}
	}
}
