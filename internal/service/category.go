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

// CategoryService implements the business logic for category operations.
type CategoryService struct {
	repo     repository.CategoryRepository
	images   ImageStore
	producer *event.Producer
	cache    StatsCache
	logger   *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(
	repo repository.CategoryRepository,
	images ImageStore,
	producer *event.Producer,
	cache StatsCache,
	logger *slog.Logger,
) *CategoryService {
	return &CategoryService{
		repo:     repo,
		images:   images,
		producer: producer,
		cache:    cache,
		logger:   logger,
	}
}

// CreateCategoryInput holds the parameters for creating a category.
type CreateCategoryInput struct {
	Name  string              `validate:"required,max=100"`
	Image *domain.ImageUpload `validate:"-"`
}

// UpdateCategoryInput holds the parameters for updating a category.
type UpdateCategoryInput struct {
	Name  *string             `validate:"omitempty,min=1,max=100"`
	Image *domain.ImageUpload `validate:"-"`
}

// CreateCategory validates the name, stores the image if any and inserts the
// record. The image is stored first so that a failed upload never leaves a
// record behind; a failed insert removes the fresh image again.
func (s *CategoryService) CreateCategory(ctx context.Context, input *CreateCategoryInput) (*domain.Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByName(ctx, input.Name)
	if err != nil {
		return nil, fmt.Errorf("check category name: %w", err)
	}
	if exists {
		return nil, apperrors.DuplicateName("category", input.Name)
	}

	ref, err := storeImage(ctx, s.images, input.Image)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	category := &domain.Category{
		ID:        uuid.New().String(),
		Name:      input.Name,
		ImageRef:  ref,
		DateAdded: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, category); err != nil {
		discardImage(ctx, s.images, ref)
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.decorate(category)

	if err := s.producer.PublishCategoryCreated(ctx, category); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.created event",
			slog.String("category_id", category.ID),
			slog.String("error", err.Error()),
		)
	}
	invalidateStats(ctx, s.cache, s.logger)

	s.logger.InfoContext(ctx, "category created",
		slog.String("category_id", category.ID),
		slog.String("name", category.Name),
	)

	return category, nil
}

// GetCategory retrieves a category by ID.
func (s *CategoryService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.decorate(category)
	return category, nil
}

// ListCategories returns all categories, newest first.
func (s *CategoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	for i := range categories {
		s.decorate(&categories[i])
	}
	return categories, nil
}

// UpdateCategory applies the supplied fields. A new image replaces the old
// one: the new payload is stored, the record written, and only then is the
// previous payload deleted.
func (s *CategoryService) UpdateCategory(ctx context.Context, id string, input *UpdateCategoryInput) (*domain.Category, error) {
	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		input.Name = &trimmed
	}
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	prior, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var patch domain.CategoryPatch
	if input.Name != nil && *input.Name != prior.Name {
		exists, err := s.repo.ExistsByName(ctx, *input.Name)
		if err != nil {
			return nil, fmt.Errorf("check category name: %w", err)
		}
		if exists {
			return nil, apperrors.DuplicateName("category", *input.Name)
		}
		patch.Name = input.Name
	}

	if patch.IsEmpty() && input.Image == nil {
		s.decorate(prior)
		return prior, nil
	}

	newRef, err := storeImage(ctx, s.images, input.Image)
	if err != nil {
		return nil, err
	}
	patch.ImageRef = newRef

	category, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		discardImage(ctx, s.images, newRef)
		return nil, fmt.Errorf("update category: %w", err)
	}

	if newRef != nil {
		discardImage(ctx, s.images, prior.ImageRef)
	}

	s.decorate(category)

	if err := s.producer.PublishCategoryUpdated(ctx, category); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.updated event",
			slog.String("category_id", category.ID),
			slog.String("error", err.Error()),
		)
	}
	invalidateStats(ctx, s.cache, s.logger)

	s.logger.InfoContext(ctx, "category updated",
		slog.String("category_id", category.ID),
		slog.Bool("image_replaced", newRef != nil),
	)

	return category, nil
}

// DeleteCategory removes a category and its image. Products that reference
// the category by name are left as they are.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	discardImage(ctx, s.images, deleted.ImageRef)

	if err := s.producer.PublishCategoryDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.deleted event",
			slog.String("category_id", id),
			slog.String("error", err.Error()),
		)
	}
	invalidateStats(ctx, s.cache, s.logger)

	s.logger.InfoContext(ctx, "category deleted",
		slog.String("category_id", id),
	)

	return nil
}

func (s *CategoryService) decorate(c *domain.Category) {
	c.ImageURL = publicURL(s.images, c.ImageRef)
}
