package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fancystore/storeadmin/internal/domain"
	"github.com/fancystore/storeadmin/internal/repository"
)

// CatalogService reports inconsistencies between products and categories.
// It only reports; nothing is repaired or cascaded.
type CatalogService struct {
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(products repository.ProductRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{products: products, logger: logger}
}

// CheckConsistency lists product category strings with no matching category.
func (s *CatalogService) CheckConsistency(ctx context.Context) (*domain.ConsistencyReport, error) {
	orphans, err := s.products.OrphanCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("find orphan categories: %w", err)
	}

	report := &domain.ConsistencyReport{
		OrphanCategories: orphans,
		CheckedAt:        time.Now().UTC(),
	}
	if !report.Consistent() {
		s.logger.WarnContext(ctx, "catalog has orphan categories",
			slog.Int("count", len(orphans)),
		)
	}
	return report, nil
}
