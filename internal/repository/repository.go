package repository

import (
	"context"
	"time"

	"github.com/fancystore/storeadmin/internal/domain"
)

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product. Unknown or malformed ids yield NotFound.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns all products, newest first.
	List(ctx context.Context) ([]domain.Product, error)

	// Update applies a sparse patch and returns the stored record.
	Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)

	// Delete removes a product and returns the record as it was.
	Delete(ctx context.Context, id string) (*domain.Product, error)

	// Count returns the number of products.
	Count(ctx context.Context) (int, error)

	// ListLowStock returns products with stock below threshold, lowest first.
	ListLowStock(ctx context.Context, threshold, limit int) ([]domain.Product, error)

	// CountLowStock returns how many products have stock below threshold.
	CountLowStock(ctx context.Context, threshold int) (int, error)

	// ListRecent returns the most recently added products.
	ListRecent(ctx context.Context, limit int) ([]domain.Product, error)

	// OrphanCategories returns category strings used by products that match
	// no category record.
	OrphanCategories(ctx context.Context) ([]domain.OrphanCategory, error)
}

// CategoryRepository defines the interface for category persistence operations.
type CategoryRepository interface {
	// Create inserts a new category. A taken name yields DuplicateName.
	Create(ctx context.Context, category *domain.Category) error

	// GetByID retrieves a category. Unknown or malformed ids yield NotFound.
	GetByID(ctx context.Context, id string) (*domain.Category, error)

	// ExistsByName reports whether a category with exactly this name exists.
	ExistsByName(ctx context.Context, name string) (bool, error)

	// List returns all categories, newest first.
	List(ctx context.Context) ([]domain.Category, error)

	// Update applies a sparse patch and returns the stored record.
	Update(ctx context.Context, id string, patch domain.CategoryPatch) (*domain.Category, error)

	// Delete removes a category and returns the record as it was.
	Delete(ctx context.Context, id string) (*domain.Category, error)

	// Count returns the number of categories.
	Count(ctx context.Context) (int, error)
}

// OrderFilter narrows an order listing.
type OrderFilter struct {
	Status  *string
	Page    int
	PerPage int
}

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// GetByID retrieves an order.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// List returns a page of orders matching filter along with the total count.
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)

	// UpdateStatus sets the status of an order and returns the stored record.
	UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error)

	// CountByStatus aggregates order counts and revenue per status.
	CountByStatus(ctx context.Context) ([]domain.StatusCount, error)

	// ListRecent returns the most recently placed orders.
	ListRecent(ctx context.Context, limit int) ([]domain.Order, error)
}

// UserRepository reads storefront customers. Accounts are created by the
// storefront, so the admin side never writes them.
type UserRepository interface {
	// List returns every user with their order count, newest first.
	List(ctx context.Context) ([]domain.User, error)

	// Count returns the number of users.
	Count(ctx context.Context) (int, error)

	// CountActive returns how many users placed an order at or after since.
	CountActive(ctx context.Context, since time.Time) (int, error)
}
