package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fancystore/storeadmin/internal/domain"
	"github.com/fancystore/storeadmin/pkg/database"
	apperrors "github.com/fancystore/storeadmin/pkg/errors"
)

const categoryColumns = `id, name, image_ref, date_added, updated_at`

// CategoryRepository implements category persistence operations using PostgreSQL.
type CategoryRepository struct {
	pool database.DBTX
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool database.DBTX) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create inserts a new category and overwrites c with the stored row. The
// unique constraint on name backs up the service-level existence check
// against concurrent inserts.
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	query := fmt.Sprintf(`
		INSERT INTO categories (id, name, image_ref, date_added, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s`, categoryColumns)

	stored, err := scanCategory(r.pool.QueryRow(ctx, query, c.ID, c.Name, c.ImageRef, c.DateAdded, c.UpdatedAt))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.DuplicateName("category", c.Name)
		}
		return fmt.Errorf("insert category: %w", err)
	}
	*c = *stored
	return nil
}

// GetByID retrieves a category by its unique identifier.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NotFound("category", id)
	}

	query := fmt.Sprintf(`SELECT %s FROM categories WHERE id = $1`, categoryColumns)
	c, err := scanCategory(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("category", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// ExistsByName checks for an exact name match.
func (r *CategoryRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return exists, nil
}

// List returns all categories, newest first.
func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM categories ORDER BY date_added DESC, id`, categoryColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}
	return categories, nil
}

// Update applies the non-nil fields of patch.
func (r *CategoryRepository) Update(ctx context.Context, id string, patch domain.CategoryPatch) (c *domain.Category, err error) {
	if _, perr := uuid.Parse(id); perr != nil {
		return nil, apperrors.NotFound("category", id)
	}

	var (
		sets []string
		args []any
	)
	if patch.Name != nil {
		args = append(args, *patch.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if patch.ImageRef != nil {
		args = append(args, *patch.ImageRef)
		sets = append(sets, fmt.Sprintf("image_ref = $%d", len(args)))
	}
	args = append(args, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE categories SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), categoryColumns)

	ctx, end := database.TraceQuery(ctx, "UpdateCategory", query)
	defer func() { end(err) }()

	c, err = scanCategory(r.pool.QueryRow(ctx, query, args...))
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, apperrors.NotFound("category", id)
	case err != nil && database.IsUniqueViolation(err) && patch.Name != nil:
		return nil, apperrors.DuplicateName("category", *patch.Name)
	case err != nil:
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// Delete removes a category and returns the deleted row.
func (r *CategoryRepository) Delete(ctx context.Context, id string) (c *domain.Category, err error) {
	if _, perr := uuid.Parse(id); perr != nil {
		return nil, apperrors.NotFound("category", id)
	}

	query := fmt.Sprintf(`DELETE FROM categories WHERE id = $1 RETURNING %s`, categoryColumns)

	ctx, end := database.TraceQuery(ctx, "DeleteCategory", query)
	defer func() { end(err) }()

	c, err = scanCategory(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("category", id)
	}
	if err != nil {
		return nil, fmt.Errorf("delete category: %w", err)
	}
	return c, nil
}

// Count returns the number of categories.
func (r *CategoryRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	if err := row.Scan(&c.ID, &c.Name, &c.ImageRef, &c.DateAdded, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
