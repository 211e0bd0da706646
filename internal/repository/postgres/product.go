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

// productColumns is the standard SELECT column list for products.
const productColumns = `id, name, price, category, rating, colors, stock, sold,
	description, image_ref, offer_ends, date_added, updated_at`

// ProductRepository implements product persistence operations using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts a new product and overwrites p with the stored row, so
// values rounded by the column types (price scale, timestamp precision) are
// what the caller sees.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	query := fmt.Sprintf(`
		INSERT INTO products (id, name, price, category, rating, colors, stock, sold,
			description, image_ref, offer_ends, date_added, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING %s`, productColumns)

	ctx, end := database.TraceQuery(ctx, "CreateProduct", query)
	defer func() { end(err) }()

	stored, err := scanProduct(r.pool.QueryRow(ctx, query,
		p.ID,
		p.Name,
		p.Price,
		p.Category,
		p.Rating,
		p.Colors,
		p.Stock,
		p.Sold,
		p.Description,
		p.ImageRef,
		p.OfferEnds,
		p.DateAdded,
		p.UpdatedAt,
	))
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	*p = *stored
	return nil
}

// GetByID retrieves a product by its unique identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NotFound("product", id)
	}

	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// List returns every product, newest first.
func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products ORDER BY date_added DESC, id`, productColumns)
	return r.queryProducts(ctx, "list products", query)
}

// Update applies the non-nil fields of patch. Only supplied columns appear in
// the SET clause, so omitted fields keep their stored values.
func (r *ProductRepository) Update(ctx context.Context, id string, patch domain.ProductPatch) (p *domain.Product, err error) {
	if _, perr := uuid.Parse(id); perr != nil {
		return nil, apperrors.NotFound("product", id)
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Price != nil {
		set("price", *patch.Price)
	}
	if patch.Category != nil {
		set("category", *patch.Category)
	}
	if patch.Rating != nil {
		set("rating", *patch.Rating)
	}
	if patch.Colors != nil {
		set("colors", *patch.Colors)
	}
	if patch.Stock != nil {
		set("stock", *patch.Stock)
	}
	if patch.Sold != nil {
		set("sold", *patch.Sold)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.ImageRef != nil {
		set("image_ref", *patch.ImageRef)
	}
	if patch.OfferEnds != nil {
		set("offer_ends", *patch.OfferEnds)
	}
	set("updated_at", time.Now().UTC())

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE products SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), productColumns)

	ctx, end := database.TraceQuery(ctx, "UpdateProduct", query)
	defer func() { end(err) }()

	p, err = scanProduct(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

// Delete removes a product and returns the deleted row so callers can clean up
// its image.
func (r *ProductRepository) Delete(ctx context.Context, id string) (p *domain.Product, err error) {
	if _, perr := uuid.Parse(id); perr != nil {
		return nil, apperrors.NotFound("product", id)
	}

	query := fmt.Sprintf(`DELETE FROM products WHERE id = $1 RETURNING %s`, productColumns)

	ctx, end := database.TraceQuery(ctx, "DeleteProduct", query)
	defer func() { end(err) }()

	p, err = scanProduct(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("delete product: %w", err)
	}
	return p, nil
}

// Count returns the number of products.
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// ListLowStock returns products whose stock is below threshold.
func (r *ProductRepository) ListLowStock(ctx context.Context, threshold, limit int) ([]domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE stock < $1
		ORDER BY stock ASC, name
		LIMIT $2`, productColumns)
	return r.queryProducts(ctx, "list low stock products", query, threshold, limit)
}

// CountLowStock returns how many products have stock below threshold.
func (r *ProductRepository) CountLowStock(ctx context.Context, threshold int) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE stock < $1`, threshold).Scan(&n); err != nil {
		return 0, fmt.Errorf("count low stock products: %w", err)
	}
	return n, nil
}

// ListRecent returns the latest products by date added.
func (r *ProductRepository) ListRecent(ctx context.Context, limit int) ([]domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products ORDER BY date_added DESC LIMIT $1`, productColumns)
	return r.queryProducts(ctx, "list recent products", query, limit)
}

// OrphanCategories groups products whose category string has no matching
// category record.
func (r *ProductRepository) OrphanCategories(ctx context.Context) ([]domain.OrphanCategory, error) {
	query := `
		SELECT p.category, COUNT(*)
		FROM products p
		LEFT JOIN categories c ON c.name = p.category
		WHERE c.id IS NULL
		GROUP BY p.category
		ORDER BY p.category`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query orphan categories: %w", err)
	}
	defer rows.Close()

	orphans := []domain.OrphanCategory{}
	for rows.Next() {
		var o domain.OrphanCategory
		if err := rows.Scan(&o.Name, &o.ProductCount); err != nil {
			return nil, fmt.Errorf("scan orphan category: %w", err)
		}
		orphans = append(orphans, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orphan categories: %w", err)
	}
	return orphans, nil
}

func (r *ProductRepository) queryProducts(ctx context.Context, op, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}

// scanProduct reads one product from a row or the current rows position.
func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Category,
		&p.Rating,
		&p.Colors,
		&p.Stock,
		&p.Sold,
		&p.Description,
		&p.ImageRef,
		&p.OfferEnds,
		&p.DateAdded,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Colors == nil {
		p.Colors = []string{}
	}
	return &p, nil
}
