package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fancystore/storeadmin/internal/domain"
	"github.com/fancystore/storeadmin/internal/repository"
	"github.com/fancystore/storeadmin/pkg/database"
	apperrors "github.com/fancystore/storeadmin/pkg/errors"
)

const orderColumns = `id, user_id, items, shipping_info, delivery_type, gift_options,
	order_notes, total_amount, status, created_at, updated_at`

// OrderRepository implements order persistence operations using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// GetByID retrieves an order by its unique identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NotFound("order", id)
	}

	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)
	o, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("order", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// List returns a page of orders, newest first, and the total matching count.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	page, perPage := filter.Page, filter.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	args := []any{}
	where := ""
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = "WHERE status = $1"
	}
	args = append(args, perPage, (page-1)*perPage)

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM orders
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, orderColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	total := 0
	for rows.Next() {
		var (
			o   domain.Order
			raw rawOrderJSON
		)
		if err := rows.Scan(
			&o.ID, &o.UserID, &raw.items, &raw.shipping, &o.DeliveryType, &raw.gift,
			&o.OrderNotes, &o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		if err := raw.decode(&o); err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, total, nil
}

// UpdateStatus overwrites the status of an order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id, status string) (o *domain.Order, err error) {
	if _, perr := uuid.Parse(id); perr != nil {
		return nil, apperrors.NotFound("order", id)
	}

	query := fmt.Sprintf(`
		UPDATE orders SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING %s`, orderColumns)

	ctx, end := database.TraceQuery(ctx, "UpdateOrderStatus", query)
	defer func() { end(err) }()

	o, err = scanOrder(r.pool.QueryRow(ctx, query, status, time.Now().UTC(), id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("order", id)
	}
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return o, nil
}

// CountByStatus returns order counts and summed totals per status.
func (r *OrderRepository) CountByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(total_amount), 0)::float8
		FROM orders
		GROUP BY status
		ORDER BY status`)
	if err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}
	defer rows.Close()

	counts := []domain.StatusCount{}
	for rows.Next() {
		var c domain.StatusCount
		if err := rows.Scan(&c.Status, &c.Count, &c.Revenue); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}
	return counts, nil
}

// ListRecent returns the latest orders.
func (r *OrderRepository) ListRecent(ctx context.Context, limit int) ([]domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders ORDER BY created_at DESC LIMIT $1`, orderColumns)

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, nil
}

// rawOrderJSON holds the JSONB columns before decoding.
type rawOrderJSON struct {
	items    []byte
	shipping []byte
	gift     []byte
}

func (raw rawOrderJSON) decode(o *domain.Order) error {
	o.Items = []domain.OrderItem{}
	if len(raw.items) > 0 {
		if err := json.Unmarshal(raw.items, &o.Items); err != nil {
			return fmt.Errorf("decode order items: %w", err)
		}
	}
	if len(raw.shipping) > 0 && string(raw.shipping) != "null" {
		o.ShippingInfo = &domain.ShippingInfo{}
		if err := json.Unmarshal(raw.shipping, o.ShippingInfo); err != nil {
			return fmt.Errorf("decode shipping info: %w", err)
		}
	}
	if len(raw.gift) > 0 && string(raw.gift) != "null" {
		o.GiftOptions = &domain.GiftOptions{}
		if err := json.Unmarshal(raw.gift, o.GiftOptions); err != nil {
			return fmt.Errorf("decode gift options: %w", err)
		}
	}
	return nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o   domain.Order
		raw rawOrderJSON
	)
	if err := row.Scan(
		&o.ID, &o.UserID, &raw.items, &raw.shipping, &o.DeliveryType, &raw.gift,
		&o.OrderNotes, &o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := raw.decode(&o); err != nil {
		return nil, err
	}
	return &o, nil
}
