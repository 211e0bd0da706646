package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/fancystore/storeadmin/internal/domain"
	"github.com/fancystore/storeadmin/pkg/database"
)

// UserRepository reads storefront customers from PostgreSQL. The password
// hash column is never selected.
type UserRepository struct {
	pool database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool database.DBTX) *UserRepository {
	return &UserRepository{pool: pool}
}

// List returns every user with their order count, newest first.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	query := `
		SELECT u.id, u.name, u.email, u.phone, u.created_at, COUNT(o.id)
		FROM users u
		LEFT JOIN orders o ON o.user_id = u.id::text
		GROUP BY u.id
		ORDER BY u.created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.CreatedAt, &u.OrderCount); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return users, nil
}

// Count returns the number of users.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// CountActive returns how many users placed an order at or after since.
func (r *UserRepository) CountActive(ctx context.Context, since time.Time) (int, error) {
	query := `
		SELECT COUNT(DISTINCT u.id)
		FROM users u
		JOIN orders o ON o.user_id = u.id::text
		WHERE o.created_at >= $1`

	var n int
	if err := r.pool.QueryRow(ctx, query, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("count active users: %w", err)
	}
	return n, nil
}
