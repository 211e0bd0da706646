package postgres

import (
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/fancystore/storeadmin/internal/domain"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return mock
}

func strPtr(s string) *string { return &s }

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

const (
	productID  = "0b6f3c1e-8a44-4c1b-9d59-3a6c1f0e2a11"
	categoryID = "5d2a9b7c-1e3f-4a6b-8c9d-0e1f2a3b4c5d"
	orderID    = "9f8e7d6c-5b4a-4392-8170-6f5e4d3c2b1a"
)

// ─── Product column definitions ─────────────────────────────────────────────

var productCols = []string{
	"id", "name", "price", "category", "rating", "colors", "stock", "sold",
	"description", "image_ref", "offer_ends", "date_added", "updated_at",
}

func sampleProduct() domain.Product {
	return domain.Product{
		ID:          productID,
		Name:        "Linen Shirt",
		Price:       39.5,
		Category:    "Shirts",
		Rating:      4.5,
		Colors:      []string{"white", "sand"},
		Stock:       12,
		Sold:        3,
		Description: "Breathable summer shirt",
		ImageRef:    strPtr("1718452800000-shirt.jpg"),
		DateAdded:   now,
		UpdatedAt:   now,
	}
}

func productRow(p domain.Product) []any {
	return []any{
		p.ID, p.Name, p.Price, p.Category, p.Rating, p.Colors, p.Stock, p.Sold,
		p.Description, p.ImageRef, p.OfferEnds, p.DateAdded, p.UpdatedAt,
	}
}

// ─── Category column definitions ────────────────────────────────────────────

var categoryCols = []string{"id", "name", "image_ref", "date_added", "updated_at"}

func sampleCategory() domain.Category {
	return domain.Category{
		ID:        categoryID,
		Name:      "Shirts",
		ImageRef:  strPtr("1718452800000-shirts.png"),
		DateAdded: now,
		UpdatedAt: now,
	}
}

func categoryRow(c domain.Category) []any {
	return []any{c.ID, c.Name, c.ImageRef, c.DateAdded, c.UpdatedAt}
}

// ─── Order column definitions ───────────────────────────────────────────────

var orderCols = []string{
	"id", "user_id", "items", "shipping_info", "delivery_type", "gift_options",
	"order_notes", "total_amount", "status", "created_at", "updated_at",
}

func orderRow(status string) []any {
	return []any{
		orderID, "user-42",
		[]byte(`[{"productId":"` + productID + `","quantity":2,"price":39.5,"name":"Linen Shirt"}]`),
		[]byte(`{"name":"Ada","address":"1 Main St","contact":"555","city":"Springfield","postalCode":"12345"}`),
		domain.DeliveryExpress,
		[]byte(nil),
		"", 79.0, status, now, now,
	}
}
