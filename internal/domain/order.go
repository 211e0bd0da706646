package domain

import (
	"strings"
	"time"
)

// Order status values.
const (
	OrderStatusProcessing = "Processing"
	OrderStatusShipped    = "Shipped"
	OrderStatusDelivered  = "Delivered"
	OrderStatusCancelled  = "Cancelled"
)

// Delivery types.
const (
	DeliveryNormal  = "normal"
	DeliveryExpress = "express"
)

// Order is a customer order. Orders are created by the storefront; this
// service reads them and changes their status.
type Order struct {
	ID           string        `json:"id"`
	UserID       string        `json:"userId"`
	Items        []OrderItem   `json:"items"`
	ShippingInfo *ShippingInfo `json:"shippingInfo,omitempty"`
	DeliveryType string        `json:"deliveryType"`
	GiftOptions  *GiftOptions  `json:"giftOptions,omitempty"`
	OrderNotes   string        `json:"orderNotes,omitempty"`
	TotalAmount  float64       `json:"totalAmount"`
	Status       string        `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// OrderItem is a product snapshot taken when the order was placed.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Name      string  `json:"name"`
	ImageRef  string  `json:"imageRef,omitempty"`
	Color     string  `json:"color,omitempty"`
}

// ShippingInfo is the delivery address of an order.
type ShippingInfo struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	Contact    string `json:"contact"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

// GiftOptions holds optional gift wrapping details.
type GiftOptions struct {
	Wrapping bool   `json:"wrapping"`
	Message  string `json:"message,omitempty"`
}

// OrderStatuses returns every valid order status.
func OrderStatuses() []string {
	return []string{
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

// IsValidOrderStatus checks status against the closed set. Matching is exact.
func IsValidOrderStatus(status string) bool {
	for _, s := range OrderStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// OrderStatusList renders the valid statuses for error messages.
func OrderStatusList() string {
	return strings.Join(OrderStatuses(), ", ")
}

// OrderStats aggregates orders by status.
type OrderStats struct {
	Total        int            `json:"total"`
	Processing   int            `json:"processing"`
	Shipped      int            `json:"shipped"`
	Delivered    int            `json:"delivered"`
	Cancelled    int            `json:"cancelled"`
	ByStatus     map[string]int `json:"byStatus"`
	TotalRevenue float64        `json:"totalRevenue"`
}

// StatusCount is one row of a per-status aggregate.
type StatusCount struct {
	Status  string
	Count   int
	Revenue float64
}

// NewOrderStats folds per-status rows into OrderStats. Cancelled orders do
// not count towards revenue.
func NewOrderStats(rows []StatusCount) *OrderStats {
	stats := &OrderStats{ByStatus: make(map[string]int, len(OrderStatuses()))}
	for _, s := range OrderStatuses() {
		stats.ByStatus[s] = 0
	}
	for _, row := range rows {
		stats.Total += row.Count
		stats.ByStatus[row.Status] += row.Count
		if row.Status != OrderStatusCancelled {
			stats.TotalRevenue += row.Revenue
		}
	}
	stats.Processing = stats.ByStatus[OrderStatusProcessing]
	stats.Shipped = stats.ByStatus[OrderStatusShipped]
	stats.Delivered = stats.ByStatus[OrderStatusDelivered]
	stats.Cancelled = stats.ByStatus[OrderStatusCancelled]
	return stats
}
