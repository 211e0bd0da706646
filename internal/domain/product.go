package domain

import (
	"encoding/json"
	"time"
)

// Product defaults and bounds.
const (
	DefaultStock = 1
	MaxRating    = 5
)

// Product is a catalog item. Category is a loose match on Category.Name; no
// referential integrity is enforced.
type Product struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Price       float64    `json:"price"`
	Category    string     `json:"category"`
	Rating      float64    `json:"rating"`
	Colors      []string   `json:"colors"`
	Stock       int        `json:"stock"`
	Sold        int        `json:"sold"`
	Description string     `json:"description"`
	ImageRef    *string    `json:"imageRef"`
	ImageURL    string     `json:"imageUrl"`
	OfferEnds   *time.Time `json:"offerEnds,omitempty"`
	DateAdded   time.Time  `json:"dateAdded"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// MarshalJSON emits availableQuantity alongside stock. Both names refer to
// the same quantity.
func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return json.Marshal(struct {
		plain
		AvailableQuantity int `json:"availableQuantity"`
	}{plain(p), p.Stock})
}

// ProductPatch is a sparse update. Nil fields are left untouched.
type ProductPatch struct {
	Name        *string
	Price       *float64
	Category    *string
	Rating      *float64
	Colors      *[]string
	Stock       *int
	Sold        *int
	Description *string
	ImageRef    *string
	OfferEnds   *time.Time
}

// IsEmpty reports whether the patch changes nothing.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Price == nil && p.Category == nil && p.Rating == nil &&
		p.Colors == nil && p.Stock == nil && p.Sold == nil && p.Description == nil &&
		p.ImageRef == nil && p.OfferEnds == nil
}
