package domain

import "time"

// Category groups products by name. Names are trimmed and unique.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ImageRef  *string   `json:"imageRef"`
	ImageURL  string    `json:"imageUrl"`
	DateAdded time.Time `json:"dateAdded"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CategoryPatch is a sparse update. Nil fields are left untouched.
type CategoryPatch struct {
	Name     *string
	ImageRef *string
}

// IsEmpty reports whether the patch changes nothing.
func (p CategoryPatch) IsEmpty() bool {
	return p.Name == nil && p.ImageRef == nil
}
