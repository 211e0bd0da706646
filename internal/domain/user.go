package domain

import "time"

// ActiveUserWindow is how recently a customer must have ordered to count as
// active.
const ActiveUserWindow = 30 * 24 * time.Hour

// User is a storefront customer as the admin sees it. Credentials are never
// loaded.
type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      *string   `json:"phone"`
	OrderCount int       `json:"orderCount"`
	CreatedAt  time.Time `json:"createdAt"`
}
