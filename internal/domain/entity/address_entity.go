package entity

import "time"

// Address is a saved delivery location owned by exactly one user.
// Latitude/Longitude are optional coordinates; IsDefault is maintained so
// that at most one address per user carries it at any time.
type Address struct {
	ID          int64
	UserID      int64
	AddressName string
	Address     string
	Latitude    *float64
	Longitude   *float64
	IsDefault   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
