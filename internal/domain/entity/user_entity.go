package entity

import (
	"time"
)

// User is the aggregate root for the account domain
// Password holds the bcrypt digest, never the plaintext.
type User struct {
	ID          int64
	Username    string
	Email       string
	Password    string
	FullName    string
	PhoneNumber string
	AvatarURL   string
	IsActive    bool
	Role        Role
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsAdmin is derived from Role; there is no separate stored flag.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
