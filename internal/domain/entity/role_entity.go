package entity

import "fmt"

// Role is the authorization role of a user. It is stored as text in the
// database but only the values below are valid; anything else is rejected
// when crossing the data boundary (see ParseRole).
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleAdmin      Role = "admin"
	RoleRestaurant Role = "restaurant"
	RoleShipper    Role = "shipper"
)

// ParseRole converts a raw string into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RoleAdmin, RoleRestaurant, RoleShipper:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string { return string(r) }
