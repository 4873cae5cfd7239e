package application

import "errors"

// Service-level error taxonomy. Handlers map these to HTTP statuses:
// ErrInvalidCredentials -> 401 (or 400 for the change-password current check),
// ErrUserNotFound / ErrAddressNotFound -> 404, ErrEmailTaken / ErrUnknownRole
// -> 400, ErrInactiveAccount -> 400 on login.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account inactive")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrAddressNotFound    = errors.New("address not found")
	ErrUnknownRole        = errors.New("unknown role")
)
