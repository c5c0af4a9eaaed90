// Package auth owns user accounts, token issuance and the authentication and
// authorization middleware.
package auth

import "time"

// AdminRole holds every permission implicitly.
const AdminRole = "admin"

// DefaultRole is assigned to registrations that do not name a role.
const DefaultRole = "user"

// Role is a coarse authorization label attached to a user.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User is a stored account. The password hash never serializes.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	RoleID       int64     `json:"roleId"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Principal is the authenticated actor for one request. It exists only after
// token verification and a successful user lookup, and only for the request's
// lifetime.
type Principal struct {
	ID    int64
	Email string
	Role  string
}

// IsAdmin reports whether the principal holds the admin override.
func (p Principal) IsAdmin() bool {
	return p.Role == AdminRole
}
