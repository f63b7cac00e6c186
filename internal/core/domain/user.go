package domain

import "time"

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// legacyRoles maps role names emitted by older backends to their canonical
// replacements. Unknown roles pass through unchanged.
var legacyRoles = map[string]string{
	"user": RoleCustomer,
}

// NormalizeRole canonicalizes a role string received at the system boundary.
func NormalizeRole(role string) string {
	if canonical, ok := legacyRoles[role]; ok {
		return canonical
	}
	return role
}

// User models an authenticated storefront actor.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
