package enums

import "fmt"

// UserRole is the coarse authorization role carried in access tokens.
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

func ParseUserRole(value string) (UserRole, error) {
	r := UserRole(value)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid user role %q", value)
	}
	return r, nil
}
