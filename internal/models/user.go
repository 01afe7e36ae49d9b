package models

import "fmt"

// Role is the authorization level of an account.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// ParseRole converts a stored or token-carried value into a Role.
func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case RoleCustomer, RoleAdmin:
		return Role(value), nil
	}
	return "", fmt.Errorf("unknown role %q", value)
}

// User represents a customer or back-office account.
type User struct {
	BaseModel
	Name         string `json:"name"`
	Email        string `gorm:"uniqueIndex" json:"email"`
	Phone        string `json:"phone"`
	PasswordHash string `json:"-"`
	Role         Role   `gorm:"type:varchar(16);default:customer" json:"role"`
}

// IsAdmin reports whether the user may access the back-office.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
