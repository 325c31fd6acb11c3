// Package user implements accounts: registration, login, profiles, and
// the JWT credentials the rest of the API authenticates with.
package user

import "time"

// Roles assignable to an account.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account record. PasswordHash is a bcrypt digest and never
// leaves the service layer.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         string
	Address      Address
	Phone        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Address is the flattened shipping address kept on the account.
type Address struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Country string
}

// IsAdmin reports whether the account has the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
