package domain

import "time"

// Role enumerates the access levels the dashboard backend assigns to users.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// AccountStatus enumerates possible account states.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusSuspended AccountStatus = "suspended"
	AccountStatusPending   AccountStatus = "pending"
)

// Identity is the authenticated user's profile as returned by the backend
// session endpoints. It is replaced wholesale on every successful session
// check or login and never partially mutated.
type Identity struct {
	ID        string        `json:"id"`
	Email     string        `json:"email"`
	FirstName string        `json:"first_name"`
	LastName  string        `json:"last_name"`
	Role      Role          `json:"role"`
	Status    AccountStatus `json:"status"`
	CreatedAt *time.Time    `json:"created_at,omitempty"`
}

// FullName joins the identity's first and last name for display.
func (i Identity) FullName() string {
	switch {
	case i.FirstName == "":
		return i.LastName
	case i.LastName == "":
		return i.FirstName
	default:
		return i.FirstName + " " + i.LastName
	}
}

// Credentials carries a login request. DeviceID is the locally persisted
// device identifier and travels as the X-Device-Id header rather than in the
// request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	DeviceID string `json:"-"`
}

// Registration carries an account creation request.
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
