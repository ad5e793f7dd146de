package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleAgent = "agent"
	RoleUser  = "user"
)

// Admin is a back-office operator. Inactive admins authenticate like anyone
// else is rejected: they cannot log in and their tokens fail the admin guard.
type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	IsActive     bool      `json:"is_active"`
	LastLogin    time.Time `json:"last_login,omitzero"`
	CreatedAt    time.Time `json:"created_at"`
}

// User is a regular marketplace account (buyer/browser).
type User struct {
	ID           string          `json:"id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Role         string          `json:"role"`
	Preferences  UserPreferences `json:"preferences"`
	CreatedAt    time.Time       `json:"created_at"`
}

// UserPreferences carries the search defaults a user saved on their profile.
type UserPreferences struct {
	PropertyTypes []string `json:"property_types,omitempty"`
	Locations     []string `json:"locations,omitempty"`
	PriceMin      int64    `json:"price_min,omitempty"`
	PriceMax      int64    `json:"price_max,omitempty"`
}

// Principal is the resolved identity attached to an authorized request.
// Exactly one of Admin, Agent, User is non-nil; Role tags which one.
// When the same id exists in more than one collection the probe order
// admin > agent > user decides, and that precedence is part of the contract,
// not an accident of query order.
type Principal struct {
	ID    string `json:"id"`
	Role  string `json:"role"`
	Admin *Admin `json:"admin,omitempty"`
	Agent *Agent `json:"agent,omitempty"`
	User  *User  `json:"user,omitempty"`
}
