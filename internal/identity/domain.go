package identity

import "time"

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// User represents an account in the credential store.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FullName     string
	Role         Role
	Department   string
	Position     string
	AvatarURL    string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProfilePatch carries optional profile fields; nil means leave unchanged.
type ProfilePatch struct {
	FullName   *string
	Department *string
	Position   *string
	AvatarURL  *string
}

// EmployeeFilter narrows employee listings.
type EmployeeFilter struct {
	Search     string
	Department string
}
