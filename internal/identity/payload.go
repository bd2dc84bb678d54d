package identity

import "time"

// PublicUser is the wire representation of an account. The password hash
// never leaves the package boundary.
type PublicUser struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	Role       Role      `json:"role"`
	Department string    `json:"department,omitempty"`
	Position   string    `json:"position,omitempty"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// Public strips credentials for serialization.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		Role:       u.Role,
		Department: u.Department,
		Position:   u.Position,
		AvatarURL:  u.AvatarURL,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
	}
}
