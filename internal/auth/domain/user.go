package domain

import (
	"slices"
	"time"
)

// User is the principal record. Roles holds role names, not ids.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // argon2id PHC encoded
	FirstName    string
	LastName     string
	Active       bool
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) HasRole(name string) bool {
	return slices.Contains(u.Roles, name)
}

// Info returns the sanitized projection of u. The password hash never leaves
// the service layer.
func (u User) Info() UserInfo {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return UserInfo{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Active:    u.Active,
		Roles:     roles,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserInfo is what the API returns about a user.
type UserInfo struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Active    bool      `json:"active"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
