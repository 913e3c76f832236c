package domain

import "time"

// DefaultRoleName is attached to every newly registered user unless the
// deployment configures another one.
const DefaultRoleName = "USER"

type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"` // unique, case-sensitive
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
