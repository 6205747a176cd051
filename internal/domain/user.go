package domain

import "time"

// UserProfile is an account that can act on the panel.
type UserProfile struct {
	ID        string
	Email     string
	FullName  string
	Role      Role
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
