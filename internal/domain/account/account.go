package account

import (
	"errors"
	"time"
)

const (
	RoleLearner = "learner"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewAccount is the insert payload. The store assigns the id and created_at.
type NewAccount struct {
	Username     string
	Email        string
	PasswordHash string
	Role         string
}

var (
	ErrNotFound = errors.New("account not found")

	// returned by stores when a username or email unique constraint fires.
	ErrDuplicate = errors.New("username or email already in use")
)

// ValidRole reports whether role may be chosen at registration time.
// Admin accounts are only seeded at startup, never self-registered.
func ValidRole(role string) bool {
	return role == RoleLearner || role == RoleTeacher
}
