package session

import (
	"context"
	"errors"
	"time"
)

// Session is the ephemeral association between a signed token and an
// authenticated account. Only the id and role travel with it.
type Session struct {
	Token     string    `json:"-"`
	ID        string    `json:"-"`
	AccountID string    `json:"accountId"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

var ErrNotFound = errors.New("session not found or expired")

// Store is the server-side session collaborator. Tokens issued by Create
// stay valid until Destroy is called or the TTL runs out.
type Store interface {
	Create(ctx context.Context, accountID, role string) (Session, error)
	Verify(ctx context.Context, token string) (Session, error)
	Destroy(ctx context.Context, token string) error
}
