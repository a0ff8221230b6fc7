package memory

import (
	"context"
	"sync"
	"time"

	"github.com/anylearn/anylearn/internal/domain/account"
	"github.com/google/uuid"
)

// AccountsRepo is an in-memory account store. The mutex around Insert
// plays the role of the database unique constraints, so the same
// exactly-one-winner guarantee holds for concurrent registrations.
type AccountsRepo struct {
	mu    sync.RWMutex
	items map[string]account.Account // keyed by id
}

func NewAccountsRepo() *AccountsRepo {
	return &AccountsRepo{
		items: make(map[string]account.Account),
	}
}

func (r *AccountsRepo) FindByUsername(_ context.Context, username string) (account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.items {
		if a.Username == username {
			return a, nil
		}
	}

	return account.Account{}, account.ErrNotFound
}

func (r *AccountsRepo) FindByUsernameOrEmail(_ context.Context, username, email string) (account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.items {
		if a.Username == username || a.Email == email {
			return a, nil
		}
	}

	return account.Account{}, account.ErrNotFound
}

func (r *AccountsRepo) GetByID(_ context.Context, id string) (account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[id]

	if !ok {
		return account.Account{}, account.ErrNotFound
	}

	return a, nil
}

func (r *AccountsRepo) Insert(_ context.Context, acc account.NewAccount) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// uniqueness enforced under the same lock as the write
	for _, existing := range r.items {
		if existing.Username == acc.Username || existing.Email == acc.Email {
			return "", account.ErrDuplicate
		}
	}

	a := account.Account{
		ID:           uuid.NewString(),
		Username:     acc.Username,
		Email:        acc.Email,
		PasswordHash: acc.PasswordHash,
		Role:         acc.Role,
		CreatedAt:    time.Now().UTC(),
	}

	r.items[a.ID] = a

	return a.ID, nil
}
