package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/anylearn/anylearn/internal/domain/account"
	"github.com/anylearn/anylearn/internal/password"
	"github.com/anylearn/anylearn/internal/session"
)

// Keep these interfaces small so tests can fake them easily.

type AccountStore interface {
	FindByUsername(ctx context.Context, username string) (account.Account, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (account.Account, error)
	Insert(ctx context.Context, acc account.NewAccount) (string, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

// Authenticator owns the register and login flows. It never talks HTTP;
// the handlers translate its outcomes.
type Authenticator struct {
	accounts AccountStore
	sessions session.Store
	hasher   PasswordHasher
	log      *slog.Logger
}

func NewAuthenticator(accounts AccountStore, sessions session.Store, hasher PasswordHasher, log *slog.Logger) *Authenticator {
	return &Authenticator{
		accounts: accounts,
		sessions: sessions,
		hasher:   hasher,
		log:      log,
	}
}

type RegisterRequest struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	Role            string
}

func (a *Authenticator) Register(ctx context.Context, req RegisterRequest) RegisterOutcome {
	// policy first, before any store traffic
	res := password.Validate(req.Password)

	if !res.OK() {
		return registerRejected(res.Rule, res.Message)
	}

	if !password.ValidEmail(req.Email) {
		return registerRejected(ReasonEmailInvalid, "email address is not valid")
	}

	if req.ConfirmPassword != req.Password {
		return registerRejected(ReasonPasswordMismatch, "passwords do not match")
	}

	if !account.ValidRole(req.Role) {
		return registerRejected(ReasonRoleInvalid, "role must be learner or teacher")
	}

	// optimistic duplicate check; the unique constraints on insert are
	// the real guarantee under concurrency
	_, err := a.accounts.FindByUsernameOrEmail(ctx, req.Username, req.Email)

	if err == nil {
		return registerRejected(ReasonAccountTaken, "username or email already in use")
	}

	if !errors.Is(err, account.ErrNotFound) {
		a.log.ErrorContext(ctx, "register: account lookup failed", "err", err)
		return registerStoreError(err)
	}

	hash, err := a.hasher.Hash(req.Password)

	if err != nil {
		a.log.ErrorContext(ctx, "register: hashing failed", "err", err)
		return registerStoreError(err)
	}

	id, err := a.accounts.Insert(ctx, account.NewAccount{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
	})

	if err != nil {
		// a concurrent registration won the race between check and insert
		if errors.Is(err, account.ErrDuplicate) {
			return registerRejected(ReasonAccountTaken, "username or email already in use")
		}

		a.log.ErrorContext(ctx, "register: insert failed", "err", err)
		return registerStoreError(err)
	}

	return registerCreated(id)
}

func (a *Authenticator) Login(ctx context.Context, username, plainPassword string) LoginOutcome {
	acc, err := a.accounts.FindByUsername(ctx, username)

	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			// same shape as a wrong password
			return loginRejected()
		}

		a.log.ErrorContext(ctx, "login: account lookup failed", "err", err)
		return loginStoreError(err)
	}

	err = a.hasher.Compare(acc.PasswordHash, plainPassword)

	if err != nil {
		return loginRejected()
	}

	sess, err := a.sessions.Create(ctx, acc.ID, acc.Role)

	if err != nil {
		a.log.ErrorContext(ctx, "login: session creation failed", "err", err)
		return loginStoreError(err)
	}

	return loginAuthenticated(sess)
}

// Logout destroys the server-side session for a token. Unknown or
// malformed tokens are a no-op.
func (a *Authenticator) Logout(ctx context.Context, token string) error {
	return a.sessions.Destroy(ctx, token)
}
