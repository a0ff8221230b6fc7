package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/anylearn/anylearn/internal/domain/account"
	"github.com/anylearn/anylearn/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccountsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewAccountsRepo(pool *pgxpool.Pool, prom *observability.Prom) *AccountsRepo {
	return &AccountsRepo{pool: pool, prom: prom}
}

func (r *AccountsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *AccountsRepo) FindByUsername(ctx context.Context, username string) (account.Account, error) {
	var a account.Account

	err := r.observe("accounts.find_by_username", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, username, email, password_hash, role, created_at
			 FROM users
			 WHERE username = $1`,
			username,
		).Scan(
			&a.ID,
			&a.Username,
			&a.Email,
			&a.PasswordHash,
			&a.Role,
			&a.CreatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, account.ErrNotFound
		}

		return account.Account{}, err
	}
	return a, nil
}

func (r *AccountsRepo) FindByUsernameOrEmail(ctx context.Context, username, email string) (account.Account, error) {
	var a account.Account

	err := r.observe("accounts.find_by_username_or_email", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, username, email, password_hash, role, created_at
			 FROM users
			 WHERE username = $1 OR email = $2
			 LIMIT 1`,
			username, email,
		).Scan(
			&a.ID,
			&a.Username,
			&a.Email,
			&a.PasswordHash,
			&a.Role,
			&a.CreatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, account.ErrNotFound
		}

		return account.Account{}, err
	}
	return a, nil
}

func (r *AccountsRepo) GetByID(ctx context.Context, id string) (account.Account, error) {
	var a account.Account

	err := r.observe("accounts.get_by_id", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, username, email, password_hash, role, created_at
			 FROM users
			 WHERE id = $1`,
			id,
		).Scan(
			&a.ID,
			&a.Username,
			&a.Email,
			&a.PasswordHash,
			&a.Role,
			&a.CreatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, account.ErrNotFound
		}

		return account.Account{}, err
	}
	return a, nil
}

// Insert creates the account row. The unique constraints on username and
// email are the final word against concurrent registrations.
func (r *AccountsRepo) Insert(ctx context.Context, acc account.NewAccount) (string, error) {
	id := uuid.NewString()

	err := r.observe("accounts.insert", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO users (id, username, email, password_hash, role, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			id, acc.Username, acc.Email, acc.PasswordHash, acc.Role, time.Now().UTC(),
		)
		return e
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return "", account.ErrDuplicate
		}

		return "", err
	}

	return id, nil
}
