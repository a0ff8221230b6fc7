package db

import (
	"context"
	"errors"
	"time"

	"github.com/anylearn/anylearn/internal/config"
	"github.com/anylearn/anylearn/internal/domain/account"
	"github.com/anylearn/anylearn/internal/security"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminUser seeds the admin account from the environment. Admins
// never come through the registration flow.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config, hasher *security.Hasher) error {
	if cfg.AdminUsername == "" || cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, cfg.AdminUsername).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := hasher.Hash(cfg.AdminPassword)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, role, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		`,
		uuid.NewString(), cfg.AdminUsername, cfg.AdminEmail, hash, account.RoleAdmin, time.Now().UTC(),
	)

	return err
}
