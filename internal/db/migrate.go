package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type migration struct {
	version int
	name    string
	sql     string
}

// migrations run once at startup, in order. Append only; never edit a
// shipped entry.
var migrations = []migration{
	{1, "create_users", `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{2, "create_profiles", `
		CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
			full_name TEXT,
			description TEXT,
			sex TEXT,
			birthdate TEXT
		)`},
	{3, "create_courses", `
		CREATE TABLE IF NOT EXISTS courses (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			teacher_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{4, "create_topics", `
		CREATE TABLE IF NOT EXISTS topics (
			id TEXT PRIMARY KEY,
			course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			topic_order INT NOT NULL DEFAULT 0
		)`},
	{5, "create_contents", `
		CREATE TABLE IF NOT EXISTS contents (
			id TEXT PRIMARY KEY,
			topic_id TEXT NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
			content_type TEXT NOT NULL CHECK (content_type IN ('text', 'image')),
			content_text TEXT,
			image_url TEXT,
			content_order INT NOT NULL DEFAULT 0
		)`},
	{6, "create_enrollments", `
		CREATE TABLE IF NOT EXISTS enrollments (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
			enrolled_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT enrollments_user_course_uniq UNIQUE (user_id, course_id)
		)`},
}

// Migrate applies pending migrations. Each one runs in its own
// transaction together with the bookkeeping insert.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)

	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int

	err = pool.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current)

	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := pool.Begin(ctx)

		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, m.sql)

		if err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}

		_, err = tx.Exec(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.version, m.name)

		if err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}

		err = tx.Commit(ctx)

		if err != nil {
			return err
		}
	}

	return nil
}
