package postgres

import (
	"context"
	"errors"

	"github.com/anylearn/anylearn/internal/domain/profile"
	"github.com/anylearn/anylearn/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfilesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewProfilesRepo(pool *pgxpool.Pool, prom *observability.Prom) *ProfilesRepo {
	return &ProfilesRepo{pool: pool, prom: prom}
}

func (r *ProfilesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *ProfilesRepo) GetByUserID(ctx context.Context, userID string) (profile.Profile, error) {
	var p profile.Profile
	var fullName, description, sex, birthdate *string

	err := r.observe("profiles.get_by_user", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, user_id, full_name, description, sex, birthdate
			 FROM profiles WHERE user_id = $1`,
			userID,
		).Scan(&p.ID, &p.UserID, &fullName, &description, &sex, &birthdate)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Profile{}, profile.ErrNotFound
		}

		return profile.Profile{}, err
	}

	if fullName != nil {
		p.FullName = *fullName
	}
	if description != nil {
		p.Description = *description
	}
	if sex != nil {
		p.Sex = *sex
	}
	if birthdate != nil {
		p.Birthdate = *birthdate
	}

	return p, nil
}

// Upsert writes the profile for a user, creating the row on first save.
// The user_id unique constraint makes this safe under concurrency.
func (r *ProfilesRepo) Upsert(ctx context.Context, req profile.UpdateProfileRequest) (profile.Profile, error) {
	p := profile.Profile{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		FullName:    req.FullName,
		Description: req.Description,
		Sex:         req.Sex,
		Birthdate:   req.Birthdate,
	}

	err := r.observe("profiles.upsert", func() error {
		return r.pool.QueryRow(ctx, `
			INSERT INTO profiles (id, user_id, full_name, description, sex, birthdate)
			VALUES ($1,$2,$3,$4,$5,$6)
			ON CONFLICT (user_id) DO UPDATE
			SET full_name = EXCLUDED.full_name,
				description = EXCLUDED.description,
				sex = EXCLUDED.sex,
				birthdate = EXCLUDED.birthdate
			RETURNING id
		`, p.ID, p.UserID, p.FullName, p.Description, p.Sex, p.Birthdate).Scan(&p.ID)
	})

	if err != nil {
		return profile.Profile{}, err
	}

	return p, nil
}
