package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/anylearn/anylearn/internal/domain/course"
	"github.com/anylearn/anylearn/internal/domain/enrollment"
	"github.com/anylearn/anylearn/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EnrollmentsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewEnrollmentsRepo(pool *pgxpool.Pool, prom *observability.Prom) *EnrollmentsRepo {
	return &EnrollmentsRepo{pool: pool, prom: prom}
}

func (r *EnrollmentsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Enroll checks the course exists, then inserts. The unique constraint on
// (user_id, course_id) settles concurrent duplicate attempts.
func (r *EnrollmentsRepo) Enroll(ctx context.Context, userID, courseID string) (enr enrollment.Enrollment, err error) {
	var exists bool

	err = r.observe("enrollments.enroll.course_check", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM courses WHERE id = $1)`, courseID,
		).Scan(&exists)
	})

	if err != nil {
		return
	}

	if !exists {
		err = course.ErrNotFound
		return
	}

	enr = enrollment.Enrollment{
		ID:         uuid.NewString(),
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
	}

	err = r.observe("enrollments.enroll.insert", func() error {
		_, e := r.pool.Exec(ctx, `
			INSERT INTO enrollments (id, user_id, course_id, enrolled_at)
			VALUES ($1,$2,$3,$4)
		`, enr.ID, enr.UserID, enr.CourseID, enr.EnrolledAt)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "enrollments_user_course_uniq" {
			err = enrollment.ErrAlreadyEnrolled
			return
		}
		return
	}

	return
}

// ListForUser returns the learner's enrollments joined with the course.
func (r *EnrollmentsRepo) ListForUser(ctx context.Context, userID string) ([]enrollment.Enrolled, error) {
	out := make([]enrollment.Enrolled, 0)

	err := r.observe("enrollments.list_for_user", func() error {
		rows, e := r.pool.Query(ctx, `
			SELECT e.id, e.user_id, e.course_id, e.enrolled_at, c.title, c.teacher_id
			FROM enrollments e
			JOIN courses c ON c.id = e.course_id
			WHERE e.user_id = $1
			ORDER BY e.enrolled_at DESC, e.id DESC
		`, userID)

		if e != nil {
			return e
		}

		defer rows.Close()

		for rows.Next() {
			var en enrollment.Enrolled

			e = rows.Scan(&en.ID, &en.UserID, &en.CourseID, &en.EnrolledAt, &en.CourseTitle, &en.CourseTeacher)

			if e != nil {
				return e
			}

			out = append(out, en)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// Unenroll removes a learner from a course. A missing row maps to
// ErrNotEnrolled so callers stay storage agnostic.
func (r *EnrollmentsRepo) Unenroll(ctx context.Context, userID, courseID string) error {
	var tag pgconn.CommandTag

	err := r.observe("enrollments.unenroll", func() error {
		var e error
		tag, e = r.pool.Exec(ctx,
			`DELETE FROM enrollments WHERE user_id = $1 AND course_id = $2`,
			userID, courseID,
		)
		return e
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return enrollment.ErrNotEnrolled
	}

	return nil
}
