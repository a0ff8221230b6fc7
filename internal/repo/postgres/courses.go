package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anylearn/anylearn/internal/domain/course"
	"github.com/anylearn/anylearn/internal/observability"
	"github.com/anylearn/anylearn/internal/utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CoursesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCoursesRepo(pool *pgxpool.Pool, prom *observability.Prom) *CoursesRepo {
	return &CoursesRepo{pool: pool, prom: prom}
}

func (r *CoursesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *CoursesRepo) Create(ctx context.Context, req course.CreateCourseRequest) (course.Course, error) {
	c := course.NewFromCreateRequest(req)

	err := r.observe("courses.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO courses (id, title, description, teacher_id, created_at)
			 VALUES ($1,$2,$3,$4,$5)`,
			c.ID, c.Title, c.Description, c.TeacherID, c.CreatedAt,
		)
		return e
	})

	if err != nil {
		return course.Course{}, err
	}

	return c, nil
}

// ListCursor pages courses by (created_at, id) descending, newest first.
func (r *CoursesRepo) ListCursor(ctx context.Context, filter course.ListCoursesFilter, afterCreatedAt time.Time, afterID string) ([]course.Course, *string, bool, error) {
	var conds []string
	var args []interface{}

	pos := 1

	if filter.TeacherID != nil {
		conds = append(conds, fmt.Sprintf("teacher_id = $%d", pos))
		args = append(args, *filter.TeacherID)
		pos++
	}

	if filter.Query != nil {
		conds = append(conds, fmt.Sprintf("title ILIKE $%d", pos))
		args = append(args, "%"+*filter.Query+"%")
		pos++
	}

	if afterID != "" {
		conds = append(conds, fmt.Sprintf("(created_at, id) < ($%d, $%d)", pos, pos+1))
		args = append(args, afterCreatedAt, afterID)
		pos += 2
	}

	query := `SELECT id, title, description, teacher_id, created_at FROM courses`

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	limit := filter.Limit

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	// fetch one extra row to know whether another page exists
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", pos)
	args = append(args, limit+1)

	var out []course.Course

	err := r.observe("courses.list_cursor", func() error {
		rows, e := r.pool.Query(ctx, query, args...)

		if e != nil {
			return e
		}

		defer rows.Close()

		for rows.Next() {
			var c course.Course
			var description *string

			e = rows.Scan(&c.ID, &c.Title, &description, &c.TeacherID, &c.CreatedAt)

			if e != nil {
				return e
			}

			if description != nil {
				c.Description = *description
			}

			out = append(out, c)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, nil, false, err
	}

	hasMore := len(out) > limit

	if hasMore {
		out = out[:limit]
	}

	var next *string

	if hasMore && len(out) > 0 {
		last := out[len(out)-1]
		cursor, err := utils.EncodeCourseCursor(last.CreatedAt, last.ID)

		if err != nil {
			return nil, nil, false, err
		}

		next = &cursor
	}

	return out, next, hasMore, nil
}

// GetDetail loads a course with its topics and contents, ordered.
func (r *CoursesRepo) GetDetail(ctx context.Context, id string) (course.Detail, error) {
	var d course.Detail

	err := r.observe("courses.get_detail.course", func() error {
		var description *string

		e := r.pool.QueryRow(ctx,
			`SELECT id, title, description, teacher_id, created_at FROM courses WHERE id = $1`,
			id,
		).Scan(&d.ID, &d.Title, &description, &d.TeacherID, &d.CreatedAt)

		if description != nil {
			d.Description = *description
		}

		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return course.Detail{}, course.ErrNotFound
		}

		return course.Detail{}, err
	}

	err = r.observe("courses.get_detail.topics", func() error {
		rows, e := r.pool.Query(ctx,
			`SELECT id, course_id, title, topic_order FROM topics
			 WHERE course_id = $1
			 ORDER BY topic_order ASC, id ASC`,
			id,
		)

		if e != nil {
			return e
		}

		defer rows.Close()

		for rows.Next() {
			var t course.Topic

			e = rows.Scan(&t.ID, &t.CourseID, &t.Title, &t.Order)

			if e != nil {
				return e
			}

			d.Topics = append(d.Topics, t)
		}

		return rows.Err()
	})

	if err != nil {
		return course.Detail{}, err
	}

	if len(d.Topics) == 0 {
		return d, nil
	}

	byTopic := make(map[string]int, len(d.Topics))

	for i, t := range d.Topics {
		byTopic[t.ID] = i
	}

	err = r.observe("courses.get_detail.contents", func() error {
		rows, e := r.pool.Query(ctx,
			`SELECT c.id, c.topic_id, c.content_type, c.content_text, c.image_url, c.content_order
			 FROM contents c
			 JOIN topics t ON t.id = c.topic_id
			 WHERE t.course_id = $1
			 ORDER BY c.content_order ASC, c.id ASC`,
			id,
		)

		if e != nil {
			return e
		}

		defer rows.Close()

		for rows.Next() {
			var c course.Content
			var text, imageURL *string

			e = rows.Scan(&c.ID, &c.TopicID, &c.Type, &text, &imageURL, &c.Order)

			if e != nil {
				return e
			}

			if text != nil {
				c.Text = *text
			}

			if imageURL != nil {
				c.ImageURL = *imageURL
			}

			if i, ok := byTopic[c.TopicID]; ok {
				d.Topics[i].Contents = append(d.Topics[i].Contents, c)
			}
		}

		return rows.Err()
	})

	if err != nil {
		return course.Detail{}, err
	}

	return d, nil
}

func (r *CoursesRepo) AddTopic(ctx context.Context, req course.CreateTopicRequest) (course.Topic, error) {
	t := course.Topic{
		ID:       uuid.NewString(),
		CourseID: req.CourseID,
		Title:    req.Title,
		Order:    req.Order,
	}

	err := r.observe("courses.add_topic", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO topics (id, course_id, title, topic_order) VALUES ($1,$2,$3,$4)`,
			t.ID, t.CourseID, t.Title, t.Order,
		)
		return e
	})

	if err != nil {
		if isForeignKeyViolation(err) {
			return course.Topic{}, course.ErrNotFound
		}

		return course.Topic{}, err
	}

	return t, nil
}

func (r *CoursesRepo) AddContent(ctx context.Context, req course.CreateContentRequest) (course.Content, error) {
	c := course.Content{
		ID:       uuid.NewString(),
		TopicID:  req.TopicID,
		Type:     req.Type,
		Text:     req.Text,
		ImageURL: req.ImageURL,
		Order:    req.Order,
	}

	err := r.observe("courses.add_content", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO contents (id, topic_id, content_type, content_text, image_url, content_order)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			c.ID, c.TopicID, c.Type, c.Text, c.ImageURL, c.Order,
		)
		return e
	})

	if err != nil {
		if isForeignKeyViolation(err) {
			return course.Content{}, course.ErrTopicNotFound
		}

		return course.Content{}, err
	}

	return c, nil
}
