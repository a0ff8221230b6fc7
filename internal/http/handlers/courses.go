package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/anylearn/anylearn/internal/config"
	"github.com/anylearn/anylearn/internal/domain/course"
	"github.com/anylearn/anylearn/internal/http/middlewares"
	"github.com/anylearn/anylearn/internal/utils"
	"github.com/gin-gonic/gin"
)

type CourseStore interface {
	Create(ctx context.Context, req course.CreateCourseRequest) (course.Course, error)
	ListCursor(ctx context.Context, filter course.ListCoursesFilter, afterCreatedAt time.Time, afterID string) ([]course.Course, *string, bool, error)
	GetDetail(ctx context.Context, id string) (course.Detail, error)
	AddTopic(ctx context.Context, req course.CreateTopicRequest) (course.Topic, error)
	AddContent(ctx context.Context, req course.CreateContentRequest) (course.Content, error)
}

type CoursesHandler struct {
	repo CourseStore
}

func NewCoursesHandler(repo CourseStore) *CoursesHandler {
	return &CoursesHandler{repo: repo}
}

func (h *CoursesHandler) CreateCourse(ctx *gin.Context) {
	var req course.CreateCourseRequest

	if !BindJSON(ctx, &req) {
		return
	}

	teacherID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	req.TeacherID = teacherID

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	c, err := h.repo.Create(cctx, req)

	if err != nil {
		RespondInternal(ctx, "Could not create course")
		return
	}

	ctx.JSON(http.StatusCreated, c)
}

func (h *CoursesHandler) ListCourses(ctx *gin.Context) {
	var filter course.ListCoursesFilter

	if q := ctx.Query("q"); q != "" {
		filter.Query = &q
	}

	if t := ctx.Query("teacherId"); t != "" {
		if !utils.IsUUID(t) {
			RespondBadRequest(ctx, "teacherId must be a valid UUID", nil)
			return
		}
		filter.TeacherID = &t
	}

	filter.Limit = 20

	if l := ctx.Query("limit"); l != "" {
		n, ok := parsePositiveInt(l, 100)

		if !ok {
			RespondBadRequest(ctx, "limit must be an integer between 1 and 100", nil)
			return
		}

		filter.Limit = n
	}

	var afterCreatedAt time.Time
	var afterID string

	if raw := ctx.Query("cursor"); raw != "" {
		cur, err := utils.DecodeCourseCursor(raw)

		if err != nil {
			RespondBadRequest(ctx, "invalid cursor", nil)
			return
		}

		afterCreatedAt = cur.CreatedAt
		afterID = cur.ID
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	items, next, hasMore, err := h.repo.ListCursor(cctx, filter, afterCreatedAt, afterID)

	if err != nil {
		RespondInternal(ctx, "Could not list courses")
		return
	}

	if items == nil {
		items = []course.Course{}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items":      items,
		"nextCursor": next,
		"hasMore":    hasMore,
	})
}

func (h *CoursesHandler) GetCourse(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "course id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	detail, err := h.repo.GetDetail(cctx, id)

	if err != nil {
		if errors.Is(err, course.ErrNotFound) {
			RespondNotFound(ctx, "Course not found")
			return
		}

		RespondInternal(ctx, "Could not load course")
		return
	}

	// course pages are read-heavy; let clients revalidate cheaply
	RespondJSONWithETag(ctx, http.StatusOK, detail)
}

func (h *CoursesHandler) AddTopic(ctx *gin.Context) {
	courseID := ctx.Param("id")

	if !utils.IsUUID(courseID) {
		RespondBadRequest(ctx, "course id must be a valid UUID", nil)
		return
	}

	var req course.CreateTopicRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// force URL param as the source of truth
	req.CourseID = courseID

	if !h.requireCourseOwner(ctx, courseID) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	t, err := h.repo.AddTopic(cctx, req)

	if err != nil {
		if errors.Is(err, course.ErrNotFound) {
			RespondNotFound(ctx, "Course not found")
			return
		}

		RespondInternal(ctx, "Could not add topic")
		return
	}

	ctx.JSON(http.StatusCreated, t)
}

func (h *CoursesHandler) AddContent(ctx *gin.Context) {
	courseID := ctx.Param("id")
	topicID := ctx.Param("topicId")

	if !utils.IsUUID(courseID) || !utils.IsUUID(topicID) {
		RespondBadRequest(ctx, "ids must be valid UUIDs", nil)
		return
	}

	var req course.CreateContentRequest

	if !BindJSON(ctx, &req) {
		return
	}

	req.TopicID = topicID

	if req.Type == course.ContentTypeText && req.Text == "" {
		RespondBadRequest(ctx, "text content requires a text body", nil)
		return
	}

	if req.Type == course.ContentTypeImage && req.ImageURL == "" {
		RespondBadRequest(ctx, "image content requires an imageUrl", nil)
		return
	}

	if !h.requireCourseOwner(ctx, courseID) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	c, err := h.repo.AddContent(cctx, req)

	if err != nil {
		if errors.Is(err, course.ErrTopicNotFound) {
			RespondNotFound(ctx, "Topic not found")
			return
		}

		RespondInternal(ctx, "Could not add content")
		return
	}

	ctx.JSON(http.StatusCreated, c)
}

// requireCourseOwner loads the course and checks the caller teaches it.
// Admins pass regardless.
func (h *CoursesHandler) requireCourseOwner(ctx *gin.Context, courseID string) bool {
	userID, _ := middlewares.UserIDFromContext(ctx)
	role, _ := middlewares.RoleFromContext(ctx)

	if role == "admin" {
		return true
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	detail, err := h.repo.GetDetail(cctx, courseID)

	if err != nil {
		if errors.Is(err, course.ErrNotFound) {
			RespondNotFound(ctx, "Course not found")
			return false
		}

		RespondInternal(ctx, "Could not load course")
		return false
	}

	if detail.TeacherID != userID {
		RespondError(ctx, http.StatusForbidden, "forbidden", "Only the course teacher can modify it", nil)
		return false
	}

	return true
}

func parsePositiveInt(s string, max int) (int, bool) {
	n := 0

	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')

		if n > max {
			return 0, false
		}
	}

	if n == 0 {
		return 0, false
	}

	return n, true
}
