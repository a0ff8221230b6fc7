package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/anylearn/anylearn/internal/config"
	"github.com/anylearn/anylearn/internal/domain/course"
	"github.com/anylearn/anylearn/internal/domain/enrollment"
	"github.com/anylearn/anylearn/internal/http/middlewares"
	"github.com/anylearn/anylearn/internal/utils"
	"github.com/gin-gonic/gin"
)

type EnrollmentStore interface {
	Enroll(ctx context.Context, userID, courseID string) (enrollment.Enrollment, error)
	ListForUser(ctx context.Context, userID string) ([]enrollment.Enrolled, error)
	Unenroll(ctx context.Context, userID, courseID string) error
}

type EnrollmentsHandler struct {
	repo EnrollmentStore
}

func NewEnrollmentsHandler(repo EnrollmentStore) *EnrollmentsHandler {
	return &EnrollmentsHandler{repo: repo}
}

func (h *EnrollmentsHandler) Enroll(ctx *gin.Context) {
	courseID := ctx.Param("id")

	if !utils.IsUUID(courseID) {
		RespondBadRequest(ctx, "course id must be a valid UUID", nil)
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	enr, err := h.repo.Enroll(cctx, userID, courseID)

	if err != nil {
		switch {
		case errors.Is(err, enrollment.ErrAlreadyEnrolled):
			RespondConflict(ctx, "already_enrolled", "You are already enrolled in this course.")
		case errors.Is(err, course.ErrNotFound):
			RespondNotFound(ctx, "Course not found")
		default:
			RespondInternal(ctx, "Could not enroll in course")
		}
		return
	}

	ctx.JSON(http.StatusCreated, enr)
}

// MyCourses is the learner dashboard listing.
func (h *EnrollmentsHandler) MyCourses(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	items, err := h.repo.ListForUser(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not list enrollments")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *EnrollmentsHandler) Unenroll(ctx *gin.Context) {
	courseID := ctx.Param("id")

	if !utils.IsUUID(courseID) {
		RespondBadRequest(ctx, "course id must be a valid UUID", nil)
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	err := h.repo.Unenroll(cctx, userID, courseID)

	if err != nil {
		if errors.Is(err, enrollment.ErrNotEnrolled) {
			RespondNotFound(ctx, "Enrollment not found")
			return
		}

		RespondInternal(ctx, "Could not unenroll from course")
		return
	}

	ctx.Status(http.StatusNoContent)
}
