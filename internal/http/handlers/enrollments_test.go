package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anylearn/anylearn/internal/domain/course"
	"github.com/anylearn/anylearn/internal/domain/enrollment"
	"github.com/anylearn/anylearn/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type fakeEnrollmentStore struct {
	enrollFn   func(ctx context.Context, userID, courseID string) (enrollment.Enrollment, error)
	listFn     func(ctx context.Context, userID string) ([]enrollment.Enrolled, error)
	unenrollFn func(ctx context.Context, userID, courseID string) error
}

func (f *fakeEnrollmentStore) Enroll(ctx context.Context, userID, courseID string) (enrollment.Enrollment, error) {
	return f.enrollFn(ctx, userID, courseID)
}

func (f *fakeEnrollmentStore) ListForUser(ctx context.Context, userID string) ([]enrollment.Enrolled, error) {
	return f.listFn(ctx, userID)
}

func (f *fakeEnrollmentStore) Unenroll(ctx context.Context, userID, courseID string) error {
	return f.unenrollFn(ctx, userID, courseID)
}

const learnerID = "44444444-4444-4444-4444-444444444444"

func TestEnroll_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"created", nil, http.StatusCreated},
		{"already enrolled", enrollment.ErrAlreadyEnrolled, http.StatusConflict},
		{"unknown course", course.ErrNotFound, http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeEnrollmentStore{
				enrollFn: func(ctx context.Context, userID, cID string) (enrollment.Enrollment, error) {
					if tc.err != nil {
						return enrollment.Enrollment{}, tc.err
					}
					return enrollment.Enrollment{ID: "e-1", UserID: userID, CourseID: cID}, nil
				},
			}

			r := gin.New()
			r.POST("/courses/:id/enroll", identity(learnerID, "learner"), handlers.NewEnrollmentsHandler(store).Enroll)

			w := doJSON(r, http.MethodPost, "/courses/"+courseID+"/enroll", "")

			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d, body=%s", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestUnenroll_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"removed", nil, http.StatusNoContent},
		{"never enrolled", enrollment.ErrNotEnrolled, http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeEnrollmentStore{
				unenrollFn: func(ctx context.Context, userID, cID string) error {
					return tc.err
				},
			}

			r := gin.New()
			r.DELETE("/courses/:id/enroll", identity(learnerID, "learner"), handlers.NewEnrollmentsHandler(store).Unenroll)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/courses/"+courseID+"/enroll", nil))

			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d, body=%s", w.Code, tc.want, w.Body.String())
			}
		})
	}
}
