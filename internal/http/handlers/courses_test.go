package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anylearn/anylearn/internal/domain/course"
	"github.com/anylearn/anylearn/internal/http/handlers"
	"github.com/anylearn/anylearn/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type fakeCourseStore struct {
	createFn     func(ctx context.Context, req course.CreateCourseRequest) (course.Course, error)
	listCursorFn func(ctx context.Context, filter course.ListCoursesFilter, afterCreatedAt time.Time, afterID string) ([]course.Course, *string, bool, error)
	getDetailFn  func(ctx context.Context, id string) (course.Detail, error)
	addTopicFn   func(ctx context.Context, req course.CreateTopicRequest) (course.Topic, error)
	addContentFn func(ctx context.Context, req course.CreateContentRequest) (course.Content, error)
}

func (f *fakeCourseStore) Create(ctx context.Context, req course.CreateCourseRequest) (course.Course, error) {
	return f.createFn(ctx, req)
}

func (f *fakeCourseStore) ListCursor(ctx context.Context, filter course.ListCoursesFilter, afterCreatedAt time.Time, afterID string) ([]course.Course, *string, bool, error) {
	return f.listCursorFn(ctx, filter, afterCreatedAt, afterID)
}

func (f *fakeCourseStore) GetDetail(ctx context.Context, id string) (course.Detail, error) {
	return f.getDetailFn(ctx, id)
}

func (f *fakeCourseStore) AddTopic(ctx context.Context, req course.CreateTopicRequest) (course.Topic, error) {
	return f.addTopicFn(ctx, req)
}

func (f *fakeCourseStore) AddContent(ctx context.Context, req course.CreateContentRequest) (course.Content, error) {
	return f.addContentFn(ctx, req)
}

// identity simulates a passed RequireSession middleware.
func identity(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middlewares.CtxUserID, userID)
		c.Set(middlewares.CtxRole, role)
		c.Next()
	}
}

const (
	teacherID = "11111111-1111-1111-1111-111111111111"
	courseID  = "22222222-2222-2222-2222-222222222222"
	topicID   = "33333333-3333-3333-3333-333333333333"
)

func TestCreateCourse_TeacherIDComesFromSession(t *testing.T) {
	store := &fakeCourseStore{
		createFn: func(ctx context.Context, req course.CreateCourseRequest) (course.Course, error) {
			if req.TeacherID != teacherID {
				t.Fatalf("teacher id = %s, want the session identity", req.TeacherID)
			}
			return course.NewFromCreateRequest(req), nil
		},
	}

	r := gin.New()
	r.POST("/courses", identity(teacherID, "teacher"), handlers.NewCoursesHandler(store).CreateCourse)

	w := doJSON(r, http.MethodPost, "/courses", `{"title":"Go 101","description":"intro","teacherId":"spoofed"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}
}

func TestListCourses_LimitValidation(t *testing.T) {
	store := &fakeCourseStore{
		listCursorFn: func(ctx context.Context, filter course.ListCoursesFilter, afterCreatedAt time.Time, afterID string) ([]course.Course, *string, bool, error) {
			return nil, nil, false, nil
		},
	}

	r := gin.New()
	r.GET("/courses", handlers.NewCoursesHandler(store).ListCourses)

	for _, tc := range []struct {
		query string
		want  int
	}{
		{"", http.StatusOK},
		{"?limit=5", http.StatusOK},
		{"?limit=100", http.StatusOK},
		{"?limit=0", http.StatusBadRequest},
		{"?limit=101", http.StatusBadRequest},
		{"?limit=abc", http.StatusBadRequest},
		{"?limit=-1", http.StatusBadRequest},
		{"?teacherId=not-a-uuid", http.StatusBadRequest},
		{"?cursor=!!not-a-cursor!!", http.StatusBadRequest},
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/courses"+tc.query, nil)
		r.ServeHTTP(w, req)

		if w.Code != tc.want {
			t.Fatalf("GET /courses%s = %d, want %d", tc.query, w.Code, tc.want)
		}
	}
}

func TestListCourses_EmptyResultIsAnEmptyArray(t *testing.T) {
	store := &fakeCourseStore{
		listCursorFn: func(ctx context.Context, filter course.ListCoursesFilter, afterCreatedAt time.Time, afterID string) ([]course.Course, *string, bool, error) {
			return nil, nil, false, nil
		},
	}

	r := gin.New()
	r.GET("/courses", handlers.NewCoursesHandler(store).ListCourses)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses", nil))

	var resp struct {
		Items   []course.Course `json:"items"`
		HasMore bool            `json:"hasMore"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp.Items == nil {
		t.Fatalf("items should be [] rather than null")
	}
}

func TestGetCourse_InvalidAndMissing(t *testing.T) {
	store := &fakeCourseStore{
		getDetailFn: func(ctx context.Context, id string) (course.Detail, error) {
			return course.Detail{}, course.ErrNotFound
		},
	}

	r := gin.New()
	r.GET("/courses/:id", handlers.NewCoursesHandler(store).GetCourse)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses/not-a-uuid", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed id = %d, want 400", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses/"+courseID, nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown id = %d, want 404", w.Code)
	}
}

func TestAddTopic_OnlyTheOwningTeacher(t *testing.T) {
	store := &fakeCourseStore{
		getDetailFn: func(ctx context.Context, id string) (course.Detail, error) {
			d := course.Detail{}
			d.ID = courseID
			d.TeacherID = teacherID
			return d, nil
		},
		addTopicFn: func(ctx context.Context, req course.CreateTopicRequest) (course.Topic, error) {
			return course.Topic{ID: topicID, CourseID: req.CourseID, Title: req.Title}, nil
		},
	}

	path := "/courses/" + courseID + "/topics"

	// another teacher is rejected
	r := gin.New()
	r.POST("/courses/:id/topics", identity("someone-else", "teacher"), handlers.NewCoursesHandler(store).AddTopic)

	if w := doJSON(r, http.MethodPost, path, `{"title":"Basics"}`); w.Code != http.StatusForbidden {
		t.Fatalf("foreign teacher = %d, want 403", w.Code)
	}

	// the owner passes
	r = gin.New()
	r.POST("/courses/:id/topics", identity(teacherID, "teacher"), handlers.NewCoursesHandler(store).AddTopic)

	if w := doJSON(r, http.MethodPost, path, `{"title":"Basics"}`); w.Code != http.StatusCreated {
		t.Fatalf("owner = %d, want 201", w.Code)
	}

	// an admin passes without owning the course
	r = gin.New()
	r.POST("/courses/:id/topics", identity("admin-1", "admin"), handlers.NewCoursesHandler(store).AddTopic)

	if w := doJSON(r, http.MethodPost, path, `{"title":"Basics"}`); w.Code != http.StatusCreated {
		t.Fatalf("admin = %d, want 201", w.Code)
	}
}

func TestAddContent_TypeSpecificFields(t *testing.T) {
	store := &fakeCourseStore{
		getDetailFn: func(ctx context.Context, id string) (course.Detail, error) {
			d := course.Detail{}
			d.ID = courseID
			d.TeacherID = teacherID
			return d, nil
		},
		addContentFn: func(ctx context.Context, req course.CreateContentRequest) (course.Content, error) {
			return course.Content{ID: "c-1", TopicID: req.TopicID, Type: req.Type}, nil
		},
	}

	r := gin.New()
	r.POST("/courses/:id/topics/:topicId/contents", identity(teacherID, "teacher"), handlers.NewCoursesHandler(store).AddContent)

	path := "/courses/" + courseID + "/topics/" + topicID + "/contents"

	tests := []struct {
		name string
		body string
		want int
	}{
		{"text with body", `{"type":"text","text":"hello"}`, http.StatusCreated},
		{"text without body", `{"type":"text"}`, http.StatusBadRequest},
		{"image with url", `{"type":"image","imageUrl":"https://img.example/a.png"}`, http.StatusCreated},
		{"image without url", `{"type":"image"}`, http.StatusBadRequest},
		{"unknown type", `{"type":"video"}`, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if w := doJSON(r, http.MethodPost, path, tc.body); w.Code != tc.want {
				t.Fatalf("status = %d, want %d, body=%s", w.Code, tc.want, w.Body.String())
			}
		})
	}
}
