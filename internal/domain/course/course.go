package course

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	TeacherID   string    `json:"teacherId"`
	CreatedAt   time.Time `json:"createdAt"`
}

const (
	ContentTypeText  = "text"
	ContentTypeImage = "image"
)

type Topic struct {
	ID       string    `json:"id"`
	CourseID string    `json:"courseId"`
	Title    string    `json:"title"`
	Order    int       `json:"order"`
	Contents []Content `json:"contents,omitempty"`
}

type Content struct {
	ID       string `json:"id"`
	TopicID  string `json:"topicId"`
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
	Order    int    `json:"order"`
}

// Detail is a course together with its ordered topics and contents.
type Detail struct {
	Course
	Topics []Topic `json:"topics"`
}

var (
	ErrNotFound      = errors.New("course not found")
	ErrTopicNotFound = errors.New("topic not found")
)

type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=120"`
	Description string `json:"description" binding:"omitempty,max=1000"`

	// filled from the session, never from the body
	TeacherID string `json:"-"`
}

type CreateTopicRequest struct {
	Title string `json:"title" binding:"required,min=1,max=120"`
	Order int    `json:"order" binding:"omitempty,min=0"`

	CourseID string `json:"-"`
}

type CreateContentRequest struct {
	Type     string `json:"type" binding:"required,oneof=text image"`
	Text     string `json:"text" binding:"omitempty,max=10000"`
	ImageURL string `json:"imageUrl" binding:"omitempty,max=2048,url"`
	Order    int    `json:"order" binding:"omitempty,min=0"`

	TopicID string `json:"-"`
}

// with pointers if optional, it will be nil
type ListCoursesFilter struct {
	TeacherID *string
	Query     *string
	Limit     int
}

func NewFromCreateRequest(req CreateCourseRequest) Course {
	return Course{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		TeacherID:   req.TeacherID,
		CreatedAt:   time.Now().UTC(),
	}
}
