package enrollment

import (
	"errors"
	"time"
)

type Enrollment struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	CourseID   string    `json:"courseId"`
	EnrolledAt time.Time `json:"enrolledAt"`
}

// Enrolled is an enrollment joined with the course it refers to,
// used on the learner's dashboard listing.
type Enrolled struct {
	Enrollment
	CourseTitle   string `json:"courseTitle"`
	CourseTeacher string `json:"courseTeacherId"`
}

var (
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	ErrNotEnrolled     = errors.New("not enrolled in this course")
)
