package profile

import "errors"

type Profile struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	FullName    string `json:"fullName,omitempty"`
	Description string `json:"description,omitempty"`
	Sex         string `json:"sex,omitempty"`
	Birthdate   string `json:"birthdate,omitempty"`
}

var ErrNotFound = errors.New("profile not found")

type UpdateProfileRequest struct {
	FullName    string `json:"fullName" binding:"omitempty,max=120"`
	Description string `json:"description" binding:"omitempty,max=1000"`
	Sex         string `json:"sex" binding:"omitempty,oneof=male female other"`
	Birthdate   string `json:"birthdate" binding:"omitempty,datetime=2006-01-02"`

	UserID string `json:"-"`
}
