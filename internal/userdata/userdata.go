package userdata

import (
	"errors"
	"strings"
	"time"
)

// UserData is a freeform note attached to a user account.
type UserData struct {
	ID        string    `json:"id" gorm:"primaryKey;column:id"`
	UserID    string    `json:"userId" gorm:"column:user_id;not null;index"`
	Title     string    `json:"title" gorm:"column:title;not null"`
	Content   string    `json:"content" gorm:"column:content"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"column:updated_at"`
}

func (UserData) TableName() string {
	return "user_data"
}

type CreateUserDataDTO struct {
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
}

func (dto *CreateUserDataDTO) Validate() error {
	dto.Title = strings.TrimSpace(dto.Title)
	if dto.Title == "" {
		return errors.New("title is required")
	}
	if len(dto.Title) > 200 {
		return errors.New("title must not exceed 200 characters")
	}
	if len(dto.Content) > 5000 {
		return errors.New("content must not exceed 5000 characters")
	}
	return nil
}

// UpdateUserDataDTO uses pointers so an absent field leaves the stored value
// untouched.
type UpdateUserDataDTO struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

func (dto *UpdateUserDataDTO) Validate() error {
	if dto.Title != nil {
		*dto.Title = strings.TrimSpace(*dto.Title)
		if *dto.Title == "" {
			return errors.New("title cannot be empty")
		}
		if len(*dto.Title) > 200 {
			return errors.New("title must not exceed 200 characters")
		}
	}
	if dto.Content != nil && len(*dto.Content) > 5000 {
		return errors.New("content must not exceed 5000 characters")
	}
	return nil
}

// ListFilter narrows the admin-wide listing. DepartmentID filters through the
// owning user's department membership.
type ListFilter struct {
	DepartmentID string
}
