package department

import (
	"errors"
	"strings"
	"time"
)

// Department is a global reference table: owned by no one, referenced by
// users through DepartmentID.
type Department struct {
	ID          string    `json:"id" gorm:"primaryKey;column:id"`
	Name        string    `json:"name" gorm:"column:name;uniqueIndex;not null"`
	Description string    `json:"description,omitempty" gorm:"column:description"`
	CreatedAt   time.Time `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"column:updated_at"`
}

func (Department) TableName() string {
	return "departments"
}

// Ref is a department reference that may or may not be populated. Call sites
// must branch on Resolved instead of assuming a name is present.
type Ref struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Resolved bool   `json:"-"`
}

// Unresolved wraps a bare department id.
func Unresolved(id string) Ref {
	return Ref{ID: id}
}

// Resolved pairs a department id with its loaded name.
func Resolved(id, name string) Ref {
	return Ref{ID: id, Name: name, Resolved: true}
}

const (
	maxNameLen        = 50
	maxDescriptionLen = 500
)

// UpsertDepartmentDTO carries create and update payloads.
type UpsertDepartmentDTO struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (dto *UpsertDepartmentDTO) Validate() error {
	dto.Name = strings.TrimSpace(dto.Name)
	dto.Description = strings.TrimSpace(dto.Description)
	if dto.Name == "" {
		return errors.New("department name is required")
	}
	if len(dto.Name) > maxNameLen {
		return errors.New("department name must be 50 characters or less")
	}
	if len(dto.Description) > maxDescriptionLen {
		return errors.New("description must be 500 characters or less")
	}
	return nil
}
