package auth

import (
	"errors"
	"regexp"
	"strings"

	"github.com/asc-academy/evaluation-portal/internal"
)

var emailPattern = regexp.MustCompile(`^[\w.\-+]+@([\w\-]+\.)+[\w\-]{2,}$`)

// RegisterDTO is the transport shape for account creation, self-service or
// admin-driven alike.
type RegisterDTO struct {
	Email          string        `json:"email"`
	Password       string        `json:"password"`
	Role           internal.Role `json:"userType,omitempty"`
	DepartmentID   *string       `json:"departmentId,omitempty"`
	FirstName      string        `json:"firstName,omitempty"`
	LastName       string        `json:"lastName,omitempty"`
	AcademicDegree string        `json:"academicDegree,omitempty"`
	AverageScore   *float64      `json:"averageScore,omitempty"`
}

func (dto *RegisterDTO) Validate() error {
	dto.Email = strings.TrimSpace(strings.ToLower(dto.Email))
	if dto.Email == "" {
		return errors.New("email is required")
	}
	if !emailPattern.MatchString(dto.Email) {
		return errors.New("please provide a valid email")
	}
	if len(dto.Password) < 6 {
		return ErrPasswordTooShort
	}
	if dto.Role == "" {
		dto.Role = internal.RoleUser
	}
	if !dto.Role.Valid() {
		return errors.New("userType must be User or Admin")
	}
	if dto.Role == internal.RoleUser && (dto.DepartmentID == nil || *dto.DepartmentID == "") {
		return errors.New("departmentId is required for User accounts")
	}
	if dto.AverageScore != nil && (*dto.AverageScore < 0 || *dto.AverageScore > 100) {
		return errors.New("averageScore must be between 0 and 100")
	}
	return nil
}

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (dto *LoginDTO) Validate() error {
	dto.Email = strings.TrimSpace(strings.ToLower(dto.Email))
	if dto.Email == "" {
		return errors.New("email is required")
	}
	if dto.Password == "" {
		return errors.New("password is required")
	}
	return nil
}
