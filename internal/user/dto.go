package user

import (
	"errors"
	"regexp"
	"strings"

	"github.com/asc-academy/evaluation-portal/internal"
	"github.com/asc-academy/evaluation-portal/internal/department"
)

var emailPattern = regexp.MustCompile(`^[\w.\-+]+@([\w\-]+\.)+[\w\-]{2,}$`)

// UpdateUserDTO uses pointers so an absent field leaves the stored value
// untouched.
type UpdateUserDTO struct {
	Email          *string        `json:"email,omitempty"`
	Password       *string        `json:"password,omitempty"`
	Role           *internal.Role `json:"userType,omitempty"`
	FirstName      *string        `json:"firstName,omitempty"`
	LastName       *string        `json:"lastName,omitempty"`
	AcademicDegree *string        `json:"academicDegree,omitempty"`
	AverageScore   *float64       `json:"averageScore,omitempty"`
	DepartmentID   *string        `json:"departmentId,omitempty"`
}

func (dto *UpdateUserDTO) Validate() error {
	if dto.Email != nil {
		*dto.Email = strings.TrimSpace(strings.ToLower(*dto.Email))
		if !emailPattern.MatchString(*dto.Email) {
			return errors.New("please provide a valid email")
		}
	}
	if dto.Password != nil && len(*dto.Password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	if dto.Role != nil && !dto.Role.Valid() {
		return errors.New("userType must be User or Admin")
	}
	if dto.AverageScore != nil && (*dto.AverageScore < 0 || *dto.AverageScore > 100) {
		return errors.New("averageScore must be between 0 and 100")
	}
	return nil
}

// ListFilter narrows user listings. Zero values impose no constraint; both
// filters combine with AND.
type ListFilter struct {
	DepartmentID string
	Year         int
}

// View is a user read model with the department reference resolved when the
// department still exists.
type View struct {
	*User
	Department *department.Ref `json:"department,omitempty"`
}

func NewView(u *User, ref *department.Ref) *View {
	return &View{User: u, Department: ref}
}
