package user

import (
	"time"

	"github.com/asc-academy/evaluation-portal/internal"
)

// User is an account record. PasswordHash never serializes; every read path
// returns this struct and relies on the json:"-" to keep the hash server-side.
type User struct {
	ID                     string        `json:"id" gorm:"primaryKey;column:id"`
	Email                  string        `json:"email" gorm:"column:email;uniqueIndex;not null"`
	PasswordHash           string        `json:"-" gorm:"column:password_hash;not null"`
	Role                   internal.Role `json:"userType" gorm:"column:user_type;not null;default:User"`
	FirstName              string        `json:"firstName,omitempty" gorm:"column:first_name"`
	LastName               string        `json:"lastName,omitempty" gorm:"column:last_name"`
	AcademicDegree         string        `json:"academicDegree,omitempty" gorm:"column:academic_degree"`
	AverageScore           *float64      `json:"averageScore,omitempty" gorm:"column:average_score"`
	EvaluationAverageScore *float64      `json:"evaluationAverageScore,omitempty" gorm:"column:evaluation_average_score"`
	DepartmentID           *string       `json:"departmentId,omitempty" gorm:"column:department_id"`
	CreatedAt              time.Time     `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt              time.Time     `json:"updatedAt" gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.LastName
	}
}

func (u *User) Identity() *internal.Identity {
	return &internal.Identity{ID: u.ID, Email: u.Email, Role: u.Role}
}
