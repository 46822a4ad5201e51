package evaluation

import (
	"errors"
	"strings"
	"time"
)

// CreateEvaluationDTO carries a new assessment round. Any averageScore in the
// request body is ignored; the stored value is always derived from Criteria.
type CreateEvaluationDTO struct {
	UserID           string   `json:"userId"`
	EvaluationNumber int      `json:"evaluationNumber"`
	Criteria         Criteria `json:"criteria"`
	Comments         string   `json:"comments,omitempty"`
}

func (dto *CreateEvaluationDTO) Validate() error {
	dto.UserID = strings.TrimSpace(dto.UserID)
	if dto.UserID == "" {
		return errors.New("userId is required")
	}
	if !ValidEvaluationNumber(dto.EvaluationNumber) {
		return ErrInvalidEvaluationNumber
	}
	if err := dto.Criteria.Validate(); err != nil {
		return err
	}
	if len(dto.Comments) > 1000 {
		return errors.New("comments must not exceed 1000 characters")
	}
	return nil
}

// UpdateEvaluationDTO replaces the scores of an existing round. The subject
// and the slot number are immutable once created.
type UpdateEvaluationDTO struct {
	Criteria Criteria `json:"criteria"`
	Comments *string  `json:"comments,omitempty"`
}

func (dto *UpdateEvaluationDTO) Validate() error {
	if err := dto.Criteria.Validate(); err != nil {
		return err
	}
	if dto.Comments != nil && len(*dto.Comments) > 1000 {
		return errors.New("comments must not exceed 1000 characters")
	}
	return nil
}

// PersonRef is the identity slice of a user embedded in evaluation responses.
// Resolved is false when the referenced account no longer exists.
type PersonRef struct {
	ID        string `json:"id"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Resolved  bool   `json:"-"`
}

// View is the evaluation read model with subject and evaluator resolved.
type View struct {
	ID               string     `json:"id"`
	User             *PersonRef `json:"user,omitempty"`
	Evaluator        *PersonRef `json:"evaluator,omitempty"`
	EvaluationNumber int        `json:"evaluationNumber"`
	EvaluationDate   time.Time  `json:"evaluationDate"`
	Criteria         Criteria   `json:"criteria"`
	AverageScore     float64    `json:"averageScore"`
	Comments         string     `json:"comments,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func NewView(e *Evaluation, subject, evaluator *PersonRef) *View {
	return &View{
		ID:               e.ID,
		User:             subject,
		Evaluator:        evaluator,
		EvaluationNumber: e.EvaluationNumber,
		EvaluationDate:   e.EvaluationDate,
		Criteria:         e.Criteria,
		AverageScore:     e.AverageScore,
		Comments:         e.Comments,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

// ListFilter narrows evaluation listings. Zero values impose no constraint.
// DepartmentID filters through the subject's department membership.
type ListFilter struct {
	DepartmentID     string
	Year             int
	EvaluationNumber int
}
