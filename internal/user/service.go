package user

import (
	"log/slog"

	"github.com/asc-academy/evaluation-portal/internal"
	"github.com/asc-academy/evaluation-portal/internal/department"
	"golang.org/x/crypto/bcrypt"
)

type RepositoryAPI interface {
	GetByID(id string) (*User, error)
	ListByIDs(ids []string) ([]*User, error)
	List(filter ListFilter) ([]*User, error)
	Update(u *User) error
	Delete(id string) error
	IDsByDepartment(departmentID string) ([]string, error)
	SetEvaluationAverage(userID string, avg *float64) error
}

type DepartmentDirectory interface {
	GetAll() ([]*department.Department, error)
	GetByID(id string) (*department.Department, error)
}

type Service struct {
	repo       RepositoryAPI
	depts      DepartmentDirectory
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, depts DepartmentDirectory, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		depts:      depts,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// List returns users matching the filter with department references resolved.
func (s *Service) List(filter ListFilter) ([]*View, error) {
	users, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewInternalError("failed to list users", err)
	}

	names, err := s.departmentNames()
	if err != nil {
		s.logger.Error("failed to resolve departments for user list", "error", err)
		return nil, internal.NewInternalError("failed to list users", err)
	}

	views := make([]*View, 0, len(users))
	for _, u := range users {
		views = append(views, NewView(u, s.refFor(u, names)))
	}
	return views, nil
}

func (s *Service) Get(actor *internal.Identity, id string) (*View, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() && actor.ID != id {
		return nil, internal.NewForbiddenError("Not authorized to access this user data", internal.ErrCodeForbidden)
	}

	names, err := s.departmentNames()
	if err != nil {
		s.logger.Error("failed to resolve department for user", "error", err, "user_id", id)
		return nil, internal.NewInternalError("failed to get user", err)
	}
	return NewView(u, s.refFor(u, names)), nil
}

// Update applies the changed fields. Changing the role requires Admin even
// when the actor edits their own account.
func (s *Service) Update(actor *internal.Identity, id string, dto UpdateUserDTO) (*View, error) {
	if !actor.IsAdmin() && actor.ID != id {
		return nil, internal.NewForbiddenError("Not authorized to update this user", internal.ErrCodeForbidden)
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Role != nil && *dto.Role != u.Role && !actor.IsAdmin() {
		return nil, internal.NewForbiddenError("Not authorized to change user type", internal.ErrCodeForbidden)
	}

	if dto.Email != nil {
		u.Email = *dto.Email
	}
	if dto.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*dto.Password), s.bcryptCost)
		if err != nil {
			s.logger.Error("failed to hash password", "error", err, "user_id", id)
			return nil, internal.NewInternalError("failed to update user", err)
		}
		u.PasswordHash = string(hash)
	}
	if dto.Role != nil {
		u.Role = *dto.Role
	}
	if dto.FirstName != nil {
		u.FirstName = *dto.FirstName
	}
	if dto.LastName != nil {
		u.LastName = *dto.LastName
	}
	if dto.AcademicDegree != nil {
		u.AcademicDegree = *dto.AcademicDegree
	}
	if dto.AverageScore != nil {
		u.AverageScore = dto.AverageScore
	}
	if dto.DepartmentID != nil {
		u.DepartmentID = dto.DepartmentID
	}

	if u.Role == internal.RoleUser && (u.DepartmentID == nil || *u.DepartmentID == "") {
		return nil, internal.NewValidationError("departmentId is required for User accounts", internal.ErrCodeMissingField)
	}

	if err := s.repo.Update(u); err != nil {
		if internal.IsDuplicateKey(err) {
			return nil, internal.ErrDuplicateEmail
		}
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, internal.NewInternalError("failed to update user", err)
	}

	names, err := s.departmentNames()
	if err != nil {
		s.logger.Error("failed to resolve department for user", "error", err, "user_id", id)
		return nil, internal.NewInternalError("failed to update user", err)
	}
	return NewView(u, s.refFor(u, names)), nil
}

// Delete removes the account. Evaluations and notes referencing it are left
// in place.
func (s *Service) Delete(actor *internal.Identity, id string) error {
	if !actor.IsAdmin() && actor.ID != id {
		return internal.NewForbiddenError("Not authorized to delete this user", internal.ErrCodeForbidden)
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return internal.NewInternalError("failed to delete user", err)
	}

	s.logger.Info("user deleted", "user_id", id, "deleted_by", actor.ID)
	return nil
}

func (s *Service) departmentNames() (map[string]string, error) {
	depts, err := s.depts.GetAll()
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(depts))
	for _, d := range depts {
		names[d.ID] = d.Name
	}
	return names, nil
}

func (s *Service) refFor(u *User, names map[string]string) *department.Ref {
	if u.DepartmentID == nil || *u.DepartmentID == "" {
		return nil
	}
	if name, ok := names[*u.DepartmentID]; ok {
		ref := department.Resolved(*u.DepartmentID, name)
		return &ref
	}
	ref := department.Unresolved(*u.DepartmentID)
	return &ref
}
