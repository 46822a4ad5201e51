package userdata

import (
	"log/slog"
	"time"

	"github.com/asc-academy/evaluation-portal/internal"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	GetByID(id string) (*UserData, error)
	ListByUser(userID string) ([]*UserData, error)
	ListByUserIDs(userIDs []string) ([]*UserData, error)
	ListAll() ([]*UserData, error)
	Create(d *UserData) error
	Update(d *UserData) error
	Delete(id string) error
}

// MemberDirectory resolves department membership for the admin-wide listing.
type MemberDirectory interface {
	IDsByDepartment(departmentID string) ([]string, error)
}

type Service struct {
	repo    RepositoryAPI
	members MemberDirectory
	logger  *slog.Logger
}

func NewService(repo RepositoryAPI, members MemberDirectory, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		members: members,
		logger:  logger,
	}
}

// Create records a note owned by the acting identity.
func (s *Service) Create(actor *internal.Identity, dto CreateUserDataDTO) (*UserData, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	now := time.Now()
	d := &UserData{
		ID:        uuid.NewString(),
		UserID:    actor.ID,
		Title:     dto.Title,
		Content:   dto.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(d); err != nil {
		s.logger.Error("failed to create user data", "error", err, "user_id", actor.ID)
		return nil, internal.NewInternalError("failed to create user data", err)
	}
	return d, nil
}

func (s *Service) Get(actor *internal.Identity, id string) (*UserData, error) {
	d, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != d.UserID {
		return nil, internal.NewForbiddenError("Not authorized to access this user data", internal.ErrCodeForbidden)
	}
	return d, nil
}

func (s *Service) ListByUser(actor *internal.Identity, userID string) ([]*UserData, error) {
	if !actor.IsAdmin() && actor.ID != userID {
		return nil, internal.NewForbiddenError("Not authorized to access this user data", internal.ErrCodeForbidden)
	}

	records, err := s.repo.ListByUser(userID)
	if err != nil {
		s.logger.Error("failed to list user data", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("failed to list user data", err)
	}
	return records, nil
}

// ListAll is the admin-wide listing, optionally narrowed to the members of
// one department.
func (s *Service) ListAll(filter ListFilter) ([]*UserData, error) {
	if filter.DepartmentID == "" {
		records, err := s.repo.ListAll()
		if err != nil {
			s.logger.Error("failed to list user data", "error", err)
			return nil, internal.NewInternalError("failed to list user data", err)
		}
		return records, nil
	}

	memberIDs, err := s.members.IDsByDepartment(filter.DepartmentID)
	if err != nil {
		s.logger.Error("failed to resolve department members", "error", err, "department_id", filter.DepartmentID)
		return nil, internal.NewInternalError("failed to list user data", err)
	}
	if len(memberIDs) == 0 {
		return []*UserData{}, nil
	}

	records, err := s.repo.ListByUserIDs(memberIDs)
	if err != nil {
		s.logger.Error("failed to list user data", "error", err, "department_id", filter.DepartmentID)
		return nil, internal.NewInternalError("failed to list user data", err)
	}
	return records, nil
}

func (s *Service) Update(actor *internal.Identity, id string, dto UpdateUserDataDTO) (*UserData, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	d, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != d.UserID {
		return nil, internal.NewForbiddenError("Not authorized to update this user data", internal.ErrCodeForbidden)
	}

	if dto.Title != nil {
		d.Title = *dto.Title
	}
	if dto.Content != nil {
		d.Content = *dto.Content
	}
	d.UpdatedAt = time.Now()

	if err := s.repo.Update(d); err != nil {
		s.logger.Error("failed to update user data", "error", err, "user_data_id", id)
		return nil, internal.NewInternalError("failed to update user data", err)
	}
	return d, nil
}

func (s *Service) Delete(actor *internal.Identity, id string) error {
	d, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && actor.ID != d.UserID {
		return internal.NewForbiddenError("Not authorized to delete this user data", internal.ErrCodeForbidden)
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete user data", "error", err, "user_data_id", id)
		return internal.NewInternalError("failed to delete user data", err)
	}
	return nil
}
