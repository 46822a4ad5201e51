package department

import (
	"log/slog"

	"github.com/asc-academy/evaluation-portal/internal"
)

type RepositoryAPI interface {
	GetAll() ([]*Department, error)
	GetByID(id string) (*Department, error)
	Create(dept *Department) error
	Update(dept *Department) error
	Delete(id string) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetAll() ([]*Department, error) {
	depts, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list departments", "error", err)
		return nil, internal.NewInternalError("failed to list departments", err)
	}
	return depts, nil
}

func (s *Service) GetByID(id string) (*Department, error) {
	dept, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return dept, nil
}

func (s *Service) Create(dto UpsertDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	dept := &Department{
		Name:        dto.Name,
		Description: dto.Description,
	}
	if err := s.repo.Create(dept); err != nil {
		if internal.IsDuplicateKey(err) {
			return nil, internal.ErrDuplicateDepartment
		}
		s.logger.Error("failed to create department", "error", err, "name", dto.Name)
		return nil, internal.NewInternalError("failed to create department", err)
	}

	s.logger.Info("department created", "department_id", dept.ID, "name", dept.Name)
	return dept, nil
}

func (s *Service) Update(id string, dto UpsertDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	dept, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	dept.Name = dto.Name
	dept.Description = dto.Description
	if err := s.repo.Update(dept); err != nil {
		if internal.IsDuplicateKey(err) {
			return nil, internal.ErrDuplicateDepartment
		}
		s.logger.Error("failed to update department", "error", err, "department_id", id)
		return nil, internal.NewInternalError("failed to update department", err)
	}

	return dept, nil
}

func (s *Service) Delete(id string) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete department", "error", err, "department_id", id)
		return internal.NewInternalError("failed to delete department", err)
	}
	s.logger.Info("department deleted", "department_id", id)
	return nil
}
