package evaluation

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/asc-academy/evaluation-portal/internal"
	"github.com/asc-academy/evaluation-portal/internal/user"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	GetByID(id string) (*Evaluation, error)
	GetByUserAndNumber(userID string, number int) (*Evaluation, error)
	ListByUser(userID string) ([]*Evaluation, error)
	List(filter ListFilter, subjectIDs []string) ([]*Evaluation, error)
	Create(e *Evaluation) error
	Update(e *Evaluation) error
	Delete(id string) error
	DistinctYears(subjectIDs []string) ([]int, error)
}

// UserDirectory is the slice of the user store the evaluation flow needs:
// subject lookups, department membership for filtered listings, and the
// per-user rollup write.
type UserDirectory interface {
	GetByID(id string) (*user.User, error)
	ListByIDs(ids []string) ([]*user.User, error)
	IDsByDepartment(departmentID string) ([]string, error)
	SetEvaluationAverage(userID string, avg *float64) error
}

type Service struct {
	repo   RepositoryAPI
	users  UserDirectory
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, users UserDirectory, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		logger: logger,
	}
}

// Create records a new assessment round. The evaluator is the acting
// identity, the date is stamped server-side and the average is derived from
// the criteria before the write.
func (s *Service) Create(actor *internal.Identity, dto CreateEvaluationDTO) (*View, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	subject, err := s.users.GetByID(dto.UserID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByUserAndNumber(dto.UserID, dto.EvaluationNumber); err == nil && existing != nil {
		return nil, duplicateSlotError(dto.EvaluationNumber)
	}

	now := time.Now()
	e := &Evaluation{
		ID:               uuid.NewString(),
		UserID:           subject.ID,
		EvaluationNumber: dto.EvaluationNumber,
		EvaluatedBy:      actor.ID,
		EvaluationDate:   now,
		Criteria:         dto.Criteria,
		AverageScore:     dto.Criteria.Average(),
		Comments:         dto.Comments,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(e); err != nil {
		if internal.IsDuplicateKey(err) {
			return nil, duplicateSlotError(dto.EvaluationNumber)
		}
		s.logger.Error("failed to create evaluation", "error", err, "user_id", dto.UserID)
		return nil, internal.NewInternalError("failed to create evaluation", err)
	}

	s.logger.Info("evaluation created",
		"evaluation_id", e.ID,
		"user_id", e.UserID,
		"evaluation_number", e.EvaluationNumber,
		"evaluated_by", actor.ID)

	s.refreshUserRollup(e.UserID)
	return s.view(e)
}

func (s *Service) GetByID(actor *internal.Identity, id string) (*View, error) {
	e, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != e.UserID {
		return nil, internal.NewForbiddenError("Not authorized to access this evaluation", internal.ErrCodeForbidden)
	}
	return s.view(e)
}

// ListByUser returns the subject's rounds ordered by slot number. Non-admins
// can only read their own.
func (s *Service) ListByUser(actor *internal.Identity, userID string) ([]*View, error) {
	if !actor.IsAdmin() && actor.ID != userID {
		return nil, internal.NewForbiddenError("Not authorized to access these evaluations", internal.ErrCodeForbidden)
	}

	evals, err := s.repo.ListByUser(userID)
	if err != nil {
		s.logger.Error("failed to list evaluations for user", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("failed to list evaluations", err)
	}
	return s.views(evals)
}

// List returns filtered evaluations. A department filter narrows to the
// members of that department and additionally yields the distinct calendar
// years present among that department's evaluations, newest first, so clients
// can build their year selector; without a department filter no years are
// computed. A department with no members yields an empty result without
// touching the evaluations table.
func (s *Service) List(filter ListFilter) ([]*View, []int, error) {
	var years []int
	var subjectIDs []string
	if filter.DepartmentID != "" {
		var err error
		subjectIDs, err = s.users.IDsByDepartment(filter.DepartmentID)
		if err != nil {
			s.logger.Error("failed to resolve department members", "error", err, "department_id", filter.DepartmentID)
			return nil, nil, internal.NewInternalError("failed to list evaluations", err)
		}
		if len(subjectIDs) == 0 {
			return []*View{}, []int{time.Now().Year()}, nil
		}
		years, err = s.availableYears(subjectIDs)
		if err != nil {
			return nil, nil, err
		}
	}

	evals, err := s.repo.List(filter, subjectIDs)
	if err != nil {
		s.logger.Error("failed to list evaluations", "error", err)
		return nil, nil, internal.NewInternalError("failed to list evaluations", err)
	}

	views, err := s.views(evals)
	if err != nil {
		return nil, nil, err
	}
	return views, years, nil
}

// Update replaces the criteria of an existing round and re-derives both the
// round average and the subject's rollup.
func (s *Service) Update(id string, dto UpdateEvaluationDTO) (*View, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	e, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	e.Criteria = dto.Criteria
	e.AverageScore = dto.Criteria.Average()
	if dto.Comments != nil {
		e.Comments = *dto.Comments
	}
	e.UpdatedAt = time.Now()

	if err := s.repo.Update(e); err != nil {
		s.logger.Error("failed to update evaluation", "error", err, "evaluation_id", id)
		return nil, internal.NewInternalError("failed to update evaluation", err)
	}

	s.refreshUserRollup(e.UserID)
	return s.view(e)
}

func (s *Service) Delete(id string) error {
	e, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete evaluation", "error", err, "evaluation_id", id)
		return internal.NewInternalError("failed to delete evaluation", err)
	}

	s.logger.Info("evaluation deleted", "evaluation_id", id, "user_id", e.UserID)
	s.refreshUserRollup(e.UserID)
	return nil
}

// refreshUserRollup recomputes the subject's mean-of-round-averages from a
// fresh read and stores it on the user row. Zero remaining rounds clears the
// rollup. Failures are logged and swallowed: the primary write already
// succeeded.
func (s *Service) refreshUserRollup(userID string) {
	evals, err := s.repo.ListByUser(userID)
	if err != nil {
		s.logger.Error("failed to load evaluations for rollup", "error", err, "user_id", userID)
		return
	}

	var avg *float64
	if len(evals) > 0 {
		sum := 0.0
		for _, e := range evals {
			sum += e.AverageScore
		}
		v := Round2(sum / float64(len(evals)))
		avg = &v
	}

	if err := s.users.SetEvaluationAverage(userID, avg); err != nil {
		s.logger.Error("failed to update user evaluation average", "error", err, "user_id", userID)
	}
}

func (s *Service) availableYears(subjectIDs []string) ([]int, error) {
	years, err := s.repo.DistinctYears(subjectIDs)
	if err != nil {
		s.logger.Error("failed to load evaluation years", "error", err)
		return nil, internal.NewInternalError("failed to list evaluations", err)
	}
	if len(years) == 0 {
		years = []int{time.Now().Year()}
	}
	return years, nil
}

func (s *Service) view(e *Evaluation) (*View, error) {
	views, err := s.views([]*Evaluation{e})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// views resolves subject and evaluator references in one batched lookup.
// Accounts deleted since the evaluation was written come back unresolved.
func (s *Service) views(evals []*Evaluation) ([]*View, error) {
	idSet := make(map[string]struct{}, len(evals)*2)
	for _, e := range evals {
		idSet[e.UserID] = struct{}{}
		idSet[e.EvaluatedBy] = struct{}{}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	persons := make(map[string]*user.User, len(ids))
	if len(ids) > 0 {
		users, err := s.users.ListByIDs(ids)
		if err != nil {
			s.logger.Error("failed to resolve evaluation participants", "error", err)
			return nil, internal.NewInternalError("failed to list evaluations", err)
		}
		for _, u := range users {
			persons[u.ID] = u
		}
	}

	views := make([]*View, 0, len(evals))
	for _, e := range evals {
		views = append(views, NewView(e, personRef(e.UserID, persons), personRef(e.EvaluatedBy, persons)))
	}
	return views, nil
}

func personRef(id string, persons map[string]*user.User) *PersonRef {
	if id == "" {
		return nil
	}
	if u, ok := persons[id]; ok {
		return &PersonRef{
			ID:        u.ID,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Resolved:  true,
		}
	}
	return &PersonRef{ID: id}
}

func duplicateSlotError(number int) error {
	return internal.NewDuplicateKeyError(
		fmt.Sprintf("Evaluation #%d already exists for this user", number),
		internal.ErrCodeDuplicateEvaluation,
	)
}
