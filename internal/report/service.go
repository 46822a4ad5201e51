package report

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/asc-academy/evaluation-portal/internal"
	"github.com/asc-academy/evaluation-portal/internal/department"
	"github.com/asc-academy/evaluation-portal/internal/evaluation"
	"github.com/asc-academy/evaluation-portal/internal/user"
)

// EvaluationSource is the slice of the evaluation store the export needs.
type EvaluationSource interface {
	List(filter evaluation.ListFilter, subjectIDs []string) ([]*evaluation.Evaluation, error)
}

type SubjectDirectory interface {
	ListByIDs(ids []string) ([]*user.User, error)
	IDsByDepartment(departmentID string) ([]string, error)
}

type DepartmentDirectory interface {
	GetAll() ([]*department.Department, error)
}

type Service struct {
	evals    EvaluationSource
	subjects SubjectDirectory
	depts    DepartmentDirectory
	logger   *slog.Logger
}

func NewService(evals EvaluationSource, subjects SubjectDirectory, depts DepartmentDirectory, logger *slog.Logger) *Service {
	return &Service{
		evals:    evals,
		subjects: subjects,
		depts:    depts,
		logger:   logger,
	}
}

// ExportFilter narrows the export. Zero values impose no constraint.
type ExportFilter struct {
	DepartmentID string
	Year         int
}

// Export renders the filtered evaluations as an xlsx workbook grouped by
// department. Subjects without a department are skipped; subjects whose
// department record was deleted land on a placeholder sheet.
func (s *Service) Export(filter ExportFilter) (*bytes.Buffer, string, error) {
	var subjectIDs []string
	if filter.DepartmentID != "" {
		ids, err := s.subjects.IDsByDepartment(filter.DepartmentID)
		if err != nil {
			s.logger.Error("failed to resolve department members for export", "error", err, "department_id", filter.DepartmentID)
			return nil, "", internal.NewInternalError("failed to export evaluations", err)
		}
		if len(ids) == 0 {
			return s.render(nil)
		}
		subjectIDs = ids
	}

	evals, err := s.evals.List(evaluation.ListFilter{Year: filter.Year}, subjectIDs)
	if err != nil {
		s.logger.Error("failed to load evaluations for export", "error", err)
		return nil, "", internal.NewInternalError("failed to export evaluations", err)
	}

	groups, err := s.group(evals)
	if err != nil {
		return nil, "", err
	}
	return s.render(groups)
}

// group buckets evaluations by the subject's department, then by evaluation
// number, preserving fetch order within each bucket.
func (s *Service) group(evals []*evaluation.Evaluation) ([]DepartmentGroup, error) {
	if len(evals) == 0 {
		return nil, nil
	}

	subjects, err := s.subjectIndex(evals)
	if err != nil {
		return nil, err
	}

	deptNames, err := s.departmentNames()
	if err != nil {
		return nil, err
	}

	groupIndex := make(map[string]int)
	var groups []DepartmentGroup

	for _, e := range evals {
		subject, ok := subjects[e.UserID]
		if !ok || subject.DepartmentID == nil || *subject.DepartmentID == "" {
			continue
		}

		label, ok := deptNames[*subject.DepartmentID]
		if !ok {
			label = UnresolvedDepartmentLabel
		}

		idx, ok := groupIndex[label]
		if !ok {
			idx = len(groups)
			groupIndex[label] = idx
			groups = append(groups, DepartmentGroup{Name: label})
		}

		bucket := e.EvaluationNumber - 1
		if bucket < 0 || bucket >= len(groups[idx].Buckets) {
			continue
		}
		groups[idx].Buckets[bucket] = append(groups[idx].Buckets[bucket], Row{
			FullName: subject.FullName(),
			Email:    subject.Email,
			Average:  e.AverageScore,
			Scores:   e.Criteria.Scores(),
			Date:     e.EvaluationDate,
		})
	}
	return groups, nil
}

func (s *Service) render(groups []DepartmentGroup) (*bytes.Buffer, string, error) {
	f, err := BuildDepartmentWorkbook(groups)
	if err != nil {
		s.logger.Error("failed to build export workbook", "error", err)
		return nil, "", internal.NewInternalError("failed to export evaluations", err)
	}
	defer f.Close()

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("failed to serialize export workbook", "error", err)
		return nil, "", internal.NewInternalError("failed to export evaluations", err)
	}

	filename := fmt.Sprintf("evaluations_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf, filename, nil
}

func (s *Service) subjectIndex(evals []*evaluation.Evaluation) (map[string]*user.User, error) {
	idSet := make(map[string]struct{}, len(evals))
	for _, e := range evals {
		idSet[e.UserID] = struct{}{}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	users, err := s.subjects.ListByIDs(ids)
	if err != nil {
		s.logger.Error("failed to resolve export subjects", "error", err)
		return nil, internal.NewInternalError("failed to export evaluations", err)
	}

	index := make(map[string]*user.User, len(users))
	for _, u := range users {
		index[u.ID] = u
	}
	return index, nil
}

func (s *Service) departmentNames() (map[string]string, error) {
	depts, err := s.depts.GetAll()
	if err != nil {
		s.logger.Error("failed to load departments for export", "error", err)
		return nil, internal.NewInternalError("failed to export evaluations", err)
	}
	names := make(map[string]string, len(depts))
	for _, d := range depts {
		names[d.ID] = d.Name
	}
	return names, nil
}
