package postgres

import (
	"errors"
	"time"

	"github.com/asc-academy/evaluation-portal/internal"
	"github.com/asc-academy/evaluation-portal/internal/evaluation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EvaluationRepository implements evaluation.RepositoryAPI using GORM
type EvaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

func (r *EvaluationRepository) GetByID(id string) (*evaluation.Evaluation, error) {
	var e evaluation.Evaluation
	err := r.db.Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEvaluationNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *EvaluationRepository) GetByUserAndNumber(userID string, number int) (*evaluation.Evaluation, error) {
	var e evaluation.Evaluation
	err := r.db.Where("user_id = ? AND evaluation_number = ?", userID, number).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEvaluationNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *EvaluationRepository) ListByUser(userID string) ([]*evaluation.Evaluation, error) {
	var evals []*evaluation.Evaluation
	err := r.db.Where("user_id = ?", userID).
		Order("evaluation_number ASC").
		Find(&evals).Error
	return evals, err
}

// List applies the optional filters. subjectIDs, when non-empty, restricts to
// those subjects; the caller resolves department membership to IDs first.
func (r *EvaluationRepository) List(filter evaluation.ListFilter, subjectIDs []string) ([]*evaluation.Evaluation, error) {
	q := r.db.Model(&evaluation.Evaluation{})
	if len(subjectIDs) > 0 {
		q = q.Where("user_id IN ?", subjectIDs)
	}
	if filter.EvaluationNumber != 0 {
		q = q.Where("evaluation_number = ?", filter.EvaluationNumber)
	}
	if filter.Year != 0 {
		start := time.Date(filter.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(filter.Year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
		q = q.Where("evaluation_date >= ? AND evaluation_date < ?", start, end)
	}

	var evals []*evaluation.Evaluation
	err := q.Order("evaluation_date DESC").Find(&evals).Error
	return evals, err
}

func (r *EvaluationRepository) Create(e *evaluation.Evaluation) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return r.db.Create(e).Error
}

func (r *EvaluationRepository) Update(e *evaluation.Evaluation) error {
	e.UpdatedAt = time.Now()
	return r.db.Save(e).Error
}

func (r *EvaluationRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&evaluation.Evaluation{}).Error
}

// DistinctYears returns the calendar years that have at least one evaluation
// among the given subjects, newest first. Extracting the year in Go keeps the
// query portable between postgres and the sqlite test driver.
func (r *EvaluationRepository) DistinctYears(subjectIDs []string) ([]int, error) {
	q := r.db.Model(&evaluation.Evaluation{})
	if len(subjectIDs) > 0 {
		q = q.Where("user_id IN ?", subjectIDs)
	}

	var dates []time.Time
	err := q.Order("evaluation_date DESC").
		Pluck("evaluation_date", &dates).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[int]struct{}, len(dates))
	years := make([]int, 0, len(dates))
	for _, d := range dates {
		y := d.Year()
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}
	return years, nil
}
