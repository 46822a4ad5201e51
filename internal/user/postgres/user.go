package postgres

import (
	"errors"
	"time"

	"github.com/asc-academy/evaluation-portal/internal"
	"github.com/asc-academy/evaluation-portal/internal/user"
	"gorm.io/gorm"
)

// UserRepository implements user.RepositoryAPI using GORM
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(id string) (*user.User, error) {
	var u user.User
	err := r.db.Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) ListByIDs(ids []string) ([]*user.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []*user.User
	err := r.db.Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *UserRepository) List(filter user.ListFilter) ([]*user.User, error) {
	q := r.db.Model(&user.User{})
	if filter.DepartmentID != "" {
		q = q.Where("department_id = ?", filter.DepartmentID)
	}
	if filter.Year != 0 {
		start := time.Date(filter.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(filter.Year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
		q = q.Where("created_at >= ? AND created_at < ?", start, end)
	}

	var users []*user.User
	err := q.Order("created_at ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) Update(u *user.User) error {
	u.UpdatedAt = time.Now()
	return r.db.Save(u).Error
}

func (r *UserRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&user.User{}).Error
}

func (r *UserRepository) IDsByDepartment(departmentID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&user.User{}).
		Where("department_id = ?", departmentID).
		Pluck("id", &ids).Error
	return ids, err
}

// SetEvaluationAverage persists the derived rollup; nil clears it back to the
// unset state.
func (r *UserRepository) SetEvaluationAverage(userID string, avg *float64) error {
	return r.db.Model(&user.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"evaluation_average_score": avg,
			"updated_at":               time.Now(),
		}).Error
}
