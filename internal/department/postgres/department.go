package postgres

import (
	"errors"
	"time"

	"github.com/asc-academy/evaluation-portal/internal"
	"github.com/asc-academy/evaluation-portal/internal/department"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DepartmentRepository implements department.RepositoryAPI using GORM
type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) department.RepositoryAPI {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) GetAll() ([]*department.Department, error) {
	var depts []*department.Department
	err := r.db.Order("name ASC").Find(&depts).Error
	return depts, err
}

func (r *DepartmentRepository) GetByID(id string) (*department.Department, error) {
	var dept department.Department
	err := r.db.Where("id = ?", id).First(&dept).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrDepartmentNotFound
		}
		return nil, err
	}
	return &dept, nil
}

func (r *DepartmentRepository) Create(dept *department.Department) error {
	if dept.ID == "" {
		dept.ID = uuid.NewString()
	}
	return r.db.Create(dept).Error
}

func (r *DepartmentRepository) Update(dept *department.Department) error {
	dept.UpdatedAt = time.Now()
	return r.db.Save(dept).Error
}

func (r *DepartmentRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&department.Department{}).Error
}
