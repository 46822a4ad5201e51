package postgres

import (
	"errors"
	"time"

	"github.com/asc-academy/evaluation-portal/internal"
	"github.com/asc-academy/evaluation-portal/internal/userdata"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserDataRepository implements userdata.RepositoryAPI using GORM
type UserDataRepository struct {
	db *gorm.DB
}

func NewUserDataRepository(db *gorm.DB) *UserDataRepository {
	return &UserDataRepository{db: db}
}

func (r *UserDataRepository) GetByID(id string) (*userdata.UserData, error) {
	var d userdata.UserData
	err := r.db.Where("id = ?", id).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserDataNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *UserDataRepository) ListByUser(userID string) ([]*userdata.UserData, error) {
	var records []*userdata.UserData
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

func (r *UserDataRepository) ListByUserIDs(userIDs []string) ([]*userdata.UserData, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var records []*userdata.UserData
	err := r.db.Where("user_id IN ?", userIDs).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

func (r *UserDataRepository) ListAll() ([]*userdata.UserData, error) {
	var records []*userdata.UserData
	err := r.db.Order("created_at DESC").Find(&records).Error
	return records, err
}

func (r *UserDataRepository) Create(d *userdata.UserData) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return r.db.Create(d).Error
}

func (r *UserDataRepository) Update(d *userdata.UserData) error {
	d.UpdatedAt = time.Now()
	return r.db.Save(d).Error
}

func (r *UserDataRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&userdata.UserData{}).Error
}
