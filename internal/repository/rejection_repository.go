package repository

import (
	"github.com/gravishankar/satify-backend/internal/model"

	"gorm.io/gorm"
)

type RejectionRepository struct {
	DB *gorm.DB
}

func NewRejectionRepository(db *gorm.DB) *RejectionRepository {
	return &RejectionRepository{DB: db}
}

func (r *RejectionRepository) Create(rejection *model.Rejection) error {
	return r.DB.Create(rejection).Error
}

func (r *RejectionRepository) ListByLesson(lessonID string) ([]model.Rejection, error) {
	var rejections []model.Rejection
	err := r.DB.Where("lesson_id = ?", lessonID).
		Order("rejected_at desc").
		Find(&rejections).Error
	return rejections, err
}

func (r *RejectionRepository) Latest(lessonID string) (*model.Rejection, error) {
	var rejection model.Rejection
	err := r.DB.Where("lesson_id = ?", lessonID).
		Order("rejected_at desc").
		First(&rejection).Error
	if err != nil {
		return nil, err
	}
	return &rejection, nil
}
