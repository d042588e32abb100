package repository

import (
	"github.com/gravishankar/satify-backend/internal/model"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

// Create appends a session with its attempts; the log is append-only, there
// is no update path.
func (r *SessionRepository) Create(session *model.PracticeSession) error {
	return r.DB.Create(session).Error
}

func (r *SessionRepository) ListByUser(userID uint, page, limit int) ([]model.PracticeSession, int64, error) {
	var sessions []model.PracticeSession
	var total int64

	query := r.DB.Model(&model.PracticeSession{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Preload("Questions").
		Order("date desc").
		Offset(offset).Limit(limit).
		Find(&sessions).Error
	return sessions, total, err
}

func (r *SessionRepository) AllByUser(userID uint) ([]model.PracticeSession, error) {
	var sessions []model.PracticeSession
	err := r.DB.Preload("Questions").
		Where("user_id = ?", userID).
		Order("date asc").
		Find(&sessions).Error
	return sessions, err
}
