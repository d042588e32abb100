package model

import "time"

// Rejection is the reviewer's record for a declined draft. It is kept apart
// from the lesson documents and never written back into them.
// swagger:model Rejection
type Rejection struct {
	BaseModel
	LessonID   string    `gorm:"size:100;index;not null" json:"lessonId"`
	ReviewerID uint      `gorm:"index;type:bigint unsigned" json:"reviewerId"`
	Reason     string    `gorm:"type:text" json:"reason"`
	RejectedAt time.Time `json:"timestamp"`
}

func (Rejection) TableName() string {
	return "lesson_rejections"
}
