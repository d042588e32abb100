package model

import "time"

const (
	SessionModePractice = "practice"
	SessionModeTimed    = "timed"
	SessionModeReview   = "review"
)

// PracticeSession is one sitting of the question player. Sessions are an
// append-only log: nothing updates or deletes them once recorded.
// swagger:model PracticeSession
type PracticeSession struct {
	BaseModel
	UserID    uint              `gorm:"index;type:bigint unsigned" json:"userId"`
	Date      time.Time         `json:"date"`
	Mode      string            `gorm:"size:50;default:'practice'" json:"mode"`
	Score     int               `gorm:"default:0" json:"score"`
	TimeSpent int               `gorm:"default:0" json:"timeSpent"` // seconds
	Questions []QuestionAttempt `gorm:"foreignKey:SessionID" json:"questions"`
}

func (PracticeSession) TableName() string {
	return "practice_sessions"
}

// swagger:model QuestionAttempt
type QuestionAttempt struct {
	BaseModel
	SessionID      uint   `gorm:"index;type:bigint unsigned" json:"sessionId"`
	QuestionID     string `gorm:"size:100" json:"questionId"`
	SkillCode      string `gorm:"size:50;index" json:"skillCode"`
	SelectedAnswer string `gorm:"size:255" json:"selectedAnswer"`
	Correct        bool   `gorm:"default:false" json:"correct"`
	TimeSpent      int    `gorm:"default:0" json:"timeSpent"` // seconds
}

func (QuestionAttempt) TableName() string {
	return "question_attempts"
}
