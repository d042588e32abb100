package service

import (
	"sort"
	"time"

	"github.com/gravishankar/satify-backend/internal/model"
	"github.com/gravishankar/satify-backend/internal/repository"
	"github.com/gravishankar/satify-backend/internal/util"
)

// SessionService records practice sittings and aggregates them for the
// dashboard. Sessions are an append-only log.
type SessionService struct {
	SessionRepo *repository.SessionRepository
}

func NewSessionService(sessionRepo *repository.SessionRepository) *SessionService {
	return &SessionService{SessionRepo: sessionRepo}
}

type SessionRequest struct {
	Date      time.Time               `json:"date"`
	Mode      string                  `json:"mode"`
	Score     int                     `json:"score"`
	TimeSpent int                     `json:"timeSpent"`
	Questions []model.QuestionAttempt `json:"questions"`
}

func (s *SessionService) RecordSession(userID uint, req SessionRequest) (*model.PracticeSession, error) {
	if req.Date.IsZero() {
		req.Date = time.Now().UTC()
	}
	if req.Mode == "" {
		req.Mode = model.SessionModePractice
	}
	if req.Score == 0 {
		for _, q := range req.Questions {
			if q.Correct {
				req.Score++
			}
		}
	}

	session := &model.PracticeSession{
		UserID:    userID,
		Date:      req.Date,
		Mode:      req.Mode,
		Score:     req.Score,
		TimeSpent: req.TimeSpent,
		Questions: req.Questions,
	}
	if err := s.SessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) ListSessions(userID uint, page, limit int) ([]model.PracticeSession, int64, error) {
	return s.SessionRepo.ListByUser(userID, page, limit)
}

type SessionSummary struct {
	TotalSessions  int     `json:"totalSessions"`
	TotalQuestions int     `json:"totalQuestions"`
	TotalCorrect   int     `json:"totalCorrect"`
	Accuracy       float64 `json:"accuracy"`
	TotalTime      int     `json:"totalTime"`
	StreakDays     int     `json:"streakDays"`
}

// Summary is a linear scan over the user's full history, mirroring the
// dashboard aggregation the question player has always shown.
func (s *SessionService) Summary(userID uint) (*SessionSummary, error) {
	sessions, err := s.SessionRepo.AllByUser(userID)
	if err != nil {
		return nil, err
	}

	summary := &SessionSummary{TotalSessions: len(sessions)}
	for _, session := range sessions {
		summary.TotalTime += session.TimeSpent
		for _, q := range session.Questions {
			summary.TotalQuestions++
			if q.Correct {
				summary.TotalCorrect++
			}
		}
	}
	if summary.TotalQuestions > 0 {
		summary.Accuracy = float64(summary.TotalCorrect) / float64(summary.TotalQuestions)
	}
	summary.StreakDays = streakDays(sessions, time.Now().UTC())
	return summary, nil
}

// streakDays counts consecutive practice days ending today or yesterday.
func streakDays(sessions []model.PracticeSession, now time.Time) int {
	days := map[string]bool{}
	for _, s := range sessions {
		days[s.Date.UTC().Format(util.DateFormat)] = true
	}
	if len(days) == 0 {
		return 0
	}

	day := now
	if !days[day.Format(util.DateFormat)] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for days[day.Format(util.DateFormat)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

type SkillStats struct {
	SkillCode string  `json:"skillCode"`
	Attempted int     `json:"attempted"`
	Correct   int     `json:"correct"`
	Accuracy  float64 `json:"accuracy"`
}

func (s *SessionService) SkillBreakdown(userID uint) ([]SkillStats, error) {
	sessions, err := s.SessionRepo.AllByUser(userID)
	if err != nil {
		return nil, err
	}
	return aggregateSkills(sessions), nil
}

func aggregateSkills(sessions []model.PracticeSession) []SkillStats {
	bySkill := map[string]*SkillStats{}
	for _, session := range sessions {
		for _, q := range session.Questions {
			if q.SkillCode == "" {
				continue
			}
			stats, ok := bySkill[q.SkillCode]
			if !ok {
				stats = &SkillStats{SkillCode: q.SkillCode}
				bySkill[q.SkillCode] = stats
			}
			stats.Attempted++
			if q.Correct {
				stats.Correct++
			}
		}
	}

	out := make([]SkillStats, 0, len(bySkill))
	for _, stats := range bySkill {
		stats.Accuracy = float64(stats.Correct) / float64(stats.Attempted)
		out = append(out, *stats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SkillCode < out[j].SkillCode })
	return out
}
