package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gravishankar/satify-backend/internal/model"
	"github.com/gravishankar/satify-backend/internal/repository"
	"github.com/gravishankar/satify-backend/internal/util"
	"github.com/gravishankar/satify-backend/pkg/logger"

	"go.uber.org/zap"
)

// Slide diff status values.
const (
	SlideUnchanged = "unchanged"
	SlideNew       = "new"
	SlideModified  = "modified"
)

// ChangeSet is the reviewer-facing diff between a draft and its published
// counterpart.
type ChangeSet struct {
	Count  int             `json:"count"`
	IsNew  bool            `json:"isNew,omitempty"`
	Fields map[string]bool `json:"fieldFlags,omitempty"`
	Slides []string        `json:"slideChanges,omitempty"`
}

// PublishService is the admin review gate: diff a draft against its
// published copy, approve it into the published tier, or record a rejection.
//
// Approve and Reject are single store/DB writes; a failure leaves every
// document exactly as it was and the operator retries by hand. There is no
// queue and no retry policy.
type PublishService struct {
	Store         ContentStore
	Lessons       *LessonService
	Drafts        *DraftService
	RejectionRepo *repository.RejectionRepository
}

func NewPublishService(store ContentStore, lessons *LessonService, drafts *DraftService, rejectionRepo *repository.RejectionRepository) *PublishService {
	return &PublishService{
		Store:         store,
		Lessons:       lessons,
		Drafts:        drafts,
		RejectionRepo: rejectionRepo,
	}
}

// DetectChanges compares field by field: scalar equality for
// title/subtitle/level/duration, stringified-JSON equality for the
// objectives list, and a positional walk over the longer slide list. A
// missing published document yields the {count:1, isNew:true} sentinel no
// matter how large the draft is; callers depend on that shape.
func DetectChanges(draft, published *model.LessonDocument) ChangeSet {
	if published == nil {
		return ChangeSet{Count: 1, IsNew: true}
	}

	cs := ChangeSet{Fields: map[string]bool{}}

	scalarFields := map[string][2]string{
		"title":    {draft.Title, published.Title},
		"subtitle": {draft.Subtitle, published.Subtitle},
		"level":    {draft.Level, published.Level},
		"duration": {draft.Duration, published.Duration},
	}
	for name, pair := range scalarFields {
		if pair[0] != pair[1] {
			cs.Fields[name] = true
			cs.Count++
		}
	}

	if stringifyJSON(draft.LearningObjectives) != stringifyJSON(published.LearningObjectives) {
		cs.Fields["learning_objectives"] = true
		cs.Count++
	}

	longest := len(draft.Slides)
	if len(published.Slides) > longest {
		longest = len(published.Slides)
	}
	if longest > 0 {
		cs.Slides = make([]string, longest)
	}
	for i := 0; i < longest; i++ {
		switch {
		case i >= len(published.Slides):
			cs.Slides[i] = SlideNew
			cs.Count++
		case i >= len(draft.Slides):
			// slide removed in the draft; surfaces as a modification
			cs.Slides[i] = SlideModified
			cs.Count++
		case stringifySlide(draft.Slides[i]) != stringifySlide(published.Slides[i]):
			cs.Slides[i] = SlideModified
			cs.Count++
		default:
			cs.Slides[i] = SlideUnchanged
		}
	}

	return cs
}

// stringifySlide normalizes the raw content map before comparing, so
// formatting differences between tiers never read as edits.
func stringifySlide(s model.Slide) string {
	var content interface{}
	if len(s.Content) > 0 {
		if err := json.Unmarshal(s.Content, &content); err != nil {
			content = string(s.Content)
		}
	}
	return stringifyJSON(map[string]interface{}{
		"id":      s.ID,
		"type":    s.Type,
		"title":   s.Title,
		"content": content,
	})
}

func stringifyJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Changes loads both tiers for a lesson and diffs them.
func (s *PublishService) Changes(ctx context.Context, id string) (ChangeSet, error) {
	draftFile, err := s.Store.GetFile(ctx, model.DraftPath(id))
	if errors.Is(err, util.ErrFileNotFound) {
		return ChangeSet{}, util.ErrLessonNotFound
	}
	if err != nil {
		return ChangeSet{}, err
	}

	draft, err := decodeLesson(draftFile.Content)
	if err != nil {
		return ChangeSet{}, err
	}

	published, err := s.loadPublished(ctx, draft)
	if err != nil {
		return ChangeSet{}, err
	}

	return DetectChanges(draft, published), nil
}

func (s *PublishService) loadPublished(ctx context.Context, draft *model.LessonDocument) (*model.LessonDocument, error) {
	path, err := s.Lessons.PublishedPathFor(ctx, draft)
	if err != nil {
		return nil, err
	}
	file, err := s.Store.GetFile(ctx, path)
	if errors.Is(err, util.ErrFileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeLesson(file.Content)
}

// Approve copies the draft's exact bytes to the published path and upserts
// the manifest. No diffing happens here: whatever sits in the draft slot at
// approval time is what goes out, stale reviewer view or not.
func (s *PublishService) Approve(ctx context.Context, id string) (string, error) {
	draftFile, err := s.Store.GetFile(ctx, model.DraftPath(id))
	if errors.Is(err, util.ErrFileNotFound) {
		return "", util.ErrLessonNotFound
	}
	if err != nil {
		return "", err
	}

	draft, err := decodeLesson(draftFile.Content)
	if err != nil {
		return "", err
	}

	path, err := s.Lessons.PublishedPathFor(ctx, draft)
	if err != nil {
		return "", err
	}

	sha := ""
	if current, err := s.Store.GetFile(ctx, path); err == nil {
		sha = current.SHA
	} else if !errors.Is(err, util.ErrFileNotFound) {
		return "", err
	}

	message := fmt.Sprintf("Publish lesson: %s", id)
	if _, err := s.Store.SaveFile(ctx, path, draftFile.Content, message, sha); err != nil {
		return "", err
	}

	if err := s.Lessons.UpsertManifestEntry(ctx, draft, path); err != nil {
		// the published copy landed; a stale index is repairable, a failed
		// publish is not, so report rather than unwind
		logger.Log.Error("manifest update failed after publish",
			zap.String("lesson", id), zap.Error(err))
		return path, err
	}
	return path, nil
}

// Reject records the reviewer's reason keyed by lesson id and timestamp. The
// draft and any published copy stay untouched; the author gets no in-product
// signal beyond the stored record.
func (s *PublishService) Reject(ctx context.Context, id, reason string, reviewerID uint, at time.Time) error {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return s.RejectionRepo.Create(&model.Rejection{
		LessonID:   id,
		ReviewerID: reviewerID,
		Reason:     reason,
		RejectedAt: at,
	})
}

// PendingReview is one row of the admin queue.
type PendingReview struct {
	LessonID    string    `json:"lessonId"`
	Title       string    `json:"title"`
	SlideCount  int       `json:"slideCount"`
	LastUpdated time.Time `json:"lastUpdated"`
	Changes     ChangeSet `json:"changes"`
}

// PendingReviews walks the draft directory and returns every draft that
// differs from (or lacks) a published counterpart.
func (s *PublishService) PendingReviews(ctx context.Context) ([]PendingReview, error) {
	entries, err := s.Store.ListDir(ctx, "lessons/drafts")
	if errors.Is(err, util.ErrFileNotFound) {
		return []PendingReview{}, nil
	}
	if err != nil {
		return nil, err
	}

	out := []PendingReview{}
	for _, entry := range entries {
		file, err := s.Store.GetFile(ctx, entry.Path)
		if err != nil {
			return nil, err
		}
		draft, err := decodeLesson(file.Content)
		if err != nil {
			logger.Log.Warn("skipping malformed draft", zap.String("path", entry.Path), zap.Error(err))
			continue
		}

		published, err := s.loadPublished(ctx, draft)
		if err != nil {
			return nil, err
		}

		changes := DetectChanges(draft, published)
		if changes.Count == 0 {
			continue
		}
		out = append(out, PendingReview{
			LessonID:    draft.ID,
			Title:       draft.Title,
			SlideCount:  len(draft.Slides),
			LastUpdated: draft.Metadata.LastUpdated,
			Changes:     changes,
		})
	}
	return out, nil
}

// Rollback restores the draft from its newest version snapshot.
func (s *PublishService) Rollback(ctx context.Context, id string) (string, error) {
	versions, err := s.Drafts.ListVersions(ctx, id)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", util.ErrNoVersions
	}

	newest := versions[0]
	snapshot, err := s.Store.GetFile(ctx, newest.Path)
	if err != nil {
		return "", err
	}

	doc, err := decodeLesson(snapshot.Content)
	if err != nil {
		return "", err
	}

	if _, err := s.Drafts.RestoreDraft(ctx, doc, fmt.Sprintf("Rollback %s to %s", id, newest.Name)); err != nil {
		return "", err
	}
	return newest.Name, nil
}
