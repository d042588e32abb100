package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gravishankar/satify-backend/internal/model"
	"github.com/gravishankar/satify-backend/internal/util"
	"github.com/gravishankar/satify-backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	scratchKeyPrefix = "satify:scratch:"
	scratchTTL       = 24 * time.Hour
)

// DraftService owns the draft tier of the lesson store: saves, version
// snapshots, the draft-then-published read fallback, and the redis scratch
// copies authors recover from after a crash.
//
// Revision tokens are cached per lesson so sequential saves by one editor
// never conflict. There is no locking beyond that: concurrent editors race
// and the loser's precondition fails with util.ErrStoreConflict, which is
// surfaced as-is; nothing retries or merges.
type DraftService struct {
	Store ContentStore
	Redis *redis.Client

	mu     sync.Mutex
	tokens map[string]string // lesson id -> last known draft sha
}

func NewDraftService(store ContentStore, rdb *redis.Client) *DraftService {
	return &DraftService{
		Store:  store,
		Redis:  rdb,
		tokens: make(map[string]string),
	}
}

// LoadedLesson reports which tier a read came from. FromDraft follows the
// only read-side rule in the system: a draft shadows its published copy.
type LoadedLesson struct {
	Doc       *model.LessonDocument `json:"data"`
	FromDraft bool                  `json:"fromDraft"`
	SHA       string                `json:"sha"`
}

func marshalLesson(doc *model.LessonDocument) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

func (s *DraftService) cachedToken(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sha, ok := s.tokens[id]
	return sha, ok
}

func (s *DraftService) setToken(id, sha string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sha == "" {
		delete(s.tokens, id)
		return
	}
	s.tokens[id] = sha
}

// SaveDraft validates the document, stamps the draft path and advances the
// revision token on success. The commit message embeds the title and slide
// count the way the authoring UI always has.
func (s *DraftService) SaveDraft(ctx context.Context, doc *model.LessonDocument) (string, error) {
	if err := model.ValidateLesson(doc); err != nil {
		return "", err
	}

	path := model.DraftPath(doc.ID)

	sha, ok := s.cachedToken(doc.ID)
	if !ok {
		current, err := s.Store.GetFile(ctx, path)
		switch {
		case err == nil:
			sha = current.SHA
		case errors.Is(err, util.ErrFileNotFound):
			sha = ""
		default:
			return "", err
		}
	}

	content, err := marshalLesson(doc)
	if err != nil {
		return "", err
	}

	message := fmt.Sprintf("Save draft: %s (%d slides)", doc.Title, len(doc.Slides))
	newSHA, err := s.Store.SaveFile(ctx, path, content, message, sha)
	if err != nil {
		if errors.Is(err, util.ErrStoreConflict) {
			// stale cache; the next attempt re-reads
			s.setToken(doc.ID, "")
		}
		return "", err
	}

	s.setToken(doc.ID, newSHA)
	return newSHA, nil
}

// RestoreDraft overwrites the draft slot with the given document under a
// custom commit message, re-reading the current token first. Used by
// rollback, which must win over whatever an editor cached.
func (s *DraftService) RestoreDraft(ctx context.Context, doc *model.LessonDocument, message string) (string, error) {
	if err := model.ValidateLesson(doc); err != nil {
		return "", err
	}

	path := model.DraftPath(doc.ID)
	sha := ""
	current, err := s.Store.GetFile(ctx, path)
	switch {
	case err == nil:
		sha = current.SHA
	case errors.Is(err, util.ErrFileNotFound):
	default:
		return "", err
	}

	content, err := marshalLesson(doc)
	if err != nil {
		return "", err
	}

	newSHA, err := s.Store.SaveFile(ctx, path, content, message, sha)
	if err != nil {
		return "", err
	}
	s.setToken(doc.ID, newSHA)
	return newSHA, nil
}

// CreateVersionSnapshot writes an immutable timestamped copy under
// drafts/versions/. Best-effort: a failure is logged and never fails the
// enclosing save. Snapshots are append-only and never pruned.
func (s *DraftService) CreateVersionSnapshot(ctx context.Context, doc *model.LessonDocument) {
	content, err := marshalLesson(doc)
	if err != nil {
		logger.Log.Warn("version snapshot skipped", zap.String("lesson", doc.ID), zap.Error(err))
		return
	}

	path := model.VersionPath(doc.ID, time.Now())
	message := fmt.Sprintf("Version snapshot: %s", doc.ID)
	if _, err := s.Store.SaveFile(ctx, path, content, message, ""); err != nil {
		logger.Log.Warn("version snapshot failed",
			zap.String("lesson", doc.ID),
			zap.String("path", path),
			zap.Error(err))
	}
}

// LoadLesson reads the draft path first and falls back to the published path
// on NotFound. A successful draft read primes the token cache for the next
// save.
func (s *DraftService) LoadLesson(ctx context.Context, id, publishedPath string) (*LoadedLesson, error) {
	draft, err := s.Store.GetFile(ctx, model.DraftPath(id))
	if err == nil {
		doc, err := decodeLesson(draft.Content)
		if err != nil {
			return nil, err
		}
		s.setToken(id, draft.SHA)
		return &LoadedLesson{Doc: doc, FromDraft: true, SHA: draft.SHA}, nil
	}
	if !errors.Is(err, util.ErrFileNotFound) {
		return nil, err
	}

	if publishedPath == "" {
		return nil, util.ErrLessonNotFound
	}

	published, err := s.Store.GetFile(ctx, publishedPath)
	if errors.Is(err, util.ErrFileNotFound) {
		return nil, util.ErrLessonNotFound
	}
	if err != nil {
		return nil, err
	}

	doc, err := decodeLesson(published.Content)
	if err != nil {
		return nil, err
	}
	return &LoadedLesson{Doc: doc, FromDraft: false, SHA: published.SHA}, nil
}

type VersionInfo struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	SHA       string    `json:"sha"`
	Timestamp time.Time `json:"timestamp"`
}

// ListVersions returns the snapshots for a lesson, newest first.
func (s *DraftService) ListVersions(ctx context.Context, id string) ([]VersionInfo, error) {
	entries, err := s.Store.ListDir(ctx, model.VersionDirPath)
	if errors.Is(err, util.ErrFileNotFound) {
		return []VersionInfo{}, nil
	}
	if err != nil {
		return nil, err
	}

	prefix := id + "_"
	var out []VersionInfo
	for _, e := range entries {
		if !strings.HasPrefix(e.Name, prefix) || !strings.HasSuffix(e.Name, ".json") {
			continue
		}
		out = append(out, VersionInfo{
			Name:      e.Name,
			Path:      e.Path,
			SHA:       e.SHA,
			Timestamp: parseVersionTimestamp(strings.TrimSuffix(strings.TrimPrefix(e.Name, prefix), ".json")),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// parseVersionTimestamp reads the colon-stripped RFC3339 stamp used in
// snapshot names. A malformed stamp sorts to the zero time rather than
// failing the listing.
func parseVersionTimestamp(s string) time.Time {
	t, err := time.Parse("2006-01-02T150405Z", s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func decodeLesson(content []byte) (*model.LessonDocument, error) {
	var doc model.LessonDocument
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("malformed lesson document: %w", err)
	}
	return &doc, nil
}

func scratchKey(userID uint, lessonID string) string {
	return fmt.Sprintf("%s%d:%s", scratchKeyPrefix, userID, lessonID)
}

// SaveScratch mirrors an in-progress edit to redis with a 24h expiry. Crash
// recovery only: a scratch copy is never reconciled against the content
// store except by the author restoring it wholesale.
func (s *DraftService) SaveScratch(ctx context.Context, userID uint, doc *model.LessonDocument) error {
	if s.Redis == nil {
		return nil
	}
	content, err := marshalLesson(doc)
	if err != nil {
		return err
	}
	return s.Redis.Set(ctx, scratchKey(userID, doc.ID), content, scratchTTL).Err()
}

// LoadScratch returns the scratch copy while it is fresh, or NotFound.
func (s *DraftService) LoadScratch(ctx context.Context, userID uint, lessonID string) (*model.LessonDocument, error) {
	if s.Redis == nil {
		return nil, util.ErrFileNotFound
	}
	raw, err := s.Redis.Get(ctx, scratchKey(userID, lessonID)).Bytes()
	if err == redis.Nil {
		return nil, util.ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeLesson(raw)
}
