package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gravishankar/satify-backend/internal/model"
	"github.com/gravishankar/satify-backend/internal/util"
	"github.com/gravishankar/satify-backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	manifestCacheKey = "satify:manifest"
	manifestCacheTTL = 5 * time.Minute
)

// LessonService owns the published tier: the manifest index and direct
// publish-path writes from the authoring UI.
type LessonService struct {
	Store ContentStore
	Redis *redis.Client
}

func NewLessonService(store ContentStore, rdb *redis.Client) *LessonService {
	return &LessonService{Store: store, Redis: rdb}
}

// Manifest reads lessons/manifest.json, serving list traffic from redis when
// possible. A missing manifest is an empty index, not an error.
func (s *LessonService) Manifest(ctx context.Context) (model.Manifest, error) {
	if s.Redis != nil {
		if raw, err := s.Redis.Get(ctx, manifestCacheKey).Bytes(); err == nil {
			var m model.Manifest
			if json.Unmarshal(raw, &m) == nil {
				return m, nil
			}
		}
	}

	m, _, err := s.manifestForWrite(ctx)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if raw, err := json.Marshal(m); err == nil {
			if err := s.Redis.Set(ctx, manifestCacheKey, raw, manifestCacheTTL).Err(); err != nil {
				logger.Log.Warn("manifest cache write failed", zap.Error(err))
			}
		}
	}
	return m, nil
}

// manifestForWrite always hits the store and returns the revision token
// needed to write the manifest back.
func (s *LessonService) manifestForWrite(ctx context.Context) (model.Manifest, string, error) {
	file, err := s.Store.GetFile(ctx, model.ManifestPath)
	if errors.Is(err, util.ErrFileNotFound) {
		return model.Manifest{}, "", nil
	}
	if err != nil {
		return nil, "", err
	}

	var m model.Manifest
	if err := json.Unmarshal(file.Content, &m); err != nil {
		return nil, "", fmt.Errorf("malformed manifest: %w", err)
	}
	return m, file.SHA, nil
}

func (s *LessonService) writeManifest(ctx context.Context, m model.Manifest, sha, message string) error {
	content, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if _, err := s.Store.SaveFile(ctx, model.ManifestPath, content, message, sha); err != nil {
		return err
	}
	s.invalidateManifestCache(ctx)
	return nil
}

func (s *LessonService) invalidateManifestCache(ctx context.Context) {
	if s.Redis != nil {
		if err := s.Redis.Del(ctx, manifestCacheKey).Err(); err != nil {
			logger.Log.Warn("manifest cache invalidation failed", zap.Error(err))
		}
	}
}

// UpsertManifestEntry records a freshly published lesson in the index.
func (s *LessonService) UpsertManifestEntry(ctx context.Context, doc *model.LessonDocument, filepath string) error {
	m, sha, err := s.manifestForWrite(ctx)
	if err != nil {
		return err
	}
	m.Upsert(doc, filepath)
	return s.writeManifest(ctx, m, sha, fmt.Sprintf("Update manifest: %s", doc.ID))
}

// PublishedPathFor resolves where a lesson's published copy lives: the
// manifest entry when one exists, the canonical derived path otherwise.
func (s *LessonService) PublishedPathFor(ctx context.Context, doc *model.LessonDocument) (string, error) {
	m, err := s.Manifest(ctx)
	if err != nil {
		return "", err
	}
	if entry, ok := m[doc.ID]; ok && entry.Filepath != "" {
		return entry.Filepath, nil
	}
	return model.PublishedPath(doc), nil
}

// CommitRequest is the authoring UI's direct write: lesson bytes to an
// explicit publish path, optionally replacing the whole manifest.
type CommitRequest struct {
	Message    string          `json:"message"`
	LessonData json.RawMessage `json:"lessonData" binding:"required"`
	Filepath   string          `json:"filepath" binding:"required"`
	Manifest   json.RawMessage `json:"manifest,omitempty"`
}

// CommitLesson writes the lesson to the requested path, then the manifest.
// Each step is one atomic store write; a manifest failure after a successful
// lesson write leaves the index stale, matching the original's semantics.
func (s *LessonService) CommitLesson(ctx context.Context, req CommitRequest) error {
	doc, err := decodeLesson(req.LessonData)
	if err != nil {
		return err
	}
	if err := model.ValidateLesson(doc); err != nil {
		return err
	}

	sha := ""
	if current, err := s.Store.GetFile(ctx, req.Filepath); err == nil {
		sha = current.SHA
	} else if !errors.Is(err, util.ErrFileNotFound) {
		return err
	}

	message := req.Message
	if message == "" {
		message = fmt.Sprintf("Commit lesson: %s", doc.ID)
	}
	if _, err := s.Store.SaveFile(ctx, req.Filepath, req.LessonData, message, sha); err != nil {
		return err
	}

	if len(req.Manifest) > 0 {
		var m model.Manifest
		if err := json.Unmarshal(req.Manifest, &m); err != nil {
			return fmt.Errorf("malformed manifest payload: %w", err)
		}
		_, manifestSHA, err := s.manifestForWrite(ctx)
		if err != nil {
			return err
		}
		return s.writeManifest(ctx, m, manifestSHA, message)
	}
	return s.UpsertManifestEntry(ctx, doc, req.Filepath)
}
