package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gravishankar/satify-backend/internal/model"
	"github.com/gravishankar/satify-backend/internal/util"
)

func lessonFixture(id string) *model.LessonDocument {
	return &model.LessonDocument{
		ID:         id,
		Title:      "Transitions",
		Level:      "Foundation",
		SkillCodes: []string{"CC.A"},
		Slides: []model.Slide{
			{ID: "s1", Type: model.SlideContent, Title: "Intro"},
		},
		Metadata: model.LessonMetadata{LastUpdated: time.Now().UTC()},
	}
}

func TestSaveDraftSequentialSaves(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContentStore()
	drafts := NewDraftService(store, nil)

	doc := lessonFixture("l1")
	sha1, err := drafts.SaveDraft(ctx, doc)
	if err != nil {
		t.Fatalf("first save: %v", err)
	}

	doc.Title = "Transitions, revised"
	sha2, err := drafts.SaveDraft(ctx, doc)
	if err != nil {
		t.Fatalf("second save conflicted: %v", err)
	}
	if sha2 == sha1 {
		t.Fatal("revision token did not advance")
	}

	file, err := store.GetFile(ctx, model.DraftPath("l1"))
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	if !strings.Contains(string(file.Content), "Transitions, revised") {
		t.Fatal("second save not persisted")
	}
}

func TestSaveDraftRejectsInvalid(t *testing.T) {
	drafts := NewDraftService(NewMemoryContentStore(), nil)
	if _, err := drafts.SaveDraft(context.Background(), &model.LessonDocument{}); err == nil {
		t.Fatal("invalid document saved")
	}
}

func TestSaveDraftConcurrentEditorsConflict(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContentStore()

	// two editors with independent token caches over the same store
	editorA := NewDraftService(store, nil)
	editorB := NewDraftService(store, nil)

	if _, err := editorA.SaveDraft(ctx, lessonFixture("l1")); err != nil {
		t.Fatalf("seed save: %v", err)
	}

	// both load the draft, priming their tokens
	if _, err := editorB.LoadLesson(ctx, "l1", ""); err != nil {
		t.Fatalf("editor B load: %v", err)
	}

	winner := lessonFixture("l1")
	winner.Title = "Winner's title"
	if _, err := editorA.SaveDraft(ctx, winner); err != nil {
		t.Fatalf("editor A save: %v", err)
	}

	loser := lessonFixture("l1")
	loser.Title = "Loser's title"
	if _, err := editorB.SaveDraft(ctx, loser); !errors.Is(err, util.ErrStoreConflict) {
		t.Fatalf("expected conflict for the stale editor, got %v", err)
	}

	// the winner's payload is untouched by the failed save
	file, err := store.GetFile(ctx, model.DraftPath("l1"))
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	if !strings.Contains(string(file.Content), "Winner's title") {
		t.Fatal("winner's write was clobbered")
	}

	// the loser's cache was cleared, so their next save re-reads and succeeds
	if _, err := editorB.SaveDraft(ctx, loser); err != nil {
		t.Fatalf("retry after conflict: %v", err)
	}
}

func TestLoadLessonDraftShadowsPublished(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContentStore()
	drafts := NewDraftService(store, nil)

	published := lessonFixture("l1")
	published.Title = "Published title"
	pubContent, _ := marshalLesson(published)
	pubPath := model.PublishedPath(published)
	if _, err := store.SaveFile(ctx, pubPath, pubContent, "publish", ""); err != nil {
		t.Fatalf("seed published: %v", err)
	}

	// no draft yet: the published copy is served
	loaded, err := drafts.LoadLesson(ctx, "l1", pubPath)
	if err != nil {
		t.Fatalf("LoadLesson: %v", err)
	}
	if loaded.FromDraft {
		t.Fatal("fromDraft true with no draft present")
	}
	if loaded.Doc.Title != "Published title" {
		t.Fatalf("title = %q", loaded.Doc.Title)
	}

	// a draft shadows it
	draft := lessonFixture("l1")
	draft.Title = "Draft title"
	if _, err := drafts.SaveDraft(ctx, draft); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	loaded, err = drafts.LoadLesson(ctx, "l1", pubPath)
	if err != nil {
		t.Fatalf("LoadLesson: %v", err)
	}
	if !loaded.FromDraft {
		t.Fatal("fromDraft false with a draft present")
	}
	if loaded.Doc.Title != "Draft title" {
		t.Fatalf("title = %q", loaded.Doc.Title)
	}
}

func TestLoadLessonMissingEverywhere(t *testing.T) {
	drafts := NewDraftService(NewMemoryContentStore(), nil)
	if _, err := drafts.LoadLesson(context.Background(), "ghost", ""); !errors.Is(err, util.ErrLessonNotFound) {
		t.Fatalf("expected ErrLessonNotFound, got %v", err)
	}
	if _, err := drafts.LoadLesson(context.Background(), "ghost", "lessons/x/y/z.json"); !errors.Is(err, util.ErrLessonNotFound) {
		t.Fatalf("expected ErrLessonNotFound, got %v", err)
	}
}

func TestCreateVersionSnapshotNeverFailsTheSave(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContentStore()
	drafts := NewDraftService(store, nil)

	doc := lessonFixture("l1")
	drafts.CreateVersionSnapshot(ctx, doc)
	// second snapshot in the same second collides on the path; must not panic
	drafts.CreateVersionSnapshot(ctx, doc)

	versions, err := drafts.ListVersions(ctx, "l1")
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(versions) == 0 {
		t.Fatal("no snapshot written")
	}
}

func TestListVersionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContentStore()
	drafts := NewDraftService(store, nil)

	content, _ := marshalLesson(lessonFixture("l1"))
	times := []time.Time{
		time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 3, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
	}
	for _, at := range times {
		if _, err := store.SaveFile(ctx, model.VersionPath("l1", at), content, "snap", ""); err != nil {
			t.Fatalf("seed snapshot: %v", err)
		}
	}
	// another lesson's snapshot must not leak into the listing
	if _, err := store.SaveFile(ctx, model.VersionPath("l2", times[0]), content, "snap", ""); err != nil {
		t.Fatalf("seed other snapshot: %v", err)
	}

	versions, err := drafts.ListVersions(ctx, "l1")
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(versions) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(versions))
	}
	for i := 1; i < len(versions); i++ {
		if versions[i].Timestamp.After(versions[i-1].Timestamp) {
			t.Fatalf("not newest first: %v", versions)
		}
	}
	if versions[0].Timestamp.Day() != 3 {
		t.Fatalf("newest = %v", versions[0].Timestamp)
	}
}

func TestListVersionsEmpty(t *testing.T) {
	drafts := NewDraftService(NewMemoryContentStore(), nil)
	versions, err := drafts.ListVersions(context.Background(), "l1")
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(versions) != 0 {
		t.Fatalf("expected none, got %d", len(versions))
	}
}

func TestScratchWithoutRedis(t *testing.T) {
	drafts := NewDraftService(NewMemoryContentStore(), nil)

	if err := drafts.SaveScratch(context.Background(), 7, lessonFixture("l1")); err != nil {
		t.Fatalf("SaveScratch without redis: %v", err)
	}
	if _, err := drafts.LoadScratch(context.Background(), 7, "l1"); !errors.Is(err, util.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}
