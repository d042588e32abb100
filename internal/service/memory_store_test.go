package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gravishankar/satify-backend/internal/util"
)

func TestMemoryStoreSaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContentStore()

	sha, err := store.SaveFile(ctx, "lessons/drafts/l1.json", []byte(`{"id":"l1"}`), "create", "")
	if err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	if sha == "" {
		t.Fatal("empty sha returned")
	}

	file, err := store.GetFile(ctx, "lessons/drafts/l1.json")
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	if string(file.Content) != `{"id":"l1"}` {
		t.Fatalf("content = %s", file.Content)
	}
	if file.SHA != sha {
		t.Fatalf("sha mismatch: %s vs %s", file.SHA, sha)
	}
}

func TestMemoryStorePreconditions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContentStore()

	sha, err := store.SaveFile(ctx, "a.json", []byte("v1"), "m", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// create-over-existing fails
	if _, err := store.SaveFile(ctx, "a.json", []byte("v2"), "m", ""); !errors.Is(err, util.ErrStoreConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// stale sha fails
	if _, err := store.SaveFile(ctx, "a.json", []byte("v2"), "m", "0000"); !errors.Is(err, util.ErrStoreConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// matching sha succeeds and advances the token
	sha2, err := store.SaveFile(ctx, "a.json", []byte("v2"), "m", sha)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if sha2 == sha {
		t.Fatal("sha did not advance")
	}

	// the old token is now stale
	if _, err := store.SaveFile(ctx, "a.json", []byte("v3"), "m", sha); !errors.Is(err, util.ErrStoreConflict) {
		t.Fatalf("expected conflict on stale token, got %v", err)
	}

	// update with a sha on a missing path fails
	if _, err := store.SaveFile(ctx, "b.json", []byte("v1"), "m", sha); !errors.Is(err, util.ErrStoreConflict) {
		t.Fatalf("expected conflict on missing path, got %v", err)
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := NewMemoryContentStore()
	if _, err := store.GetFile(context.Background(), "nope.json"); !errors.Is(err, util.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContentStore()

	sha, _ := store.SaveFile(ctx, "a.json", []byte("v1"), "m", "")

	if err := store.DeleteFile(ctx, "a.json", "m", "bad"); !errors.Is(err, util.ErrStoreConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := store.DeleteFile(ctx, "a.json", "m", sha); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if _, err := store.GetFile(ctx, "a.json"); !errors.Is(err, util.ErrFileNotFound) {
		t.Fatalf("file survived delete: %v", err)
	}
	if err := store.DeleteFile(ctx, "a.json", "m", ""); !errors.Is(err, util.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestMemoryStoreListDir(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContentStore()

	store.SaveFile(ctx, "lessons/drafts/b.json", []byte("b"), "m", "")
	store.SaveFile(ctx, "lessons/drafts/a.json", []byte("a"), "m", "")
	store.SaveFile(ctx, "lessons/drafts/versions/a_x.json", []byte("v"), "m", "")
	store.SaveFile(ctx, "lessons/manifest.json", []byte("{}"), "m", "")

	entries, err := store.ListDir(ctx, "lessons/drafts")
	if err != nil {
		t.Fatalf("ListDir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %+v", entries)
	}
	// immediate children only, sorted by name
	if entries[0].Name != "a.json" || entries[1].Name != "b.json" {
		t.Fatalf("order = %s, %s", entries[0].Name, entries[1].Name)
	}
	if entries[0].Path != "lessons/drafts/a.json" {
		t.Fatalf("path = %s", entries[0].Path)
	}
}

func TestBlobSHA(t *testing.T) {
	// git blob object id for "hello\n"
	if got := blobSHA([]byte("hello\n")); got != "ce013625030ba8dba906f756967f9e9ca394464a" {
		t.Fatalf("blobSHA = %s", got)
	}
}
