package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/gravishankar/satify-backend/internal/config"
	"github.com/gravishankar/satify-backend/internal/util"
	"github.com/gravishankar/satify-backend/pkg/monitoring"
)

// StoredFile is a blob read back from the content store. SHA is the opaque
// revision token for the next write's optimistic-concurrency precondition.
type StoredFile struct {
	Content []byte
	SHA     string
}

type DirEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	SHA  string `json:"sha"`
}

// ContentStore reads and writes JSON blobs at repository paths, abstracting
// over the GitHub Contents API and a local git checkout.
//
// GetFile returns util.ErrFileNotFound for a missing path; that is a valid
// result, not a fault. SaveFile with an empty sha means "create new file"; a
// non-empty sha is a precondition and the write fails with
// util.ErrStoreConflict when the stored blob has moved. Credential problems
// surface as util.ErrStoreAuth and anything network- or process-level as
// util.ErrStoreTransport.
type ContentStore interface {
	GetFile(ctx context.Context, path string) (*StoredFile, error)
	SaveFile(ctx context.Context, path string, content []byte, message, sha string) (string, error)
	DeleteFile(ctx context.Context, path, message, sha string) error
	ListDir(ctx context.Context, path string) ([]DirEntry, error)
}

// NewContentStore picks the backend from config.
func NewContentStore(cfg *config.ContentStoreConfig) (ContentStore, error) {
	var store ContentStore
	switch cfg.Type {
	case util.ContentStoreGitHub:
		store = NewGitHubContentStore(cfg)
	case util.ContentStoreGit:
		store = NewGitContentStore(cfg.GitWorkdir, cfg.GitPush, nil)
	case util.ContentStoreMemory:
		store = NewMemoryContentStore()
	default:
		return nil, fmt.Errorf("unknown content store type %q", cfg.Type)
	}
	return &measuredStore{backend: cfg.Type, next: store}, nil
}

// blobSHA is the revision token shared by the git-backed and in-memory
// stores: the git blob object id of the content.
func blobSHA(content []byte) string {
	h := sha1.New()
	fmt.Fprintf(h, "blob %d", len(content))
	h.Write([]byte{0})
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

// measuredStore counts every operation per backend and outcome.
type measuredStore struct {
	backend string
	next    ContentStore
}

func (m *measuredStore) GetFile(ctx context.Context, path string) (*StoredFile, error) {
	f, err := m.next.GetFile(ctx, path)
	monitoring.ObserveStoreOp("get", m.backend, err)
	return f, err
}

func (m *measuredStore) SaveFile(ctx context.Context, path string, content []byte, message, sha string) (string, error) {
	newSHA, err := m.next.SaveFile(ctx, path, content, message, sha)
	monitoring.ObserveStoreOp("save", m.backend, err)
	return newSHA, err
}

func (m *measuredStore) DeleteFile(ctx context.Context, path, message, sha string) error {
	err := m.next.DeleteFile(ctx, path, message, sha)
	monitoring.ObserveStoreOp("delete", m.backend, err)
	return err
}

func (m *measuredStore) ListDir(ctx context.Context, path string) ([]DirEntry, error) {
	entries, err := m.next.ListDir(ctx, path)
	monitoring.ObserveStoreOp("list", m.backend, err)
	return entries, err
}
