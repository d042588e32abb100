package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gravishankar/satify-backend/internal/util"
)

// MemoryContentStore keeps blobs in a map with the same sha semantics as the
// git-backed store. Used in development and tests.
type MemoryContentStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemoryContentStore() *MemoryContentStore {
	return &MemoryContentStore{files: make(map[string][]byte)}
}

func (s *MemoryContentStore) GetFile(ctx context.Context, path string) (*StoredFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.files[path]
	if !ok {
		return nil, util.ErrFileNotFound
	}
	copied := append([]byte(nil), content...)
	return &StoredFile{Content: copied, SHA: blobSHA(copied)}, nil
}

func (s *MemoryContentStore) SaveFile(ctx context.Context, path string, content []byte, message, sha string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.files[path]
	if exists {
		if sha == "" {
			return "", fmt.Errorf("%w: %s already exists", util.ErrStoreConflict, path)
		}
		if blobSHA(current) != sha {
			return "", fmt.Errorf("%w: %s moved since last read", util.ErrStoreConflict, path)
		}
	} else if sha != "" {
		return "", fmt.Errorf("%w: %s was removed since last read", util.ErrStoreConflict, path)
	}

	s.files[path] = append([]byte(nil), content...)
	return blobSHA(content), nil
}

func (s *MemoryContentStore) DeleteFile(ctx context.Context, path, message, sha string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.files[path]
	if !ok {
		return util.ErrFileNotFound
	}
	if sha != "" && blobSHA(current) != sha {
		return fmt.Errorf("%w: %s moved since last read", util.ErrStoreConflict, path)
	}
	delete(s.files, path)
	return nil
}

func (s *MemoryContentStore) ListDir(ctx context.Context, path string) ([]DirEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := strings.TrimSuffix(path, "/") + "/"
	var out []DirEntry
	for p, content := range s.files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if strings.Contains(rest, "/") {
			continue
		}
		out = append(out, DirEntry{Name: rest, Path: p, SHA: blobSHA(content)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
