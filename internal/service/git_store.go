package service

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gravishankar/satify-backend/internal/util"
)

// GitRunner executes a git subcommand in a working directory. The default
// implementation shells out; tests substitute a fake.
type GitRunner interface {
	Run(ctx context.Context, dir string, args ...string) ([]byte, error)
}

type execGitRunner struct{}

func (execGitRunner) Run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// GitContentStore writes blobs into a local checkout and commits each change:
// write, git add, git commit, git push. A failing step aborts with the process
// output surfaced verbatim; there is no rollback of a partial add or commit.
type GitContentStore struct {
	Workdir string
	Push    bool
	Git     GitRunner
}

func NewGitContentStore(workdir string, push bool, runner GitRunner) *GitContentStore {
	if runner == nil {
		runner = execGitRunner{}
	}
	return &GitContentStore{Workdir: workdir, Push: push, Git: runner}
}

func (s *GitContentStore) abs(path string) (string, error) {
	cleaned := filepath.Clean(path)
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("path %q escapes the checkout", path)
	}
	return filepath.Join(s.Workdir, cleaned), nil
}

func (s *GitContentStore) GetFile(ctx context.Context, path string) (*StoredFile, error) {
	full, err := s.abs(path)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(full)
	if os.IsNotExist(err) {
		return nil, util.ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", util.ErrStoreTransport, path, err)
	}

	return &StoredFile{Content: content, SHA: blobSHA(content)}, nil
}

func (s *GitContentStore) SaveFile(ctx context.Context, path string, content []byte, message, sha string) (string, error) {
	full, err := s.abs(path)
	if err != nil {
		return "", err
	}

	current, readErr := os.ReadFile(full)
	switch {
	case readErr == nil:
		if sha == "" {
			return "", fmt.Errorf("%w: %s already exists", util.ErrStoreConflict, path)
		}
		if blobSHA(current) != sha {
			return "", fmt.Errorf("%w: %s moved since last read", util.ErrStoreConflict, path)
		}
	case os.IsNotExist(readErr):
		if sha != "" {
			return "", fmt.Errorf("%w: %s was removed since last read", util.ErrStoreConflict, path)
		}
	default:
		return "", fmt.Errorf("%w: stat %s: %v", util.ErrStoreTransport, path, readErr)
	}

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("%w: mkdir for %s: %v", util.ErrStoreTransport, path, err)
	}
	if err := os.WriteFile(full, content, 0644); err != nil {
		return "", fmt.Errorf("%w: write %s: %v", util.ErrStoreTransport, path, err)
	}

	if err := s.commit(ctx, message, path); err != nil {
		return "", err
	}

	return blobSHA(content), nil
}

func (s *GitContentStore) DeleteFile(ctx context.Context, path, message, sha string) error {
	full, err := s.abs(path)
	if err != nil {
		return err
	}

	current, readErr := os.ReadFile(full)
	if os.IsNotExist(readErr) {
		return util.ErrFileNotFound
	}
	if readErr != nil {
		return fmt.Errorf("%w: read %s: %v", util.ErrStoreTransport, path, readErr)
	}
	if sha != "" && blobSHA(current) != sha {
		return fmt.Errorf("%w: %s moved since last read", util.ErrStoreConflict, path)
	}

	if err := os.Remove(full); err != nil {
		return fmt.Errorf("%w: remove %s: %v", util.ErrStoreTransport, path, err)
	}

	return s.commit(ctx, message, path)
}

func (s *GitContentStore) ListDir(ctx context.Context, path string) ([]DirEntry, error) {
	full, err := s.abs(path)
	if err != nil {
		return nil, err
	}

	files, err := os.ReadDir(full)
	if os.IsNotExist(err) {
		return nil, util.ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", util.ErrStoreTransport, path, err)
	}

	out := make([]DirEntry, 0, len(files))
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		entryPath := path + "/" + f.Name()
		content, err := os.ReadFile(filepath.Join(full, f.Name()))
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", util.ErrStoreTransport, entryPath, err)
		}
		out = append(out, DirEntry{Name: f.Name(), Path: entryPath, SHA: blobSHA(content)})
	}
	return out, nil
}

func (s *GitContentStore) commit(ctx context.Context, message, path string) error {
	steps := [][]string{
		{"add", "-A", "--", path},
		{"commit", "-m", message},
	}
	if s.Push {
		steps = append(steps, []string{"push"})
	}

	for _, args := range steps {
		out, err := s.Git.Run(ctx, s.Workdir, args...)
		if err != nil {
			return fmt.Errorf("%w: git %s: %v: %s", util.ErrStoreTransport, args[0], err, strings.TrimSpace(string(out)))
		}
	}
	return nil
}
