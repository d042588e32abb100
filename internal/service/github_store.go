package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gravishankar/satify-backend/internal/config"
	"github.com/gravishankar/satify-backend/internal/util"
)

// GitHubContentStore talks to the GitHub Contents API:
// GET/PUT/DELETE {api}/repos/{owner}/{repo}/contents/{path}.
type GitHubContentStore struct {
	APIBase string
	Owner   string
	Repo    string
	Branch  string
	Token   string
	Client  *http.Client
}

func NewGitHubContentStore(cfg *config.ContentStoreConfig) *GitHubContentStore {
	return &GitHubContentStore{
		APIBase: strings.TrimSuffix(cfg.GitHubAPIURL, "/"),
		Owner:   cfg.GitHubOwner,
		Repo:    cfg.GitHubRepo,
		Branch:  cfg.GitHubBranch,
		Token:   cfg.GitHubToken,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type githubContentResponse struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type githubWriteRequest struct {
	Message string `json:"message"`
	Content string `json:"content,omitempty"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

type githubWriteResponse struct {
	Content *githubContentResponse `json:"content"`
}

func (s *GitHubContentStore) contentsURL(path string) string {
	escaped := (&url.URL{Path: path}).EscapedPath()
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", s.APIBase, s.Owner, s.Repo, escaped)
}

func (s *GitHubContentStore) do(ctx context.Context, method, rawURL string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "token "+s.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", util.ErrStoreTransport, method, rawURL, err)
	}
	return resp, nil
}

// classifyStatus maps non-2xx Contents API responses onto the store error
// kinds. 409 and the 422 the API returns for a stale sha both mean the blob
// moved under us.
func classifyStatus(status int, detail string) error {
	switch {
	case status == http.StatusNotFound:
		return util.ErrFileNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: status %d: %s", util.ErrStoreAuth, status, detail)
	case status == http.StatusConflict:
		return fmt.Errorf("%w: %s", util.ErrStoreConflict, detail)
	case status == http.StatusUnprocessableEntity && strings.Contains(detail, "sha"):
		return fmt.Errorf("%w: %s", util.ErrStoreConflict, detail)
	default:
		return fmt.Errorf("%w: status %d: %s", util.ErrStoreTransport, status, detail)
	}
}

func readError(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var ghErr struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &ghErr) == nil && ghErr.Message != "" {
		return ghErr.Message
	}
	return string(body)
}

func (s *GitHubContentStore) GetFile(ctx context.Context, path string) (*StoredFile, error) {
	rawURL := s.contentsURL(path) + "?ref=" + url.QueryEscape(s.Branch)
	resp, err := s.do(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, readError(resp))
	}

	var payload githubContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode contents response: %v", util.ErrStoreTransport, err)
	}

	// the API wraps base64 bodies at 60 columns
	cleaned := strings.ReplaceAll(payload.Content, "\n", "")
	content, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: decode base64 content at %s: %v", util.ErrStoreTransport, path, err)
	}

	return &StoredFile{Content: content, SHA: payload.SHA}, nil
}

func (s *GitHubContentStore) SaveFile(ctx context.Context, path string, content []byte, message, sha string) (string, error) {
	body := githubWriteRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		Branch:  s.Branch,
		SHA:     sha,
	}

	resp, err := s.do(ctx, http.MethodPut, s.contentsURL(path), body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", classifyStatus(resp.StatusCode, readError(resp))
	}

	var payload githubWriteResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: decode write response: %v", util.ErrStoreTransport, err)
	}
	if payload.Content == nil {
		return "", fmt.Errorf("%w: write response missing content", util.ErrStoreTransport)
	}
	return payload.Content.SHA, nil
}

func (s *GitHubContentStore) DeleteFile(ctx context.Context, path, message, sha string) error {
	body := githubWriteRequest{
		Message: message,
		Branch:  s.Branch,
		SHA:     sha,
	}

	resp, err := s.do(ctx, http.MethodDelete, s.contentsURL(path), body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return classifyStatus(resp.StatusCode, readError(resp))
	}
	return nil
}

func (s *GitHubContentStore) ListDir(ctx context.Context, path string) ([]DirEntry, error) {
	rawURL := s.contentsURL(path) + "?ref=" + url.QueryEscape(s.Branch)
	resp, err := s.do(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, readError(resp))
	}

	var entries []githubContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: decode directory listing: %v", util.ErrStoreTransport, err)
	}

	out := make([]DirEntry, 0, len(entries))
	for _, e := range entries {
		if e.Type != "file" {
			continue
		}
		out = append(out, DirEntry{Name: e.Name, Path: e.Path, SHA: e.SHA})
	}
	return out, nil
}
