package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gravishankar/satify-backend/internal/config"
	"github.com/gravishankar/satify-backend/internal/util"
)

func githubStoreForTest(t *testing.T, handler http.HandlerFunc) (*GitHubContentStore, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := NewGitHubContentStore(&config.ContentStoreConfig{
		GitHubAPIURL: srv.URL,
		GitHubOwner:  "gravishankar",
		GitHubRepo:   "satify-content",
		GitHubBranch: "main",
		GitHubToken:  "test-token",
	})
	store.Client = srv.Client()
	return store, srv
}

func TestGitHubGetFile(t *testing.T) {
	var gotPath, gotAuth, gotRef string
	store, _ := githubStoreForTest(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotRef = r.URL.Query().Get("ref")

		// the API wraps base64 at 60 columns; the client must tolerate newlines
		encoded := base64.StdEncoding.EncodeToString([]byte(`{"id":"l1"}`))
		wrapped := encoded[:8] + "\n" + encoded[8:] + "\n"
		json.NewEncoder(w).Encode(map[string]interface{}{
			"type":     "file",
			"sha":      "abc123",
			"content":  wrapped,
			"encoding": "base64",
		})
	})

	file, err := store.GetFile(context.Background(), "lessons/drafts/l1.json")
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	if string(file.Content) != `{"id":"l1"}` {
		t.Fatalf("content = %s", file.Content)
	}
	if file.SHA != "abc123" {
		t.Fatalf("sha = %s", file.SHA)
	}
	if gotPath != "/repos/gravishankar/satify-content/contents/lessons/drafts/l1.json" {
		t.Fatalf("path = %s", gotPath)
	}
	if gotAuth != "token test-token" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotRef != "main" {
		t.Fatalf("ref = %q", gotRef)
	}
}

func TestGitHubGetFileNotFound(t *testing.T) {
	store, _ := githubStoreForTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})

	if _, err := store.GetFile(context.Background(), "nope.json"); !errors.Is(err, util.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestGitHubSaveFile(t *testing.T) {
	var gotBody githubWriteRequest
	store, _ := githubStoreForTest(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": map[string]interface{}{"sha": "newsha"},
		})
	})

	sha, err := store.SaveFile(context.Background(), "lessons/drafts/l1.json", []byte(`{"id":"l1"}`), "Save draft: l1", "oldsha")
	if err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	if sha != "newsha" {
		t.Fatalf("sha = %s", sha)
	}
	if gotBody.Message != "Save draft: l1" || gotBody.SHA != "oldsha" || gotBody.Branch != "main" {
		t.Fatalf("request body = %+v", gotBody)
	}
	decoded, err := base64.StdEncoding.DecodeString(gotBody.Content)
	if err != nil || string(decoded) != `{"id":"l1"}` {
		t.Fatalf("content = %q (%v)", gotBody.Content, err)
	}
}

func TestGitHubSaveFileNewFileOmitsSHA(t *testing.T) {
	store, _ := githubStoreForTest(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if _, present := body["sha"]; present {
			t.Error("sha field sent for a new file")
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": map[string]interface{}{"sha": "first"},
		})
	})

	sha, err := store.SaveFile(context.Background(), "a.json", []byte("x"), "m", "")
	if err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	if sha != "first" {
		t.Fatalf("sha = %s", sha)
	}
}

func TestGitHubSaveFileConflicts(t *testing.T) {
	cases := []struct {
		status int
		body   string
	}{
		{http.StatusConflict, `{"message":"is at abc but expected def"}`},
		{http.StatusUnprocessableEntity, `{"message":"\"sha\" wasn't supplied"}`},
	}
	for _, tc := range cases {
		store, _ := githubStoreForTest(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			fmt.Fprint(w, tc.body)
		})
		if _, err := store.SaveFile(context.Background(), "a.json", []byte("x"), "m", "stale"); !errors.Is(err, util.ErrStoreConflict) {
			t.Fatalf("status %d: expected ErrStoreConflict, got %v", tc.status, err)
		}
	}
}

func TestGitHubAuthErrors(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		store, _ := githubStoreForTest(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			fmt.Fprint(w, `{"message":"Bad credentials"}`)
		})
		if _, err := store.GetFile(context.Background(), "a.json"); !errors.Is(err, util.ErrStoreAuth) {
			t.Fatalf("status %d: expected ErrStoreAuth, got %v", status, err)
		}
	}
}

func TestGitHubServerErrorIsTransport(t *testing.T) {
	store, _ := githubStoreForTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	if _, err := store.GetFile(context.Background(), "a.json"); !errors.Is(err, util.ErrStoreTransport) {
		t.Fatalf("expected ErrStoreTransport, got %v", err)
	}
}

func TestGitHubListDirFiltersToFiles(t *testing.T) {
	store, _ := githubStoreForTest(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"type": "file", "name": "a.json", "path": "lessons/drafts/a.json", "sha": "s1"},
			{"type": "dir", "name": "versions", "path": "lessons/drafts/versions", "sha": "s2"},
			{"type": "file", "name": "b.json", "path": "lessons/drafts/b.json", "sha": "s3"},
		})
	})

	entries, err := store.ListDir(context.Background(), "lessons/drafts")
	if err != nil {
		t.Fatalf("ListDir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].Name != "a.json" || entries[1].Name != "b.json" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestGitHubDeleteFile(t *testing.T) {
	var gotMethod string
	var gotBody githubWriteRequest
	store, _ := githubStoreForTest(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		json.NewDecoder(r.Body).Decode(&gotBody)
		fmt.Fprint(w, `{"content":null}`)
	})

	if err := store.DeleteFile(context.Background(), "a.json", "remove", "sha1"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Fatalf("method = %s", gotMethod)
	}
	if gotBody.SHA != "sha1" || gotBody.Message != "remove" {
		t.Fatalf("body = %+v", gotBody)
	}
}
