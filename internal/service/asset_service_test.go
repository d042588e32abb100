package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gravishankar/satify-backend/internal/config"

	"github.com/google/uuid"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}

func slideUpload(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	_, header, err := req.FormFile("file")
	if err != nil {
		t.Fatalf("parse form file: %v", err)
	}
	return header
}

func localAssetService(t *testing.T) *AssetService {
	t.Helper()
	return &AssetService{Provider: &LocalAssetProvider{
		Config: &config.AssetsConfig{LocalPath: t.TempDir()},
	}}
}

func TestUploadSlideImageNamesFilesByUUID(t *testing.T) {
	svc := localAssetService(t)

	url, err := svc.UploadSlideImage(context.Background(), slideUpload(t, "photo.png", pngHeader))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	if !strings.HasPrefix(url, "/uploads/slides/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("unexpected asset url %q", url)
	}

	base := strings.TrimSuffix(filepath.Base(url), ".png")
	parts := strings.SplitN(base, "_", 2)
	if len(parts) != 2 {
		t.Fatalf("filename %q not in <date>_<uuid> form", base)
	}
	if _, err := uuid.Parse(parts[1]); err != nil {
		t.Fatalf("filename %q does not embed a uuid: %v", base, err)
	}

	local := svc.Provider.(*LocalAssetProvider)
	if _, err := os.Stat(filepath.Join(local.Config.LocalPath, "slides", base+".png")); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
}

func TestUploadSlideImageNamesNeverCollide(t *testing.T) {
	svc := localAssetService(t)

	first, err := svc.UploadSlideImage(context.Background(), slideUpload(t, "same.png", pngHeader))
	if err != nil {
		t.Fatalf("first upload failed: %v", err)
	}
	second, err := svc.UploadSlideImage(context.Background(), slideUpload(t, "same.png", pngHeader))
	if err != nil {
		t.Fatalf("second upload failed: %v", err)
	}
	if first == second {
		t.Fatalf("two uploads of %q mapped to the same url %q", "same.png", first)
	}
}

func TestUploadSlideImageRejectsNonImages(t *testing.T) {
	svc := localAssetService(t)

	_, err := svc.UploadSlideImage(context.Background(), slideUpload(t, "notes.txt", []byte("plain text, not an image")))
	if err == nil {
		t.Fatal("expected a non-image upload to be rejected")
	}
}
