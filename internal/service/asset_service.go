package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/gravishankar/satify-backend/internal/config"
	"github.com/gravishankar/satify-backend/internal/model"
	"github.com/gravishankar/satify-backend/internal/util"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// AssetProvider stores slide media (images referenced from lesson content).
type AssetProvider interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, filename string) error
	GetURL(filename string) string
}

// LocalAssetProvider writes under the configured local path.
type LocalAssetProvider struct {
	Config *config.AssetsConfig
}

func (p *LocalAssetProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(p.Config.LocalPath, filename)
	dir := filepath.Dir(dst)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	_, err = io.Copy(out, reader)
	if err != nil {
		return "", err
	}

	return p.GetURL(filename), nil
}

func (p *LocalAssetProvider) Delete(ctx context.Context, filename string) error {
	return os.Remove(filepath.Join(p.Config.LocalPath, filename))
}

func (p *LocalAssetProvider) GetURL(filename string) string {
	return "/uploads/" + filename
}

// MinioAssetProvider stores assets in a MinIO bucket.
type MinioAssetProvider struct {
	Config *config.AssetsConfig
	Client *minio.Client
}

func NewMinioAssetProvider(cfg *config.AssetsConfig) (*MinioAssetProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}
	return &MinioAssetProvider{Config: cfg, Client: client}, nil
}

func (p *MinioAssetProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, filename, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *MinioAssetProvider) Delete(ctx context.Context, filename string) error {
	return p.Client.RemoveObject(ctx, p.Config.MinioBucket, filename, minio.RemoveObjectOptions{})
}

func (p *MinioAssetProvider) GetURL(filename string) string {
	return "/" + p.Config.MinioBucket + "/" + filename
}

type AssetService struct {
	Provider AssetProvider
}

func NewAssetService(cfg *config.Config) *AssetService {
	var provider AssetProvider
	if cfg.Assets.Type == util.StorageMinio {
		if p, err := NewMinioAssetProvider(&cfg.Assets); err == nil {
			provider = p
		}
	}

	if provider == nil {
		provider = &LocalAssetProvider{Config: &cfg.Assets}
	}

	return &AssetService{Provider: provider}
}

// UploadSlideImage validates the upload is really an image and stores it
// under a timestamped name.
func (s *AssetService) UploadSlideImage(ctx context.Context, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	mimeType, err := util.ValidateMimeType(src, []string{util.MimeImage})
	if err != nil {
		return "", fmt.Errorf("invalid asset: %w", err)
	}
	if seeker, ok := src.(io.Seeker); ok {
		seeker.Seek(0, io.SeekStart)
	}

	ext := filepath.Ext(file.Filename)
	filename := "slides/" + time.Now().Format("20060102") + "_" + model.GenerateUUID() + ext

	return s.Provider.Upload(ctx, filename, src, file.Size, mimeType)
}
