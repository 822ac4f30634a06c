package libs

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"medcart/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

const catalogFolder = "catalog"

var ErrCloudinaryNotConfigured = errors.New("cloudinary environment variables not set")

// CloudinaryStore uploads catalog images to Cloudinary.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryStore(cfg *config.Config) (*CloudinaryStore, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)

	switch {
	case cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "":
		cld, err = cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			return nil, fmt.Errorf("cloudinary init from params: %w", err)
		}
	case cfg.CloudinaryURL != "":
		cld, err = cloudinary.NewFromURL(cfg.CloudinaryURL)
		if err != nil {
			return nil, fmt.Errorf("cloudinary init from URL: %w", err)
		}
	default:
		return nil, ErrCloudinaryNotConfigured
	}

	return &CloudinaryStore{cld: cld, folder: catalogFolder}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, header *multipart.FileHeader) (string, string, error) {
	file, err := header.Open()
	if err != nil {
		return "", "", err
	}
	defer file.Close()

	resp, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID: fmt.Sprintf("item_%d", time.Now().UnixNano()),
		Folder:   s.folder,
	})
	if err != nil {
		return "", "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp == nil {
		return "", "", errors.New("cloudinary response is nil")
	}

	url := resp.SecureURL
	if url == "" {
		url = resp.URL
	}
	if url == "" {
		return "", "", errors.New("cloudinary returned no URL")
	}

	config.Logger().Debug("image uploaded", zap.String("public_id", resp.PublicID))
	return url, resp.PublicID, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}

	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to delete from cloudinary: %w", err)
	}
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("cloudinary deletion failed: %s", result.Result)
	}
	return nil
}
