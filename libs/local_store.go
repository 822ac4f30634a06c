package libs

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore keeps catalog images on disk when Cloudinary is not configured.
// Images are served from /uploads.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

func (s *LocalStore) Upload(ctx context.Context, header *multipart.FileHeader) (string, string, error) {
	folder := filepath.Join(s.dir, catalogFolder)
	if err := os.MkdirAll(folder, os.ModePerm); err != nil {
		return "", "", fmt.Errorf("create upload folder: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	name := fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)
	path := filepath.Join(folder, name)

	src, err := header.Open()
	if err != nil {
		return "", "", err
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("save uploaded file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", "", fmt.Errorf("save uploaded file: %w", err)
	}

	ref := filepath.ToSlash(filepath.Join(catalogFolder, name))
	return "/uploads/" + ref, ref, nil
}

func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(ref)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
