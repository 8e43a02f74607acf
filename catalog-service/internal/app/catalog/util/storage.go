package util

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// LocalFileSaver пишет файлы в локальную директорию, которую раздает роутер
type LocalFileSaver struct {
	dir          string
	publicPrefix string
}

func NewLocalFileSaver(dir, publicPrefix string) (*LocalFileSaver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalFileSaver{dir: dir, publicPrefix: "/" + strings.Trim(publicPrefix, "/")}, nil
}

// Save сохраняет файл под новым uuid именем с исходным расширением
// и возвращает публичный путь вида <prefix>/<name>
func (s *LocalFileSaver) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	target := filepath.Join(s.dir, name)

	f, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(target)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	return path.Join(s.publicPrefix, name), nil
}

// CloudinaryFileSaver загружает изображения в Cloudinary и возвращает secure URL
type CloudinaryFileSaver struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryFileSaver(cloudinaryURL, folder string) (*CloudinaryFileSaver, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to init cloudinary: %w", err)
	}
	return &CloudinaryFileSaver{cld: cld, folder: folder}, nil
}

func (s *CloudinaryFileSaver) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	publicID := uuid.NewString()
	if base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)); base != "" && base != "." {
		publicID = base + "_" + publicID
	}

	resp, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:    s.folder,
		PublicID:  publicID,
		Overwrite: api.Bool(false),
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}

	return resp.SecureURL, nil
}
