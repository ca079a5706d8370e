package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var allowedExtensions = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
}

// ImageUploader stages an upload on disk, resizes it and hands it to a Store
type ImageUploader struct {
	store    Store
	maxWidth int
	// TempDir is where uploads are staged; empty means os.TempDir
	TempDir string
}

func NewImageUploader(store Store, maxWidth int) *ImageUploader {
	return &ImageUploader{store: store, maxWidth: maxWidth}
}

// Upload stores the image under a fresh key and returns its URL. The staged
// copy is removed on every return path.
func (u *ImageUploader) Upload(ctx context.Context, filename string, src io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return "", models.NewValidationError("Invalid file type. Only JPEG, JPG, and PNG images are allowed.")
	}

	staged, err := os.CreateTemp(u.TempDir, "recipe-upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	defer os.Remove(staged.Name())
	defer staged.Close()

	if _, err := io.Copy(staged, src); err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if _, err := staged.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind staged upload: %w", err)
	}

	processed, err := Resize(staged, ext, u.maxWidth)
	if err != nil {
		log.WithError(err).WithField("filename", filename).Warn("Rejected image upload")
		return "", models.NewValidationError("Image could not be decoded")
	}

	key := uuid.NewString() + ext
	size := processed.Len()
	url, err := u.store.Save(ctx, key, contentType, processed)
	if err != nil {
		return "", err
	}

	log.WithFields(logrus.Fields{"key": key, "bytes": size}).Info("Image uploaded")
	return url, nil
}

// Open streams a stored image back with its content type. Only keys shaped
// like the ones Upload hands out are accepted.
func (u *ImageUploader) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	contentType, ok := allowedExtensions[filepath.Ext(key)]
	if !ok || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return nil, "", models.NewValidationError("Invalid image key")
	}

	body, err := u.store.Open(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, "", models.NewNotFoundError("Image not found")
	}
	if err != nil {
		return nil, "", err
	}
	return body, contentType, nil
}
