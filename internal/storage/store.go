package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/franciscosanchezn/gin-recipe-api/internal/config"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel aligns the package logger with the application log level
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

var ErrNotFound = errors.New("object not found")

// Store keeps uploaded recipe images and returns the public URL for each one
type Store interface {
	Save(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// New returns the store selected by STORAGE_DRIVER
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case "s3":
		return NewS3StoreFromConfig(ctx, cfg.S3Bucket, cfg.S3Region)
	case "local", "":
		return NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL+LocalURLPrefix)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}
}
