package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// LocalURLPrefix is where the router serves files written by LocalStore
const LocalURLPrefix = "/uploads"

// LocalStore writes images below a directory on disk
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Save(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(out, body); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close image file: %w", err)
	}

	log.WithFields(logrus.Fields{"key": key, "content_type": contentType}).Debug("Stored image on disk")
	return s.baseURL + "/" + key, nil
}

func (s *LocalStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

// path rejects keys that would escape the upload directory
func (s *LocalStore) path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.dir, key), nil
}
