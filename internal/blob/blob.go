// Package blob stores uploaded binary objects. Profile photos live under
// profilePhotos/{userID}.jpg, one object per user, overwritten on each
// upload.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"tripmate/internal/log"
)

var (
	ErrNotFound    = errors.New("object not found")
	ErrInvalidPath = errors.New("invalid object path")
)

// Store is the object storage port. Upload replaces any existing object at
// the path and returns its public URL.
type Store interface {
	Upload(ctx context.Context, objectPath string, r io.Reader) (string, error)
	Open(ctx context.Context, objectPath string) (io.ReadCloser, error)
	URL(objectPath string) string
}

// ProfilePhotoPath is the canonical object path for a user's photo.
func ProfilePhotoPath(userID string) string {
	return "profilePhotos/" + userID + ".jpg"
}

// FSStore keeps objects on the local filesystem under a root directory and
// serves them through a base URL.
type FSStore struct {
	root    string
	baseURL string
	logger  *log.Logger
}

func NewFSStore(root, baseURL string, logger *log.Logger) (*FSStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &FSStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.WithComponent(log.ComponentBlob),
	}, nil
}

func (s *FSStore) Upload(ctx context.Context, objectPath string, r io.Reader) (string, error) {
	full, err := s.resolve(objectPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("create object directory: %w", err)
	}

	// write to a temp file first so a failed upload never clobbers the
	// current object
	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp object: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close object: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return "", fmt.Errorf("finalize object: %w", err)
	}

	s.logger.InfoContext(ctx, "Object uploaded", log.FieldBlobPath, objectPath)
	return s.URL(objectPath), nil
}

func (s *FSStore) Open(_ context.Context, objectPath string) (io.ReadCloser, error) {
	full, err := s.resolve(objectPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open object: %w", err)
	}
	return f, nil
}

func (s *FSStore) URL(objectPath string) string {
	return s.baseURL + "/" + objectPath
}

func (s *FSStore) resolve(objectPath string) (string, error) {
	clean := path.Clean("/" + objectPath)
	if clean == "/" || strings.Contains(objectPath, "..") {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}
