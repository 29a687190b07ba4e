// Package storage persists uploaded files on the local filesystem
// under the configured media root. Files are stored outside the
// database; records only carry the returned relative path.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/smartlogix/cargopro/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrEmptyFile   = errors.New("empty_file")
	ErrInvalidPath = errors.New("invalid_path")
)

// Store writes and removes media files.
type Store interface {
	// Save writes the content under the given subdirectory and returns
	// the path relative to the media root.
	Save(subdir, filename string, content io.Reader) (string, error)
	// Open returns a reader for a previously saved path.
	Open(relPath string) (io.ReadCloser, error)
	// Remove deletes a previously saved path. Missing files are not an
	// error.
	Remove(relPath string) error
}

type localStore struct {
	root string
	log  *zap.Logger
}

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
}

func NewLocal(p Params) (Store, error) {
	root := strings.TrimSpace(p.Config.MediaRoot)
	if root == "" {
		root = "media"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &localStore{
		root: root,
		log:  p.Log.Named("storage.local"),
	}, nil
}

func (s *localStore) Save(subdir, filename string, content io.Reader) (string, error) {
	if content == nil {
		return "", ErrEmptyFile
	}

	subdir = cleanComponent(subdir)
	if subdir == "" {
		subdir = "uploads"
	}

	// Uploaded names are never trusted; only the extension survives.
	ext := strings.ToLower(filepath.Ext(filename))
	name := fmt.Sprintf("%s%s", uuid.NewString(), ext)
	relPath := filepath.Join(subdir, name)

	dir := filepath.Join(s.root, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	dst, err := os.Create(filepath.Join(s.root, relPath))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	written, err := io.Copy(dst, content)
	if err != nil {
		_ = os.Remove(filepath.Join(s.root, relPath))
		return "", err
	}
	if written == 0 {
		_ = os.Remove(filepath.Join(s.root, relPath))
		return "", ErrEmptyFile
	}

	s.log.Debug("stored file",
		zap.String("path", relPath),
		zap.Int64("bytes", written),
	)
	return relPath, nil
}

func (s *localStore) Open(relPath string) (io.ReadCloser, error) {
	full, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

func (s *localStore) Remove(relPath string) error {
	full, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	err = os.Remove(full)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// resolve rejects paths escaping the media root.
func (s *localStore) resolve(relPath string) (string, error) {
	relPath = filepath.Clean(strings.TrimSpace(relPath))
	if relPath == "" || relPath == "." || strings.HasPrefix(relPath, "..") || filepath.IsAbs(relPath) {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.root, relPath), nil
}

func cleanComponent(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "/.")
	if strings.ContainsAny(s, "/\\") {
		return ""
	}
	return s
}

var Module = fx.Module("storage", fx.Provide(NewLocal))
