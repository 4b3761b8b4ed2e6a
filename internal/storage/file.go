package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/rs/zerolog"
	"invoicedesk/internal/logger"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// FileStore keeps each key in its own file under a directory.
type FileStore struct {
	dir string
	log zerolog.Logger
}

// NewFileStore creates the directory if needed and returns a store rooted at it.
func NewFileStore(dir string) (*FileStore, error) {
	const op = "NewFileStore"

	if dir == "" {
		return nil, fmt.Errorf("%s: data directory is required", op)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: failed to create data directory: %w", op, err)
	}

	return &FileStore{
		dir: dir,
		log: logger.WithComponent("file-store"),
	}, nil
}

func (s *FileStore) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// Get reads the value stored under key.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	const op = "FileStore.Get"

	path, err := s.path(key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: failed to read %s: %w", op, path, err)
	}
	return data, nil
}

// Set replaces the value under key. The write goes to a temporary file that
// is renamed into place, so a crash never leaves a half-written blob.
func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	const op = "FileStore.Set"

	path, err := s.path(key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("%s: failed to create temp file: %w", op, err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once the rename succeeded
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: failed to write temp file: %w", op, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: failed to close temp file: %w", op, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%s: failed to replace %s: %w", op, path, err)
	}

	s.log.Debug().
		Str("key", key).
		Int("bytes", len(value)).
		Msg("Stored value")

	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}
